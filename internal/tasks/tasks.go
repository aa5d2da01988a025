// Package tasks hands network-bound work (thumbnailing, metadata
// extraction, calendar fetching) to external workers over MQTT. Enqueueing
// is fire and forget; request handlers never wait for a job to run.
package tasks

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	thumbnailTopic       = "tasks/thumbnails"
	metadataTopic        = "tasks/metadata"
	calendarRefreshTopic = "tasks/calendar-refresh"
)

// Queue enqueues asynchronous jobs for asset post-processing.
type Queue interface {
	EnqueueThumbnail(assetIDs ...int)
	EnqueueMetadataScan(assetIDs ...int)
	EnqueueCalendarRefresh(assetIDs ...int)
}

type mqttQueue struct {
	client mqtt.Client
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// NewMQTTQueue connects to the broker and returns a queue publishing to the
// worker topics.
func NewMQTTQueue(brokerURL, clientID string) (Queue, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}
	return &mqttQueue{client: client}, nil
}

func (q *mqttQueue) publish(topic string, assetIDs []int) {
	if len(assetIDs) == 0 {
		return
	}
	payload, err := json.Marshal(map[string]any{"ids": assetIDs})
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to encode task payload")
		return
	}
	// Fire and forget. Workers that were down pick up the next enqueue.
	q.client.Publish(topic, 1, false, payload)
	log.Debug().Str("topic", topic).Ints("asset_ids", assetIDs).Msg("task enqueued")
}

func (q *mqttQueue) EnqueueThumbnail(assetIDs ...int)       { q.publish(thumbnailTopic, assetIDs) }
func (q *mqttQueue) EnqueueMetadataScan(assetIDs ...int)    { q.publish(metadataTopic, assetIDs) }
func (q *mqttQueue) EnqueueCalendarRefresh(assetIDs ...int) { q.publish(calendarRefreshTopic, assetIDs) }

type nopQueue struct{}

// NewNop returns a queue that drops every job. Used in tests and local
// setups without a broker.
func NewNop() Queue { return nopQueue{} }

func (nopQueue) EnqueueThumbnail(...int)       {}
func (nopQueue) EnqueueMetadataScan(...int)    {}
func (nopQueue) EnqueueCalendarRefresh(...int) {}
