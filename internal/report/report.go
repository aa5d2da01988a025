// Package report is the sink for exceptional conditions worth an
// operator's attention, such as unknown devices phoning home or broken
// group configurations.
package report

import "github.com/rs/zerolog/log"

// Reporter captures notable conditions without affecting the request that
// raised them.
type Reporter interface {
	CaptureMessage(msg string, fields map[string]any)
	CaptureError(err error, fields map[string]any)
}

type logReporter struct{}

// NewLogReporter reports through the structured log. A hosted error
// tracker can replace it without touching call sites.
func NewLogReporter() Reporter { return logReporter{} }

func (logReporter) CaptureMessage(msg string, fields map[string]any) {
	log.Warn().Fields(fields).Msg(msg)
}

func (logReporter) CaptureError(err error, fields map[string]any) {
	log.Error().Err(err).Fields(fields).Msg("captured error")
}
