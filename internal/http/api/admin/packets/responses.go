package packets

type ProfileResponse struct {
	ID        int     `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	ClientID  *int    `json:"client_id"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type DeviceResponse struct {
	ID           int     `json:"id"`
	DeviceID     string  `json:"device_id"`
	Name         string  `json:"name"`
	GroupID      *int    `json:"group_id"`
	Enabled      bool    `json:"enabled"`
	DebugMode    bool    `json:"debug_mode"`
	BuildVersion *int    `json:"build_version"`
	LastPing     string  `json:"last_ping"`
	CreatedAt    string  `json:"created_at"`
}
