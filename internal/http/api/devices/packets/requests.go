package packets

// AppBuildStatusRequest is the status report a device sends after applying
// an app update.
type AppBuildStatusRequest struct {
	AppBuild *int `json:"app_build"`
}
