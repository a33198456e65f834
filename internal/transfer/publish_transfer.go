package transfer

// MediaPayload carries one uploaded binary plus what we know about it.
type MediaPayload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// PlatformJob is the generic description of one platform's share of a
// publish request. Adapters map it onto their own wire format.
type PlatformJob struct {
	Platform    string
	Kind        string
	Caption     string
	Title       string
	Description string
	Privacy     string
	Media       *MediaPayload
	Thumbnail   *MediaPayload

	// MediaURL is filled in by the orchestrator after staging, for
	// adapters that consume a public URL instead of raw bytes.
	MediaURL string
}

// PlatformConfig is the per-platform block of the publish endpoint's
// "metadata" form field. Field names match the dashboard client.
type PlatformConfig struct {
	Enabled     bool   `json:"enabled"`
	Type        string `json:"type"`
	Caption     string `json:"caption"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
}

// PublishOutcome is the settled result of one platform job.
type PublishOutcome struct {
	Platform       string `json:"platform"`
	Status         string `json:"status"`
	PlatformPostID string `json:"platform_post_id"`
	ErrorMessage   string `json:"error_message"`
}

// PublishReport is what the publish caller renders: a status per
// requested platform, plus a message per failed platform. The key set
// of Results always equals the set of enabled platforms.
type PublishReport struct {
	Results map[string]string `json:"results"`
	Errors  map[string]string `json:"errors"`
}
