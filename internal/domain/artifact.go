package domain

import "time"

// Artifact is a stored pipeline output addressed by a slash-separated key,
// conventionally "<correlationID>/<name>".
type Artifact struct {
	Key         string
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Pipeline stages recorded as runs.
const (
	StageIngest         = "ingest"
	StageCampaignHeader = "campaign_header"
	StageSpots          = "spots"
	StageSubmit         = "submit"
	StageSplit          = "split"
)

// Run statuses.
const (
	RunOK     = "ok"
	RunFailed = "failed"
)
