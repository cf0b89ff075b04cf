package streamable

import (
	"fmt"

	"video-embed-pipeline/internal/domain"
)

// videoResponse mirrors the subset of the upstream lookup payload needed for
// embedding: the mp4 file's URL and duration, plus an expiry timestamp the
// API sometimes omits in favor of the signed-URL parameter.
type videoResponse struct {
	Files struct {
		MP4 struct {
			URL      string  `json:"url"`
			Duration float64 `json:"duration"`
		} `json:"mp4"`
	} `json:"files"`
	Expires *float64 `json:"expires"`
}

// ToRecord converts the payload into a domain.Record, establishing the
// expiry from the explicit field or the media URL.
func (v *videoResponse) ToRecord(id string) (domain.Record, error) {
	if v.Files.MP4.URL == "" {
		return domain.Record{}, fmt.Errorf("response for %s has no mp4 file URL", id)
	}

	return domain.NewRecord(id, v.Files.MP4.URL, v.Files.MP4.Duration, v.Expires)
}
