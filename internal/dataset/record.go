package dataset

import (
	"ictal/internal/sequence"
)

// Tag names recognised on records.
const (
	TagDeviceClass  = "device_class"
	TagIllumination = "illumination"
)

// Record is one labeled video.
type Record struct {
	VideoID  string            `json:"video_id"`
	GT       sequence.Binary   `json:"gt"`
	Pred     sequence.Binary   `json:"pred"`
	Smoothed sequence.Binary   `json:"smoothed,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Tag returns the named tag or "".
func (r Record) Tag(name string) string {
	if r.Tags == nil {
		return ""
	}
	return r.Tags[name]
}

// Skipped describes a row excluded from evaluation.
type Skipped struct {
	Row     int    `json:"row"`
	VideoID string `json:"video_id,omitempty"`
	Reason  string `json:"reason"`
}

// Dataset is the loaded table.
type Dataset struct {
	Source  string    `json:"source"`
	Records []Record  `json:"records"`
	Skipped []Skipped `json:"skipped,omitempty"`
}
