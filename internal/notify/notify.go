// Package notify announces finished runs over MQTT and HTTP webhooks.
// Delivery is best-effort: callers print failures and carry on.
package notify

import (
	"encoding/json"
	"time"
)

// Summary is the JSON payload sent for each run.
type Summary struct {
	Time     time.Time `json:"time"`
	Document string    `json:"document"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Outcome  string    `json:"outcome"`
	Message  string    `json:"message,omitempty"`
	IcnsPath string    `json:"icns_path,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
	Files    int       `json:"files"`
}

// Encode returns the JSON form of s.
func (s Summary) Encode() ([]byte, error) {
	return json.Marshal(s)
}
