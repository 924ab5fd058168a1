package models

import "time"

// Warning is a single moderation warning. The community API stores warnings
// inside member meta as a list of JSON-encoded strings; pkg/api handles the
// encoding so the rest of the bot only ever sees this struct.
type Warning struct {
	ID     string    `json:"id"`
	Mod    string    `json:"mod"`
	Reason string    `json:"reason"`
	Date   time.Time `json:"date"`
}
