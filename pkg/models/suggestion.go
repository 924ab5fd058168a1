package models

import "time"

// SuggestionStatus is the moderation state of a community suggestion.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Suggestion is a community suggestion as stored by the API. MessageID is
// the Discord message the suggestion embed lives in, Link its jump URL.
type Suggestion struct {
	MessageID  string           `json:"message_id" bson:"message_id"`
	AuthorID   string           `json:"author_id" bson:"author_id"`
	AuthorName string           `json:"author_name" bson:"author_name"`
	Brief      string           `json:"brief" bson:"brief"`
	Avatar     string           `json:"avatar" bson:"avatar"`
	Link       string           `json:"link" bson:"link"`
	Date       time.Time        `json:"date" bson:"date"`
	Status     SuggestionStatus `json:"status" bson:"status"`
	Reason     string           `json:"reason" bson:"reason"`
}

// SuggestionUpdate is the payload for resolving a suggestion.
type SuggestionUpdate struct {
	Status SuggestionStatus `json:"status" bson:"status"`
	Reason string           `json:"reason" bson:"reason"`
}
