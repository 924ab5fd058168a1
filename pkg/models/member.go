// Package models defines the records exchanged with the community API
// and stored by the API service.
package models

import "time"

// Member is the persistent record the community API keeps for every user
// that ever joined the guild. LeaveDate stays nil while Member is true.
type Member struct {
	UserID    string     `json:"user_id" bson:"user_id"`
	GuildID   string     `json:"guild_id" bson:"guild_id"`
	JoinDate  time.Time  `json:"join_date" bson:"join_date"`
	LeaveDate *time.Time `json:"leave_date" bson:"leave_date"`
	Name      string     `json:"name" bson:"name"`
	Tag       string     `json:"tag" bson:"tag"`
	Verified  bool       `json:"verified" bson:"verified"`
	Member    bool       `json:"member" bson:"member"`
	Roles     []string   `json:"roles" bson:"roles"`
}

// MemberMeta is the moderation-side record attached to a member: verification
// state, warnings and perks. Warnings travel as JSON-encoded strings, one per
// warning, matching the wire format of the community API.
type MemberMeta struct {
	UserID     string     `json:"user_id" bson:"user_id"`
	Verified   bool       `json:"verified" bson:"verified"`
	LeaveDate  *time.Time `json:"leave_date" bson:"leave_date"`
	Warnings   []string   `json:"warnings" bson:"warnings"`
	MutedUntil *time.Time `json:"muted_until" bson:"muted_until"`
	ModMail    bool       `json:"mod_mail" bson:"mod_mail"`
	Perks      int        `json:"perks" bson:"perks"`
}
