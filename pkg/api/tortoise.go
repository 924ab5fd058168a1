package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tortoise-community/tortoise-bot/pkg/models"
)

// DoesMemberExist reports whether the API has any record for the member.
// A non-OK status counts as "no record", any other failure is returned.
func (c *Client) DoesMemberExist(ctx context.Context, memberID string) (bool, error) {
	_, err := c.IsVerified(ctx, memberID)
	var rcErr *ResponseCodeError
	if errors.As(err, &rcErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsVerified reports whether the member passed verification. The endpoint
// answers {"verified": bool} or 404 when the member is unknown; the 404
// surfaces as a ResponseCodeError.
func (c *Client) IsVerified(ctx context.Context, memberID string) (bool, error) {
	var out struct {
		Verified bool `json:"verified"`
	}
	if err := c.get(ctx, fmt.Sprintf("verify-confirmation/%s/", memberID), &out); err != nil {
		return false, err
	}
	return out.Verified, nil
}

// InsertNewMember creates the database record for a first-time joiner.
func (c *Client) InsertNewMember(ctx context.Context, userID, guildID, name, tag string) error {
	payload := map[string]interface{}{
		"user_id":   userID,
		"guild_id":  guildID,
		"join_date": time.Now().UTC().Format(time.RFC3339Nano),
		"name":      name,
		"tag":       tag,
		"member":    true,
	}
	return c.post(ctx, "members/", payload)
}

// MemberRejoined marks a previously-seen member as present again and
// clears their leave date.
func (c *Client) MemberRejoined(ctx context.Context, userID, guildID string) error {
	payload := map[string]interface{}{
		"user_id":    userID,
		"guild_id":   guildID,
		"member":     true,
		"leave_date": nil,
	}
	return c.put(ctx, fmt.Sprintf("members/edit/%s/", userID), payload)
}

// MemberLeft stamps the leave date and marks the member as absent.
func (c *Client) MemberLeft(ctx context.Context, userID, guildID string) error {
	payload := map[string]interface{}{
		"user_id":    userID,
		"guild_id":   guildID,
		"leave_date": time.Now().UTC().Format(time.RFC3339Nano),
		"member":     false,
	}
	return c.put(ctx, fmt.Sprintf("members/edit/%s/", userID), payload)
}

// GetMemberRoles returns the role IDs stored for the member.
// The endpoint answers {"roles": [...]} or 404.
func (c *Client) GetMemberRoles(ctx context.Context, memberID string) ([]string, error) {
	var out struct {
		Roles []string `json:"roles"`
	}
	if err := c.get(ctx, fmt.Sprintf("members/%s/roles/", memberID), &out); err != nil {
		return nil, err
	}
	return out.Roles, nil
}

// GetMemberData returns the full stored record for the member.
func (c *Client) GetMemberData(ctx context.Context, memberID string) (*models.Member, error) {
	var out models.Member
	if err := c.get(ctx, fmt.Sprintf("members/edit/%s/", memberID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAllMembers returns every member record the API holds.
func (c *Client) GetAllMembers(ctx context.Context) ([]models.Member, error) {
	var out []models.Member
	if err := c.get(ctx, "members/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EditMemberRoles overwrites the stored role list for the member.
func (c *Client) EditMemberRoles(ctx context.Context, userID, guildID string, roleIDs []string) error {
	payload := map[string]interface{}{
		"user_id":  userID,
		"guild_id": guildID,
		"roles":    roleIDs,
	}
	return c.put(ctx, fmt.Sprintf("members/edit/%s/", userID), payload)
}

// GetAllRules returns the community rules, ordered by the API.
func (c *Client) GetAllRules(ctx context.Context) ([]models.Rule, error) {
	var out []models.Rule
	if err := c.get(ctx, "rules/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAllSuggestions returns every stored suggestion.
func (c *Client) GetAllSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	var out []models.Suggestion
	if err := c.get(ctx, "suggestions/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSuggestion returns the suggestion stored under the given message ID.
func (c *Client) GetSuggestion(ctx context.Context, messageID string) (*models.Suggestion, error) {
	var out models.Suggestion
	if err := c.get(ctx, fmt.Sprintf("suggestions/%s/", messageID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostSuggestion stores a fresh suggestion under its Discord message ID.
func (c *Client) PostSuggestion(ctx context.Context, s models.Suggestion) error {
	payload := map[string]interface{}{
		"message_id":  s.MessageID,
		"author_id":   s.AuthorID,
		"author_name": s.AuthorName,
		"brief":       s.Brief,
		"avatar":      s.Avatar,
		"link":        s.Link,
		"date":        s.Date.UTC().Format(time.RFC3339Nano),
	}
	return c.post(ctx, "suggestions/", payload)
}

// PutSuggestion resolves a suggestion with the given status and reason.
func (c *Client) PutSuggestion(ctx context.Context, messageID string, status models.SuggestionStatus, reason string) error {
	payload := models.SuggestionUpdate{Status: status, Reason: reason}
	return c.put(ctx, fmt.Sprintf("suggestions/%s/", messageID), payload)
}

// DeleteSuggestion removes a suggestion. The API answers 204 on success.
func (c *Client) DeleteSuggestion(ctx context.Context, messageID string) error {
	return c.delete(ctx, fmt.Sprintf("suggestions/%s/", messageID))
}

// GetMemberMeta returns the moderation metadata for the member.
func (c *Client) GetMemberMeta(ctx context.Context, memberID string) (*models.MemberMeta, error) {
	var out models.MemberMeta
	if err := c.get(ctx, fmt.Sprintf("member/meta/%s/", memberID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMemberWarnings returns the member's warnings. The API stores each
// warning as a JSON-encoded string inside member meta, so they get
// deserialized here; entries that fail to parse are skipped.
func (c *Client) GetMemberWarnings(ctx context.Context, memberID string) ([]models.Warning, error) {
	meta, err := c.GetMemberMeta(ctx, memberID)
	if err != nil {
		return nil, err
	}

	warnings := make([]models.Warning, 0, len(meta.Warnings))
	for _, raw := range meta.Warnings {
		var w models.Warning
		if err := json.Unmarshal([]byte(raw), &w); err != nil {
			continue
		}
		warnings = append(warnings, w)
	}
	return warnings, nil
}

// GetMemberWarningsCount returns how many warnings the member has.
func (c *Client) GetMemberWarningsCount(ctx context.Context, memberID string) (int, error) {
	warnings, err := c.GetMemberWarnings(ctx, memberID)
	if err != nil {
		return 0, err
	}
	return len(warnings), nil
}

// AddMemberWarning appends a warning to the member's meta and returns it.
func (c *Client) AddMemberWarning(ctx context.Context, modID, memberID, reason string) (*models.Warning, error) {
	meta, err := c.GetMemberMeta(ctx, memberID)
	if err != nil {
		return nil, err
	}

	warning := models.Warning{
		ID:     uuid.NewString(),
		Mod:    modID,
		Reason: reason,
		Date:   time.Now().UTC(),
	}
	encoded, err := json.Marshal(warning)
	if err != nil {
		return nil, fmt.Errorf("marshal warning: %w", err)
	}

	payload := map[string]interface{}{
		"warnings": append(meta.Warnings, string(encoded)),
	}
	if err := c.put(ctx, fmt.Sprintf("member/meta/%s/", memberID), payload); err != nil {
		return nil, err
	}
	return &warning, nil
}

// RemoveMemberWarning deletes the warning with the given ID from the
// member's meta. It reports whether a warning was actually removed.
func (c *Client) RemoveMemberWarning(ctx context.Context, memberID, warningID string) (bool, error) {
	meta, err := c.GetMemberMeta(ctx, memberID)
	if err != nil {
		return false, err
	}

	kept := make([]string, 0, len(meta.Warnings))
	removed := false
	for _, raw := range meta.Warnings {
		var w models.Warning
		if err := json.Unmarshal([]byte(raw), &w); err == nil && w.ID == warningID {
			removed = true
			continue
		}
		kept = append(kept, raw)
	}
	if !removed {
		return false, nil
	}

	payload := map[string]interface{}{"warnings": kept}
	if err := c.put(ctx, fmt.Sprintf("member/meta/%s/", memberID), payload); err != nil {
		return false, err
	}
	return true, nil
}
