// Package membership implements the member lifecycle: registering first-time
// joiners, restoring roles for verified rejoins, nudging unverified members
// back to verification, and mirroring role changes into the community API.
package membership

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/api"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
	"github.com/tortoise-community/tortoise-bot/pkg/models"
)

// CommunityAPI is the slice of the community API client the handler needs.
type CommunityAPI interface {
	GetMemberMeta(ctx context.Context, memberID string) (*models.MemberMeta, error)
	InsertNewMember(ctx context.Context, userID, guildID, name, tag string) error
	MemberRejoined(ctx context.Context, userID, guildID string) error
	MemberLeft(ctx context.Context, userID, guildID string) error
	GetMemberRoles(ctx context.Context, memberID string) ([]string, error)
	EditMemberRoles(ctx context.Context, userID, guildID string, roleIDs []string) error
}

// Gateway is the slice of the Discord session the handler needs. The
// discordgo-backed implementation lives in gateway.go.
type Gateway interface {
	AddRole(guildID, userID, roleID string) error
	RemoveRole(guildID, userID, roleID string) error
	SendDM(userID string, embed *discordgo.MessageEmbed) error
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error
	GhostPing(channelID, userID string) error
}

// Options carries the guild wiring the handler operates on.
type Options struct {
	GuildID               string
	VerifiedRoleID        string
	UnverifiedRoleID      string
	VerificationChannelID string
	SystemLogChannelID    string
	VerificationURL       string
}

// Handler reacts to member gateway events and keeps the community API
// in sync with the guild.
type Handler struct {
	api     CommunityAPI
	gateway Gateway
	opts    Options

	suppressed *suppressionSet
}

// NewHandler creates a membership Handler
func NewHandler(apiClient CommunityAPI, gateway Gateway, opts Options) *Handler {
	return &Handler{
		api:        apiClient,
		gateway:    gateway,
		opts:       opts,
		suppressed: newSuppressionSet(),
	}
}

// OnMemberJoin routes a joining member to the right flow: unknown members
// get registered, known verified members get their roles back, known
// unverified members get nudged to verify again. A member the API already
// considers present and verified is left alone.
func (h *Handler) OnMemberJoin(ctx context.Context, userID, name, tag string) error {
	logger.Info(fmt.Sprintf("Member %s (%s) joined", name, userID), "Membership")

	meta, err := h.api.GetMemberMeta(ctx, userID)
	var rcErr *api.ResponseCodeError
	if errors.As(err, &rcErr) && rcErr.Status == http.StatusNotFound {
		return h.registerNewMember(ctx, userID, name, tag)
	}
	if err != nil {
		return fmt.Errorf("fetch member meta for %s: %w", userID, err)
	}

	if meta.LeaveDate == nil && meta.Verified {
		// Already present and verified, nothing to restore
		return nil
	}
	return h.rejoinedMember(ctx, userID, meta.Verified)
}

// registerNewMember handles a first-time joiner
func (h *Handler) registerNewMember(ctx context.Context, userID, name, tag string) error {
	logger.Info(fmt.Sprintf("Member %s does not exist in database, adding now", userID), "Membership")

	if err := h.api.InsertNewMember(ctx, userID, h.opts.GuildID, name, tag); err != nil {
		return fmt.Errorf("insert new member %s: %w", userID, err)
	}
	if err := h.gateway.AddRole(h.opts.GuildID, userID, h.opts.UnverifiedRoleID); err != nil {
		return fmt.Errorf("add unverified role to %s: %w", userID, err)
	}

	// Ghost ping so the member takes note of the verification channel
	if err := h.gateway.GhostPing(h.opts.VerificationChannelID, userID); err != nil {
		logger.Warn("Ghost ping failed: "+err.Error(), "Membership")
	}

	h.logToSystemChannel(fmt.Sprintf("%s has joined the Tortoise Community.", mention(userID)))

	dm := "Welcome to Tortoise Community!\n" +
		"In order to proceed and join the community you will need to verify.\n\n" +
		"Please head over to\n" + h.opts.VerificationURL
	h.sendDM(userID, embeds.Footer(dm, "Welcome"))
	return nil
}

// rejoinedMember handles a member the API already knows about
func (h *Handler) rejoinedMember(ctx context.Context, userID string, verified bool) error {
	if verified {
		logger.Info(fmt.Sprintf("Member %s re-joined and is verified, restoring previous roles", userID), "Membership")

		previousRoles, err := h.api.GetMemberRoles(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetch previous roles for %s: %w", userID, err)
		}
		h.AddVerifiedRoles(userID, previousRoles)

		if err := h.api.MemberRejoined(ctx, userID, h.opts.GuildID); err != nil {
			return fmt.Errorf("mark member %s rejoined: %w", userID, err)
		}

		h.logToSystemChannel(fmt.Sprintf("%s has returned to Tortoise Community.", mention(userID)))

		dm := "Welcome back to Tortoise Community!\n\n" +
			"The roles you had last time will be restored and added back to you.\n"
		h.sendDM(userID, embeds.Footer(dm, "Welcome"))
		return nil
	}

	logger.Info(fmt.Sprintf("Member %s re-joined but is not verified, waiting for verification", userID), "Membership")

	if err := h.api.MemberRejoined(ctx, userID, h.opts.GuildID); err != nil {
		return fmt.Errorf("mark member %s rejoined: %w", userID, err)
	}
	if err := h.gateway.AddRole(h.opts.GuildID, userID, h.opts.UnverifiedRoleID); err != nil {
		return fmt.Errorf("add unverified role to %s: %w", userID, err)
	}

	h.logToSystemChannel(fmt.Sprintf("%s has joined the Tortoise Community.", mention(userID)))

	if err := h.gateway.GhostPing(h.opts.VerificationChannelID, userID); err != nil {
		logger.Warn("Ghost ping failed: "+err.Error(), "Membership")
	}

	dm := "Hi, welcome to Tortoise Community!\n" +
		"Seems like this is not your first time joining.\n\n" +
		"Last time you didn't verify so please head over to " + h.opts.VerificationURL
	h.sendDM(userID, embeds.Footer(dm, "Welcome"))
	return nil
}

// OnMemberVerified handles a member who verified on the website while
// already in the guild: they get access immediately.
func (h *Handler) OnMemberVerified(ctx context.Context, userID string) error {
	logger.Info(fmt.Sprintf("Member %s verified through website, giving access to guild", userID), "Membership")

	h.AddVerifiedRoles(userID, nil)
	if err := h.api.MemberRejoined(ctx, userID, h.opts.GuildID); err != nil {
		return fmt.Errorf("mark member %s rejoined: %w", userID, err)
	}

	h.logToSystemChannel(fmt.Sprintf("%s has joined to Tortoise Community.", mention(userID)))

	dm := "Welcome to Tortoise Community!\n\n" +
		"We see you've come directly from our website after verification,\n" +
		"you've been given access to our server, enjoy your stay."
	h.sendDM(userID, embeds.Footer(dm, "Welcome"))
	return nil
}

// OnMemberLeave stamps the leave date in the community API
func (h *Handler) OnMemberLeave(ctx context.Context, userID string) error {
	if err := h.api.MemberLeft(ctx, userID, h.opts.GuildID); err != nil {
		return fmt.Errorf("mark member %s left: %w", userID, err)
	}
	return nil
}

// OnMemberUpdate persists role changes so members get their roles back on
// rejoin. Changes made by the bot's own verification flow are suppressed
// per member and skipped here.
func (h *Handler) OnMemberUpdate(ctx context.Context, userID string, beforeRoles, afterRoles []string) error {
	if rolesEqual(beforeRoles, afterRoles) || h.suppressed.active(userID) {
		return nil
	}

	logger.Debug(fmt.Sprintf("Roles of member %s changed, updating database to: %v", userID, afterRoles), "Membership")
	if err := h.api.EditMemberRoles(ctx, userID, h.opts.GuildID, afterRoles); err != nil {
		return fmt.Errorf("persist roles for %s: %w", userID, err)
	}
	return nil
}

// AddVerifiedRoles removes the unverified role and grants the verified role
// plus any previously stored roles. Stored roles may no longer exist in the
// guild, so individual failures are skipped. Role updates triggered here are
// suppressed for the member so OnMemberUpdate does not echo them back into
// the database.
func (h *Handler) AddVerifiedRoles(userID string, additionalRoles []string) {
	if err := h.gateway.RemoveRole(h.opts.GuildID, userID, h.opts.UnverifiedRoleID); err != nil {
		logger.Debug(fmt.Sprintf("Could not remove unverified role from %s: %v", userID, err), "Membership")
	}

	release := h.suppressed.suppress(userID)
	defer release()

	roles := append([]string{}, additionalRoles...)
	roles = append(roles, h.opts.VerifiedRoleID)
	for _, roleID := range roles {
		if err := h.gateway.AddRole(h.opts.GuildID, userID, roleID); err != nil {
			logger.Debug(fmt.Sprintf("Could not add role %s to %s: %v", roleID, userID, err), "Membership")
			continue
		}
	}
}

func (h *Handler) logToSystemChannel(message string) {
	if err := h.gateway.SendEmbed(h.opts.SystemLogChannelID, embeds.Welcome(message)); err != nil {
		logger.Error("Failed to post to system log channel: "+err.Error(), "Membership")
	}
}

func (h *Handler) sendDM(userID string, embed *discordgo.MessageEmbed) {
	if err := h.gateway.SendDM(userID, embed); err != nil {
		logger.Debug(fmt.Sprintf("Could not DM member %s: %v", userID, err), "Membership")
	}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func rolesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
