// Package events wires the gateway events the bot listens to. Handlers are
// organized by category (ready, member, message, reaction).
package events

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tortoise-community/tortoise-bot/pkg/api"
	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
	"github.com/tortoise-community/tortoise-bot/pkg/membership"
	"github.com/tortoise-community/tortoise-bot/pkg/mqtt"
	"github.com/tortoise-community/tortoise-bot/pkg/selfassign"
)

var (
	membershipHandler *membership.Handler
	assigner          *selfassign.Assigner
)

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, apiClient *api.Client) {
	logger.System("Registering bot events...", "Events")

	cfg := config.Get()
	gateway := membership.NewSessionGateway(client.Session)

	membershipHandler = membership.NewHandler(apiClient, gateway, membership.Options{
		GuildID:               cfg.GuildID,
		VerifiedRoleID:        cfg.VerifiedRoleID,
		UnverifiedRoleID:      cfg.UnverifiedRoleID,
		VerificationChannelID: cfg.VerificationChannelID,
		SystemLogChannelID:    cfg.SystemLogChannelID,
		VerificationURL:       cfg.VerificationURL,
	})
	assigner = selfassign.NewAssigner(gateway, cfg.ReactForRolesChannelID, cfg.SelfAssignableRoles, "")

	RegisterReadyEvent(client)
	RegisterMemberEvents(client)
	RegisterMessageEvents(client)
	RegisterReactionEvents(client)
	registerVerificationListener()

	logger.Success("All events registered", "Events")
}

// registerVerificationListener grants guild access to members who verify on
// the website while already present in the guild. The API service announces
// those verifications over MQTT.
func registerVerificationListener() {
	mc := mqtt.Get()
	if mc == nil || !mc.IsConnected() {
		logger.Warn("MQTT unavailable, website verifications will only apply on rejoin", "Events")
		return
	}

	err := mc.Subscribe("tortoise/events/member_verified", func(topic string, payload []byte) {
		defer errors.RecoverMiddleware()()

		var event struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(payload, &event); err != nil || event.UserID == "" {
			logger.Error("Malformed member_verified event", "Events")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := membershipHandler.OnMemberVerified(ctx, event.UserID); err != nil {
			logger.Error(fmt.Sprintf("Verification flow failed for %s: %v", event.UserID, err), "Events")
		}
	})
	if err != nil {
		logger.Error(fmt.Sprintf("Could not subscribe to verification events: %v", err), "Events")
	}
}
