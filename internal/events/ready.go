package events

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
	"github.com/tortoise-community/tortoise-bot/pkg/mqtt"
)

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient) {
	client.EventHandler.OnReady(onReady)
}

// onReady is called when the bot successfully connects to Discord
func onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Success(fmt.Sprintf("Bot connected: %s", r.User.Username), "Ready")
	logger.Info(fmt.Sprintf("Serving %d guild(s)", len(r.Guilds)), "Ready")

	if err := s.UpdateWatchStatus(0, "the Tortoise Community"); err != nil {
		logger.Error(fmt.Sprintf("Error setting presence: %v", err), "Ready")
	}

	// Role names make the self-assign DMs readable
	registerRoleNames(s)

	// The community dashboard can ask the bot for live stats over MQTT
	if mc := mqtt.Get(); mc != nil && mc.IsConnected() {
		mc.On("stats", func(payload map[string]interface{}) (interface{}, error) {
			client := discord.Get()
			return map[string]interface{}{
				"guilds":  client.GuildCount(),
				"ready":   client.IsReady(),
				"uptime":  time.Since(client.StartTime).String(),
				"version": config.Version,
			}, nil
		})
		mc.PublishEvent("ready", map[string]interface{}{
			"bot":    r.User.Username,
			"guilds": len(r.Guilds),
		})
	}
}

// registerRoleNames resolves the display names of the self-assignable roles
func registerRoleNames(s *discordgo.Session) {
	cfg := config.Get()
	guildRoles, err := s.GuildRoles(cfg.GuildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("Could not fetch guild roles: %v", err), "Ready")
		return
	}

	wanted := make(map[string]bool, len(cfg.SelfAssignableRoles))
	for _, roleID := range cfg.SelfAssignableRoles {
		wanted[roleID] = true
	}
	for _, role := range guildRoles {
		if wanted[role.ID] {
			assigner.SetRoleName(role.ID, role.Name)
		}
	}
}
