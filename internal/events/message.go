package events

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
)

// RegisterMessageEvents registers all message-related event handlers
func RegisterMessageEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnMessageCreate(onMessageCreate)
}

// onMessageCreate watches guild messages and nudges members who paste walls
// of text towards the paste service.
func onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	// DMs carry code submissions and are handled by the submit command
	if m.GuildID == "" {
		return
	}

	cfg := config.Get()
	if len([]rune(m.Content)) <= cfg.MaxMessageLength {
		return
	}

	notice := fmt.Sprintf(
		"Hey <@%s>, your message is quite long.\nPlease consider using our paste service: %s",
		m.Author.ID, cfg.PasteServiceURL,
	)
	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embeds.Warning(notice)); err != nil {
		logger.Error(fmt.Sprintf("Could not send paste-service notice: %v", err), "Message")
	}
}
