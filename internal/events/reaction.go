package events

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
)

// RegisterReactionEvents registers the react-for-roles event handlers
func RegisterReactionEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnMessageReactionAdd(onReactionAdd)
	client.EventHandler.OnMessageReactionRemove(onReactionRemove)
}

// onReactionAdd grants the self-assignable role mapped to the emoji
func onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}

	go func() {
		defer errors.RecoverMiddleware()()

		if err := assigner.OnReactionAdd(r.GuildID, r.ChannelID, r.UserID, emojiKey(r.Emoji)); err != nil {
			logger.Error(fmt.Sprintf("Reaction role grant failed for %s: %v", r.UserID, err), "Reaction")
		}
	}()
}

// onReactionRemove revokes the self-assignable role mapped to the emoji
func onReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}

	go func() {
		defer errors.RecoverMiddleware()()

		if err := assigner.OnReactionRemove(r.GuildID, r.ChannelID, r.UserID, emojiKey(r.Emoji)); err != nil {
			logger.Error(fmt.Sprintf("Reaction role revoke failed for %s: %v", r.UserID, err), "Reaction")
		}
	}()
}

// emojiKey identifies an emoji: custom emojis by ID, unicode ones by name
func emojiKey(e discordgo.Emoji) string {
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}
