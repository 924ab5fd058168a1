package server

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
	"github.com/tortoise-community/tortoise-bot/pkg/models"
)

// createSuggestCommand creates the /suggest command
func createSuggestCommand() *discord.Command {
	return discord.NewCommand(
		"suggest",
		"Make a suggestion for the community",
		"server",
		suggestHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "suggestion",
			Description: "Your suggestion",
			Required:    true,
		},
	)
}

// suggestHandler posts the suggestion in the suggestions channel, opens it
// for voting and stores it through the community API.
func suggestHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		brief := ctx.GetStringOption("suggestion")
		author := ctx.User()
		cfg := config.Get()

		embed := embeds.Info(brief, fmt.Sprintf("Suggestion from %s", author.Username))
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: author.AvatarURL("128")}

		msg, err := ctx.Session.ChannelMessageSendEmbed(cfg.SuggestionsChannelID, embed)
		if err != nil {
			logger.Error(fmt.Sprintf("Could not post suggestion: %v", err), "Suggest")
			ctx.ReplyEphemeralEmbed(embeds.Failure("Could not post your suggestion, please try again later."))
			return
		}

		// Open the suggestion for community voting
		for _, emoji := range []string{"👍", "👎"} {
			if err := ctx.Session.MessageReactionAdd(cfg.SuggestionsChannelID, msg.ID, emoji); err != nil {
				logger.Debug(fmt.Sprintf("Could not add vote reaction: %v", err), "Suggest")
			}
		}

		suggestion := models.Suggestion{
			MessageID:  msg.ID,
			AuthorID:   author.ID,
			AuthorName: author.Username,
			Brief:      brief,
			Avatar:     author.AvatarURL("128"),
			Link:       fmt.Sprintf("https://discord.com/channels/%s/%s/%s", cfg.GuildID, cfg.SuggestionsChannelID, msg.ID),
			Date:       time.Now().UTC(),
			Status:     models.SuggestionPending,
		}

		apiCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := communityAPI.PostSuggestion(apiCtx, suggestion); err != nil {
			logger.Error(fmt.Sprintf("Could not store suggestion %s: %v", msg.ID, err), "Suggest")
			ctx.ReplyEphemeralEmbed(embeds.Failure("Your suggestion was posted but could not be saved, a moderator has been notified."))
			return
		}

		ctx.ReplyEphemeralEmbed(embeds.Success("Thank you! Your suggestion has been posted and is open for voting."))
	}()
	return nil
}
