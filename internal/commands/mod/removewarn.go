package mod

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
)

// createRemoveWarnCommand creates the /mod removewarn subcommand
func createRemoveWarnCommand() *discord.Command {
	return discord.NewCommand(
		"removewarn",
		"Remove a warning from a member",
		"mod",
		removeWarnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to clear",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "id",
			Description:  "ID of the warning to remove",
			Required:     true,
			Autocomplete: true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithAutoComplete(removeWarnAutoComplete)
}

// removeWarnHandler handles the /mod removewarn command
func removeWarnHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		target := ctx.GetUserOption("member")
		warningID := ctx.GetStringOption("id")
		if target == nil || warningID == "" {
			ctx.ReplyEphemeralEmbed(embeds.Failure("You must specify a member and a warning ID."))
			return
		}

		apiCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		removed, err := communityAPI.RemoveMemberWarning(apiCtx, target.ID, warningID)
		if err != nil {
			logger.Error(fmt.Sprintf("Could not remove warning %s from %s: %v", warningID, target.ID, err), "Mod")
			ctx.ReplyEphemeralEmbed(embeds.Failure("Could not remove the warning, please try again later."))
			return
		}
		if !removed {
			ctx.ReplyEphemeralEmbed(embeds.Failure(fmt.Sprintf("**%s** has no warning with ID `%s`.", target.Username, warningID)))
			return
		}

		ctx.ReplyEmbed(embeds.Success(fmt.Sprintf("Warning `%s` removed from **%s**.", warningID, target.Username)))
	}()
	return nil
}

// removeWarnAutoComplete suggests the member's warning IDs
func removeWarnAutoComplete(ctx *discord.CommandContext) {
	go func() {
		defer errors.RecoverMiddleware()()

		target := ctx.GetUserOption("member")
		if target == nil {
			return
		}

		apiCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		warnings, err := communityAPI.GetMemberWarnings(apiCtx, target.ID)
		if err != nil {
			return
		}

		choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 25)
		for _, w := range warnings {
			label := w.Reason
			if len(label) > 80 {
				label = label[:80]
			}
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  fmt.Sprintf("%s (%s)", label, w.Date.Format("2006-01-02")),
				Value: w.ID,
			})
			if len(choices) == 25 {
				break
			}
		}

		_ = ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionApplicationCommandAutocompleteResult,
			Data: &discordgo.InteractionResponseData{Choices: choices},
		})
	}()
}
