package mod

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
)

// apiTimeout bounds API round-trips from command handlers
const apiTimeout = 15 * time.Second

// createWarnCommand creates the /mod warn subcommand
func createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Warn a member",
		"mod",
		warnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to warn",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the warning",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

// warnHandler handles the /mod warn command
func warnHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		target := ctx.GetUserOption("member")
		reason := ctx.GetStringOption("reason")
		if target == nil || reason == "" {
			ctx.ReplyEphemeralEmbed(embeds.Failure("You must specify a member and a reason."))
			return
		}

		apiCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		warning, err := communityAPI.AddMemberWarning(apiCtx, ctx.User().ID, target.ID, reason)
		if err != nil {
			logger.Error(fmt.Sprintf("Could not store warning for %s: %v", target.ID, err), "Mod")
			ctx.ReplyEphemeralEmbed(embeds.Failure("Could not store the warning, please try again later."))
			return
		}

		// Let the member know over DM, best effort
		if dmChannel, err := ctx.Session.UserChannelCreate(target.ID); err == nil {
			dm := embeds.Warning(fmt.Sprintf("You have been warned in the Tortoise Community.\n**Reason:** %s", reason))
			_, _ = ctx.Session.ChannelMessageSendEmbed(dmChannel.ID, dm)
		}

		ctx.ReplyEmbed(embeds.Warning(fmt.Sprintf(
			"**%s** has been warned.\n**Reason:** %s\n**Warning ID:** `%s`",
			target.Username, reason, warning.ID,
		)))
	}()
	return nil
}
