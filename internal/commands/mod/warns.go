package mod

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
)

// createWarnsCommand creates the /mod warns subcommand
func createWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"warns",
		"List the warnings of a member",
		"mod",
		warnsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to inspect",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

// warnsHandler handles the /mod warns command
func warnsHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		target := ctx.GetUserOption("member")
		if target == nil {
			ctx.ReplyEphemeralEmbed(embeds.Failure("You must specify a member."))
			return
		}

		apiCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		warnings, err := communityAPI.GetMemberWarnings(apiCtx, target.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Could not fetch warnings for %s: %v", target.ID, err), "Mod")
			ctx.ReplyEphemeralEmbed(embeds.Failure("Could not fetch the warnings, please try again later."))
			return
		}

		if len(warnings) == 0 {
			ctx.ReplyEphemeralEmbed(embeds.Success(fmt.Sprintf("**%s** has no warnings.", target.Username)))
			return
		}

		var sb strings.Builder
		for i, w := range warnings {
			sb.WriteString(fmt.Sprintf(
				"**%d.** %s\n`%s` by <@%s> on %s\n",
				i+1, w.Reason, w.ID, w.Mod, w.Date.Format("2006-01-02"),
			))
		}

		ctx.ReplyEphemeralEmbed(embeds.Info(sb.String(), fmt.Sprintf("Warnings for %s (%d)", target.Username, len(warnings))))
	}()
	return nil
}
