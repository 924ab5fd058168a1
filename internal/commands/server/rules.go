package server

import (
	"fmt"
	"strings"

	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/rules"
)

// createRulesCommand creates the /rules command
func createRulesCommand() *discord.Command {
	return discord.NewCommand(
		"rules",
		"Show all community rules",
		"server",
		rulesHandler,
	)
}

// rulesHandler handles the /rules command
func rulesHandler(ctx *discord.CommandContext) error {
	all := rules.Get().All()
	if len(all) == 0 {
		return ctx.ReplyEphemeralEmbed(embeds.Failure("Rules are not loaded yet, try again in a moment."))
	}

	var sb strings.Builder
	for _, rule := range all {
		sb.WriteString(fmt.Sprintf("**%d.** %s\n", rule.Number, rule.Statement))
	}

	return ctx.ReplyEmbed(embeds.Info(sb.String(), "Tortoise Community Rules"))
}
