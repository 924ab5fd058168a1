package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
	"github.com/tortoise-community/tortoise-bot/pkg/models"
	"github.com/tortoise-community/tortoise-bot/pkg/rules"
)

// createRuleCommand creates the /rule command
func createRuleCommand() *discord.Command {
	return discord.NewCommand(
		"rule",
		"Show a community rule by number or alias",
		"server",
		ruleHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "rule",
			Description:  "Rule number or alias",
			Required:     true,
			Autocomplete: true,
		},
	).WithAutoComplete(ruleAutoComplete)
}

// ruleHandler handles the /rule command
func ruleHandler(ctx *discord.CommandContext) error {
	query := strings.TrimSpace(ctx.GetStringOption("rule"))

	rule, ok := lookupRule(query)
	if !ok {
		return ctx.ReplyEphemeralEmbed(embeds.Failure(fmt.Sprintf("No rule found for `%s`.", query)))
	}

	return ctx.ReplyEmbed(embeds.Info(rule.Statement, fmt.Sprintf("Rule %d", rule.Number)))
}

// lookupRule resolves a rule by number first, then by alias
func lookupRule(query string) (models.Rule, bool) {
	cache := rules.Get()
	if number, err := strconv.Atoi(query); err == nil {
		if rule, ok := cache.ByNumber(number); ok {
			return rule, true
		}
	}
	return cache.ByAlias(query)
}

// ruleAutoComplete suggests rule aliases while the member is typing
func ruleAutoComplete(ctx *discord.CommandContext) {
	go func() {
		defer errors.RecoverMiddleware()()

		typed := ctx.GetStringOption("rule")
		choices := ruleChoices(rules.Get().All(), typed)

		err := ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionApplicationCommandAutocompleteResult,
			Data: &discordgo.InteractionResponseData{Choices: choices},
		})
		if err != nil {
			logger.Error(fmt.Sprintf("Could not send rule suggestions: %v", err), "Rule")
		}
	}()
}

// ruleChoices builds the autocomplete choices matching the typed text.
// Choice values must be strings for a string option; the rule number is
// used since ruleHandler resolves numbers first.
func ruleChoices(all []models.Rule, typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(strings.TrimSpace(typed))

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 25)
	for _, rule := range all {
		label := fmt.Sprintf("%d - %s", rule.Number, strings.Join(rule.Alias, ", "))
		if typed != "" && !strings.Contains(strings.ToLower(label), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  label,
			Value: strconv.Itoa(rule.Number),
		})
		if len(choices) == 25 {
			break
		}
	}
	return choices
}
