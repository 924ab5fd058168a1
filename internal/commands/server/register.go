// Package server provides the community-facing commands of the Tortoise guild.
package server

import (
	"github.com/tortoise-community/tortoise-bot/pkg/api"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
)

// communityAPI is shared by the handlers in this package
var communityAPI *api.Client

// Register registers all community commands
func Register(client *discord.ExtendedClient, apiClient *api.Client) {
	communityAPI = apiClient

	client.CommandHandler.RegisterCommand(createRuleCommand())
	client.CommandHandler.RegisterCommand(createRulesCommand())
	client.CommandHandler.RegisterCommand(createSuggestCommand())
	client.CommandHandler.RegisterCommand(createSubmitCommand())
	client.CommandHandler.RegisterCommand(createSendCommand())
}
