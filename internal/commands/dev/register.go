// Package dev provides developer-only commands, grouped under /dev.
// They never register outside the home guild and are gated behind the
// configured developer IDs.
package dev

import (
	"github.com/tortoise-community/tortoise-bot/pkg/api"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
)

// communityAPI is shared by the handlers in this package
var communityAPI *api.Client

// Register registers all dev commands as /dev subcommands (eval, refresh-rules)
func Register(client *discord.ExtendedClient, apiClient *api.Client) {
	communityAPI = apiClient

	evalCmd := createEvalCommand()
	refreshCmd := createRefreshCommand()

	devGroup := client.CommandHandler.BuildCommandGroup(
		"dev",
		"Developer commands",
		evalCmd,
		refreshCmd,
	)

	client.CommandHandler.AddDevCommand(devGroup)
}
