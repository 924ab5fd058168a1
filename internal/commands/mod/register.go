// Package mod provides the moderation commands, grouped under /mod.
package mod

import (
	"github.com/tortoise-community/tortoise-bot/pkg/api"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
)

// communityAPI is shared by the handlers in this package
var communityAPI *api.Client

// Register registers all moderation commands as /mod subcommands
func Register(client *discord.ExtendedClient, apiClient *api.Client) {
	communityAPI = apiClient

	warnCmd := createWarnCommand()
	warnsCmd := createWarnsCommand()
	removeWarnCmd := createRemoveWarnCommand()

	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Moderation commands",
		warnCmd,
		warnsCmd,
		removeWarnCmd,
	)

	client.CommandHandler.AddGlobalCommand(modGroup)
}
