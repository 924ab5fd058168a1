// Package utils provides utility commands, grouped under /utils.
package utils

import (
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
)

// Register registers all utility commands as /utils subcommands
func Register(client *discord.ExtendedClient) {
	pingCmd := createPingCommand()
	statsCmd := createStatsCommand()

	utilsGroup := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Utility commands",
		pingCmd,
		statsCmd,
	)

	client.CommandHandler.AddGlobalCommand(utilsGroup)
}
