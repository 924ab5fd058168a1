// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (server, mod, utils, dev).
package commands

import (
	"github.com/tortoise-community/tortoise-bot/internal/commands/dev"
	"github.com/tortoise-community/tortoise-bot/internal/commands/mod"
	"github.com/tortoise-community/tortoise-bot/internal/commands/server"
	"github.com/tortoise-community/tortoise-bot/internal/commands/utils"
	"github.com/tortoise-community/tortoise-bot/pkg/api"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, apiClient *api.Client) {
	// Community commands (/rule, /rules, /suggest, /submit, /send)
	server.Register(client, apiClient)

	// Moderation commands (/mod warn, /mod warns, /mod removewarn)
	mod.Register(client, apiClient)

	// Utility commands (/utils ping, /utils stats)
	utils.Register(client)

	// Developer commands (/dev eval, /dev refresh)
	dev.Register(client, apiClient)
}
