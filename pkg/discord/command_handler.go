// Package discord provides the command handler for loading and registering commands.
package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
)

// CommandHandler manages command loading and registration
type CommandHandler struct {
	client           *ExtendedClient
	slashCommands    []*discordgo.ApplicationCommand
	slashCommandsDev []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:           client,
		slashCommands:    make([]*discordgo.ApplicationCommand, 0),
		slashCommandsDev: make([]*discordgo.ApplicationCommand, 0),
	}
}

// RegisterCommand adds a command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.client.Commands.Set(cmd.Name, cmd)

	appCmd := cmd.ToApplicationCommand()

	if cmd.IsDev {
		ch.slashCommandsDev = append(ch.slashCommandsDev, appCmd)
	} else {
		ch.slashCommands = append(ch.slashCommands, appCmd)
	}

	logger.Debug("Command registered: "+cmd.Name, "CommandHandler")
}

// BuildCommandGroup creates a command group with subcommands. Subcommands
// are keyed as "group.sub" so the interaction dispatcher can find them.
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)

		opt := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		}
		options = append(options, opt)
	}

	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// RegisterCommands registers all slash commands with Discord. Regular
// commands are scoped to the home guild so they appear instantly; dev
// commands go to the same guild but stay gated behind the developer check.
func (ch *CommandHandler) RegisterCommands() {
	cfg := config.Get()

	logger.Info("Registering guild commands...", "CommandHandler")

	for _, cmd := range ch.slashCommands {
		_, err := ch.client.Session.ApplicationCommandCreate(
			ch.client.Session.State.User.ID,
			cfg.GuildID,
			cmd,
		)
		if err != nil {
			logger.Error("Error registering command "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}

	logger.Success("Guild commands registered.", "CommandHandler")

	if len(ch.slashCommandsDev) > 0 {
		logger.Info("Registering developer commands...", "CommandHandler")

		for _, cmd := range ch.slashCommandsDev {
			_, err := ch.client.Session.ApplicationCommandCreate(
				ch.client.Session.State.User.ID,
				cfg.GuildID,
				cmd,
			)
			if err != nil {
				logger.Error("Error registering developer command "+cmd.Name+": "+err.Error(), "CommandHandler")
			}
		}

		logger.Success("Developer commands registered.", "CommandHandler")
	}
}

// UnregisterCommands removes all registered commands from Discord
func (ch *CommandHandler) UnregisterCommands() error {
	cfg := config.Get()

	commands, err := ch.client.Session.ApplicationCommands(ch.client.Session.State.User.ID, cfg.GuildID)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		err := ch.client.Session.ApplicationCommandDelete(ch.client.Session.State.User.ID, cfg.GuildID, cmd.ID)
		if err != nil {
			logger.Error("Error deleting command "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}

	logger.Success("Guild commands removed.", "CommandHandler")
	return nil
}

// ListCommands returns the commands currently registered with Discord for
// the home guild
func (ch *CommandHandler) ListCommands() ([]*discordgo.ApplicationCommand, error) {
	cfg := config.Get()
	return ch.client.Session.ApplicationCommands(ch.client.Session.State.User.ID, cfg.GuildID)
}

// SyncCommands removes stale commands from Discord and registers the
// currently defined ones
func (ch *CommandHandler) SyncCommands() error {
	cfg := config.Get()

	existing, err := ch.ListCommands()
	if err != nil {
		return err
	}

	desired := make(map[string]bool, len(ch.slashCommands)+len(ch.slashCommandsDev))
	for _, cmd := range ch.slashCommands {
		desired[cmd.Name] = true
	}
	for _, cmd := range ch.slashCommandsDev {
		desired[cmd.Name] = true
	}

	for _, cmd := range existing {
		if desired[cmd.Name] {
			continue
		}
		logger.Info("Removing stale command: "+cmd.Name, "CommandHandler")
		if err := ch.client.Session.ApplicationCommandDelete(ch.client.Session.State.User.ID, cfg.GuildID, cmd.ID); err != nil {
			logger.Error("Error deleting stale command "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}

	ch.RegisterCommands()
	return nil
}

// AddGlobalCommand adds a command to the global command list
func (ch *CommandHandler) AddGlobalCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommands = append(ch.slashCommands, cmd)
}

// AddDevCommand adds a command to the dev command list
func (ch *CommandHandler) AddDevCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommandsDev = append(ch.slashCommandsDev, cmd)
}
