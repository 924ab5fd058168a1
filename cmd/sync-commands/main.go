// Package main provides a utility to sync Discord slash commands.
// It removes stale commands from Discord and ensures only currently-defined
// commands are registered.
//
// Usage:
//
//	go run cmd/sync-commands/main.go [options]
//
// Options:
//
//	-list   List all registered commands
//	-clean  Remove all commands without registering new ones
//	-sync   Sync commands (remove stale, register current) - default behavior
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tortoise-community/tortoise-bot/internal/commands"
	"github.com/tortoise-community/tortoise-bot/pkg/api"
	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
)

func main() {
	listCmd := flag.Bool("list", false, "List all registered commands")
	cleanCmd := flag.Bool("clean", false, "Remove all commands without registering new ones")
	syncCmd := flag.Bool("sync", false, "Sync commands (remove stale, register current)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Starting command sync utility...", "SyncCommands")

	// Initialize Discord client
	client, err := discord.NewClient(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "SyncCommands")
		os.Exit(1)
	}

	if err := client.Session.Open(); err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to Discord: %v", err), "SyncCommands")
		os.Exit(1)
	}
	defer client.Session.Close()

	logger.Success("Connected to Discord", "SyncCommands")

	// Register commands locally so we know what we should have
	apiClient := api.NewClient(cfg.APIBaseURL, cfg.APIAccessToken)
	commands.RegisterAll(client, apiClient)

	switch {
	case *listCmd:
		listCommands(client)
	case *cleanCmd:
		cleanCommands(client)
	case *syncCmd:
		syncCommands(client)
	default:
		syncCommands(client)
	}

	logger.Success("Operation completed", "SyncCommands")
}

// listCommands lists all commands registered with Discord
func listCommands(client *discord.ExtendedClient) {
	logger.Info("Listing registered commands...", "SyncCommands")

	cmds, err := client.CommandHandler.ListCommands()
	if err != nil {
		logger.Error(fmt.Sprintf("Error fetching commands: %v", err), "SyncCommands")
		return
	}

	if len(cmds) == 0 {
		logger.Info("No commands registered", "SyncCommands")
		return
	}

	logger.Info(fmt.Sprintf("Commands found: %d", len(cmds)), "SyncCommands")
	for i, cmd := range cmds {
		logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), "SyncCommands")
	}
}

// cleanCommands removes all commands from Discord
func cleanCommands(client *discord.ExtendedClient) {
	logger.Info("Removing all commands...", "SyncCommands")

	if err := client.CommandHandler.UnregisterCommands(); err != nil {
		logger.Error(fmt.Sprintf("Error removing commands: %v", err), "SyncCommands")
		return
	}

	logger.Success("All commands removed", "SyncCommands")
}

// syncCommands removes stale commands and registers current ones
func syncCommands(client *discord.ExtendedClient) {
	logger.Info("Syncing commands...", "SyncCommands")

	if err := client.CommandHandler.SyncCommands(); err != nil {
		logger.Error(fmt.Sprintf("Error syncing commands: %v", err), "SyncCommands")
		return
	}

	logger.Success("Commands synced", "SyncCommands")
}
