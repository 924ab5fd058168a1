// Package main is the entry point for the Tortoise community bot.
// It initializes all systems and starts the Discord client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tortoise-community/tortoise-bot/internal/commands"
	"github.com/tortoise-community/tortoise-bot/internal/events"
	"github.com/tortoise-community/tortoise-bot/internal/tasks"
	"github.com/tortoise-community/tortoise-bot/pkg/api"
	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
	"github.com/tortoise-community/tortoise-bot/pkg/mqtt"
	"github.com/tortoise-community/tortoise-bot/pkg/rules"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Starting Tortoise bot...", "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				return
			}
		}
	})

	// Community API client
	apiClient := api.NewClient(cfg.APIBaseURL, cfg.APIAccessToken)

	// Initialize rules cache at startup and start auto-refresh
	rulesCache := rules.Init(apiClient)
	refreshCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := rulesCache.Refresh(refreshCtx); err != nil {
		logger.Warn(fmt.Sprintf("Could not load rules at startup: %v", err), "Main")
	}
	cancel()
	rulesCache.StartAutoRefresh(24 * time.Hour)
	defer rulesCache.StopAutoRefresh()

	// Initialize MQTT
	mqttClientID := "tortoise-bot"
	if !cfg.IsProd() {
		mqttClientID = "tortoise-bot_canary"
	}

	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
	)
	defer mqttClient.Destroy()

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Register commands and events
	commands.RegisterAll(discordClient, apiClient)
	events.RegisterAll(discordClient, apiClient)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		_ = discordClient.Stop()
	}()

	// Background tasks need the live session
	scheduler := tasks.NewScheduler(discordClient.Session)
	if err := scheduler.Start(); err != nil {
		logger.Error(fmt.Sprintf("Error starting background tasks: %v", err), "Main")
	} else {
		defer scheduler.Stop()
	}

	logger.Success("Tortoise bot started!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Shutting down Tortoise bot...", "Main")
}
