// Package main is the entry point for the Tortoise community API service.
// It exposes the private member, rule and suggestion endpoints the bot and
// the website consume.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/database"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
	"github.com/tortoise-community/tortoise-bot/pkg/mqtt"
	"github.com/tortoise-community/tortoise-bot/pkg/web"
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

	logger.System("Starting Tortoise community API...", "Main")

	// Initialize error handler
	errors.Init(cfg.ErrorWebhook, func() {
		if db := database.Get(); db != nil {
			_ = db.Disconnect()
		}
	})

	// Initialize database
	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
		// Continue without database, it will attempt to reconnect
	}
	defer func() {
		if db != nil {
			_ = db.Disconnect()
		}
	}()

	if db != nil {
		database.InitGlobalDataManagers(db)
	}

	// MQTT carries verification notifications to the bot
	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		"tortoise-api",
	)
	defer mqttClient.Destroy()

	// Initialize web server
	webServer := web.Init(cfg.LogsWebhook, cfg.APIAccessToken)
	web.SetupRoutes(webServer)
	webServer.StartAsync(cfg.Port)

	logger.Success("Tortoise community API started!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Shutting down Tortoise community API...", "Main")
}
