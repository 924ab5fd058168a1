// Package config provides configuration management for the bot and the
// community API service. It loads environment variables and makes them
// available throughout the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot and API service.
type Config struct {
	// Discord
	BotToken string
	GuildID  string

	// Community API
	APIBaseURL     string
	APIAccessToken string

	// Roles
	VerifiedRoleID   string
	UnverifiedRoleID string
	// SelfAssignableRoles maps emoji IDs to role IDs for the
	// react-for-roles channel.
	SelfAssignableRoles map[string]string

	// Channels
	VerificationChannelID    string
	SystemLogChannelID       string
	AnnouncementsChannelID   string
	CodeSubmissionsChannelID string
	SuggestionsChannelID     string
	ReactForRolesChannelID   string
	MemberCountChannelID     string

	// Developers allowed to run /dev commands
	DeveloperIDs []string

	// Messages
	MaxMessageLength int
	PasteServiceURL  string
	VerificationURL  string

	// MongoDB (API service)
	MongoDBURL string
	DBName     string

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server (API service)
	Port string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook string
	LogsWebhook  string
}

var (
	Version   = "Dev-Local"
	BuildTime = "unknown"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		// Discord
		BotToken: getEnv("botToken", ""),
		GuildID:  getEnv("guildId", ""),

		// Community API
		APIBaseURL:     getEnv("API_BASE_URL", "https://api.tortoisecommunity.org/private/"),
		APIAccessToken: getEnv("API_ACCESS_TOKEN", ""),

		// Roles
		VerifiedRoleID:      getEnv("verifiedRoleId", ""),
		UnverifiedRoleID:    getEnv("unverifiedRoleId", ""),
		SelfAssignableRoles: parsePairs(getEnv("selfAssignableRoles", "")),

		// Channels
		VerificationChannelID:    getEnv("verificationChannelId", ""),
		SystemLogChannelID:       getEnv("systemLogChannelId", ""),
		AnnouncementsChannelID:   getEnv("announcementsChannelId", ""),
		CodeSubmissionsChannelID: getEnv("codeSubmissionsChannelId", ""),
		SuggestionsChannelID:     getEnv("suggestionsChannelId", ""),
		ReactForRolesChannelID:   getEnv("reactForRolesChannelId", ""),
		MemberCountChannelID:     getEnv("memberCountChannelId", ""),

		// Developers
		DeveloperIDs: parseList(getEnv("developerIds", "")),

		// Messages
		MaxMessageLength: getEnvInt("maxMessageLength", 1200),
		PasteServiceURL:  getEnv("pasteServiceUrl", "https://paste.tortoisecommunity.org/"),
		VerificationURL:  getEnv("verificationUrl", "https://www.tortoisecommunity.org/verification/"),

		// MongoDB
		MongoDBURL: getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:     getEnv("dbName", "Tortoise"),

		// MQTT
		MQTTHost:     getEnv("MQTT_Host", "localhost"),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		// Web Server
		Port: getEnv("PORT", "8000"),

		// Environment
		Environment: getEnv("environment", "dev"),

		// Webhooks
		ErrorWebhook: getEnv("errorWebhook", ""),
		LogsWebhook:  getEnv("logsWebhook", ""),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// parsePairs parses "key=value,key=value" mappings, as used for the
// emoji-to-role table. Malformed entries are skipped.
func parsePairs(raw string) map[string]string {
	pairs := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
			continue
		}
		pairs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return pairs
}

// parseList parses a comma-separated list, dropping empty entries
func parseList(raw string) []string {
	var items []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			items = append(items, entry)
		}
	}
	return items
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// IsDeveloper returns true if the given user ID may run developer commands
func (c *Config) IsDeveloper(userID string) bool {
	for _, id := range c.DeveloperIDs {
		if id == userID {
			return true
		}
	}
	return false
}
