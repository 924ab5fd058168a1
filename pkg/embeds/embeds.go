// Package embeds builds the message embeds the bot sends, with one
// consistent palette across commands, events and DMs.
package embeds

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Embed colors
const (
	ColorSuccess = 0x00FF00
	ColorWarning = 0xFFFF00
	ColorFailure = 0xFF0000
	ColorInfo    = 0x3498DB
	ColorWelcome = 0x1ABC9C
)

const footerText = "Tortoise Community"

// Success builds a green embed for confirmations
func Success(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: message,
		Color:       ColorSuccess,
	}
}

// Warning builds a yellow embed for non-fatal notices
func Warning(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: message,
		Color:       ColorWarning,
	}
}

// Failure builds a red embed for errors shown to users
func Failure(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: message,
		Color:       ColorFailure,
	}
}

// Info builds a blue embed with an optional title
func Info(message, title string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: message,
		Color:       ColorInfo,
	}
}

// Welcome builds the embed posted to the system log when members join,
// rejoin or return.
func Welcome(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: message,
		Color:       ColorWelcome,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// Footer builds an embed carrying the community footer, used for DMs
func Footer(message, title string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: message,
		Color:       ColorWelcome,
		Footer: &discordgo.MessageEmbedFooter{
			Text: footerText,
		},
	}
}
