package server

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
)

// createSendCommand creates the /send command
func createSendCommand() *discord.Command {
	return discord.NewCommand(
		"send",
		"Send a message through the bot to a channel",
		"server",
		sendHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "channel",
			Description: "Channel to send the message to",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "message",
			Description: "Message to send",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionManageMessages)
}

// sendHandler handles the /send command
func sendHandler(ctx *discord.CommandContext) error {
	channel := ctx.GetChannelOption("channel")
	message := ctx.GetStringOption("message")

	if channel == nil {
		return ctx.ReplyEphemeralEmbed(embeds.Failure("You must specify a channel."))
	}

	if _, err := ctx.Session.ChannelMessageSend(channel.ID, message); err != nil {
		return ctx.ReplyEphemeralEmbed(embeds.Failure(fmt.Sprintf("Could not send the message: %v", err)))
	}

	return ctx.ReplyEphemeralEmbed(embeds.Success(fmt.Sprintf("Message sent to <#%s>.", channel.ID)))
}
