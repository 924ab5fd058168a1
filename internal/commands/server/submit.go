package server

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
)

// submitTimeout is how long the bot waits for the submission DM
const submitTimeout = 300 * time.Second

// createSubmitCommand creates the /submit command
func createSubmitCommand() *discord.Command {
	return discord.NewCommand(
		"submit",
		"Submit your code challenge solution over DM",
		"server",
		submitHandler,
	)
}

// submitHandler collects a code submission over DM and forwards it to the
// code submissions channel. The member has five minutes to answer.
func submitHandler(ctx *discord.CommandContext) error {
	user := ctx.User()

	dmChannel, err := ctx.Session.UserChannelCreate(user.ID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(embeds.Failure("I could not DM you. Please enable direct messages and try again."))
	}

	if err := ctx.ReplyEphemeralEmbed(embeds.Success("Check your DMs!")); err != nil {
		return err
	}

	prompt := embeds.Info(
		"Reply to this message with your code submission.\nYou have 5 minutes.",
		"Code submission",
	)
	if _, err := ctx.Session.ChannelMessageSendEmbed(dmChannel.ID, prompt); err != nil {
		logger.Error(fmt.Sprintf("Could not send submission prompt to %s: %v", user.ID, err), "Submit")
		return nil
	}

	go waitForSubmission(ctx.Session, dmChannel.ID, user)
	return nil
}

// waitForSubmission blocks on the member's next DM, then forwards it
func waitForSubmission(s *discordgo.Session, dmChannelID string, user *discordgo.User) {
	defer errors.RecoverMiddleware()()

	received := make(chan *discordgo.Message, 1)
	remove := s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.ChannelID != dmChannelID || m.Author == nil || m.Author.ID != user.ID {
			return
		}
		select {
		case received <- m.Message:
		default:
		}
	})
	defer remove()

	select {
	case msg := <-received:
		forwardSubmission(s, user, msg.Content)
	case <-time.After(submitTimeout):
		timeoutEmbed := embeds.Warning("Your code submission timed out. Run `/submit` again when you are ready.")
		if _, err := s.ChannelMessageSendEmbed(dmChannelID, timeoutEmbed); err != nil {
			logger.Debug(fmt.Sprintf("Could not notify %s about submission timeout: %v", user.ID, err), "Submit")
		}
	}
}

// forwardSubmission posts the submission in the code submissions channel
func forwardSubmission(s *discordgo.Session, user *discordgo.User, content string) {
	cfg := config.Get()

	embed := embeds.Info(content, fmt.Sprintf("Submission from %s", user.Username))
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("128")}

	if _, err := s.ChannelMessageSendEmbed(cfg.CodeSubmissionsChannelID, embed); err != nil {
		logger.Error(fmt.Sprintf("Could not forward submission from %s: %v", user.ID, err), "Submit")
		return
	}

	dmChannel, err := s.UserChannelCreate(user.ID)
	if err != nil {
		return
	}
	confirm := embeds.Success("Submission received, thank you for participating!")
	if _, err := s.ChannelMessageSendEmbed(dmChannel.ID, confirm); err != nil {
		logger.Debug(fmt.Sprintf("Could not confirm submission to %s: %v", user.ID, err), "Submit")
	}
}
