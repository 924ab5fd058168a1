package membership

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// SessionGateway adapts a discordgo session to the Gateway interface.
type SessionGateway struct {
	session *discordgo.Session
}

// NewSessionGateway wraps a discordgo session
func NewSessionGateway(session *discordgo.Session) *SessionGateway {
	return &SessionGateway{session: session}
}

// AddRole grants a role to a guild member
func (g *SessionGateway) AddRole(guildID, userID, roleID string) error {
	return g.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

// RemoveRole revokes a role from a guild member
func (g *SessionGateway) RemoveRole(guildID, userID, roleID string) error {
	return g.session.GuildMemberRoleRemove(guildID, userID, roleID)
}

// SendDM opens (or reuses) the member's DM channel and sends the embed
func (g *SessionGateway) SendDM(userID string, embed *discordgo.MessageEmbed) error {
	channel, err := g.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = g.session.ChannelMessageSendEmbed(channel.ID, embed)
	return err
}

// SendEmbed sends an embed to a guild channel
func (g *SessionGateway) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := g.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}

// GhostPing mentions the member in the channel and deletes the mention
// right after, leaving only the notification.
func (g *SessionGateway) GhostPing(channelID, userID string) error {
	msg, err := g.session.ChannelMessageSend(channelID, "<@"+userID+">")
	if err != nil {
		return err
	}

	go func() {
		time.Sleep(time.Second)
		_ = g.session.ChannelMessageDelete(channelID, msg.ID)
	}()
	return nil
}
