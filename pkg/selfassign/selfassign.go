// Package selfassign grants and revokes self-assignable roles from
// reactions in the react-for-roles channel. The emoji-to-role mapping
// comes from configuration.
package selfassign

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
)

// Gateway is the slice of the Discord session the assigner needs.
type Gateway interface {
	AddRole(guildID, userID, roleID string) error
	RemoveRole(guildID, userID, roleID string) error
	SendDM(userID string, embed *discordgo.MessageEmbed) error
}

// Assigner maps reactions in one channel to role grants.
type Assigner struct {
	gateway   Gateway
	channelID string
	roles     map[string]string // emoji ID -> role ID
	roleNames map[string]string // role ID -> display name, for the DM
	botUserID string
}

// NewAssigner creates an Assigner for the given react-for-roles channel
func NewAssigner(gateway Gateway, channelID string, roles map[string]string, botUserID string) *Assigner {
	return &Assigner{
		gateway:   gateway,
		channelID: channelID,
		roles:     roles,
		roleNames: make(map[string]string),
		botUserID: botUserID,
	}
}

// SetRoleName registers a display name for a role, used in the grant DM
func (a *Assigner) SetRoleName(roleID, name string) {
	a.roleNames[roleID] = name
}

// RoleFor resolves the role mapped to an emoji. Unmapped emojis in the
// react-for-roles channel are a configuration problem and get logged.
func (a *Assigner) RoleFor(emojiID string) (string, bool) {
	roleID, ok := a.roles[emojiID]
	if !ok {
		logger.Critical(fmt.Sprintf("No mapping for emoji %s in self-assignable roles", emojiID), "SelfAssign")
		return "", false
	}
	return roleID, true
}

// OnReactionAdd grants the mapped role and confirms it over DM. Reactions
// outside the react-for-roles channel and the bot's own reactions are
// ignored.
func (a *Assigner) OnReactionAdd(guildID, channelID, userID, emojiID string) error {
	if channelID != a.channelID || userID == a.botUserID {
		return nil
	}

	roleID, ok := a.RoleFor(emojiID)
	if !ok {
		return nil
	}

	if err := a.gateway.AddRole(guildID, userID, roleID); err != nil {
		return fmt.Errorf("assign role %s to %s: %w", roleID, userID, err)
	}

	name := a.roleNames[roleID]
	if name == "" {
		name = roleID
	}
	dm := embeds.Success(fmt.Sprintf("`%s` has been assigned to you in the Tortoise community.", name))
	if err := a.gateway.SendDM(userID, dm); err != nil {
		logger.Debug(fmt.Sprintf("Could not DM member %s: %v", userID, err), "SelfAssign")
	}
	return nil
}

// OnReactionRemove revokes the mapped role
func (a *Assigner) OnReactionRemove(guildID, channelID, userID, emojiID string) error {
	if channelID != a.channelID || userID == a.botUserID {
		return nil
	}

	roleID, ok := a.RoleFor(emojiID)
	if !ok {
		return nil
	}

	if err := a.gateway.RemoveRole(guildID, userID, roleID); err != nil {
		return fmt.Errorf("revoke role %s from %s: %w", roleID, userID, err)
	}
	return nil
}
