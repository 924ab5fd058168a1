package events

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
	"github.com/tortoise-community/tortoise-bot/pkg/mqtt"
)

// memberEventTimeout bounds the API round-trips a single gateway event may take
const memberEventTimeout = 30 * time.Second

// RegisterMemberEvents registers all member-related event handlers
func RegisterMemberEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnGuildMemberAdd(onGuildMemberAdd)
	client.EventHandler.OnGuildMemberRemove(onGuildMemberRemove)
	client.EventHandler.OnGuildMemberUpdate(onGuildMemberUpdate)
}

// onGuildMemberAdd is called when a member joins the server
func onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User.Bot {
		return
	}

	go func() {
		defer errors.RecoverMiddleware()()

		ctx, cancel := context.WithTimeout(context.Background(), memberEventTimeout)
		defer cancel()

		if err := membershipHandler.OnMemberJoin(ctx, m.User.ID, m.User.Username, m.User.Discriminator); err != nil {
			logger.Error(fmt.Sprintf("Member join flow failed for %s: %v", m.User.ID, err), "Member")
			if h := errors.Get(); h != nil {
				h.IncrementError()
			}
			return
		}

		if mc := mqtt.Get(); mc != nil {
			mc.PublishEvent("member_join", map[string]interface{}{"user_id": m.User.ID})
		}
	}()
}

// onGuildMemberRemove is called when a member leaves the server
func onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User.Bot {
		return
	}

	go func() {
		defer errors.RecoverMiddleware()()

		ctx, cancel := context.WithTimeout(context.Background(), memberEventTimeout)
		defer cancel()

		if err := membershipHandler.OnMemberLeave(ctx, m.User.ID); err != nil {
			logger.Error(fmt.Sprintf("Member leave flow failed for %s: %v", m.User.ID, err), "Member")
			if h := errors.Get(); h != nil {
				h.IncrementError()
			}
			return
		}

		if mc := mqtt.Get(); mc != nil {
			mc.PublishEvent("member_leave", map[string]interface{}{"user_id": m.User.ID})
		}
	}()
}

// onGuildMemberUpdate persists role changes so they can be restored on rejoin
func onGuildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.User.Bot {
		return
	}

	var beforeRoles []string
	if m.BeforeUpdate != nil {
		beforeRoles = m.BeforeUpdate.Roles
	}
	afterRoles := m.Roles

	go func() {
		defer errors.RecoverMiddleware()()

		ctx, cancel := context.WithTimeout(context.Background(), memberEventTimeout)
		defer cancel()

		if err := membershipHandler.OnMemberUpdate(ctx, m.User.ID, beforeRoles, afterRoles); err != nil {
			logger.Error(fmt.Sprintf("Persisting role update failed for %s: %v", m.User.ID, err), "Member")
		}
	}()
}
