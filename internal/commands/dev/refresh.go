package dev

import (
	"context"
	"fmt"
	"time"

	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/embeds"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/rules"
)

// createRefreshCommand creates the /dev refresh subcommand
func createRefreshCommand() *discord.Command {
	return discord.NewCommand(
		"refresh-rules",
		"Refresh the rules cache from the community API",
		"dev",
		refreshHandler,
	).AsDev()
}

// refreshHandler forces a rules cache refresh outside the daily schedule
func refreshHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		apiCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		cache := rules.Get()
		if err := cache.Refresh(apiCtx); err != nil {
			ctx.ReplyEphemeralEmbed(embeds.Failure(fmt.Sprintf("Rules refresh failed: %v", err)))
			return
		}

		ctx.ReplyEphemeralEmbed(embeds.Success(fmt.Sprintf("Rules cache refreshed, %d rules loaded.", cache.Size())))
	}()
	return nil
}
