// Package tasks runs the bot's recurring background jobs on a cron schedule.
package tasks

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"

	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
)

// Scheduler owns the cron runner and the jobs it drives
type Scheduler struct {
	cron    *cron.Cron
	session *discordgo.Session
}

// NewScheduler creates a Scheduler for the given session
func NewScheduler(session *discordgo.Session) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		session: session,
	}
}

// Start registers and starts the recurring jobs
func (sc *Scheduler) Start() error {
	if _, err := sc.cron.AddFunc("@every 5m", sc.updateMemberCount); err != nil {
		return fmt.Errorf("schedule member count update: %w", err)
	}

	sc.cron.Start()
	logger.System("Background tasks scheduled", "Tasks")
	return nil
}

// Stop stops the cron runner, waiting for running jobs to finish
func (sc *Scheduler) Stop() {
	ctx := sc.cron.Stop()
	<-ctx.Done()
	logger.System("Background tasks stopped", "Tasks")
}

// updateMemberCount renames the member-count channel to the current count
func (sc *Scheduler) updateMemberCount() {
	defer errors.RecoverMiddleware()()

	cfg := config.Get()
	if cfg.MemberCountChannelID == "" {
		return
	}

	guild, err := sc.session.State.Guild(cfg.GuildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("Could not read guild state: %v", err), "Tasks")
		return
	}

	name := memberCountName(guild.MemberCount)
	if _, err := sc.session.ChannelEdit(cfg.MemberCountChannelID, &discordgo.ChannelEdit{Name: name}); err != nil {
		logger.Error(fmt.Sprintf("Could not rename member count channel: %v", err), "Tasks")
	}
}

// memberCountName formats the member-count channel name
func memberCountName(count int) string {
	return fmt.Sprintf("Member count %d", count)
}
