package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

// TestCommandCreation verifies that commands can be created with the builder pattern
func TestCommandCreation(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("rule", "Show a rule", "server", handler)

	if cmd == nil {
		t.Fatal("NewCommand returned nil")
	}

	if cmd.Name != "rule" {
		t.Errorf("Name = %v, want %v", cmd.Name, "rule")
	}

	if cmd.Description != "Show a rule" {
		t.Errorf("Description = %v, want %v", cmd.Description, "Show a rule")
	}

	if cmd.Category != "server" {
		t.Errorf("Category = %v, want %v", cmd.Category, "server")
	}

	if cmd.Run == nil {
		t.Error("Run function is nil")
	}
}

// TestCommandWithOptions verifies the WithOptions builder method
func TestCommandWithOptions(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "alias",
		Description: "Rule number or alias",
		Required:    true,
	}

	cmd := NewCommand("rule", "Show a rule", "server", handler).
		WithOptions(option)

	if cmd.Options == nil {
		t.Fatal("Options is nil")
	}

	if len(cmd.Options) != 1 {
		t.Fatalf("Options length = %v, want %v", len(cmd.Options), 1)
	}

	if cmd.Options[0].Name != "alias" {
		t.Errorf("Option name = %v, want %v", cmd.Options[0].Name, "alias")
	}
}

// TestCommandWithPermissions verifies the permission builder methods
func TestCommandWithPermissions(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("send", "Send a message", "server", handler).
		WithUserPermissions(discordgo.PermissionManageMessages).
		WithBotPermissions(discordgo.PermissionSendMessages)

	if cmd.UserPermissions != discordgo.PermissionManageMessages {
		t.Errorf("UserPermissions = %v, want %v", cmd.UserPermissions, discordgo.PermissionManageMessages)
	}

	if cmd.BotPermissions != discordgo.PermissionSendMessages {
		t.Errorf("BotPermissions = %v, want %v", cmd.BotPermissions, discordgo.PermissionSendMessages)
	}
}

// TestCommandAsDev verifies the AsDev builder method
func TestCommandAsDev(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("eval", "Evaluate code", "dev", handler).AsDev()

	if !cmd.IsDev {
		t.Error("IsDev should be true after calling AsDev()")
	}
}

// TestToApplicationCommand verifies conversion to Discord application command
func TestToApplicationCommand(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "suggestion",
		Description: "Your suggestion",
		Required:    true,
	}

	cmd := NewCommand("suggest", "Make a suggestion", "server", handler).
		WithOptions(option)

	appCmd := cmd.ToApplicationCommand()

	if appCmd == nil {
		t.Fatal("ToApplicationCommand returned nil")
	}

	if appCmd.Name != "suggest" {
		t.Errorf("ApplicationCommand Name = %v, want %v", appCmd.Name, "suggest")
	}

	if appCmd.Description != "Make a suggestion" {
		t.Errorf("ApplicationCommand Description = %v, want %v", appCmd.Description, "Make a suggestion")
	}

	if len(appCmd.Options) != 1 {
		t.Fatalf("ApplicationCommand Options length = %v, want %v", len(appCmd.Options), 1)
	}
}

// TestCommandNameFor verifies subcommand name resolution for dispatching
func TestCommandNameFor(t *testing.T) {
	plain := discordgo.ApplicationCommandInteractionData{Name: "ping"}
	if got := commandNameFor(plain); got != "ping" {
		t.Errorf("commandNameFor(plain) = %v, want ping", got)
	}

	sub := discordgo.ApplicationCommandInteractionData{
		Name: "mod",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "warn", Type: discordgo.ApplicationCommandOptionSubCommand},
		},
	}
	if got := commandNameFor(sub); got != "mod.warn" {
		t.Errorf("commandNameFor(sub) = %v, want mod.warn", got)
	}

	group := discordgo.ApplicationCommandInteractionData{
		Name: "dev",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{
				Name: "cache",
				Type: discordgo.ApplicationCommandOptionSubCommandGroup,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "refresh", Type: discordgo.ApplicationCommandOptionSubCommand},
				},
			},
		},
	}
	if got := commandNameFor(group); got != "dev.cache.refresh" {
		t.Errorf("commandNameFor(group) = %v, want dev.cache.refresh", got)
	}
}

// TestCommandCollection verifies the thread-safe command store
func TestCommandCollection(t *testing.T) {
	cc := NewCommandCollection()

	cmd := NewCommand("ping", "Ping the bot", "utils", func(ctx *CommandContext) error { return nil })
	cc.Set("ping", cmd)

	got, ok := cc.Get("ping")
	if !ok || got != cmd {
		t.Fatal("Get() should return the stored command")
	}

	if _, ok := cc.Get("missing"); ok {
		t.Error("Get() should miss for unknown names")
	}

	if cc.Size() != 1 {
		t.Errorf("Size() = %v, want 1", cc.Size())
	}

	all := cc.All()
	if len(all) != 1 || all["ping"] != cmd {
		t.Errorf("All() = %v", all)
	}
}
