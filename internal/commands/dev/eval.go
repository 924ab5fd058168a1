package dev

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/discord"
	"github.com/tortoise-community/tortoise-bot/pkg/errors"
	"github.com/tortoise-community/tortoise-bot/pkg/logger"
	"github.com/tortoise-community/tortoise-bot/pkg/rules"
)

// createEvalCommand creates the /dev eval subcommand
func createEvalCommand() *discord.Command {
	return discord.NewCommand(
		"eval",
		"Evaluate a Go expression inside the running bot",
		"dev",
		evalHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "code",
			Description: "Go code or expression to evaluate",
			Required:    true,
		},
	).AsDev()
}

// evalHandler runs the given code in a yaegi interpreter with the bot's
// context, session, config and API client injected.
func evalHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		start := time.Now()

		// Compiling the script can take a moment
		ctx.Defer()

		code := ctx.GetStringOption("code")
		code = strings.TrimPrefix(code, "```go")
		code = strings.TrimPrefix(code, "```")
		code = strings.TrimSuffix(code, "```")
		code = strings.TrimSpace(code)

		i := interp.New(interp.Options{})

		if err := i.Use(stdlib.Symbols); err != nil {
			ctx.EditReply(fmt.Sprintf("Error loading stdlib: %v", err))
			return
		}

		// Expose the bot internals as globals in the evaluated code
		botExports := map[string]reflect.Value{
			"Ctx":     reflect.ValueOf(ctx),
			"Bot":     reflect.ValueOf(ctx.Client),
			"Session": reflect.ValueOf(ctx.Session),
			"Config":  reflect.ValueOf(config.Get()),
			"API":     reflect.ValueOf(communityAPI),
			"Rules":   reflect.ValueOf(rules.Get()),
		}

		if err := i.Use(interp.Exports{
			"github.com/tortoise-community/tortoise-bot/internal/commands/dev/dev": botExports,
		}); err != nil {
			ctx.EditReply(fmt.Sprintf("Error registering bot symbols: %v", err))
			return
		}

		if _, err := i.Eval(`import . "github.com/tortoise-community/tortoise-bot/internal/commands/dev"`); err != nil {
			ctx.EditReply(fmt.Sprintf("Error importing bot symbols: %v", err))
			return
		}

		res, err := i.Eval(code)

		var output string
		if err != nil {
			output = fmt.Sprintf("**Execution error:**\n```go\n%v\n```", err)
		} else {
			var resStr string
			if res.IsValid() {
				resStr = fmt.Sprintf("%#v", res.Interface())
			} else {
				resStr = "nil"
			}
			if len(resStr) > 1900 {
				resStr = resStr[:1900] + "... (truncated)"
			}
			output = fmt.Sprintf("**Result:**\n```go\n%s\n```", resStr)
		}

		logger.Debug(fmt.Sprintf("Eval finished in %s", time.Since(start)), "DevEval")
		ctx.EditReply(output)
	}()
	return nil
}
