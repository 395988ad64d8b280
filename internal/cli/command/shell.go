package command

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/gamesvc-go/internal/cli/repl"
	"github.com/yndnr/gamesvc-go/internal/config"
)

// ShellCommand runs commands interactively against one set of services.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Interactive mode; services stay open between commands",
		Action: func(c *cli.Context) error {
			env, err := openEnv(c)
			if err != nil {
				return err
			}

			if path := c.String("config"); path != "" {
				w, err := config.Watch(path, env.overrides, env.log, env.manager.Apply)
				if err != nil {
					env.log.Warn("configuration will not reload", "error", err)
				} else {
					env.hooks.OnClose("config watcher", w.Stop)
				}
			}

			// Lines run as nested apps whose After hooks must leave env
			// open; the shell's own After closes it.
			env.shared = true
			defer func() { env.shared = false }()

			r := repl.New(shellExecutor(c, env),
				repl.WithIO(c.App.Reader, stdout(c)),
				repl.WithHistory(repl.NewHistory(env.historyFile(), 0)),
			)
			return r.Run(c.Context)
		},
	}
}

// shellExecutor runs a line as a fresh app invocation sharing env. Global
// flags on the line only affect output.
func shellExecutor(parent *cli.Context, env *environment) repl.Executor {
	return func(ctx context.Context, args []string) error {
		app := App()
		app.Commands = shellCommands(app.Commands)
		app.Writer = parent.App.Writer
		app.ErrWriter = parent.App.ErrWriter
		app.Reader = parent.App.Reader
		app.Metadata = map[string]any{envKey: env}
		app.HideVersion = true
		return app.RunContext(ctx, append([]string{app.Name}, args...))
	}
}

// shellCommands drops the commands that make no sense inside the shell.
func shellCommands(cmds []*cli.Command) []*cli.Command {
	var out []*cli.Command
	for _, cmd := range cmds {
		if cmd.Name != "shell" {
			out = append(out, cmd)
		}
	}
	return out
}
