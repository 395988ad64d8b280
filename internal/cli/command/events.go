package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// EventsCommand groups the event counter operations.
func EventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Game event counters",
		Subcommands: []*cli.Command{
			{
				Name:      "increment",
				Usage:     "Add steps to an event counter",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Aliases: []string{"n"}, Value: 1, Usage: "Steps to add"},
				},
				Action: func(c *cli.Context) error {
					id, err := argument(c, 0, "ID")
					if err != nil {
						return err
					}
					ev, err := events(c)
					if err != nil {
						return err
					}
					if err := ev.Increment(c.Context, id, c.Int("steps")); err != nil {
						return err
					}
					notice(c, "incremented %s by %d", id, c.Int("steps"))
					return nil
				},
			},
			{
				Name:      "list",
				Usage:     "List event counters, or one counter",
				ArgsUsage: "[ID]",
				Action: func(c *cli.Context) error {
					ev, err := events(c)
					if err != nil {
						return err
					}
					if id := c.Args().First(); id != "" {
						e, err := ev.Load(c.Context, id)
						if err != nil {
							return err
						}
						return render(c, e)
					}
					all, err := ev.LoadAll(c.Context)
					if err != nil {
						return err
					}
					return render(c, all)
				},
			},
			{
				Name:  "flush",
				Usage: "Send buffered increments now",
				Action: func(c *cli.Context) error {
					ev, err := events(c)
					if err != nil {
						return err
					}
					return ev.Flush(c.Context)
				},
			},
		},
	}
}

func events(c *cli.Context) (provider.Events, error) {
	env, err := openEnv(c)
	if err != nil {
		return nil, err
	}
	if ev := env.manager.Events(); ev != nil {
		return ev, nil
	}
	return nil, disabled("events")
}
