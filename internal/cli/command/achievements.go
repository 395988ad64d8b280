package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// AchievementsCommand groups the achievement operations.
func AchievementsCommand() *cli.Command {
	return &cli.Command{
		Name:    "achievements",
		Aliases: []string{"ach"},
		Usage:   "Achievement progress",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List achievements and progress",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Bypass the cached list"},
				},
				Action: func(c *cli.Context) error {
					a, err := achievements(c)
					if err != nil {
						return err
					}
					list, err := a.Load(c.Context, c.Bool("force"))
					if err != nil {
						return err
					}
					return render(c, list)
				},
			},
			{
				Name:      "unlock",
				Usage:     "Unlock one or more achievements",
				ArgsUsage: "ID [ID...]",
				Action: func(c *cli.Context) error {
					if _, err := argument(c, 0, "ID"); err != nil {
						return err
					}
					a, err := achievements(c)
					if err != nil {
						return err
					}
					ids := c.Args().Slice()
					if len(ids) == 1 {
						err = a.Unlock(c.Context, ids[0])
					} else {
						err = a.UnlockMultiple(c.Context, ids)
					}
					if err != nil {
						return err
					}
					notice(c, "unlocked %d achievement(s)", len(ids))
					return nil
				},
			},
			{
				Name:      "increment",
				Usage:     "Add steps to an incremental achievement",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Aliases: []string{"n"}, Value: 1, Usage: "Steps to add"},
				},
				Action: func(c *cli.Context) error {
					id, err := argument(c, 0, "ID")
					if err != nil {
						return err
					}
					a, err := achievements(c)
					if err != nil {
						return err
					}
					if err := a.Increment(c.Context, id, c.Int("steps")); err != nil {
						return err
					}
					notice(c, "incremented %s by %d", id, c.Int("steps"))
					return nil
				},
			},
			{
				Name:      "reveal",
				Usage:     "Reveal a hidden achievement",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := argument(c, 0, "ID")
					if err != nil {
						return err
					}
					a, err := achievements(c)
					if err != nil {
						return err
					}
					if err := a.Reveal(c.Context, id); err != nil {
						return err
					}
					notice(c, "revealed %s", id)
					return nil
				},
			},
		},
	}
}

func achievements(c *cli.Context) (provider.Achievements, error) {
	env, err := openEnv(c)
	if err != nil {
		return nil, err
	}
	if a := env.manager.Achievements(); a != nil {
		return a, nil
	}
	return nil, disabled("achievements")
}
