package command

import (
	"github.com/urfave/cli/v2"
)

// StatsCommand shows the player's engagement statistics.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show player statistics",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Bypass the vendor cache"},
		},
		Action: func(c *cli.Context) error {
			env, err := openEnv(c)
			if err != nil {
				return err
			}
			s := env.manager.Stats()
			if s == nil {
				return disabled("stats")
			}
			stats, err := s.LoadPlayerStats(c.Context, c.Bool("force"))
			if err != nil {
				return err
			}
			return render(c, stats)
		},
	}
}
