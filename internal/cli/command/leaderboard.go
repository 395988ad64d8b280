package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// LeaderboardCommand groups score submission and paging.
func LeaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:    "leaderboard",
		Aliases: []string{"lb"},
		Usage:   "Leaderboard scores",
		Subcommands: []*cli.Command{
			{
				Name:      "submit",
				Usage:     "Submit a score",
				ArgsUsage: "LEADERBOARD SCORE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tag", Usage: "Score tag"},
				},
				Action: submitAction,
			},
			{
				Name:      "top",
				Usage:     "Show the top scores, or the scores around the player",
				ArgsUsage: "LEADERBOARD",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "max", Value: domain.DefaultLeaderboardResults, Usage: "Maximum entries (1-25)"},
					&cli.StringFlag{Name: "span", Value: "all-time", Usage: "daily, weekly or all-time"},
					&cli.StringFlag{Name: "collection", Value: "public", Usage: "public or friends"},
					&cli.BoolFlag{Name: "centered", Usage: "Center the page on the player"},
				},
				Action: topAction,
			},
		},
	}
}

func submitAction(c *cli.Context) error {
	board, err := argument(c, 0, "LEADERBOARD")
	if err != nil {
		return err
	}
	raw, err := argument(c, 1, "SCORE")
	if err != nil {
		return err
	}
	score, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("score %q: %w", raw, err)
	}
	lb, err := leaderboards(c)
	if err != nil {
		return err
	}
	if err := lb.SubmitScore(c.Context, board, score, c.String("tag")); err != nil {
		return err
	}
	notice(c, "submitted %d to %s", score, board)
	return nil
}

func topAction(c *cli.Context) error {
	board, err := argument(c, 0, "LEADERBOARD")
	if err != nil {
		return err
	}
	span, err := domain.ParseTimeSpan(c.String("span"))
	if err != nil {
		return err
	}
	collection, err := domain.ParseCollection(c.String("collection"))
	if err != nil {
		return err
	}
	lb, err := leaderboards(c)
	if err != nil {
		return err
	}

	q := domain.LeaderboardQuery{
		LeaderboardID: board,
		TimeSpan:      span,
		Collection:    collection,
		MaxResults:    c.Int("max"),
	}
	load := lb.LoadTopScores
	if c.Bool("centered") {
		load = lb.LoadPlayerCenteredScores
	}
	entries, err := load(c.Context, q)
	if err != nil {
		return err
	}
	return render(c, entries)
}

func leaderboards(c *cli.Context) (provider.Leaderboards, error) {
	env, err := openEnv(c)
	if err != nil {
		return nil, err
	}
	if lb := env.manager.Leaderboards(); lb != nil {
		return lb, nil
	}
	return nil, disabled("leaderboards")
}
