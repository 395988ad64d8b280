package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/gamesvc-go/internal/cli/output"
)

// ReadinessCommand reports Play Console Sidekick readiness.
func ReadinessCommand() *cli.Command {
	return &cli.Command{
		Name:  "readiness",
		Usage: "Check Sidekick readiness against the configuration and live catalog",
		Action: func(c *cli.Context) error {
			env, err := openEnv(c)
			if err != nil {
				return err
			}
			r := env.manager.Readiness(c.Context)
			if ParseGlobalFlags(c).Output != output.FormatTable {
				return render(c, r)
			}

			w := stdout(c)
			fmt.Fprintf(w, "Tier:         %s\n", r.Tier)
			fmt.Fprintf(w, "Platform:     %s\n", r.Platform)
			fmt.Fprintf(w, "Services:     %v\n", r.Services)
			if r.AchievementCount >= 0 {
				fmt.Fprintf(w, "Achievements: %d\n", r.AchievementCount)
			}
			fmt.Fprintln(w)

			t := &output.Table{Headers: []string{"TIER", "CHECK", "STATUS", "REMEDIATION"}}
			for _, check := range r.Checks {
				tier, status, fix := "rec", "ok", "-"
				if check.Tier > 0 {
					tier = fmt.Sprint(check.Tier)
				}
				if !check.Pass {
					status, fix = "FAIL", check.Remediation
				}
				t.AddRow(tier, check.Name, status, fix)
			}
			if err := t.Render(w); err != nil {
				return err
			}
			for _, warning := range r.Warnings {
				fmt.Fprintf(w, "\nwarning: %s\n", warning)
			}
			return nil
		},
	}
}
