package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/gamesvc-go/internal/config"
)

// ConfigCommand groups configuration file tooling.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration files",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration as YAML",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "reveal", Usage: "Do not mask personal data"},
				},
				Action: configShow,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "FILE",
				Action:    configValidate,
			},
			{
				Name:      "migrate",
				Usage:     "Upgrade a configuration file to the current version",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "Write the result to a file instead of stdout"},
				},
				Action: configMigrate,
			},
		},
	}
}

func writeYAML(c *cli.Context, path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = stdout(c).Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func configShow(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	if !c.Bool("reveal") {
		cfg = config.Sanitize(cfg)
	}
	return writeYAML(c, "", cfg)
}

func configValidate(c *cli.Context) error {
	path, err := argument(c, 0, "FILE")
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	version, err := config.DetectVersion(data)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path, nil)
	if err != nil {
		return err
	}
	notice(c, "%s is valid (version %d, sidekick %s)", path, version, config.EvaluateSidekick(cfg))
	if version < config.CurrentVersion {
		notice(c, "run `gamesvc config migrate %s` to upgrade it", path)
	}
	return nil
}

func configMigrate(c *cli.Context) error {
	path, err := argument(c, 0, "FILE")
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg, err := config.Migrate(data)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", path, err)
	}
	if err := config.Verify(cfg); err != nil {
		return errors.Join(errors.New("migrated configuration is invalid"), err)
	}
	return writeYAML(c, c.String("out"), cfg)
}
