package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/gamesvc-go/internal/cli/output"
	"github.com/yndnr/gamesvc-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "gamesvc",
		Usage:   "Drive the games services from the command line",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SaveCommand(),
			LoadCommand(),
			DeleteCommand(),
			InfoCommand(),
			CoverCommand(),
			ConflictCommand(),
			AchievementsCommand(),
			LeaderboardCommand(),
			StatsCommand(),
			EventsCommand(),
			AuthCommand(),
			ReadinessCommand(),
			ConfigCommand(),
			ShellCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
		After: func(c *cli.Context) error {
			return closeEnv(c)
		},
		// Errors are returned to main; nothing here exits the process.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file",
			EnvVars: []string{"GAMESVC_CONFIG"},
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Override a configuration key (key=value, repeatable)",
		},
		&cli.StringFlag{
			Name:    "platform",
			Aliases: []string{"p"},
			Usage:   "Provider platform: bridge (simulated vendor bridge) or mock",
			EnvVars: []string{"GAMESVC_PLATFORM"},
			Value:   "bridge",
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Data directory (overrides storage.dir)",
			EnvVars: []string{"GAMESVC_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "Serve /metrics on this address while the command runs",
			EnvVars: []string{"GAMESVC_METRICS_ADDR"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show every column",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
			Value: "warn",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log at debug level",
		},
	}
}

// GlobalFlags are the flags every command sees.
type GlobalFlags struct {
	Config      string
	Set         []string
	Platform    string
	DataDir     string
	MetricsAddr string

	Output   output.Format
	Wide     bool
	LogLevel string
}

// ParseGlobalFlags reads the global flags from c.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, _ := output.ParseFormat(c.String("output"))
	level := c.String("log-level")
	if c.Bool("verbose") {
		level = "debug"
	}
	return &GlobalFlags{
		Config:      c.String("config"),
		Set:         c.StringSlice("set"),
		Platform:    c.String("platform"),
		DataDir:     c.String("data-dir"),
		MetricsAddr: c.String("metrics-addr"),
		Output:      format,
		Wide:        c.Bool("wide"),
		LogLevel:    level,
	}
}

// overrides turns the --set pairs and dedicated flags into dotted
// configuration keys.
func (g *GlobalFlags) overrides() (map[string]any, error) {
	m := make(map[string]any, len(g.Set)+2)
	for _, kv := range g.Set {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--set %q: want key=value", kv)
		}
		m[k] = v
	}
	if g.DataDir != "" {
		m["storage.dir"] = g.DataDir
	}
	if g.MetricsAddr != "" {
		m["metrics.addr"] = g.MetricsAddr
	}
	return m, nil
}

// render writes data to the app's writer in the selected format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	return output.Render(stdout(c), flags.Output, flags.Wide, data)
}

// notice prints a status line in table mode only, keeping json and yaml
// output machine-readable.
func notice(c *cli.Context, format string, args ...any) {
	if ParseGlobalFlags(c).Output == output.FormatTable {
		fmt.Fprintf(stdout(c), format+"\n", args...)
	}
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func stderr(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// argument returns positional argument i or a usage error.
func argument(c *cli.Context, i int, name string) (string, error) {
	v := c.Args().Get(i)
	if v == "" {
		return "", fmt.Errorf("%s: %s is required", c.Command.FullName(), name)
	}
	return v, nil
}

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			return render(c, buildinfo.Get())
		},
	}
}
