package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/gamesvc-go/internal/cli/output"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

var resolveFlag = &cli.StringFlag{
	Name:  "resolve",
	Usage: "Decide a conflict immediately: local, server or manual (default: wait for cloud_save.conflict_timeout)",
}

// SaveCommand commits data to a save slot.
func SaveCommand() *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Write a saved game",
		ArgsUsage: "FILENAME",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data", Usage: "Save data"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Read save data from a file (- for stdin)"},
			&cli.StringFlag{Name: "description", Usage: "Description shown in the saved games list"},
			&cli.DurationFlag{Name: "played-time", Usage: "Total played time"},
			&cli.Int64Flag{Name: "progress", Usage: "Progress value"},
			&cli.StringFlag{Name: "cover", Usage: "Cover image file (at most 800 KiB)"},
			resolveFlag,
		},
		Action: saveAction,
	}
}

func saveAction(c *cli.Context) error {
	filename, err := argument(c, 0, "FILENAME")
	if err != nil {
		return err
	}
	data, err := saveData(c)
	if err != nil {
		return err
	}
	meta := domain.SaveGameMetadata{
		Description:      c.String("description"),
		PlayedTimeMillis: c.Duration("played-time").Milliseconds(),
		ProgressValue:    c.Int64("progress"),
	}
	if path := c.String("cover"); path != "" {
		if meta.CoverImage, err = os.ReadFile(path); err != nil {
			return fmt.Errorf("read cover image: %w", err)
		}
	}

	cs, env, err := cloudSave(c)
	if err != nil {
		return err
	}
	restore, err := env.resolveWith(c.String("resolve"))
	if err != nil {
		return err
	}
	defer restore()

	if err := cs.Save(c.Context, filename, data, meta); err != nil {
		return err
	}
	notice(c, "saved %s (%d bytes)", filename, len(data))
	return nil
}

func saveData(c *cli.Context) ([]byte, error) {
	text, path := c.String("data"), c.String("file")
	switch {
	case c.IsSet("data") && path != "":
		return nil, errors.New("save: use --data or --file, not both")
	case path == "-":
		return io.ReadAll(c.App.Reader)
	case path != "":
		return os.ReadFile(path)
	case c.IsSet("data"):
		return []byte(text), nil
	}
	return nil, errors.New("save: --data or --file is required")
}

// LoadCommand reads a save slot.
func LoadCommand() *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Read a saved game",
		ArgsUsage: "FILENAME",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "Write the data to a file instead of stdout"},
			resolveFlag,
		},
		Action: loadAction,
	}
}

// loadedSlot is the structured form of a load result.
type loadedSlot struct {
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	Data     string `json:"data,omitempty"`
}

func loadAction(c *cli.Context) error {
	filename, err := argument(c, 0, "FILENAME")
	if err != nil {
		return err
	}
	cs, env, err := cloudSave(c)
	if err != nil {
		return err
	}
	restore, err := env.resolveWith(c.String("resolve"))
	if err != nil {
		return err
	}
	defer restore()

	data, err := cs.Load(c.Context, filename)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("load: no saved game named %q", filename)
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return err
		}
		notice(c, "wrote %s (%d bytes)", out, len(data))
		return nil
	}
	if ParseGlobalFlags(c).Output == output.FormatTable {
		_, err := stdout(c).Write(append(data, '\n'))
		return err
	}
	return render(c, loadedSlot{Filename: filename, Size: len(data), Data: string(data)})
}

// DeleteCommand removes a save slot.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a saved game",
		ArgsUsage: "FILENAME",
		Action: func(c *cli.Context) error {
			filename, err := argument(c, 0, "FILENAME")
			if err != nil {
				return err
			}
			cs, _, err := cloudSave(c)
			if err != nil {
				return err
			}
			if err := cs.DeleteSnapshot(c.Context, filename); err != nil {
				return err
			}
			notice(c, "deleted %s", filename)
			return nil
		},
	}
}

// ConflictCommand simulates a second device writing a slot.
func ConflictCommand() *cli.Command {
	return &cli.Command{
		Name:      "conflict",
		Usage:     "Make the next open of a slot report a server-side version (simulated bridge only)",
		ArgsUsage: "FILENAME",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data", Usage: "Server version data", Required: true},
			&cli.DurationFlag{Name: "age", Usage: "How long ago the server version was written"},
		},
		Action: func(c *cli.Context) error {
			filename, err := argument(c, 0, "FILENAME")
			if err != nil {
				return err
			}
			env, err := openEnv(c)
			if err != nil {
				return err
			}
			if env.platform == nil {
				return errors.New("conflict: needs --platform bridge")
			}
			modified := time.Now().Add(-c.Duration("age")).UnixMilli()
			env.platform.InjectConflict(filename, []byte(c.String("data")), modified)
			notice(c, "next open of %s reports a conflict", filename)
			return nil
		},
	}
}

func cloudSave(c *cli.Context) (provider.CloudSave, *environment, error) {
	env, err := openEnv(c)
	if err != nil {
		return nil, nil, err
	}
	cs := env.manager.CloudSave()
	if cs == nil {
		return nil, nil, disabled("cloud_save")
	}
	return cs, env, nil
}

func disabled(service string) error {
	return fmt.Errorf("the %s service is disabled (set services.%s)", service, service)
}

// InfoCommand shows a slot's metadata without reading its data.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show a saved game's metadata",
		ArgsUsage: "FILENAME",
		Action: func(c *cli.Context) error {
			filename, err := argument(c, 0, "FILENAME")
			if err != nil {
				return err
			}
			cs, _, err := cloudSave(c)
			if err != nil {
				return err
			}
			h, err := cs.OpenSnapshot(c.Context, filename, false)
			if err != nil {
				return err
			}
			return render(c, h)
		},
	}
}

// CoverCommand downloads a slot's cover image.
func CoverCommand() *cli.Command {
	return &cli.Command{
		Name:      "cover",
		Usage:     "Download the cover image of a saved game",
		ArgsUsage: "FILENAME",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "uri", Usage: "Download this URI instead of the slot's cover"},
			&cli.StringFlag{Name: "out", Usage: "Write the image to a file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			cs, _, err := cloudSave(c)
			if err != nil {
				return err
			}
			uri := c.String("uri")
			if uri == "" {
				filename, err := argument(c, 0, "FILENAME")
				if err != nil {
					return err
				}
				h, err := cs.OpenSnapshot(c.Context, filename, false)
				if err != nil {
					return err
				}
				if uri = h.CoverImageURI; uri == "" {
					return fmt.Errorf("cover: %s has no cover image", filename)
				}
			}

			img, err := cs.DownloadCoverImage(c.Context, uri)
			if err != nil {
				return err
			}
			if out := c.String("out"); out != "" {
				if err := os.WriteFile(out, img, 0o600); err != nil {
					return err
				}
				notice(c, "wrote %s (%d bytes)", out, len(img))
				return nil
			}
			_, err = stdout(c).Write(img)
			return err
		},
	}
}
