package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/ops"
	"github.com/hpungsan/reelcraft/internal/web"
)

// maxImageBytes bounds reference images read from disk.
const maxImageBytes = 8 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(svc *ops.Service, logger zerolog.Logger) *cli.App {
	app := &cli.App{
		Name:    "reelcraft",
		Usage:   "Short-video marketing content for YouTube, TikTok and Instagram Reels",
		Version: Version,
		Commands: []*cli.Command{
			generateCmd(svc),
			variationCmd(svc),
			refineCmd(svc),
			refineBatchCmd(svc),
			restoreCmd(svc),
			historyCmd(svc),
			showCmd(svc),
			sessionsCmd(svc),
			generationsCmd(svc),
			exportCmd(svc),
			lintCmd(svc),
			importCmd(svc),
			deleteCmd(svc),
			usageCmd(svc),
			serveCmd(svc, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func generateCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a new content bundle and start a session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Required: true, Usage: "youtube | tiktok | reels"},
			&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Required: true, Usage: "Video topic"},
			&cli.StringFlag{Name: "keywords", Aliases: []string{"k"}, Usage: "Comma-separated keywords"},
			&cli.StringFlag{Name: "tone", Usage: "Tone of voice (default informativo-entusiasmado)"},
			&cli.StringFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Estimated duration, e.g. 30s or 5 minutos"},
			&cli.StringFlag{Name: "lang", Usage: "Output language (default from config)"},
			&cli.StringFlag{Name: "image", Usage: "Path to a reference image"},
		},
		Action: func(c *cli.Context) error {
			input := ops.GenerateInput{
				Platform: c.String("platform"),
				Topic:    c.String("topic"),
				Keywords: c.String("keywords"),
				Tone:     c.String("tone"),
				Duration: c.String("duration"),
				Language: c.String("lang"),
			}
			if path := c.String("image"); path != "" {
				img, err := readImage(path)
				if err != nil {
					return outputError(err)
				}
				input.Image = img
			}

			output, err := svc.Generate(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func variationCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "variation",
		Usage:     "Regenerate the whole bundle of a session",
		ArgsUsage: "<session>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "instruction", Aliases: []string{"i"}, Usage: "Optional guidance for the variation"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.Variation(c.Context, ops.VariationInput{
				ID:          c.Args().First(),
				Instruction: c.String("instruction"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func refineCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "refine",
		Usage:     "Refine one field of a session",
		ArgsUsage: "<session>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "field", Aliases: []string{"f"}, Required: true, Usage: "Field name, e.g. main_title or TITULO_PRINCIPAL"},
			&cli.StringFlag{Name: "instruction", Aliases: []string{"i"}, Required: true, Usage: "What to change"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.Refine(c.Context, ops.RefineInput{
				ID:          c.Args().First(),
				Field:       c.String("field"),
				Instruction: c.String("instruction"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func refineBatchCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "refine-batch",
		Usage:     "Refine several fields of a session in one call",
		ArgsUsage: "<session>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "fields", Required: true, Usage: "Comma-separated field names"},
			&cli.StringFlag{Name: "instruction", Aliases: []string{"i"}, Required: true, Usage: "What to change"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.RefineBatch(c.Context, ops.RefineBatchInput{
				ID:          c.Args().First(),
				Fields:      splitList(c.String("fields")),
				Instruction: c.String("instruction"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func restoreCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Put a previous value of a field back",
		ArgsUsage: "<session>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "field", Aliases: []string{"f"}, Required: true, Usage: "Field name"},
			&cli.IntFlag{Name: "index", Required: true, Usage: "History position, 0 is the oldest"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.Restore(c.Context, ops.RestoreInput{
				ID:    c.Args().First(),
				Field: c.String("field"),
				Index: c.Int("index"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func historyCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show the previous values of a field",
		ArgsUsage: "<session>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "field", Aliases: []string{"f"}, Required: true, Usage: "Field name"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.History(c.Context, ops.HistoryInput{
				ID:    c.Args().First(),
				Field: c.String("field"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func showCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a session with its lint report",
		ArgsUsage: "<session>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted sessions"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.Fetch(c.Context, ops.FetchInput{
				ID:             c.Args().First(),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func sessionsCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "List sessions, most recently updated first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Pagination offset"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted sessions"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.List(c.Context, ops.ListInput{
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func generationsCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "generations",
		Usage: "List logged generations, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Usage: "Only generations of this session"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.Generations(c.Context, ops.GenerationsInput{
				SessionID: c.String("session"),
				Limit:     c.Int("limit"),
				Offset:    c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func exportCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export the current content of a session as JSON or CSV",
		ArgsUsage: "<session>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "json", Usage: "json | csv"},
			&cli.StringFlag{Name: "fields", Usage: "Comma-separated subset of fields"},
			&cli.StringFlag{Name: "path", Usage: "Output file (default: ~/.reelcraft/exports/<topic>-<time>.<ext>)"},
			&cli.BoolFlag{Name: "stdout", Usage: "Write the export to stdout instead of a file"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("stdout") {
				if c.String("path") != "" {
					return outputError(errors.NewValidation("--path and --stdout are mutually exclusive"))
				}
				rendered, err := svc.Render(c.Context, ops.RenderInput{
					ID:     c.Args().First(),
					Format: c.String("format"),
					Fields: splitList(c.String("fields")),
				})
				if err != nil {
					return outputError(err)
				}
				_, err = os.Stdout.Write(rendered.Data)
				return err
			}

			output, err := svc.Export(c.Context, ops.ExportInput{
				ID:     c.Args().First(),
				Format: c.String("format"),
				Fields: splitList(c.String("fields")),
				Path:   c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func lintCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "Check the current content of a session against the content rules",
		ArgsUsage: "<session>",
		Action: func(c *cli.Context) error {
			output, err := svc.Lint(c.Context, ops.LintInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func importCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Start a session from a JSON export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Required: true, Usage: "JSON export to read"},
			&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Required: true, Usage: "youtube | tiktok | reels"},
			&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Usage: "Topic (default: the main title)"},
			&cli.StringFlag{Name: "keywords", Aliases: []string{"k"}, Usage: "Comma-separated keywords"},
			&cli.StringFlag{Name: "tone", Usage: "Tone of voice"},
			&cli.StringFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Estimated duration"},
			&cli.StringFlag{Name: "lang", Usage: "Output language"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.Import(c.Context, ops.ImportInput{
				Path:     c.String("path"),
				Platform: c.String("platform"),
				Topic:    c.String("topic"),
				Keywords: c.String("keywords"),
				Tone:     c.String("tone"),
				Duration: c.String("duration"),
				Language: c.String("lang"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func deleteCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a session",
		ArgsUsage: "<session>",
		Action: func(c *cli.Context) error {
			output, err := svc.Delete(c.Context, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func usageCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "usage",
		Usage: "Show the plan and how much of the generation quota is spent",
		Action: func(c *cli.Context) error {
			output, err := svc.Usage(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func serveCmd(svc *ops.Service, logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the session pages and the JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8420, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(svc, logger, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, logger)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if e, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", e.Code, e.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readImage loads a reference image from disk.
func readImage(path string) (*content.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewValidation("cannot read image: " + err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, errors.NewValidation("cannot read image: " + err.Error())
	}
	if len(data) > maxImageBytes {
		return nil, errors.NewValidation("image exceeds 8 MiB")
	}
	return content.NewImage(data, "")
}

// splitList splits a comma-separated string into trimmed, non-empty parts.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
