package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/promptbase/internal/config"
	"github.com/hpungsan/promptbase/internal/db"
	"github.com/hpungsan/promptbase/internal/errors"
	"github.com/hpungsan/promptbase/internal/logger"
	"github.com/hpungsan/promptbase/internal/mcp"
	"github.com/hpungsan/promptbase/internal/ops"
	"github.com/hpungsan/promptbase/internal/tui"
	"github.com/hpungsan/promptbase/internal/web"
)

// EnvHome overrides the data directory (default ~/.promptbase).
const EnvHome = "PROMPTBASE_HOME"

// appEnv carries what commands share. The store is opened on first use so
// --help and --version never touch the database.
type appEnv struct {
	version string
	baseDir string
	cfg     *config.Config
	log     *zap.Logger
	store   ops.Store
	closer  func() error
}

// open resolves the data directory, loads config, and opens the store.
func (e *appEnv) open(c *cli.Context) error {
	if e.store != nil {
		return nil
	}

	baseDir := c.String("home")
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".promptbase")
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, stopLog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := db.Open(c.Context, cfg, baseDir, log)
	if err != nil {
		_ = stopLog()
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	e.baseDir, e.cfg, e.log, e.store = baseDir, cfg, log, store
	e.closer = func() error {
		err := store.Close()
		if logErr := stopLog(); err == nil {
			err = logErr
		}
		return err
	}
	return nil
}

func (e *appEnv) close() error {
	if e.closer == nil {
		return nil
	}
	closer := e.closer
	e.closer = nil
	return closer()
}

// action opens the environment before running fn.
func (e *appEnv) action(fn func(c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := e.open(c); err != nil {
			return outputError(err)
		}
		return fn(c)
	}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	if env.log == nil {
		env.log = zap.NewNop()
	}
	app := &cli.App{
		Name:    "promptbase",
		Usage:   "Personal prompt library",
		Version: env.version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "home", EnvVars: []string{EnvHome}, Usage: "Data directory (default ~/.promptbase)"},
		},
		Commands: []*cli.Command{
			addCmd(env),
			showCmd(env),
			editCmd(env),
			favCmd(env),
			deleteCmd(env),
			listCmd(env),
			exportCmd(env),
			importCmd(env),
			serveCmd(env),
			browseCmd(env),
			mcpCmd(env),
		},
		After: func(*cli.Context) error { return env.close() },
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func addCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Store a new prompt (body from --body or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Prompt title"},
			&cli.StringFlag{Name: "body", Aliases: []string{"b"}, Usage: "Prompt body (reads stdin when omitted)"},
			&cli.BoolFlag{Name: "favorite", Aliases: []string{"f"}, Usage: "Mark as favorite"},
		},
		Action: env.action(func(c *cli.Context) error {
			body, err := bodyArg(c)
			if err != nil {
				return outputError(err)
			}

			p, err := ops.Create(c.Context, env.store, ops.CreateInput{
				Title:    c.String("title"),
				Body:     body,
				Favorite: c.Bool("favorite"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, p)
		}),
	}
}

func showCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print one prompt",
		ArgsUsage: "<id>",
		Action: env.action(func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			p, err := ops.Get(c.Context, env.store, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, p)
		}),
	}
}

func editCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Replace a prompt's title and/or body (body from --body or stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "body", Aliases: []string{"b"}, Usage: "New body"},
		},
		Action: env.action(func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}

			current, err := ops.Get(c.Context, env.store, id)
			if err != nil {
				return outputError(err)
			}

			input := ops.UpdateInput{ID: id, Title: current.Title, Body: current.Body}
			if c.IsSet("title") {
				input.Title = c.String("title")
			}
			switch {
			case c.IsSet("body"):
				input.Body = c.String("body")
			case stdinHasData(c.App.Reader):
				body, err := readStdin(c.App.Reader)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if body != "" {
					input.Body = body
				}
			}

			p, err := ops.Update(c.Context, env.store, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, p)
		}),
	}
}

func favCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "fav",
		Usage:     "Toggle the favorite flag (or set it with --on/--off)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "on", Usage: "Mark as favorite"},
			&cli.BoolFlag{Name: "off", Usage: "Clear the favorite flag"},
		},
		Action: env.action(func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.FavoriteInput{ID: id}
			switch {
			case c.Bool("on") && c.Bool("off"):
				return outputError(errors.NewInvalidRequest("--on and --off are mutually exclusive"))
			case c.Bool("on"):
				v := true
				input.Value = &v
			case c.Bool("off"):
				v := false
				input.Value = &v
			}

			p, err := ops.Favorite(c.Context, env.store, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, p)
		}),
	}
}

func deleteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a prompt",
		ArgsUsage: "<id>",
		Action: env.action(func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			out, err := ops.Delete(c.Context, env.store, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		}),
	}
}

func listCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List prompts with search, sort and filters",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Case-insensitive substring of title or body"},
			&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Usage: "Sort column: created_at|title|body"},
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Sort direction: asc|desc"},
			&cli.StringFlag{Name: "since", Usage: "Date filter: all|today|this_week|this_month|this_year"},
			&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorites"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Max results (default 50, max 500)"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Pagination offset"},
		},
		Action: env.action(func(c *cli.Context) error {
			out, err := ops.List(c.Context, env.store, env.cfg, ops.ListInput{
				Search:        c.String("search"),
				Sort:          c.String("sort"),
				Direction:     c.String("dir"),
				Since:         c.String("since"),
				FavoritesOnly: c.Bool("favorites"),
				Limit:         c.Int("limit"),
				Offset:        c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		}),
	}
}

func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export every prompt to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: <home>/exports/prompts-<timestamp>.jsonl)"},
		},
		Action: env.action(func(c *cli.Context) error {
			out, err := ops.Export(c.Context, env.store, env.baseDir, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		}),
	}
}

func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import prompts from a JSONL export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Input path"},
		},
		Action: env.action(func(c *cli.Context) error {
			out, err := ops.Import(c.Context, env.store, ops.ImportInput{Path: c.String("path")})
			if err != nil {
				if out != nil {
					// lines before the failure are already stored
					_ = outputJSON(c, out)
				}
				return outputError(err)
			}
			return outputJSON(c, out)
		}),
	}
}

func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default from config)"},
		},
		Action: env.action(func(c *cli.Context) error {
			bind := env.cfg.Web.Bind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := env.cfg.Web.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv, err := web.NewServer(env.store, env.cfg, env.log, env.version, bind, port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(c.Context, srv, env.log)
		}),
	}
}

func browseCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse prompts in the terminal",
		Action: env.action(func(c *cli.Context) error {
			return tui.Run(c.Context, env.store, env.cfg)
		}),
	}
}

func mcpCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the prompt tools over MCP stdio",
		Action: env.action(func(c *cli.Context) error {
			return mcp.Run(env.store, env.cfg, env.baseDir, env.version, env.log)
		}),
	}
}

// Helper functions

// outputJSON writes v to the app's stdout as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats err as "[CODE] message" with exit status 1.
func outputError(err error) error {
	if pErr := errors.As(err); pErr != nil {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// idArg parses the positional <id> argument.
func idArg(c *cli.Context) (int64, error) {
	if c.NArg() == 0 {
		return 0, errors.NewInvalidRequest("prompt id is required")
	}
	raw := c.Args().First()
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest("invalid prompt id: " + raw)
	}
	return id, nil
}

// bodyArg returns --body, or stdin when the flag is absent and input is piped.
func bodyArg(c *cli.Context) (string, error) {
	if c.IsSet("body") {
		return c.String("body"), nil
	}
	if !stdinHasData(c.App.Reader) {
		return "", nil
	}
	body, err := readStdin(c.App.Reader)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return body, nil
}

// stdinHasData reports whether r is piped input rather than a terminal.
// Readers that are not files (tests) always count as piped.
func stdinHasData(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all of r, dropping the trailing newline a shell pipe adds.
func readStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
