package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"run-tracker/config"
	"run-tracker/model"
	"run-tracker/utils"
	"run-tracker/utils/database"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
)

// env is what every store-backed command runs with.
type env struct {
	cfg   *model.Config
	sink  *utils.Telemetry
	store *database.Store
}

type storeAction func(ctx context.Context, c *cli.Command, e *env) error

// withStore loads the configuration, opens the store and closes both when fn returns.
func withStore(fn storeAction) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := utils.NewLogger(cfg.LogLevel)
		slog.SetDefault(logger)

		sink := utils.NewTelemetry(logger, cfg.LogWebhookURL)
		defer sink.Close()

		store, err := database.Open(ctx, cfg.Store, sink)
		if err != nil {
			return err
		}
		defer store.Close()

		return fn(ctx, c, &env{cfg: cfg, sink: sink, store: store})
	}
}

// args returns the first len(names) positional arguments or a usage error.
func args(c *cli.Command, names ...string) ([]string, error) {
	if c.Args().Len() < len(names) {
		return nil, fmt.Errorf("usage: %s <%s>", c.FullName(), strings.Join(names, "> <"))
	}
	return c.Args().Slice(), nil
}

var jsonFlag = &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "run-tracker",
		Usage: "Speedrun tracker storage administration",
		Commands: []*cli.Command{
			schemaCommand(),
			aliasCommand(),
			gameCommand(),
			runnerCommand(),
			resourceCommand(),
			permissionsCommand(),
			runLogCommand(),
			settingsCommand(),
			statusCommand(),
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Create or drop the tracker tables",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create missing tables",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					return e.store.CreateSchema(ctx)
				}),
			},
			{
				Name:  "destroy",
				Usage: "Drop every table, including permissions",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "yes", Usage: "confirm the drop"}},
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					if !c.Bool("yes") {
						return errors.New("refusing to drop every table without --yes")
					}
					return e.store.DestroySchema(ctx)
				}),
			},
			{
				Name:  "reset",
				Usage: "Drop tracked content, keep permissions and run logs, then recreate",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "yes", Usage: "confirm the reset"}},
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					if !c.Bool("yes") {
						return errors.New("refusing to reset without --yes")
					}
					if err := e.store.DestroyExceptManagers(ctx); err != nil {
						return err
					}
					return e.store.CreateSchema(ctx)
				}),
			},
		},
	}
}

func aliasCommand() *cli.Command {
	typeFlag := &cli.StringFlag{Name: "type", Usage: "game or category"}
	return &cli.Command{
		Name:  "alias",
		Usage: "Manage game and category aliases",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Bind an alias to a game or category ID",
				ArgsUsage: "<alias> <game|category> <id>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "alias", "type", "id")
					if err != nil {
						return err
					}
					if err := e.store.InsertAlias(ctx, a[0], model.AliasType(a[1]), a[2]); err != nil {
						return err
					}
					fmt.Printf("%s -> %s (%s)\n", a[0], a[2], a[1])
					return nil
				}),
			},
			{
				Name:      "resolve",
				Usage:     "Print the ID an alias points at",
				ArgsUsage: "<alias>",
				Flags:     []cli.Flag{typeFlag},
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "alias")
					if err != nil {
						return err
					}
					var id string
					if t := c.String("type"); t != "" {
						id, err = e.store.ResolveTypedAlias(ctx, a[0], model.AliasType(t))
					} else {
						id, err = e.store.ResolveAlias(ctx, a[0])
					}
					if err != nil {
						return err
					}
					fmt.Println(id)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List aliases",
				Flags: []cli.Flag{typeFlag, jsonFlag},
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					aliases, err := e.store.ListAliases(ctx, model.AliasType(c.String("type")))
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(aliases)
					}
					rows := make([][]string, 0, len(aliases))
					for _, a := range aliases {
						rows = append(rows, []string{a.Alias, string(a.Type), a.ID})
					}
					printTable([]string{"ALIAS", "TYPE", "ID"}, rows)
					return nil
				}),
			},
			{
				Name:      "game-of",
				Usage:     "Print the game ID that owns a category alias",
				ArgsUsage: "<category-alias>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "category-alias")
					if err != nil {
						return err
					}
					id, err := e.store.CategoryAliasToGameID(ctx, a[0])
					if err != nil {
						return err
					}
					fmt.Println(id)
					return nil
				}),
			},
		},
	}
}

// resolveGameID accepts either a game alias or a raw game ID.
func resolveGameID(ctx context.Context, store *database.Store, ref string) (string, error) {
	id, err := store.ResolveTypedAlias(ctx, ref, model.AliasGame)
	if errors.Is(err, database.ErrNotFound) {
		return ref, nil
	}
	return id, err
}

func gameCommand() *cli.Command {
	return &cli.Command{
		Name:  "game",
		Usage: "Manage tracked games",
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Track a game from a JSON file",
				ArgsUsage: "<file.json>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "alias", Usage: "bind this game alias (defaults to the file's game_alias)"}},
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "file.json")
					if err != nil {
						return err
					}
					game, err := utils.LoadGameFile(a[0])
					if err != nil {
						return err
					}
					alias := c.String("alias")
					if alias == "" {
						alias = game.GameAlias
					}
					if err := e.store.InsertTrackedGameWithAlias(ctx, game, alias); err != nil {
						return err
					}
					fmt.Printf("tracking %s (%d categories, %d moderators)\n",
						game.Name, len(game.Categories), len(game.Moderators))
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "Show a game by ID or alias",
				ArgsUsage: "<game-id|alias>",
				Flags:     []cli.Flag{jsonFlag},
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "game-id|alias")
					if err != nil {
						return err
					}
					id, err := resolveGameID(ctx, e.store, a[0])
					if err != nil {
						return err
					}
					game, err := e.store.GetTrackedGame(ctx, id)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(game)
					}
					printGame(game)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List tracked games",
				Flags: []cli.Flag{jsonFlag},
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					games, err := e.store.GetTrackedGames(ctx)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(games)
					}
					rows := make([][]string, 0, len(games))
					for _, g := range games {
						rows = append(rows, []string{g.ID, g.Name, strconv.Itoa(len(g.Categories)), strconv.Itoa(len(g.Moderators))})
					}
					printTable([]string{"ID", "NAME", "CATEGORIES", "MODERATORS"}, rows)
					return nil
				}),
			},
		},
	}
}

func printGame(game *model.TrackedGame) {
	printKV([][2]string{
		{"id", game.ID},
		{"name", game.Name},
		{"cover", game.CoverURL},
		{"alias", game.GameAlias},
		{"announce channel", strconv.FormatInt(game.AnnounceChannel, 10)},
	})
	fmt.Println()
	rows := make([][]string, 0, len(game.Categories))
	for _, id := range slices.Sorted(maps.Keys(game.Categories)) {
		cat := game.Categories[id]
		rows = append(rows, []string{cat.ID, cat.Name, cat.CurrentWRRunID, strconv.FormatInt(cat.NumberSubmittedRuns, 10)})
	}
	printTable([]string{"CATEGORY", "NAME", "WR RUN", "RUNS"}, rows)
	fmt.Println()
	rows = rows[:0]
	for _, id := range slices.Sorted(maps.Keys(game.Moderators)) {
		m := game.Moderators[id]
		last := "-"
		if m.LastVerifiedRunDate != nil {
			last = m.LastVerifiedRunDate.Format("2006-01-02")
		}
		rows = append(rows, []string{m.ID, m.Name, strconv.FormatInt(m.TotalVerifiedRuns, 10), last})
	}
	printTable([]string{"MODERATOR", "NAME", "VERIFIED", "LAST VERIFIED"}, rows)
}

func runnerCommand() *cli.Command {
	return &cli.Command{
		Name:  "runner",
		Usage: "Inspect and load tracked runners",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show one runner",
				ArgsUsage: "<runner-id>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "runner-id")
					if err != nil {
						return err
					}
					r, err := e.store.GetCurrentRunner(ctx, a[0])
					if err != nil {
						return err
					}
					return printJSON(r)
				}),
			},
			{
				Name:  "list",
				Usage: "List runners",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					runners, err := e.store.GetCurrentRunners(ctx)
					rows := make([][]string, 0, len(runners))
					for _, id := range slices.Sorted(maps.Keys(runners)) {
						r := runners[id]
						rows = append(rows, []string{r.ID, r.Name, strconv.Itoa(len(r.HistoricRuns)),
							strconv.FormatInt(r.NumSubmittedRuns, 10), strconv.FormatInt(r.NumSubmittedWRs, 10)})
					}
					printTable([]string{"ID", "NAME", "GAMES", "RUNS", "WRS"}, rows)
					return err
				}),
			},
			{
				Name:      "import",
				Usage:     "Insert runners from a JSON array, or update them with --update",
				ArgsUsage: "<file.json>",
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "update", Usage: "update existing runners instead of inserting"}},
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "file.json")
					if err != nil {
						return err
					}
					runners, err := utils.LoadRunnersFile(a[0])
					if err != nil {
						return err
					}
					if c.Bool("update") {
						return e.store.UpdateCurrentRunners(ctx, runners)
					}
					return e.store.InsertNewRunners(ctx, runners)
				}),
			},
			{
				Name:      "export",
				Usage:     "Write every runner to a JSON file",
				ArgsUsage: "<file.json>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "file.json")
					if err != nil {
						return err
					}
					runners, loadErr := e.store.GetCurrentRunners(ctx)
					list := make([]*model.Runner, 0, len(runners))
					for _, id := range slices.Sorted(maps.Keys(runners)) {
						list = append(list, runners[id])
					}
					if err := utils.WriteJSON(a[0], list); err != nil {
						return err
					}
					return loadErr
				}),
			},
		},
	}
}

func resourceCommand() *cli.Command {
	return &cli.Command{
		Name:  "resource",
		Usage: "Manage per-game resources",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Attach a resource to a game alias",
				ArgsUsage: "<game-alias> <name> <content...>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "game-alias", "name", "content")
					if err != nil {
						return err
					}
					return e.store.InsertResource(ctx, a[0], a[1], strings.Join(a[2:], " "))
				}),
			},
			{
				Name:      "show",
				Usage:     "Print one resource",
				ArgsUsage: "<game-alias> <name>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "game-alias", "name")
					if err != nil {
						return err
					}
					res, err := e.store.GetResource(ctx, a[0], a[1])
					if err != nil {
						return err
					}
					fmt.Println(res.Content)
					return nil
				}),
			},
			{
				Name:      "list",
				Usage:     "List the resources of a game alias",
				ArgsUsage: "<game-alias>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "game-alias")
					if err != nil {
						return err
					}
					resources, err := e.store.ListResources(ctx, a[0])
					if err != nil {
						return err
					}
					rows := make([][]string, 0, len(resources))
					for _, r := range resources {
						rows = append(rows, []string{r.Name, r.Content})
					}
					printTable([]string{"NAME", "CONTENT"}, rows)
					return nil
				}),
			},
		},
	}
}

func permissionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "permissions",
		Usage: "Manage manager access levels",
		Commands: []*cli.Command{
			{
				Name:  "load",
				Usage: "Load every stored permission into the cache and print it",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					cache := utils.NewPermissionCache()
					initErr := e.store.InitPermissions(ctx, cache)
					fmt.Printf("%d users loaded\n", cache.Len())
					perms, err := e.store.GetPermissions(ctx)
					if err != nil {
						return errors.Join(initErr, err)
					}
					rows := make([][]string, 0, len(perms))
					for _, p := range perms {
						rows = append(rows, []string{strconv.FormatInt(p.UserID, 10), strconv.Itoa(cache.Level(p.UserID))})
					}
					printTable([]string{"USER", "LEVEL"}, rows)
					return initErr
				}),
			},
			{
				Name:      "set",
				Usage:     "Grant a user an access level (0 user, 1 moderator, 2 admin, 3 owner)",
				ArgsUsage: "<user-id> <level>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					userID, level, err := permissionArgs(c)
					if err != nil {
						return err
					}
					return e.store.SetPermission(ctx, userID, level)
				}),
			},
			{
				Name:      "check",
				Usage:     "Report whether a user has at least the given level",
				ArgsUsage: "<user-id> <level>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					userID, level, err := permissionArgs(c)
					if err != nil {
						return err
					}
					cache := utils.NewPermissionCache()
					if err := e.store.InitPermissions(ctx, cache); err != nil {
						return err
					}
					fmt.Println(cache.Allowed(userID, level))
					return nil
				}),
			},
		},
	}
}

func permissionArgs(c *cli.Command) (int64, int, error) {
	a, err := args(c, "user-id", "level")
	if err != nil {
		return 0, 0, err
	}
	userID, err := strconv.ParseInt(a[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid user ID %q: %w", a[0], err)
	}
	level, err := strconv.Atoi(a[1])
	if err != nil || level < model.PermissionUser || level > model.PermissionOwner {
		return 0, 0, fmt.Errorf("invalid access level %q", a[1])
	}
	return userID, level, nil
}

func runLogCommand() *cli.Command {
	return &cli.Command{
		Name:  "runlog",
		Usage: "Record runs that were notified or announced",
		Commands: []*cli.Command{
			{
				Name:      "mark",
				Usage:     "Record a run",
				ArgsUsage: "<notifications|announcements> <run-id>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "log", "run-id")
					if err != nil {
						return err
					}
					added, err := e.store.MarkRun(ctx, database.RunLogKind(a[0]), a[1])
					if err != nil {
						return err
					}
					if !added {
						fmt.Println("already recorded")
					}
					return nil
				}),
			},
			{
				Name:      "has",
				Usage:     "Report whether a run is recorded",
				ArgsUsage: "<notifications|announcements> <run-id>",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					a, err := args(c, "log", "run-id")
					if err != nil {
						return err
					}
					found, err := e.store.HasRun(ctx, database.RunLogKind(a[0]), a[1])
					if err != nil {
						return err
					}
					fmt.Println(found)
					return nil
				}),
			},
		},
	}
}

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or replace the bot settings",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the stored settings",
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					settings, err := e.store.GetSettings(ctx)
					if err != nil {
						return err
					}
					return printJSON(settings)
				}),
			},
			{
				Name:  "set",
				Usage: "Replace the stored settings",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "allowed-games", Required: true, Usage: "comma separated game aliases"},
					&cli.StringFlag{Name: "stream-channel", Required: true},
					&cli.StringFlag{Name: "streamer-role", Required: true},
					&cli.StringFlag{Name: "exclude-keywords"},
				},
				Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
					return e.store.SaveSettings(ctx, &model.Settings{
						AllowedGameList: c.String("allowed-games"),
						StreamChannelID: c.String("stream-channel"),
						StreamerRole:    c.String("streamer-role"),
						ExcludeKeywords: c.String("exclude-keywords"),
					})
				}),
			},
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the store configuration, its tables and host metrics",
		Action: withStore(func(ctx context.Context, c *cli.Command, e *env) error {
			tables, err := e.store.Tables(ctx)
			if err != nil {
				return err
			}
			dbPath := ""
			if e.cfg.Store.Dialect == model.DialectSQLite {
				dbPath = e.cfg.Store.DatabasePath
			}
			rows := [][2]string{
				{"Dialect", string(e.store.Dialect())},
				{"Layout", string(e.store.Layout())},
				{"Tables", strings.Join(tables, ", ")},
			}
			rows = append(rows, utils.CollectSystemInfo(dbPath).Lines()...)
			printKV(rows)
			return nil
		}),
	}
}
