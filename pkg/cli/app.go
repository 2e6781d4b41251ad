package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/motorista/pkg/auth"
	"github.com/mchmarny/motorista/pkg/config"
	"github.com/mchmarny/motorista/pkg/data"
	"github.com/mchmarny/motorista/pkg/logging"
	"github.com/mchmarny/motorista/pkg/net"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "motorista"
	appConfigKey = "app-config"

	debugFlag   = "debug"
	formatFlag  = "format"
	apiFlag     = "api"
	timeoutFlag = "timeout"
	tokenFlag   = "token"
	homeFlag    = "home"
	idFlag      = "id"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	errNotLoggedIn = errors.New("no motorista stored locally, run login or register first")
	errAdminOnly   = errors.New("admin role required, run login --admin")
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp(os.Stdout)
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// appConfig is the state shared by all commands of one invocation.
type appConfig struct {
	Home   string
	DBPath string
	Config *config.Config
	DB     *sql.DB
	Store  *auth.Store
	Info   auth.Info
	Client *net.Client
	Out    io.Writer
	In     io.Reader
}

func getConfig(cmd *urfave.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp(out io.Writer) *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "CLI for motorista sign up, profile and document review",
		Writer:                out,
		Metadata:              map[string]any{},
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  debugFlag,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&urfave.StringFlag{
				Name:  formatFlag,
				Usage: "Output format [json, yaml] (default from config)",
			},
			&urfave.StringFlag{
				Name:  apiFlag,
				Usage: "Backend base URL (default from config)",
			},
			&urfave.DurationFlag{
				Name:  timeoutFlag,
				Usage: "Timeout for each API call (default from config)",
			},
			&urfave.StringFlag{
				Name:  tokenFlag,
				Usage: "Bearer token sent with every API call",
			},
			&urfave.StringFlag{
				Name:  homeFlag,
				Usage: "Directory for config, local data and identity (default: ~/.motorista)",
			},
		},
		Commands: []*urfave.Command{
			registerCommand(),
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			profileCommand(),
			passwordCommand(),
			documentsCommand(),
			historyCommand(),
			healthCommand(),
			resetCommand(),
		},
		Before: before,
		After: func(_ context.Context, cmd *urfave.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

func before(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
	home := cmd.String(homeFlag)
	if home == "" {
		dir, _, err := config.GetOrCreateHomeDir(appName)
		if err != nil {
			return ctx, fmt.Errorf("getting home dir: %w", err)
		}
		home = dir
	}

	cfg, err := config.Load(home)
	if err != nil {
		return ctx, fmt.Errorf("loading config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return ctx, err
	}

	level := cfg.LogLevel
	if cmd.Bool(debugFlag) {
		level = "debug"
	}
	logging.SetDefaultCLILogger(level)

	dbPath := filepath.Join(home, data.DataFileName)
	if err := data.Init(dbPath); err != nil {
		return ctx, fmt.Errorf("initializing database: %w", err)
	}

	db, err := data.GetDB(dbPath)
	if err != nil {
		return ctx, fmt.Errorf("opening database: %w", err)
	}

	client, err := net.NewClient(ctx, net.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		Token:     cfg.Token,
		UserAgent: appName + "-cli/" + version,
	})
	if err != nil {
		db.Close()
		return ctx, fmt.Errorf("creating API client: %w", err)
	}

	store := auth.NewStore(home)

	in := cmd.Root().Reader
	if in == nil {
		in = os.Stdin
	}

	cmd.Root().Metadata[appConfigKey] = &appConfig{
		Home:   home,
		DBPath: dbPath,
		Config: cfg,
		DB:     db,
		Store:  store,
		Info:   store.Load(),
		Client: client,
		Out:    cmd.Root().Writer,
		In:     in,
	}
	return ctx, nil
}

// applyFlags overrides the loaded config with the global flags that were set.
func applyFlags(cmd *urfave.Command, cfg *config.Config) error {
	if cmd.IsSet(apiFlag) {
		cfg.APIURL = cmd.String(apiFlag)
	}
	if cmd.IsSet(timeoutFlag) {
		cfg.Timeout = cmd.Duration(timeoutFlag)
	}
	if cmd.IsSet(tokenFlag) {
		cfg.Token = cmd.String(tokenFlag)
	}
	if cmd.IsSet(formatFlag) {
		f := strings.ToLower(cmd.String(formatFlag))
		if f == "yml" {
			f = config.FormatYAML
		}
		cfg.Format = f
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func newIDFlag() urfave.Flag {
	return &urfave.StringFlag{
		Name:  idFlag,
		Usage: "Motorista ID (default: the stored identity)",
	}
}

// motoristaID returns the --id flag when set, the stored identity otherwise.
func (a *appConfig) motoristaID(cmd *urfave.Command) (string, error) {
	if id := strings.TrimSpace(cmd.String(idFlag)); id != "" {
		return id, nil
	}
	if a.Info.MotoristaID == "" {
		return "", errNotLoggedIn
	}
	return a.Info.MotoristaID, nil
}

func (a *appConfig) requireAdmin() error {
	if !a.Info.IsAdmin() {
		return errAdminOnly
	}
	return nil
}

// record appends the outcome of a mutating command to the local activity log.
// Failing to record never fails the command.
func (a *appConfig) record(id, action, detail string, cmdErr error) {
	act := &data.Activity{
		MotoristaID: id,
		Action:      action,
		Detail:      detail,
		Status:      data.ActivityStatusOK,
	}
	if cmdErr != nil {
		act.Status = data.ActivityStatusFailed
		if act.Detail == "" {
			act.Detail = cmdErr.Error()
		}
	}
	if err := data.SaveActivity(a.DB, act); err != nil {
		slog.Warn("failed to record activity", "action", action, "error", err)
	}
}

func (a *appConfig) encode(v any) error {
	if a.Config.Format == config.FormatYAML {
		return yaml.NewEncoder(a.Out).Encode(v)
	}
	e := json.NewEncoder(a.Out)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
