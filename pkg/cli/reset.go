package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/motorista/pkg/auth"
	"github.com/mchmarny/motorista/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

const forceFlag = "force"

func resetCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "reset",
		Usage: "Delete all local data and the stored identity",
		Flags: []urfave.Flag{
			&urfave.BoolFlag{Name: forceFlag, Usage: "Do not ask for confirmation"},
		},
		Action: cmdReset,
	}
}

func cmdReset(_ context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)

	if !cmd.Bool(forceFlag) {
		fmt.Fprintf(cfg.Out, "This will permanently delete all data in %s and the stored identity\n", cfg.DBPath)
		fmt.Fprint(cfg.Out, "Are you sure? [y/N]: ")

		reader := bufio.NewReader(cfg.In)
		answer, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(cfg.Out, "Aborted.")
			return nil
		}
	}

	// close the DB before deleting the file
	if cfg.DB != nil {
		cfg.DB.Close()
		cfg.DB = nil
	}

	if err := os.Remove(cfg.DBPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting database: %w", err)
	}

	slog.Info("database deleted", "path", cfg.DBPath)

	if err := cfg.Store.Clear(); err != nil {
		return fmt.Errorf("clearing identity: %w", err)
	}
	cfg.Info = auth.Info{}

	// re-initialize empty database
	if err := data.Init(cfg.DBPath); err != nil {
		return fmt.Errorf("re-initializing database: %w", err)
	}

	slog.Info("database re-initialized", "path", cfg.DBPath)
	fmt.Fprintln(cfg.Out, "Reset complete.")
	return nil
}
