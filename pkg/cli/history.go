package cli

import (
	"context"
	"fmt"

	"github.com/mchmarny/motorista/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

const (
	limitFlag = "limit"
	allFlag   = "all"

	defaultHistoryLimit = 20
)

func historyCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "history",
		Usage: "List the commands recorded locally, newest first",
		Flags: []urfave.Flag{
			newIDFlag(),
			&urfave.IntFlag{Name: limitFlag, Usage: "Maximum number of entries", Value: defaultHistoryLimit},
			&urfave.BoolFlag{Name: allFlag, Usage: "Include every motorista"},
		},
		Action: cmdHistory,
	}
}

func cmdHistory(_ context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)

	id := ""
	if !cmd.Bool(allFlag) {
		var err error
		if id, err = a.motoristaID(cmd); err != nil {
			return err
		}
	}

	list, err := data.ListActivity(a.DB, id, int(cmd.Int(limitFlag)))
	if err != nil {
		return fmt.Errorf("listing activity: %w", err)
	}
	return a.encode(list)
}
