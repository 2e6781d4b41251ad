package cli

import (
	"context"
	"log/slog"

	"github.com/mchmarny/motorista/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

type healthView struct {
	API     string           `json:"api" yaml:"api"`
	Status  string           `json:"status" yaml:"status"`
	Message string           `json:"message,omitempty" yaml:"message,omitempty"`
	Error   string           `json:"error,omitempty" yaml:"error,omitempty"`
	Local   map[string]int64 `json:"local,omitempty" yaml:"local,omitempty"`
}

func healthCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "health",
		Usage: "Check the API and print the state of the local data",
		Action: func(ctx context.Context, cmd *urfave.Command) error {
			a := getConfig(cmd)

			v := &healthView{API: a.Client.BaseURL(), Status: "ok"}
			msg, err := a.Client.Health(ctx)
			if err != nil {
				v.Status = "unavailable"
				v.Error = err.Error()
			}
			v.Message = msg

			state, err := data.GetDataState(a.DB)
			if err != nil {
				slog.Warn("failed to read local data state", "error", err)
			}
			v.Local = state

			return a.encode(v)
		},
	}
}
