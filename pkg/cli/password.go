package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mchmarny/motorista/pkg/data"
	"github.com/mchmarny/motorista/pkg/motorista"
	"github.com/mchmarny/motorista/pkg/strength"
	urfave "github.com/urfave/cli/v3"
)

const (
	localFlag   = "local"
	currentFlag = "current"
	newFlag     = "new"

	newPasswordEnv = "MOTORISTA_NEW_PASSWORD"
)

var errPasswordRequired = errors.New("password required, pass it as argument or set --password")

// checkView is the strength of a password as printed.
type checkView struct {
	strength.Reading `yaml:",inline"`
	Classes          []string `json:"classes" yaml:"classes"`
	Bar              string   `json:"bar" yaml:"bar"`
}

func passwordCommand() *urfave.Command {
	return &urfave.Command{
		Name:            "password",
		Usage:           "Check password strength or change the password",
		HideHelpCommand: true,
		Commands: []*urfave.Command{
			{
				Name:      "check",
				Usage:     "Score a password locally and ask the API for its label",
				ArgsUsage: "<password>",
				Flags: []urfave.Flag{
					newPasswordFlag("Password to check"),
					&urfave.BoolFlag{Name: localFlag, Usage: "Skip the API call"},
				},
				Action: cmdPasswordCheck,
			},
			{
				Name:   "meter",
				Usage:  "Type a password and watch its strength as you type",
				Action: cmdPasswordMeter,
			},
			{
				Name:  "change",
				Usage: "Replace the current password",
				Flags: []urfave.Flag{
					newIDFlag(),
					&urfave.StringFlag{
						Name:    currentFlag,
						Usage:   "Current password (prompted when not set)",
						Sources: urfave.EnvVars(passwordEnv),
					},
					&urfave.StringFlag{
						Name:    newFlag,
						Usage:   "New password (prompted with the strength meter when not set)",
						Sources: urfave.EnvVars(newPasswordEnv),
					},
				},
				Action: cmdPasswordChange,
			},
		},
	}
}

func cmdPasswordCheck(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)

	pw := cmd.Args().First()
	if pw == "" {
		pw = cmd.String(passwordFlag)
	}
	if pw == "" {
		return errPasswordRequired
	}

	return a.encode(a.check(ctx, pw, cmd.Bool(localFlag)))
}

func cmdPasswordMeter(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)

	pw, err := a.meter(ctx, "Senha")
	if err != nil {
		return err
	}
	return a.encode(a.check(ctx, pw, false))
}

// check scores pw and, unless local, asks the API for its label. A failed
// lookup leaves the label empty.
func (a *appConfig) check(ctx context.Context, pw string, local bool) *checkView {
	label := ""
	if !local {
		l, err := a.Client.CheckPassword(ctx, pw)
		if err != nil {
			slog.Warn("remote strength check failed", "error", err)
		} else {
			label = l
		}
	}

	r := strength.Read(pw, label)
	return &checkView{
		Reading: r,
		Classes: strength.Classes(pw),
		Bar:     r.Render(0),
	}
}

func cmdPasswordChange(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)
	id, err := a.motoristaID(cmd)
	if err != nil {
		return err
	}

	atual, err := a.password(ctx, cmd.String(currentFlag), "Senha atual")
	if err != nil {
		return err
	}
	nova, confirmacao, err := a.newPassword(ctx, cmd.String(newFlag))
	if err != nil {
		return err
	}
	if err := motorista.ValidatePassword(nova, confirmacao); err != nil {
		return &motorista.FieldError{Field: newFlag, Err: err}
	}

	msg, err := a.Client.ChangePassword(ctx, id, &motorista.ChangePasswordRequest{
		SenhaAtual:  atual,
		NovaSenha:   nova,
		Confirmacao: confirmacao,
	})
	a.record(id, data.ActivityPasswordChange, "", err)
	if err != nil {
		return fmt.Errorf("changing password: %w", err)
	}
	return a.encode(map[string]string{"message": msg})
}
