package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mchmarny/motorista/pkg/auth"
	"github.com/mchmarny/motorista/pkg/data"
	"github.com/mchmarny/motorista/pkg/motorista"
	"github.com/mchmarny/motorista/pkg/strength"
	"github.com/mchmarny/motorista/pkg/tui"
	urfave "github.com/urfave/cli/v3"
)

const (
	passwordFlag = "password"
	passwordEnv  = "MOTORISTA_PASSWORD"
	emailFlag    = "email"
	adminFlag    = "admin"
)

func newPasswordFlag(usage string) urfave.Flag {
	return &urfave.StringFlag{
		Name:    passwordFlag,
		Usage:   usage,
		Sources: urfave.EnvVars(passwordEnv),
	}
}

func registerCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "register",
		Usage: "Create a new motorista account",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "nome", Usage: "Full name", Required: true},
			&urfave.StringFlag{Name: "nascimento", Usage: "Birth date (DD/MM/AAAA)", Required: true},
			&urfave.StringFlag{Name: "cpf", Usage: "CPF, masked or digits only", Required: true},
			&urfave.StringFlag{Name: "cnh", Usage: "CNH number", Required: true},
			&urfave.StringFlag{Name: "categoria", Usage: "CNH category [A, B, C, D, E, AB, AC, AD, AE]", Required: true},
			&urfave.StringFlag{Name: "validade", Usage: "CNH expiry date (DD/MM/AAAA)", Required: true},
			&urfave.StringFlag{Name: "placa", Usage: "Vehicle plate (ABC1234 or ABC1D23)", Required: true},
			&urfave.StringFlag{Name: "modelo", Usage: "Vehicle model", Required: true},
			&urfave.StringFlag{Name: "telefone", Usage: "Phone with area code", Required: true},
			&urfave.StringFlag{Name: emailFlag, Usage: "E-mail", Required: true},
			newPasswordFlag("Password (prompted with the strength meter when not set)"),
		},
		Action: cmdRegister,
	}
}

func cmdRegister(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)

	req := &motorista.RegisterRequest{
		Nome:           cmd.String("nome"),
		DataNascimento: cmd.String("nascimento"),
		CPF:            cmd.String("cpf"),
		CNH:            cmd.String("cnh"),
		CategoriaCNH:   cmd.String("categoria"),
		ValidadeCNH:    cmd.String("validade"),
		PlacaVeiculo:   cmd.String("placa"),
		ModeloVeiculo:  cmd.String("modelo"),
		Telefone:       cmd.String("telefone"),
		Email:          cmd.String(emailFlag),
	}
	req.Sanitize()

	senha, confirmacao, err := a.newPassword(ctx, cmd.String(passwordFlag))
	if err != nil {
		return err
	}
	req.Senha = senha
	req.ConfirmacaoSenha = confirmacao

	if err := req.Validate(time.Now()); err != nil {
		return fmt.Errorf("invalid registration:\n%w", err)
	}

	s, err := a.Client.Register(ctx, req)
	if err != nil {
		a.record("", data.ActivityRegister, req.Email, err)
		return fmt.Errorf("registering: %w", err)
	}
	a.record(s.ID, data.ActivityRegister, req.Email, nil)

	if a.Info, err = a.Store.Save(auth.Info{MotoristaID: s.ID, Role: auth.RoleUser}); err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}

	return a.encode(s)
}

func loginCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "login",
		Usage: "Authenticate and store the motorista identity locally",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: emailFlag, Usage: "E-mail", Required: true},
			newPasswordFlag("Password (prompted when not set)"),
			&urfave.BoolFlag{Name: adminFlag, Usage: "Store the admin role to review documents"},
		},
		Action: cmdLogin,
	}
}

func cmdLogin(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)

	senha, err := a.password(ctx, cmd.String(passwordFlag), "Senha")
	if err != nil {
		return err
	}

	s, err := a.Client.Login(ctx, cmd.String(emailFlag), senha)
	if err != nil {
		a.record("", data.ActivityLogin, cmd.String(emailFlag), err)
		return fmt.Errorf("logging in: %w", err)
	}

	role := auth.RoleUser
	if cmd.Bool(adminFlag) {
		role = auth.RoleAdmin
	}
	a.record(s.ID, data.ActivityLogin, string(role), nil)

	if a.Info, err = a.Store.Save(auth.Info{MotoristaID: s.ID, Role: role}); err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}
	slog.Debug("identity saved", "motorista", s.ID, "role", role)

	return a.encode(s)
}

func logoutCommand() *urfave.Command {
	return &urfave.Command{
		Name:   "logout",
		Usage:  "Remove the stored identity",
		Action: cmdLogout,
	}
}

func cmdLogout(_ context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)

	if err := a.Store.Clear(); err != nil {
		return fmt.Errorf("clearing identity: %w", err)
	}
	a.record(a.Info.MotoristaID, data.ActivityLogout, "", nil)
	a.Info = auth.Info{}

	fmt.Fprintln(a.Out, "Logged out.")
	return nil
}

type whoami struct {
	auth.Info `yaml:",inline"`
	API       string `json:"api" yaml:"api"`
}

func whoamiCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "whoami",
		Usage: "Print the stored identity",
		Action: func(_ context.Context, cmd *urfave.Command) error {
			a := getConfig(cmd)
			if a.Info.IsEmpty() {
				return errNotLoggedIn
			}
			return a.encode(&whoami{Info: a.Info, API: a.Client.BaseURL()})
		},
	}
}

// prompts for passwords; swapped in tests
var (
	runPrompt = tui.RunPrompt
	runMeter  = tui.RunMeter
)

// password returns value or, when empty, prompts for it. The value is never
// sent to the strength check.
func (a *appConfig) password(ctx context.Context, value, title string) (string, error) {
	if value != "" {
		return value, nil
	}
	pw, err := runPrompt(ctx, title)
	if err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}
	return pw, nil
}

// meter prompts for a new password with the strength meter.
func (a *appConfig) meter(ctx context.Context, title string) (string, error) {
	pw, err := runMeter(ctx, title, a.Client, strength.WithDebounce(a.Config.Debounce))
	if err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}
	return pw, nil
}

// newPassword returns a password and its confirmation. A non-empty value
// serves as both. Only the new password goes through the meter.
func (a *appConfig) newPassword(ctx context.Context, value string) (string, string, error) {
	if value != "" {
		return value, value, nil
	}
	pw, err := a.meter(ctx, "Nova senha")
	if err != nil {
		return "", "", err
	}
	confirm, err := a.password(ctx, "", "Confirme a senha")
	if err != nil {
		return "", "", err
	}
	return pw, confirm, nil
}
