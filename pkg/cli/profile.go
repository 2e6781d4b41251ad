package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mchmarny/motorista/pkg/auth"
	"github.com/mchmarny/motorista/pkg/data"
	"github.com/mchmarny/motorista/pkg/motorista"
	urfave "github.com/urfave/cli/v3"
)

const (
	offlineFlag  = "offline"
	telefoneFlag = "telefone"
	fileFlag     = "file"
	dirFlag      = "dir"
	confirmFlag  = "confirm"
)

var errNothingToUpdate = errors.New("nothing to update, set --email and/or --telefone")

// profileView is the profile as printed, with what is still missing.
type profileView struct {
	Motorista *motorista.Motorista `json:"motorista" yaml:"motorista"`
	Pendentes []string             `json:"documentos_pendentes,omitempty" yaml:"documentos_pendentes,omitempty"`
	Cached    bool                 `json:"cached,omitempty" yaml:"cached,omitempty"`
	FetchedAt *time.Time           `json:"fetched_at,omitempty" yaml:"fetched_at,omitempty"`
}

func profileCommand() *urfave.Command {
	return &urfave.Command{
		Name:            "profile",
		Usage:           "View and manage the motorista profile",
		HideHelpCommand: true,
		Commands: []*urfave.Command{
			{
				Name:  "get",
				Usage: "Print the profile",
				Flags: []urfave.Flag{
					newIDFlag(),
					&urfave.BoolFlag{Name: offlineFlag, Usage: "Use the last profile fetched instead of the API"},
				},
				Action: cmdProfileGet,
			},
			{
				Name:  "update",
				Usage: "Change the phone and/or e-mail",
				Flags: []urfave.Flag{
					newIDFlag(),
					&urfave.StringFlag{Name: emailFlag, Usage: "New e-mail"},
					&urfave.StringFlag{Name: telefoneFlag, Usage: "New phone with area code"},
				},
				Action: cmdProfileUpdate,
			},
			{
				Name:            "photo",
				Usage:           "Manage the profile photo",
				HideHelpCommand: true,
				Commands: []*urfave.Command{
					{
						Name:  "upload",
						Usage: "Replace the profile photo (jpg, png or webp up to 5MB)",
						Flags: []urfave.Flag{
							newIDFlag(),
							&urfave.StringFlag{Name: fileFlag, Usage: "Path to the photo", Required: true},
						},
						Action: cmdPhotoUpload,
					},
					{
						Name:  "download",
						Usage: "Save the profile photo",
						Flags: []urfave.Flag{
							newIDFlag(),
							&urfave.StringFlag{Name: dirFlag, Usage: "Target directory", Value: "."},
						},
						Action: cmdPhotoDownload,
					},
				},
			},
			{
				Name:  "delete",
				Usage: "Request account deletion, or close it with --confirm",
				Flags: []urfave.Flag{
					newIDFlag(),
					&urfave.BoolFlag{Name: confirmFlag, Usage: "Confirm a deletion already requested"},
				},
				Action: cmdProfileDelete,
			},
		},
	}
}

func cmdProfileGet(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)
	id, err := a.motoristaID(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool(offlineFlag) {
		p, err := data.GetProfile(a.DB, id)
		if err != nil {
			return fmt.Errorf("reading cached profile: %w", err)
		}
		return a.encode(&profileView{
			Motorista: p.Motorista,
			Pendentes: p.Motorista.MissingDocuments(),
			Cached:    true,
			FetchedAt: &p.FetchedAt,
		})
	}

	m, err := a.Client.GetProfile(ctx, id)
	if err != nil {
		return err
	}
	if err := data.SaveProfile(a.DB, m); err != nil {
		slog.Warn("failed to cache profile", "motorista", id, "error", err)
	}

	return a.encode(&profileView{Motorista: m, Pendentes: m.MissingDocuments()})
}

func cmdProfileUpdate(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)
	id, err := a.motoristaID(cmd)
	if err != nil {
		return err
	}

	req := &motorista.UpdateProfileRequest{
		Email:    motorista.SanitizeEmail(cmd.String(emailFlag)),
		Telefone: motorista.SanitizeTelefone(cmd.String(telefoneFlag)),
	}
	if req.Email == "" && req.Telefone == "" {
		return errNothingToUpdate
	}

	var errs []error
	if req.Email != "" {
		if err := motorista.ValidateEmail(req.Email); err != nil {
			errs = append(errs, &motorista.FieldError{Field: emailFlag, Err: err})
		}
	}
	if req.Telefone != "" {
		if err := motorista.ValidateTelefone(req.Telefone); err != nil {
			errs = append(errs, &motorista.FieldError{Field: telefoneFlag, Err: err})
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	m, err := a.Client.UpdateProfile(ctx, id, req)
	a.record(id, data.ActivityProfileUpdate, "", err)
	if err != nil {
		return err
	}

	if m != nil && m.ID != "" {
		if err := data.SaveProfile(a.DB, m); err != nil {
			slog.Warn("failed to cache profile", "motorista", id, "error", err)
		}
	}
	return a.encode(m)
}

func cmdPhotoUpload(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)
	id, err := a.motoristaID(cmd)
	if err != nil {
		return err
	}

	p, err := a.Client.UploadPhoto(ctx, id, cmd.String(fileFlag))
	a.record(id, data.ActivityPhotoUpload, p, err)
	if err != nil {
		return err
	}
	return a.encode(map[string]string{"foto": p})
}

func cmdPhotoDownload(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)
	id, err := a.motoristaID(cmd)
	if err != nil {
		return err
	}

	p, err := a.Client.DownloadPhoto(ctx, id, cmd.String(dirFlag))
	if err != nil {
		return err
	}
	return a.encode(map[string]string{"foto": p})
}

func cmdProfileDelete(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)
	id, err := a.motoristaID(cmd)
	if err != nil {
		return err
	}

	if !cmd.Bool(confirmFlag) {
		msg, err := a.Client.RequestDeletion(ctx, id)
		a.record(id, data.ActivityDeleteRequest, "", err)
		if err != nil {
			return err
		}
		return a.encode(map[string]string{"message": msg})
	}

	msg, err := a.Client.ConfirmDeletion(ctx, id)
	if err != nil {
		a.record(id, data.ActivityDeleteConfirm, "", err)
		return err
	}

	// nothing of the deleted motorista is kept, activity included
	if err := data.Purge(a.DB, id); err != nil {
		slog.Warn("failed to purge local data", "motorista", id, "error", err)
	}
	if id == a.Info.MotoristaID {
		if err := a.Store.Clear(); err != nil {
			return fmt.Errorf("clearing identity: %w", err)
		}
		a.Info = auth.Info{}
	}
	return a.encode(map[string]string{"message": msg})
}
