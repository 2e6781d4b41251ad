package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mchmarny/motorista/pkg/data"
	"github.com/mchmarny/motorista/pkg/motorista"
	urfave "github.com/urfave/cli/v3"
)

const (
	cnhFlag    = "cnh"
	crlvFlag   = "crlv"
	selfieFlag = "selfie"
	typeFlag   = "type"
	reasonFlag = "reason"
)

var errMotoristaArg = errors.New("motorista ID argument required")

// documentFlags maps each upload flag to its document type.
var documentFlags = []struct {
	flag string
	tipo string
}{
	{cnhFlag, motorista.DocumentoCNH},
	{crlvFlag, motorista.DocumentoCRLV},
	{selfieFlag, motorista.DocumentoSelfie},
}

func documentsCommand() *urfave.Command {
	return &urfave.Command{
		Name:            "documents",
		Usage:           "Upload documents and review them",
		HideHelpCommand: true,
		Commands: []*urfave.Command{
			{
				Name:  "upload",
				Usage: "Send CNH, CRLV and selfie with CNH (pdf, jpg or png up to 5MB each)",
				Flags: []urfave.Flag{
					newIDFlag(),
					&urfave.StringFlag{Name: cnhFlag, Usage: "Path to the CNH"},
					&urfave.StringFlag{Name: crlvFlag, Usage: "Path to the CRLV"},
					&urfave.StringFlag{Name: selfieFlag, Usage: "Path to the selfie holding the CNH"},
				},
				Action: cmdDocumentsUpload,
			},
			{
				Name:  "download",
				Usage: "Save uploaded documents",
				Flags: []urfave.Flag{
					newIDFlag(),
					&urfave.StringSliceFlag{Name: typeFlag, Usage: "Document type [CNH, CRLV, selfie_cnh] (default: all)"},
					&urfave.StringFlag{Name: dirFlag, Usage: "Target directory", Value: "."},
				},
				Action: cmdDocumentsDownload,
			},
			{
				Name:      "approve",
				Usage:     "Approve the documents of a motorista (admin)",
				ArgsUsage: "<motorista-id>",
				Action:    cmdDocumentsApprove,
			},
			{
				Name:      "reject",
				Usage:     "Reject the documents of a motorista (admin)",
				ArgsUsage: "<motorista-id>",
				Flags: []urfave.Flag{
					&urfave.StringFlag{Name: reasonFlag, Usage: "Why the documents were rejected", Required: true},
				},
				Action: cmdDocumentsReject,
			},
		},
	}
}

func cmdDocumentsUpload(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)
	id, err := a.motoristaID(cmd)
	if err != nil {
		return err
	}

	files := make([]motorista.DocumentFile, 0, len(documentFlags))
	tipos := make([]string, 0, len(documentFlags))
	for _, d := range documentFlags {
		if p := cmd.String(d.flag); p != "" {
			files = append(files, motorista.DocumentFile{Tipo: d.tipo, Path: p})
			tipos = append(tipos, d.tipo)
		}
	}

	n, err := a.Client.UploadDocuments(ctx, id, files)
	a.record(id, data.ActivityDocumentsUpload, strings.Join(tipos, ","), err)
	if err != nil {
		return err
	}
	return a.encode(map[string]any{"enviados": n, "tipos": tipos})
}

func cmdDocumentsDownload(ctx context.Context, cmd *urfave.Command) error {
	a := getConfig(cmd)
	id, err := a.motoristaID(cmd)
	if err != nil {
		return err
	}

	tipos := cmd.StringSlice(typeFlag)
	if len(tipos) == 0 {
		tipos = motorista.DocumentosObrigatorios
	}
	for _, tipo := range tipos {
		if err := motorista.ValidateDocumentoTipo(tipo); err != nil {
			return &motorista.FieldError{Field: typeFlag, Err: err}
		}
	}

	paths, err := a.Client.DownloadDocuments(ctx, id, tipos, cmd.String(dirFlag))
	if err != nil {
		return err
	}
	return a.encode(paths)
}

func reviewTarget(cmd *urfave.Command) (*appConfig, string, error) {
	a := getConfig(cmd)
	if err := a.requireAdmin(); err != nil {
		return nil, "", err
	}
	id := strings.TrimSpace(cmd.Args().First())
	if id == "" {
		return nil, "", errMotoristaArg
	}
	return a, id, nil
}

func cmdDocumentsApprove(ctx context.Context, cmd *urfave.Command) error {
	a, id, err := reviewTarget(cmd)
	if err != nil {
		return err
	}

	msg, err := a.Client.Approve(ctx, id)
	a.record(id, data.ActivityApprove, "", err)
	if err != nil {
		return fmt.Errorf("approving %s: %w", id, err)
	}
	return a.encode(map[string]string{"message": msg})
}

func cmdDocumentsReject(ctx context.Context, cmd *urfave.Command) error {
	a, id, err := reviewTarget(cmd)
	if err != nil {
		return err
	}

	reason := cmd.String(reasonFlag)
	msg, err := a.Client.Reject(ctx, id, reason)
	a.record(id, data.ActivityReject, reason, err)
	if err != nil {
		return fmt.Errorf("rejecting %s: %w", id, err)
	}
	return a.encode(map[string]string{"message": msg})
}
