package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mchmarny/motorista/pkg/motorista"
	"golang.org/x/sync/errgroup"
)

const (
	fileMode = 0600

	maxParallelDownloads = 3
)

var ErrorFileNotFound = errors.New("file not found")

// DownloadDocument saves the document of the given type into dir and
// returns the path of the written file.
func (c *Client) DownloadDocument(ctx context.Context, id, tipo, dir string) (string, error) {
	if id == "" {
		return "", errIDRequired
	}
	if err := motorista.ValidateDocumentoTipo(tipo); err != nil {
		return "", err
	}
	return c.download(ctx, c.endpoint("api", "documents", id, "file", tipo), dir, tipo)
}

// DownloadPhoto saves the profile photo into dir.
func (c *Client) DownloadPhoto(ctx context.Context, id, dir string) (string, error) {
	if id == "" {
		return "", errIDRequired
	}
	return c.download(ctx, c.endpoint("api", "profile", id, "photo"), dir, "foto")
}

// DownloadDocuments fetches the given document types in parallel. It returns
// the written paths keyed by type and stops at the first failure.
func (c *Client) DownloadDocuments(ctx context.Context, id string, tipos []string, dir string) (map[string]string, error) {
	paths := make([]string, len(tipos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)
	for i, tipo := range tipos {
		g.Go(func() error {
			p, err := c.DownloadDocument(gctx, id, tipo, dir)
			if err != nil {
				return fmt.Errorf("downloading %s: %w", tipo, err)
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(tipos))
	for i, tipo := range tipos {
		result[tipo] = paths[i]
	}
	return result, nil
}

func (c *Client) download(ctx context.Context, url, dir, name string) (path string, retErr error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil, "")
	if err != nil {
		return "", err
	}
	req.Header.Del("Accept")

	resp, err := c.do(req)
	if err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("%s: %w", name, ErrorFileNotFound)
		}
		return "", err
	}
	defer resp.Body.Close()

	path = filepath.Join(dir, name+extensionFor(resp.Header.Get("Content-Type")))
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	if _, err = io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("error saving downloaded content to file: %w", err)
	}
	return path, nil
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	}
	return ""
}
