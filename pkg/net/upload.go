package net

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mchmarny/motorista/pkg/motorista"
)

const (
	filesField = "files"
	typeField  = "tipo_"
	photoField = "foto"
)

type uploadResponse struct {
	Message    string `json:"message"`
	Quantidade int    `json:"quantidade"`
}

type photoResponse struct {
	Message string `json:"message"`
	Caminho string `json:"caminho"`
}

// UploadDocuments sends up to three documents in one multipart request,
// each file paired with its tipo_<index> field.
func (c *Client) UploadDocuments(ctx context.Context, id string, files []motorista.DocumentFile) (int, error) {
	if id == "" {
		return 0, errIDRequired
	}
	if err := motorista.ValidateDocumentSet(files); err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, f := range files {
		if err := addFile(w, filesField, f.Path, motorista.ValidateDocumentFile); err != nil {
			return 0, err
		}
		if err := w.WriteField(typeField+strconv.Itoa(i), f.Tipo); err != nil {
			return 0, fmt.Errorf("writing field for %s: %w", f.Tipo, err)
		}
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("closing multipart writer: %w", err)
	}

	var r uploadResponse
	if err := c.postMultipart(ctx, c.endpoint("api", "documents", id, "upload", "files"), w.FormDataContentType(), &buf, &r); err != nil {
		return 0, fmt.Errorf("uploading documents for %s: %w", id, err)
	}
	return r.Quantidade, nil
}

// UploadPhoto replaces the profile photo.
func (c *Client) UploadPhoto(ctx context.Context, id, path string) (string, error) {
	if id == "" {
		return "", errIDRequired
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := addFile(w, photoField, path, motorista.ValidatePhotoFile); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	var r photoResponse
	if err := c.postMultipart(ctx, c.endpoint("api", "profile", id, "photo"), w.FormDataContentType(), &buf, &r); err != nil {
		return "", fmt.Errorf("uploading photo for %s: %w", id, err)
	}
	return r.Caminho, nil
}

func (c *Client) postMultipart(ctx context.Context, url, contentType string, body io.Reader, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, url, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding content: %w", err)
	}
	return nil
}

func addFile(w *multipart.Writer, field, path string, validate func(string, int64) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := validate(info.Name(), info.Size()); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("creating form file for %s: %w", path, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copying %s: %w", path, err)
	}
	return nil
}
