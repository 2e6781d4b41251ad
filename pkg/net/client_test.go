package net

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mchmarny/motorista/pkg/motorista"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestGetHTTPClient(t *testing.T) {
	client, err := GetHTTPClient(DefaultTimeout)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, client.Jar)
	assert.Equal(t, DefaultTimeout, client.Timeout)
}

func TestClient_TimeoutAboveDefault(t *testing.T) {
	if testing.Short() {
		t.Skip("waits past the default timeout")
	}

	delay := DefaultTimeout + time.Second
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"OK"}`)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{BaseURL: srv.URL, Timeout: 3 * DefaultTimeout})
	require.NoError(t, err)

	msg, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", msg)
}

func TestClient_TimeoutBelowResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = io.WriteString(w, `{"message":"OK"}`)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Health(context.Background())
	assert.Error(t, err)
}

func TestGetHTTPClient_TransportHasNoHeaderCap(t *testing.T) {
	client, err := GetHTTPClient(time.Minute)
	require.NoError(t, err)

	tr, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Zero(t, tr.ResponseHeaderTimeout)
	assert.Equal(t, time.Minute, client.Timeout)
}

func TestGetOAuthClient(t *testing.T) {
	base, err := GetHTTPClient(time.Second)
	require.NoError(t, err)

	client := GetOAuthClient(context.Background(), "test-token", base)
	assert.NotNil(t, client)
	assert.Equal(t, time.Second, client.Timeout)
}

func TestNewClient_Errors(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.Error(t, err)

	_, err = NewClient(context.Background(), Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}

func TestClient_Headers(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, clientAgent, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "OK"})
	}))

	msg, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", msg)
}

func TestClient_BearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cr3t", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "OK"})
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), Config{BaseURL: srv.URL, Token: "s3cr3t"})
	require.NoError(t, err)
	_, err = c.Health(context.Background())
	require.NoError(t, err)
}

func TestCheckPassword(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/utils/check-password", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["senha"] == "fraca" {
			writeJSON(t, w, http.StatusOK, map[string]string{"forca": "Fraca", "message": "senha fraca"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]string{"forca": "Forte"})
	}))

	label, err := c.CheckPassword(context.Background(), "Senha@2024!x")
	require.NoError(t, err)
	assert.Equal(t, "Forte", label)

	label, err = c.CheckPassword(context.Background(), "fraca")
	require.NoError(t, err)
	assert.Equal(t, "Fraca", label)
}

func TestCheckPassword_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "not json")
		}},
		{"empty label", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"forca":""}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			label, err := c.CheckPassword(context.Background(), "x")
			assert.Error(t, err)
			assert.Empty(t, label)
		})
	}
}

func TestCheckPassword_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.CheckPassword(context.Background(), "x")
	assert.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req motorista.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.CPF == "52998224725" {
			writeJSON(t, w, http.StatusConflict, map[string]string{
				"code":    "motorista.cpf_ja_cadastrado",
				"message": "CPF já cadastrado",
			})
			return
		}
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"message":   "Cadastro realizado com sucesso",
			"motorista": map[string]string{"id": "m-1", "nome": req.Nome, "email": req.Email, "status": "aguardando_documentos"},
		})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["senha"] != "Senha@2024" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "credenciais inválidas"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"motorista": map[string]string{"id": "m-1", "nome": "Maria", "email": req["email"]},
		})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	s, err := c.Register(ctx, &motorista.RegisterRequest{Nome: "Maria", Email: "maria@example.com", CPF: "11144477735"})
	require.NoError(t, err)
	assert.Equal(t, "m-1", s.ID)
	assert.Equal(t, motorista.StatusAguardandoDocumentos, s.Status)

	_, err = c.Register(ctx, &motorista.RegisterRequest{CPF: "52998224725"})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "motorista.cpf_ja_cadastrado", apiErr.Code)
	assert.Equal(t, "CPF já cadastrado", apiErr.Message)

	s, err = c.Login(ctx, " maria@example.com ", "Senha@2024")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", s.Email)

	_, err = c.Login(ctx, "maria@example.com", "errada")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "credenciais inválidas")
}

func TestProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "m-1" {
			writeJSON(t, w, http.StatusNotFound, map[string]string{"code": "motorista.nao_encontrado", "message": "motorista não encontrado"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"motorista": map[string]any{
			"id": "m-1", "nome": "Maria", "email": "maria@example.com", "status": "aprovado",
			"documentos": []map[string]any{{"id": "d-1", "tipo_documento": "CNH", "status": "pendente"}},
		}})
	})
	mux.HandleFunc("PUT /api/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req motorista.UpdateProfileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(t, w, http.StatusOK, map[string]any{"message": "ok", "motorista": map[string]any{
			"id": r.PathValue("id"), "email": req.Email, "telefone": req.Telefone,
		}})
	})
	mux.HandleFunc("PUT /api/profile/{id}/password", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "velha", req["senhaAtual"])
		assert.Equal(t, "Nova@2024", req["novaSenha"])
		assert.Equal(t, "Nova@2024", req["confirmacao"])
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "Senha alterada com sucesso"})
	})
	mux.HandleFunc("POST /api/profile/{id}/request-deletion", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "Solicitação de exclusão registrada"})
	})
	mux.HandleFunc("POST /api/profile/{id}/confirm-deletion", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "Sua conta foi encerrada"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	m, err := c.GetProfile(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, motorista.StatusAprovado, m.Status)
	require.Len(t, m.Documentos, 1)
	assert.Equal(t, "CNH", m.Documentos[0].TipoDocumento)

	_, err = c.GetProfile(ctx, "nope")
	assert.True(t, IsNotFound(err))

	_, err = c.GetProfile(ctx, "")
	assert.Error(t, err)

	m, err = c.UpdateProfile(ctx, "m-1", &motorista.UpdateProfileRequest{Email: "novo@example.com", Telefone: "11987654321"})
	require.NoError(t, err)
	assert.Equal(t, "novo@example.com", m.Email)

	msg, err := c.ChangePassword(ctx, "m-1", &motorista.ChangePasswordRequest{SenhaAtual: "velha", NovaSenha: "Nova@2024", Confirmacao: "Nova@2024"})
	require.NoError(t, err)
	assert.Equal(t, "Senha alterada com sucesso", msg)

	msg, err = c.RequestDeletion(ctx, "m-1")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	msg, err = c.ConfirmDeletion(ctx, "m-1")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
}

func TestReview(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/documents/{id}/approve", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "Motorista aprovado com sucesso"})
	})
	mux.HandleFunc("PUT /api/documents/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "CNH ilegível", req["motivo"])
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "Motorista rejeitado"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	msg, err := c.Approve(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, "Motorista aprovado com sucesso", msg)

	msg, err = c.Reject(ctx, "m-1", "CNH ilegível")
	require.NoError(t, err)
	assert.Equal(t, "Motorista rejeitado", msg)

	_, err = c.Reject(ctx, "m-1", " ")
	assert.Error(t, err)
}

func TestUploadDocuments(t *testing.T) {
	dir := t.TempDir()
	cnh := filepath.Join(dir, "cnh.pdf")
	selfie := filepath.Join(dir, "selfie.jpg")
	require.NoError(t, os.WriteFile(cnh, []byte("%PDF-1.4"), 0600))
	require.NoError(t, os.WriteFile(selfie, []byte("jpeg"), 0600))

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/m-1/upload/files", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "cnh.pdf", files[0].Filename)
		assert.Equal(t, "CNH", r.FormValue("tipo_0"))
		assert.Equal(t, "selfie_cnh", r.FormValue("tipo_1"))
		writeJSON(t, w, http.StatusOK, map[string]any{"message": "Arquivos enviados", "quantidade": len(files)})
	}))

	n, err := c.UploadDocuments(context.Background(), "m-1", []motorista.DocumentFile{
		{Tipo: motorista.DocumentoCNH, Path: cnh},
		{Tipo: motorista.DocumentoSelfie, Path: selfie},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = c.UploadDocuments(context.Background(), "m-1", nil)
	assert.ErrorIs(t, err, motorista.ErrNenhumDocumento)

	_, err = c.UploadDocuments(context.Background(), "m-1", []motorista.DocumentFile{{Tipo: motorista.DocumentoCNH, Path: filepath.Join(dir, "missing.pdf")}})
	assert.Error(t, err)

	doc := filepath.Join(dir, "cnh.docx")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0600))
	_, err = c.UploadDocuments(context.Background(), "m-1", []motorista.DocumentFile{{Tipo: motorista.DocumentoCNH, Path: doc}})
	assert.ErrorIs(t, err, motorista.ErrDocumentoFormato)
}

func TestUploadPhoto(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(photo, []byte("png"), 0600))

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, fh, err := r.FormFile("foto")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "me.png", fh.Filename)
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "ok", "caminho": "data/m-1/profile/foto.png"})
	}))

	p, err := c.UploadPhoto(context.Background(), "m-1", photo)
	require.NoError(t, err)
	assert.Equal(t, "data/m-1/profile/foto.png", p)
}

func TestDownloadDocuments(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/documents/{id}/file/{tipo}", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.PathValue("tipo") {
		case "CNH":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = io.WriteString(w, "pdf-bytes")
		case "selfie_cnh":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = io.WriteString(w, "jpg-bytes")
		default:
			writeJSON(t, w, http.StatusNotFound, map[string]string{"code": "documento.nao_encontrado", "message": "documento não encontrado"})
		}
	})
	c := newTestClient(t, mux)
	dir := t.TempDir()

	paths, err := c.DownloadDocuments(context.Background(), "m-1", []string{"CNH", "selfie_cnh"}, dir)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, filepath.Join(dir, "CNH.pdf"), paths["CNH"])
	assert.Equal(t, filepath.Join(dir, "selfie_cnh.jpg"), paths["selfie_cnh"])

	b, err := os.ReadFile(paths["CNH"])
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(b))

	_, err = c.DownloadDocument(context.Background(), "m-1", "CRLV", dir)
	assert.ErrorIs(t, err, ErrorFileNotFound)

	before := hits.Load()
	_, err = c.DownloadDocuments(context.Background(), "m-1", []string{"../../escape"}, dir)
	assert.ErrorIs(t, err, motorista.ErrDocumentoTipo)
	assert.Equal(t, before, hits.Load())
	_, statErr := os.Stat(filepath.Join(dir, "..", "..", "escape"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDecodeError_PlainText(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down\n")
	}))

	_, err := c.Health(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestPrintHTTPResponse_Nil(t *testing.T) {
	// should not panic
	PrintHTTPResponse(nil)
}

func TestPrintHTTPResponse_WithResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{},
		Body:       http.NoBody,
	}
	// should not panic
	PrintHTTPResponse(resp)
}
