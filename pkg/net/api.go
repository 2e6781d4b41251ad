package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mchmarny/motorista/pkg/motorista"
)

var (
	errIDRequired     = errors.New("motorista ID is required")
	errEmptyStrength  = errors.New("empty strength label in response")
	errReasonRequired = errors.New("rejection reason is required")
)

type messageResponse struct {
	Message string `json:"message"`
}

type summaryResponse struct {
	Message   string             `json:"message"`
	Motorista *motorista.Summary `json:"motorista"`
}

type profileResponse struct {
	Message   string               `json:"message,omitempty"`
	Motorista *motorista.Motorista `json:"motorista"`
}

type strengthResponse struct {
	Forca   string `json:"forca"`
	Message string `json:"message,omitempty"`
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type rejectRequest struct {
	Motivo string `json:"motivo"`
}

type checkPasswordRequest struct {
	Senha string `json:"senha"`
}

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) (string, error) {
	var r messageResponse
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("health"), nil, &r); err != nil {
		return "", fmt.Errorf("checking health: %w", err)
	}
	return r.Message, nil
}

// Register creates a new driver account.
func (c *Client) Register(ctx context.Context, req *motorista.RegisterRequest) (*motorista.Summary, error) {
	if req == nil {
		return nil, errors.New("register request is required")
	}
	return c.summary(ctx, c.endpoint("api", "auth", "register"), req)
}

// Login authenticates the driver by e-mail and password.
func (c *Client) Login(ctx context.Context, email, senha string) (*motorista.Summary, error) {
	return c.summary(ctx, c.endpoint("api", "auth", "login"), &loginRequest{
		Email: strings.TrimSpace(email),
		Senha: senha,
	})
}

func (c *Client) summary(ctx context.Context, url string, in any) (*motorista.Summary, error) {
	var r summaryResponse
	if err := c.doJSON(ctx, http.MethodPost, url, in, &r); err != nil {
		return nil, err
	}
	if r.Motorista == nil || r.Motorista.ID == "" {
		return nil, errors.New("response does not include the motorista")
	}
	return r.Motorista, nil
}

// GetProfile returns the full profile of the driver.
func (c *Client) GetProfile(ctx context.Context, id string) (*motorista.Motorista, error) {
	if id == "" {
		return nil, errIDRequired
	}
	var r profileResponse
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("api", "profile", id), nil, &r); err != nil {
		return nil, fmt.Errorf("getting profile %s: %w", id, err)
	}
	if r.Motorista == nil {
		return nil, fmt.Errorf("profile %s missing from response", id)
	}
	return r.Motorista, nil
}

// UpdateProfile changes the phone and e-mail of the driver.
func (c *Client) UpdateProfile(ctx context.Context, id string, req *motorista.UpdateProfileRequest) (*motorista.Motorista, error) {
	if id == "" {
		return nil, errIDRequired
	}
	if req == nil {
		return nil, errors.New("update request is required")
	}
	var r profileResponse
	if err := c.doJSON(ctx, http.MethodPut, c.endpoint("api", "profile", id), req, &r); err != nil {
		return nil, fmt.Errorf("updating profile %s: %w", id, err)
	}
	return r.Motorista, nil
}

// ChangePassword replaces the current password.
func (c *Client) ChangePassword(ctx context.Context, id string, req *motorista.ChangePasswordRequest) (string, error) {
	if id == "" {
		return "", errIDRequired
	}
	if req == nil {
		return "", errors.New("password change request is required")
	}
	return c.message(ctx, http.MethodPut, c.endpoint("api", "profile", id, "password"), req)
}

// RequestDeletion starts the account deletion.
func (c *Client) RequestDeletion(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", errIDRequired
	}
	return c.message(ctx, http.MethodPost, c.endpoint("api", "profile", id, "request-deletion"), nil)
}

// ConfirmDeletion closes the account.
func (c *Client) ConfirmDeletion(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", errIDRequired
	}
	return c.message(ctx, http.MethodPost, c.endpoint("api", "profile", id, "confirm-deletion"), nil)
}

// Approve marks the driver documents as approved.
func (c *Client) Approve(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", errIDRequired
	}
	return c.message(ctx, http.MethodPut, c.endpoint("api", "documents", id, "approve"), nil)
}

// Reject marks the driver documents as rejected for the given reason.
func (c *Client) Reject(ctx context.Context, id, reason string) (string, error) {
	if id == "" {
		return "", errIDRequired
	}
	if strings.TrimSpace(reason) == "" {
		return "", errReasonRequired
	}
	return c.message(ctx, http.MethodPut, c.endpoint("api", "documents", id, "reject"), &rejectRequest{Motivo: reason})
}

func (c *Client) message(ctx context.Context, method, url string, in any) (string, error) {
	var r messageResponse
	if err := c.doJSON(ctx, method, url, in, &r); err != nil {
		return "", err
	}
	return r.Message, nil
}

// CheckPassword returns the server side strength label of the password.
func (c *Client) CheckPassword(ctx context.Context, password string) (string, error) {
	var r strengthResponse
	err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "utils", "check-password"),
		&checkPasswordRequest{Senha: password}, &r)
	if err != nil {
		return "", fmt.Errorf("checking password: %w", err)
	}
	if r.Forca == "" {
		return "", errEmptyStrength
	}
	return r.Forca, nil
}
