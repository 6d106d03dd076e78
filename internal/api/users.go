package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/coachboard/coachboard-client/internal/models"
)

func (c *Client) UpdateMe(ctx context.Context, in models.UserUpdate) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.doJSON(ctx, http.MethodPut, "/users/me", nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadPhoto sends r as the multipart "file" field.
func (c *Client) UploadPhoto(ctx context.Context, filename string, r io.Reader) (*models.User, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/users/me/upload-photo", nil, &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	data, _, err := c.send(req)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := decode(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ChangePassword(ctx context.Context, in models.PasswordChange) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, "/users/me/change-password", nil, in, nil)
}

func (c *Client) ExportData(ctx context.Context) (*models.UserDataExport, error) {
	var out models.UserDataExport
	if err := c.doJSON(ctx, http.MethodGet, "/users/me/export", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMe permanently removes the account. The password travels in the body.
func (c *Client) DeleteMe(ctx context.Context, password string) error {
	if password == "" {
		return &models.ValidationError{Field: "password", Message: "is required"}
	}
	body := map[string]string{"password": password}
	return c.doJSON(ctx, http.MethodDelete, "/users/me", nil, body, nil)
}
