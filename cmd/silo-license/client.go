package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
)

type client struct {
	server string
	http   *http.Client
}

func newClient(server string) *client {
	return &client{
		server: strings.TrimRight(server, "/"),
		http:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *client) Activate(ctx context.Context, key string) (*dto.ActivateResponse, error) {
	var resp dto.ActivateResponse
	if err := c.post(ctx, "/activate", dto.ActivateRequest{Key: key}, &resp); err != nil {
		return nil, fmt.Errorf("activation failed: %w", err)
	}
	return &resp, nil
}

func (c *client) Verify(ctx context.Context, token string) (*dto.VerifyResponse, error) {
	var resp dto.VerifyResponse
	if err := c.post(ctx, "/verify", dto.VerifyRequest{Token: token}, &resp); err != nil {
		return nil, fmt.Errorf("verification failed: %w", err)
	}
	return &resp, nil
}

func (c *client) post(ctx context.Context, path string, in, out any) error {
	reqBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
