package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipline/internal/config"
)

// commandContext carries persistent flag values into subcommands.
type commandContext struct {
	api        *string
	owner      *string
	configPath *string
}

// apiClient is a thin JSON client for the cliplined HTTP API.
type apiClient struct {
	base  string
	owner string
	http  *http.Client
}

func (c *commandContext) client() (*apiClient, error) {
	base := strings.TrimSpace(*c.api)
	if base == "" {
		cfg, _, _, err := config.Load(strings.TrimSpace(*c.configPath))
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		bind := strings.TrimSpace(cfg.Paths.APIBind)
		if bind == "" {
			return nil, errors.New("no API address: set --api or api_bind in the config")
		}
		base = "http://" + bind
	}
	base = strings.TrimRight(base, "/")

	return &apiClient{
		base:  base,
		owner: strings.TrimSpace(*c.owner),
		http:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (a *apiClient) do(method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, a.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.owner != "" {
		req.Header.Set("X-Owner-ID", a.owner)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("is cliplined running? %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("daemon returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (a *apiClient) get(path string, out any) error {
	return a.do(http.MethodGet, path, nil, out)
}

func (a *apiClient) post(path string, payload, out any) error {
	return a.do(http.MethodPost, path, payload, out)
}

func (a *apiClient) delete(path string) error {
	return a.do(http.MethodDelete, path, nil, nil)
}
