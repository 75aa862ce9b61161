package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gearsync/core/retry"

	"go.uber.org/zap"
)

// Client talks to one Tracker deployment's gear API.
type Client struct {
	cfg    *Config
	http   *http.Client
	retry  retry.Config
	logger *zap.Logger
}

// NewClient creates a Tracker API client.
func NewClient(cfg *Config, logger *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		retry:  retry.DefaultConfig(),
		logger: logger,
	}
}

// Name returns the configured destination name.
func (c *Client) Name() string {
	return c.cfg.Name
}

type gearPage struct {
	Data struct {
		Results []Gear  `json:"results"`
		Next    *string `json:"next"`
	} `json:"data"`
}

// Gear pulls every gear record, following pagination until the last page.
// Pass an empty state to fetch all lifecycle states.
func (c *Client) Gear(ctx context.Context, state GearStatus) ([]Gear, error) {
	params := url.Values{}
	params.Set("page_size", strconv.Itoa(c.cfg.PageSize))
	if state != "" {
		params.Set("state", string(state))
	}

	next := c.gearURL() + "?" + params.Encode()

	var gear []Gear
	for next != "" {
		body, err := c.do(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, fmt.Errorf("list gear: %w", err)
		}

		var page gearPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode gear page: %w", err)
		}

		gear = append(gear, page.Data.Results...)

		if page.Data.Next == nil {
			break
		}
		next = *page.Data.Next
	}

	if len(gear) == 0 {
		c.logger.Warn("No gear found on tracker", zap.String("destination", c.cfg.Name))
	}

	return gear, nil
}

// CreateGear creates a new gear record. The Tracker answers 200 or 201.
func (c *Client) CreateGear(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode gear payload: %w", err)
	}

	if _, err := c.do(ctx, http.MethodPost, c.gearURL(), data); err != nil {
		return fmt.Errorf("create gear: %w", err)
	}
	return nil
}

// UpdateGear patches an existing gear record in place.
func (c *Client) UpdateGear(ctx context.Context, gearID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode gear payload: %w", err)
	}

	if _, err := c.do(ctx, http.MethodPatch, c.gearURL()+gearID+"/", data); err != nil {
		return fmt.Errorf("update gear %s: %w", gearID, err)
	}
	return nil
}

func (c *Client) gearURL() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/gear/"
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload []byte) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.Transient(err)
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.Transient(err)
		}

		if resp.StatusCode >= 500 {
			return retry.Transient(fmt.Errorf("tracker returned %d: %s", resp.StatusCode, body))
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("tracker returned %d: %s", resp.StatusCode, body)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}
