package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gearsync/core/retry"
	"gearsync/core/timeutil"

	"go.uber.org/zap"
)

// Wire format versions the Hub API expects per endpoint.
const (
	searchFormatVersion = 0.1
	uploadFormatVersion = 0
)

// Client talks to the Hub registry API.
type Client struct {
	cfg    *Config
	http   *http.Client
	retry  retry.Config
	logger *zap.Logger
}

// NewClient creates a Hub API client.
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

// UploadResult reports the outcome of an upload_deployments call.
type UploadResult struct {
	TrapCount  int
	FailedSets []string
}

type searchRequest struct {
	FormatVersion    float64 `json:"format_version"`
	ApiKey           string  `json:"api_key"`
	MaxSets          int     `json:"max_sets,omitempty"`
	StartDatetimeUTC string  `json:"start_datetime_utc,omitempty"`
	TrapID           string  `json:"trap_id,omitempty"`
	Status           string  `json:"status,omitempty"`
}

type searchResponse struct {
	Sets []gearSetWire `json:"sets"`
}

type uploadRequest struct {
	FormatVersion int           `json:"format_version"`
	ApiKey        string        `json:"api_key"`
	Sets          []gearSetWire `json:"sets"`
}

type uploadResponse struct {
	Result struct {
		TrapCount  int      `json:"trap_count"`
		FailedSets []string `json:"failed_sets"`
	} `json:"result"`
}

type trapWire struct {
	TrapID               string  `json:"trap_id"`
	Sequence             int     `json:"sequence"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	DeployDatetimeUTC    *string `json:"deploy_datetime_utc"`
	SurfaceDatetimeUTC   *string `json:"surface_datetime_utc"`
	RetrievedDatetimeUTC *string `json:"retrieved_datetime_utc"`
	Status               string  `json:"status"`
	Accuracy             string  `json:"accuracy"`
	ReleaseType          string  `json:"release_type"`
	IsOnEnd              bool    `json:"is_on_end"`
	Manufacturer         string  `json:"manufacturer,omitempty"`
	SerialNumber         string  `json:"serial_number,omitempty"`
}

type gearSetWire struct {
	SetID          string     `json:"set_id"`
	VesselID       string     `json:"vessel_id"`
	DeploymentType string     `json:"deployment_type"`
	TrapsInSet     int        `json:"traps_in_set"`
	TrawlPath      *string    `json:"trawl_path"`
	ShareWith      []string   `json:"share_with"`
	WhenUpdatedUTC string     `json:"when_updated_utc"`
	Traps          []trapWire `json:"traps"`
}

// Search pulls every gear set updated since the given time.
// A non-200 response or a body without a "sets" key is treated as zero
// results so one bad poll does not abort the cycle.
func (c *Client) Search(ctx context.Context, since time.Time) ([]GearSet, error) {
	req := searchRequest{
		FormatVersion:    searchFormatVersion,
		ApiKey:           c.cfg.ApiKey,
		MaxSets:          c.cfg.MaxSets,
		StartDatetimeUTC: timeutil.Format(since),
	}

	sets, err := c.search(ctx, "/search_hub/", req)
	if err == nil && c.cfg.MaxSets > 0 && len(sets) >= c.cfg.MaxSets {
		c.logger.Warn("Hub search hit the max_sets cap, results may be truncated",
			zap.Int("max_sets", c.cfg.MaxSets))
	}
	return sets, err
}

// SearchOwn pulls sets this account previously uploaded, optionally filtered
// by trap id and status.
func (c *Client) SearchOwn(ctx context.Context, trapID string, status Status) ([]GearSet, error) {
	req := searchRequest{
		FormatVersion: searchFormatVersion,
		ApiKey:        c.cfg.ApiKey,
		TrapID:        trapID,
		Status:        string(status),
	}

	return c.search(ctx, "/search_own/", req)
}

// NewestOwnSet finds the most recently updated own set containing any of the
// given trap ids, or nil when none exists.
func (c *Client) NewestOwnSet(ctx context.Context, trapIDs []string) (*GearSet, error) {
	if len(trapIDs) == 0 {
		return nil, nil
	}

	sets, err := c.SearchOwn(ctx, trapIDs[0], StatusDeployed)
	if err != nil {
		return nil, err
	}

	var newest *GearSet
	var newestAt time.Time
	for i := range sets {
		at, err := sets[i].WhenUpdated()
		if err != nil {
			c.logger.Warn("Skipping own set with unparsable timestamp",
				zap.String("set_id", sets[i].ID),
				zap.Error(err))
			continue
		}
		if newest == nil || at.After(newestAt) {
			newest = &sets[i]
			newestAt = at
		}
	}

	return newest, nil
}

// Upload pushes gear sets to the Hub's upload_deployments endpoint and
// returns the per-set outcome reported by the Hub.
func (c *Client) Upload(ctx context.Context, sets []GearSet) (*UploadResult, error) {
	req := uploadRequest{
		FormatVersion: uploadFormatVersion,
		ApiKey:        c.cfg.ApiKey,
		Sets:          make([]gearSetWire, 0, len(sets)),
	}
	for _, set := range sets {
		req.Sets = append(req.Sets, encodeGearSet(set))
	}

	body, err := c.post(ctx, "/upload_deployments/", req)
	if err != nil {
		return nil, fmt.Errorf("upload deployments: %w", err)
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	if len(resp.Result.FailedSets) > 0 {
		c.logger.Warn("Hub rejected some uploaded sets",
			zap.Strings("failed_sets", resp.Result.FailedSets))
	}

	return &UploadResult{
		TrapCount:  resp.Result.TrapCount,
		FailedSets: resp.Result.FailedSets,
	}, nil
}

func (c *Client) search(ctx context.Context, path string, req searchRequest) ([]GearSet, error) {
	body, err := c.post(ctx, path, req)
	if err != nil {
		c.logger.Error("Hub search failed", zap.String("path", path), zap.Error(err))
		return []GearSet{}, nil
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Hub search returned malformed body", zap.String("path", path), zap.Error(err))
		return []GearSet{}, nil
	}
	if resp.Sets == nil {
		c.logger.Error("Hub search response missing sets key", zap.String("path", path))
		return []GearSet{}, nil
	}

	sets := make([]GearSet, 0, len(resp.Sets))
	for _, w := range resp.Sets {
		sets = append(sets, decodeGearSet(w))
	}
	return sets, nil
}

// post sends a JSON request and returns the response body. Transient network
// failures are retried; a non-200 status is a permanent error.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var body []byte
	err = retry.Do(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+path, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
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
			return retry.Transient(fmt.Errorf("hub returned %d: %s", resp.StatusCode, body))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("hub returned %d: %s", resp.StatusCode, body)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

func decodeGearSet(w gearSetWire) GearSet {
	set := GearSet{
		ID:             w.SetID,
		VesselID:       w.VesselID,
		DeploymentType: w.DeploymentType,
		TrapsInSet:     w.TrapsInSet,
		ShareWith:      w.ShareWith,
		WhenUpdatedUTC: w.WhenUpdatedUTC,
		Traps:          make([]Trap, 0, len(w.Traps)),
	}
	if w.TrawlPath != nil {
		set.TrawlPath = *w.TrawlPath
	}
	if set.ShareWith == nil {
		set.ShareWith = []string{}
	}

	for _, t := range w.Traps {
		set.Traps = append(set.Traps, Trap{
			ID:                   t.TrapID,
			Sequence:             t.Sequence,
			Latitude:             t.Latitude,
			Longitude:            t.Longitude,
			DeployDatetimeUTC:    strVal(t.DeployDatetimeUTC),
			SurfaceDatetimeUTC:   strVal(t.SurfaceDatetimeUTC),
			RetrievedDatetimeUTC: strVal(t.RetrievedDatetimeUTC),
			Status:               Status(t.Status),
			Accuracy:             t.Accuracy,
			ReleaseType:          t.ReleaseType,
			IsOnEnd:              t.IsOnEnd,
			Manufacturer:         t.Manufacturer,
			SerialNumber:         t.SerialNumber,
		})
	}

	return set
}

// encodeGearSet maps an entity onto the upload wire shape. The Hub requires
// release_type to be a string, never null.
func encodeGearSet(set GearSet) gearSetWire {
	trawlPath := set.TrawlPath
	w := gearSetWire{
		SetID:          set.ID,
		VesselID:       set.VesselID,
		DeploymentType: set.DeploymentType,
		TrapsInSet:     set.TrapsInSet,
		TrawlPath:      &trawlPath,
		ShareWith:      set.ShareWith,
		WhenUpdatedUTC: set.WhenUpdatedUTC,
		Traps:          make([]trapWire, 0, len(set.Traps)),
	}
	if w.ShareWith == nil {
		w.ShareWith = []string{}
	}

	for _, t := range set.Traps {
		w.Traps = append(w.Traps, trapWire{
			TrapID:               t.ID,
			Sequence:             t.Sequence,
			Latitude:             t.Latitude,
			Longitude:            t.Longitude,
			DeployDatetimeUTC:    strPtr(t.DeployDatetimeUTC),
			SurfaceDatetimeUTC:   strPtr(t.SurfaceDatetimeUTC),
			RetrievedDatetimeUTC: strPtr(t.RetrievedDatetimeUTC),
			Status:               string(t.Status),
			Accuracy:             t.Accuracy,
			ReleaseType:          t.ReleaseType,
			IsOnEnd:              t.IsOnEnd,
			Manufacturer:         t.Manufacturer,
			SerialNumber:         t.SerialNumber,
		})
	}

	return w
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
