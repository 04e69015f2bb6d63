package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hzouari/janus/internal/janus/types"
)

type ClientConfig struct {
	BaseURL string

	// Timeout bounds each call.  Defaults to 3s — a door that hangs
	// waiting on the network is worse than a door that fails closed.
	Timeout time.Duration
}

// Client calls the decision API from the door agent.  It fails closed: any
// transport failure, timeout, or unexpected response becomes a denial with
// the service-unavailable reason, never an error the caller might mishandle
// into an open door.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *log.Logger
}

func NewClient(cfg ClientConfig, logger *log.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) CheckAccess(ctx context.Context, identityID *int64) types.Decision {
	d, err := c.checkAccess(ctx, identityID)
	if err != nil {
		c.logger.WithError(err).Warn("decision service unreachable, failing closed")
		return types.Decision{
			IdentityID: identityID,
			Granted:    false,
			Reason:     types.ReasonServiceUnavailable,
			DecidedAt:  time.Now(),
		}
	}
	return d
}

func (c *Client) checkAccess(ctx context.Context, identityID *int64) (types.Decision, error) {
	body, err := json.Marshal(types.CheckAccessRequest{IdentityID: identityID})
	if err != nil {
		return types.Decision{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/check_access", bytes.NewReader(body))
	if err != nil {
		return types.Decision{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Decision{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Decision{}, fmt.Errorf("decision service returned %s", resp.Status)
	}

	var out types.CheckAccessResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return types.Decision{}, fmt.Errorf("bad decision response: %w", err)
	}

	d := types.Decision{
		IdentityID: identityID,
		Granted:    out.Status == types.StatusGranted,
		Reason:     types.Reason(out.Reason),
		DecidedAt:  time.Now(),
	}
	if d.Granted {
		d.Reason = types.ReasonNone
	}
	if out.IdentityName != nil {
		d.IdentityName = *out.IdentityName
	}
	return d, nil
}
