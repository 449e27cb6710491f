// Package explorer is the reporting bridge: a read-only client for the
// block-explorer service whose figures the audit prints beside its own. The
// payload contract is strict; a shape violation aborts the run rather than
// degrading into a partial comparison.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ctcscan/supplyx/pkg/utils"
)

// ErrSchema means the explorer's response did not match the fixed payload
// schema. Surfaced verbatim; there is no best-effort parsing.
var ErrSchema = errors.New("explorer: payload schema violation")

const (
	tokenInfoPath    = "/api/token-info"
	latestBlocksPath = "/api/latest-blocks"
)

// Client is a thin HTTP client for the explorer API.
type Client struct {
	base    string
	network string
	client  *http.Client
}

// Opts is the set of options for a new Client.
type Opts struct {
	BaseURL    string
	Network    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(o Opts) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	} else if client.Timeout == 0 {
		client.Timeout = o.Timeout
	}
	return &Client{base: o.BaseURL, network: o.Network, client: client}
}

// getJSON fetches path and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	u := c.base + path
	if c.network != "" {
		u += "?network=" + url.QueryEscape(c.network)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("explorer: %s: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		_ = utils.DrainAndClose(resp.Body)
		return fmt.Errorf("explorer: %s: http %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		_ = utils.DrainAndClose(resp.Body)
		return fmt.Errorf("%w: %s: %v", ErrSchema, path, err)
	}
	return utils.DrainAndClose(resp.Body)
}

// TokenInfo fetches the explorer's supply figures. Every field of the CTC
// balance object must be present and decimal-parseable.
func (c *Client) TokenInfo(ctx context.Context) (*TokenInfo, error) {
	var raw rawTokenInfoPayload
	if err := c.getJSON(ctx, tokenInfoPath, &raw); err != nil {
		return nil, err
	}
	if raw.CTC == nil {
		return nil, fmt.Errorf("%w: missing CTC balance object", ErrSchema)
	}
	info := &TokenInfo{}
	for _, field := range []struct {
		name string
		src  *string
		dst  *decimal.Decimal
	}{
		{"totalSupply", raw.CTC.TotalSupply, &info.TotalSupply},
		{"circulatingSupply", raw.CTC.CirculatingSupply, &info.CirculatingSupply},
		{"lockedSupply", raw.CTC.LockedSupply, &info.LockedSupply},
		{"reservedSupply", raw.CTC.ReservedSupply, &info.ReservedSupply},
		{"stakedSupply", raw.CTC.StakedSupply, &info.StakedSupply},
		{"unbondingSupply", raw.CTC.UnbondingSupply, &info.UnbondingSupply},
	} {
		if field.src == nil {
			return nil, fmt.Errorf("%w: missing CTC.%s", ErrSchema, field.name)
		}
		d, err := decimal.NewFromString(*field.src)
		if err != nil {
			return nil, fmt.Errorf("%w: CTC.%s %q is not a decimal", ErrSchema, field.name, *field.src)
		}
		*field.dst = d
	}
	return info, nil
}

// LatestBlocks fetches the explorer's latest-blocks feed, newest first. The
// list must be non-empty and every entry fully populated; callers use the
// first entry's hash to pick the audited block.
func (c *Client) LatestBlocks(ctx context.Context) ([]Block, error) {
	var raw []rawBlock
	if err := c.getJSON(ctx, latestBlocksPath, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty latest-blocks list", ErrSchema)
	}
	blocks := make([]Block, 0, len(raw))
	for i, rb := range raw {
		if rb.BlockNumber == nil || rb.Hash == nil || rb.Finalized == nil {
			return nil, fmt.Errorf("%w: latest-blocks entry %d incomplete", ErrSchema, i)
		}
		if *rb.Hash == "" {
			return nil, fmt.Errorf("%w: latest-blocks entry %d has empty hash", ErrSchema, i)
		}
		blocks = append(blocks, Block{BlockNumber: *rb.BlockNumber, Hash: *rb.Hash, Finalized: *rb.Finalized})
	}
	return blocks, nil
}
