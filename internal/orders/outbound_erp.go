package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ERPOptions configures the upstream client.
type ERPOptions struct {
	URL        string
	Token      string
	Subsidiary string
	Location   string
	Employee   string
	RatePerSec float64
	Timeout    time.Duration
}

type ERPOutbound struct {
	url     string
	token   string
	params  map[string]any
	client  *http.Client
	limiter *rate.Limiter
}

func NewERPOutbound(opts ERPOptions) *ERPOutbound {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}

	params := map[string]any{}
	for k, v := range map[string]string{
		"subsidiary": opts.Subsidiary,
		"location":   opts.Location,
		"employee":   opts.Employee,
	} {
		if v != "" {
			params[k] = v
		}
	}

	return &ERPOutbound{
		url:     strings.TrimSpace(opts.URL),
		token:   strings.TrimSpace(opts.Token),
		params:  params,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

type erpResponse struct {
	Data []json.RawMessage `json:"data"`
}

// FetchPage posts the year's date range plus the fixed params and returns the
// first element of "data". An absent or oddly shaped "data" is an empty page.
func (c *ERPOutbound) FetchPage(ctx context.Context, q PageQuery) ([]map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body := make(map[string]any, len(c.params)+4)
	for k, v := range c.params {
		body[k] = v
	}
	body["startDate"] = fmt.Sprintf("%d-01-01", q.Year)
	body["endDate"] = fmt.Sprintf("%d-12-31", q.Year)
	body["limit"] = q.Limit
	body["offset"] = q.Offset

	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("erp api error: %s body=%s", resp.Status, respBody)
	}

	var out erpResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode erp response: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, nil
	}

	var page []map[string]any
	if err := json.Unmarshal(out.Data[0], &page); err != nil {
		log.Warn().Str("component", "erp").Int("year", q.Year).Int("offset", q.Offset).
			Err(err).Msg("unexpected page shape, treating as empty")
		return nil, nil
	}
	return page, nil
}
