// Package postgrest reaches the relational store over HTTP using the PostgREST
// dialect spoken by Supabase.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gomesrodrigo528/app-form/internal/storage"
)

// Config holds the PostgREST endpoint settings.
type Config struct {
	BaseURL string        // e.g. https://project.supabase.co/rest/v1
	APIKey  string        // sent as apikey and bearer token
	Timeout time.Duration // HTTP client timeout
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// errorBody is the PostgREST error payload.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

const uniqueViolation = "23505"

// New creates a PostgREST client
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("postgrest base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid postgrest base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

func (c *Client) Select(ctx context.Context, table string, q storage.Query) ([]storage.Row, error) {
	params := filterParams(q.Filters)
	params.Set("select", "*")
	if len(q.Order) > 0 {
		params.Set("order", orderParam(q.Order))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	resp, err := c.do(ctx, http.MethodGet, table, params, nil, "")
	if err != nil {
		return nil, err
	}
	return decodeRows(resp)
}

func (c *Client) Insert(ctx context.Context, table string, row storage.Row) (storage.Row, error) {
	body, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("%w: encode row: %v", storage.ErrRejected, err)
	}

	resp, err := c.do(ctx, http.MethodPost, table, url.Values{}, body, "return=representation")
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert into %s returned no row", storage.ErrRejected, table)
	}
	return rows[0], nil
}

func (c *Client) Update(ctx context.Context, table string, filters []storage.Filter, patch storage.Row) (int64, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return 0, fmt.Errorf("%w: encode patch: %v", storage.ErrRejected, err)
	}

	resp, err := c.do(ctx, http.MethodPatch, table, filterParams(filters), body, "return=representation")
	if err != nil {
		return 0, err
	}
	rows, err := decodeRows(resp)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (c *Client) Delete(ctx context.Context, table string, filters []storage.Filter) (int64, error) {
	resp, err := c.do(ctx, http.MethodDelete, table, filterParams(filters), nil, "return=representation")
	if err != nil {
		return 0, err
	}
	rows, err := decodeRows(resp)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (c *Client) Count(ctx context.Context, table string, filters []storage.Filter) (int64, error) {
	resp, err := c.do(ctx, http.MethodHead, table, filterParams(filters), nil, "count=exact")
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return parseContentRange(resp.Header.Get("Content-Range"))
}

// do sends one request and converts transport and status failures to storage errors.
// The caller owns the returned body.
func (c *Client) do(ctx context.Context, method, table string, params url.Values, body []byte, prefer string) (*http.Response, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(table)
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", storage.ErrRejected, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, storage.Unavailable(err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return nil, statusError(method, table, resp.StatusCode, raw)
}

func statusError(method, table string, status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	switch {
	case status == http.StatusConflict || body.Code == uniqueViolation:
		return fmt.Errorf("%w: %s %s: %s", storage.ErrConflict, method, table, msg)
	case status >= 500 || status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s %s returned %d: %s", storage.ErrUnavailable, method, table, status, msg)
	default:
		return fmt.Errorf("%w: %s %s returned %d: %s", storage.ErrRejected, method, table, status, msg)
	}
}

func decodeRows(resp *http.Response) ([]storage.Row, error) {
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var rows []storage.Row
	if err := dec.Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, storage.Unavailable(fmt.Errorf("decode response: %w", err))
	}
	return rows, nil
}

func filterParams(filters []storage.Filter) url.Values {
	params := url.Values{}
	for _, f := range filters {
		params.Add(f.Column, string(f.Op)+"."+formatValue(f.Value))
	}
	return params
}

func orderParam(orders []storage.Order) string {
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		dir := "asc"
		if o.Desc {
			dir = "desc"
		}
		parts = append(parts, o.Column+"."+dir)
	}
	return strings.Join(parts, ",")
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// parseContentRange reads the total from "0-24/3573" or "*/0".
func parseContentRange(header string) (int64, error) {
	i := strings.LastIndex(header, "/")
	if i < 0 {
		return 0, fmt.Errorf("%w: missing count in Content-Range %q", storage.ErrRejected, header)
	}
	total, err := strconv.ParseInt(header[i+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid Content-Range %q", storage.ErrRejected, header)
	}
	return total, nil
}
