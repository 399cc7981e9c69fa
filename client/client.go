// Package client fetches trait documents, hashes them, and submits the digests.
//
// One Client talks to one URL: a GET returns the trait document and a POST to
// the same URL accepts the ordered digest list. Nothing is retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"xdao.co/traithash/cidutil"
	"xdao.co/traithash/config"
	"xdao.co/traithash/internal/logging"
	"xdao.co/traithash/traits"
)

const (
	// DefaultTimeout bounds each request when Options.Timeout is zero.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodyBytes caps response bodies when Options.MaxBodyBytes is zero.
	DefaultMaxBodyBytes = 1 << 20

	// snippetBytes bounds how much of an error response ends up in messages.
	snippetBytes = 512
)

// Options configures a Client. The zero value is usable.
type Options struct {
	// HTTPClient defaults to a client with no timeout of its own;
	// Timeout below governs each request.
	HTTPClient *http.Client
	Logger     *slog.Logger

	// Timeout applies per request when non-zero. Zero selects DefaultTimeout.
	Timeout time.Duration

	// MaxBodyBytes caps response bodies. Zero selects DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// DryRun makes Run stop after hashing.
	DryRun bool
}

// Client talks to a single trait endpoint.
type Client struct {
	url     string
	http    *http.Client
	logger  *slog.Logger
	timeout time.Duration
	maxBody int64
	dryRun  bool
}

// Result is the outcome of one Run.
type Result struct {
	Hashes traits.HashResult
	// Payload is the exact POST body (or the body that would have been sent).
	Payload []byte
	// PayloadCID is a blake2b-512 CIDv1 over Payload.
	PayloadCID string
	// Response is the raw POST response body; nil for a dry run.
	Response  []byte
	Submitted bool
}

// New returns a client for url, which must be an absolute http(s) URL.
func New(url string, opts Options) (*Client, error) {
	if err := config.ValidateURL(url); err != nil {
		return nil, err
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("client: negative timeout %s", opts.Timeout)
	}
	if opts.MaxBodyBytes < 0 {
		return nil, fmt.Errorf("client: negative max body bytes %d", opts.MaxBodyBytes)
	}
	c := &Client{
		url:     url,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
		timeout: opts.Timeout,
		maxBody: opts.MaxBodyBytes,
		dryRun:  opts.DryRun,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.timeout == 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxBody == 0 {
		c.maxBody = DefaultMaxBodyBytes
	}
	return c, nil
}

// URL returns the endpoint the client talks to.
func (c *Client) URL() string { return c.url }

// Fetch GETs and validates the trait document.
func (c *Client) Fetch(ctx context.Context) (traits.TraitSet, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	c.logger.Debug("fetching traits", "url", c.url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return traits.TraitSet{}, traits.WrapError(traits.KindTransport, traits.RuleFetchTransport, "build GET request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return traits.TraitSet{}, traits.WrapError(traits.KindTransport, traits.RuleFetchTransport, "GET "+c.url, err)
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return traits.TraitSet{}, c.statusError(traits.RuleFetchStatus, "GET", resp)
	}
	body, err := c.readBody(resp)
	if err != nil {
		return traits.TraitSet{}, err
	}

	set, err := traits.DecodeTraitSet(body)
	if err != nil {
		c.logger.Warn("rejected trait document", "rule", traits.RuleID(err), "error", err)
		return traits.TraitSet{}, err
	}
	c.logger.Info("fetched traits", "status", resp.StatusCode, "set", set)
	return set, nil
}

// Submit POSTs hashes as a JSON array and returns the raw response body.
func (c *Client) Submit(ctx context.Context, hashes traits.HashResult) ([]byte, error) {
	payload, err := json.Marshal(hashes)
	if err != nil {
		return nil, fmt.Errorf("encode hashes: %w", err)
	}
	return c.submit(ctx, payload)
}

func (c *Client) submit(ctx context.Context, payload []byte) ([]byte, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, traits.WrapError(traits.KindTransport, traits.RuleSubmitTransport, "build POST request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, traits.WrapError(traits.KindTransport, traits.RuleSubmitTransport, "POST "+c.url, err)
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return nil, c.statusError(traits.RuleSubmitStatus, "POST", resp)
	}
	body, err := c.readBody(resp)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("submit accepted", "status", resp.StatusCode, "response_bytes", len(body))
	return body, nil
}

// Run fetches, hashes, and submits. Any failure aborts before later stages.
func (c *Client) Run(ctx context.Context) (Result, error) {
	set, err := c.Fetch(ctx)
	if err != nil {
		return Result{}, err
	}
	hashes, err := traits.Hash(set)
	if err != nil {
		return Result{}, err
	}
	payload, err := json.Marshal(hashes)
	if err != nil {
		return Result{}, fmt.Errorf("encode hashes: %w", err)
	}
	res := Result{
		Hashes:     hashes,
		Payload:    payload,
		PayloadCID: cidutil.CIDv1RawBlake2b512(payload),
	}

	if c.dryRun {
		c.logger.Info("dry run; not submitting", "hashes", len(hashes), "payload_cid", res.PayloadCID)
		return res, nil
	}

	body, err := c.submit(ctx, payload)
	if err != nil {
		return Result{}, err
	}
	res.Response = body
	res.Submitted = true
	c.logger.Info("submitted hashes", "hashes", len(hashes), "payload_cid", res.PayloadCID)
	return res, nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.timeout)
}

func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, traits.WrapError(traits.KindTransport, traits.RuleReadBody, "read response body", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, traits.NewError(traits.KindResponse, traits.RuleBodyTooLarge,
			fmt.Sprintf("response body exceeds %d bytes", c.maxBody))
	}
	return body, nil
}

func (c *Client) statusError(ruleID, method string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, snippetBytes))
	msg := fmt.Sprintf("%s %s returned %s", method, c.url, resp.Status)
	if s := bytes.TrimSpace(snippet); len(s) > 0 {
		msg += ": " + string(s)
	}
	c.logger.Warn("unexpected status", "method", method, "status", resp.StatusCode)
	return traits.StatusError(ruleID, msg, resp.StatusCode)
}

func ok(status int) bool { return status >= 200 && status < 300 }

// IsTimeout reports whether err was caused by a request deadline.
func IsTimeout(err error) bool {
	return traits.IsKind(err, traits.KindTransport) && errors.Is(err, context.DeadlineExceeded)
}
