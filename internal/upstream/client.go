// Package upstream is the client for the remote inventory API. The API is a
// single POST endpoint dispatching on an "action" field and answering with a
// {success, data, message} envelope. Everything this module shows is derived
// from that API; nothing here is a system of record.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 10 << 20

type ErrorKind string

const (
	// KindNetwork covers connection-level failures (refused, reset, DNS).
	KindNetwork ErrorKind = "network"
	// KindTimeout is a request that exceeded the client timeout.
	KindTimeout ErrorKind = "timeout"
	// KindMalformed is a reply that is not the expected JSON envelope:
	// empty body, HTML error page, or unparseable JSON.
	KindMalformed ErrorKind = "malformed_response"
	// KindRejected is a well-formed reply carrying success=false or a
	// non-200 status.
	KindRejected ErrorKind = "rejected"
)

// Error is the typed failure returned by every client call.
type Error struct {
	Kind    ErrorKind
	Action  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream %s (%s): %s", e.Action, e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream %s (%s): %v", e.Action, e.Kind, e.Err)
	}
	return fmt.Sprintf("upstream %s (%s)", e.Action, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the error kind of err, or "" when err is not an upstream
// error.
func KindOf(err error) ErrorKind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}

type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
}

func NewClient(endpoint string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// call posts {action, ...params} and decodes the envelope's data into out.
// out may be nil for actions whose payload is irrelevant.
func (c *Client) call(ctx context.Context, action string, params map[string]any, out any) error {
	body := map[string]any{"action": action}
	for key, value := range params {
		body[key] = value
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: KindMalformed, Action: action, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: KindNetwork, Action: action, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		kind := KindNetwork
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			kind = KindTimeout
		}
		return &Error{Kind: kind, Action: action, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, Action: action, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: KindRejected, Action: action, Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &Error{Kind: KindMalformed, Action: action, Message: "empty response body"}
	}
	if looksLikeHTML(trimmed) {
		// Mis-routed upstream requests answer with an HTML error page.
		return &Error{Kind: KindMalformed, Action: action, Message: "HTML response body"}
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return &Error{Kind: KindMalformed, Action: action, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request not successful"
		}
		return &Error{Kind: KindRejected, Action: action, Message: msg}
	}
	if out != nil {
		if len(env.Data) == 0 {
			return &Error{Kind: KindMalformed, Action: action, Message: "missing data field"}
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Kind: KindMalformed, Action: action, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	if c.log != nil {
		c.log.Debug("upstream call ok", zap.String("action", action))
	}
	return nil
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(string(body[:min(len(body), 64)]))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") ||
		strings.HasPrefix(head, "<br") || strings.HasPrefix(head, "<b>")
}
