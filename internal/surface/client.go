// Package surface holds the controllers that sit in front of the user: the
// page widget, the popup, and the messengers they use to reach the
// coordinator.
package surface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hxnx/synesth/internal/server"
	"github.com/hxnx/synesth/internal/session"
)

var (
	// ErrContextInvalidated means the coordinator this surface was bound to
	// is gone. The surface must tear itself down.
	ErrContextInvalidated = errors.New("coordinator context invalidated")
	ErrUnreachable        = errors.New("coordinator unreachable")
)

// Messenger delivers one request and decodes the reply into out.
type Messenger interface {
	Send(ctx context.Context, req session.Request, out any) error
}

// Client reaches the coordinator over HTTP. It pins the first instance ID
// it sees; a different one later invalidates the client for good.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	instanceID  string
	invalidated bool
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Alive runs the liveness check on its own.
func (c *Client) Alive(ctx context.Context) error {
	if err := c.checkValid(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/liveness", nil)
	if err != nil {
		return err
	}
	c.pin(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return c.observeInstance(resp.Header.Get(server.InstanceHeader))
}

func (c *Client) Send(ctx context.Context, msg session.Request, out any) error {
	if err := c.checkValid(); err != nil {
		return err
	}

	payload, err := session.EncodeRequest(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.pin(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if err := c.observeInstance(resp.Header.Get(server.InstanceHeader)); err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var body session.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Code == "" {
			return fmt.Errorf("coordinator status %d", resp.StatusCode)
		}
		if body.Code == session.CodeStaleInstance {
			c.invalidate()
			return ErrContextInvalidated
		}
		return session.ErrorFromCode(body.Code, body.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s reply: %w", msg.Kind(), err)
	}
	return nil
}

func (c *Client) checkValid() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidated {
		return ErrContextInvalidated
	}
	return nil
}

// pin echoes the pinned instance so the coordinator can refuse the request
// before acting on it.
func (c *Client) pin(req *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.instanceID != "" {
		req.Header.Set(server.InstanceHeader, c.instanceID)
	}
}

func (c *Client) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = true
}

func (c *Client) observeInstance(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.invalidated:
		return ErrContextInvalidated
	case id == "":
		return nil
	case c.instanceID == "":
		c.instanceID = id
		return nil
	case c.instanceID != id:
		c.invalidated = true
		return ErrContextInvalidated
	default:
		return nil
	}
}

type Dispatcher interface {
	Dispatch(ctx context.Context, req session.Request) (any, error)
}

// Local dispatches in-process. Replies still go through JSON so callers see
// exactly what an HTTP client would.
type Local struct {
	Dispatcher Dispatcher
}

func (l Local) Send(ctx context.Context, req session.Request, out any) error {
	reply, err := l.Dispatcher.Dispatch(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	raw, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
