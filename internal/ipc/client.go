package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// defaultTimeout applies to requests that do not wait for a user choice.
const defaultTimeout = 3 * time.Second

// Client talks to a running launcher service.
type Client struct {
	socketPath string
}

// NewClient creates a client for path, or the default socket path when empty.
func NewClient(path string) (*Client, error) {
	if path == "" {
		var err error
		path, err = DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Client{socketPath: path}, nil
}

// Ping checks that the service answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, Request{Action: ActionPing}, true)
	return err
}

// Open asks the service to show the launcher. Dmenu requests block until the
// user picks a value and return it; Cancelled means the session was closed.
func (c *Client) Open(ctx context.Context, params OpenParams) (string, error) {
	resp, err := c.do(ctx, Request{Action: ActionOpen, Open: &params}, !params.Dmenu)
	if err != nil {
		return "", err
	}
	return resp.Result, nil
}

func (c *Client) do(ctx context.Context, req Request, bounded bool) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && bounded {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return Response{}, fmt.Errorf("dial service socket: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.Status != StatusOK {
		if resp.Error == "" {
			resp.Error = "unknown service error"
		}
		return Response{}, errors.New(resp.Error)
	}
	return resp, nil
}
