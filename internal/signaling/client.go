// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package signaling implements the command channel to the third-party relay
// that can reach peers we cannot address directly. It is used during the
// hole-punch test to ask a peer, via the relay, to emit an outbound probe
// packet toward our listener.
package signaling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/telekom/plover/internal/helper"
	"github.com/telekom/plover/internal/logger"
	"github.com/telekom/plover/internal/natprobe"
)

const (
	// commandSendNatPacket instructs the relay to have a peer send a
	// datagram.
	commandSendNatPacket = "SendNatPacket"
	// targetConnectivity routes the command to the peer's connectivity
	// subsystem.
	targetConnectivity = "connectivity"

	defaultConnectTimeout = 10 * time.Second
	defaultWriteTimeout   = 5 * time.Second
)

// Config is the configuration of the relay connection.
type Config struct {
	// Url is the websocket endpoint of the relay, e.g.
	// "wss://relay.example.com/signaling".
	Url string `yaml:"url" mapstructure:"url"`
	// Token is an optional bearer token presented on connect.
	Token string `yaml:"token" mapstructure:"token"`
	// ConnectTimeout bounds the websocket handshake.
	ConnectTimeout time.Duration `yaml:"connectTimeout" mapstructure:"connectTimeout"`
	// Retry is the retry configuration for establishing the connection.
	Retry helper.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

func (c Config) Validate() error {
	u, err := url.Parse(c.Url)
	if err != nil {
		return fmt.Errorf("invalid relay url %q: %w", c.Url, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("relay url must use the ws or wss scheme, got %q", c.Url)
	}
	return nil
}

// Command is a JSON instruction understood by the relay.
type Command struct {
	Command string `json:"command"`
	Target  string `json:"target"`
	Args    []any  `json:"args"`
}

// Envelope routes a command to a specific peer connected to the relay.
type Envelope struct {
	// To identifies the peer the relay should forward the command to.
	To string `json:"to"`
	Command
}

// Client is a websocket client for the relay. It connects lazily on the
// first send, drops the connection on write failures so the next send
// redials, and is safe for concurrent use. It implements
// [natprobe.Signaler].
type Client struct {
	config Config

	mu   sync.Mutex
	conn *websocket.Conn
}

var _ natprobe.Signaler = (*Client)(nil)

func NewClient(cfg Config) *Client {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	return &Client{config: cfg}
}

// SendNatPacket asks the relay to instruct peer to send message toward
// target. The instruction is fire-and-forget: the relay does not acknowledge
// it, and delivery to the peer is not guaranteed.
func (c *Client) SendNatPacket(ctx context.Context, peer, target natprobe.Address, message string) error {
	env := Envelope{
		To: peer.String(),
		Command: Command{
			Command: commandSendNatPacket,
			Target:  targetConnectivity,
			Args:    []any{target.String(), message},
		},
	}
	return c.send(ctx, env)
}

func (c *Client) send(ctx context.Context, v any) error {
	log := logger.FromContext(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to relay: %w", err)
		}
	}

	deadline := time.Now().Add(defaultWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)

	if err := c.conn.WriteJSON(v); err != nil {
		log.WarnContext(ctx, "Relay write failed, dropping connection", "error", err)
		_ = c.conn.Close()
		c.conn = nil
		return fmt.Errorf("failed to send relay command: %w", err)
	}
	return nil
}

// connect dials the relay. Must be called with the mutex held.
func (c *Client) connect(ctx context.Context) error {
	log := logger.FromContext(ctx)

	dial := helper.Retry(func(ctx context.Context) error {
		dialer := websocket.Dialer{HandshakeTimeout: c.config.ConnectTimeout}
		header := http.Header{}
		if c.config.Token != "" {
			header.Set("Authorization", "Bearer "+c.config.Token)
		}

		conn, resp, err := dialer.DialContext(ctx, c.config.Url, header) //nolint:bodyclose // Closed below
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			return err
		}
		c.conn = conn
		return nil
	}, c.config.Retry)

	if err := dial(ctx); err != nil {
		return err
	}
	log.DebugContext(ctx, "Connected to signaling relay", "url", c.config.Url)
	return nil
}

// Close tears down the relay connection. Subsequent sends reconnect.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}

	err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(defaultWriteTimeout))
	cerr := c.conn.Close()
	c.conn = nil
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return err
	}
	return cerr
}
