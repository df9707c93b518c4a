// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package udpserver provides the UDP packet listener the probing protocol
// runs on. It receives plain-text probe datagrams and hands them to a
// handler (typically the correlator's dispatch), and sends outbound probes.
//
// The server is an explicitly constructed instance with a clear lifecycle:
// bind via [Server.Listen] (or lazily on [Server.Run]), stop via
// [Server.Shutdown]. It is owned by whoever composes the classifier.
package udpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"

	"github.com/telekom/plover/internal/logger"
	"github.com/telekom/plover/internal/natprobe"
	"golang.org/x/sys/unix"
)

// maxDatagramSize bounds inbound probe payloads. Probe messages are short
// text tokens; anything larger is foreign traffic and gets truncated.
const maxDatagramSize = 1024

// Config is the configuration of the probe listener.
type Config struct {
	// ListenAddress is the local UDP address to bind, e.g. "0.0.0.0:6112".
	ListenAddress string `yaml:"listenAddress" mapstructure:"listenAddress"`
	// ReadBufferSize optionally sets SO_RCVBUF on the socket. Zero leaves
	// the kernel default.
	ReadBufferSize int `yaml:"readBufferSize" mapstructure:"readBufferSize"`
}

func (c Config) Validate() error {
	if c.ListenAddress == "" {
		return errors.New("listen address cannot be empty")
	}
	if _, err := net.ResolveUDPAddr("udp", c.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.ListenAddress, err)
	}
	if c.ReadBufferSize < 0 {
		return fmt.Errorf("read buffer size cannot be negative, got %d", c.ReadBufferSize)
	}
	return nil
}

// Handler consumes one inbound probe datagram.
type Handler func(source natprobe.Address, message string)

// Server is the UDP transport behind the probing protocol. It implements
// [natprobe.Transport].
type Server struct {
	config  Config
	handler Handler

	mu   sync.RWMutex
	conn *net.UDPConn
	addr natprobe.Address

	done     chan struct{}
	shutOnce sync.Once
}

var _ natprobe.Transport = (*Server)(nil)

func New(cfg Config, handler Handler) *Server {
	return &Server{
		config:  cfg,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Listen binds the UDP socket. Binding failure is the one fatal startup
// error of the probing stack and is returned unmasked. Listen is idempotent.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var opErr error
			if err := c.Control(func(fd uintptr) {
				opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				if opErr == nil && s.config.ReadBufferSize > 0 {
					opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, s.config.ReadBufferSize)
				}
			}); err != nil {
				return err
			}
			return opErr
		},
	}

	pc, err := lc.ListenPacket(ctx, "udp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to bind probe listener on %q: %w", s.config.ListenAddress, err)
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return fmt.Errorf("unexpected packet conn type %T", pc)
	}

	s.conn = conn
	s.addr = natprobe.AddressFromUDP(conn.LocalAddr().(*net.UDPAddr))
	return nil
}

// Run receives probe datagrams until the context is canceled or the server
// is shut down. It binds the socket first if Listen was not called.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	if err := s.Listen(ctx); err != nil {
		return err
	}
	conn := s.connection()
	log.InfoContext(ctx, "Probe listener started", "address", s.LocalAddr().String())

	// Closing the socket is what unblocks the read loop.
	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		_ = conn.Close()
	}()

	buf := make([]byte, maxDatagramSize)
	for {
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.DebugContext(ctx, "Probe listener stopped")
				return nil
			}
			log.WarnContext(ctx, "Failed to read probe datagram", "error", err)
			continue
		}

		source := natprobe.AddressFromUDP(remote)
		message := string(buf[:n])
		log.DebugContext(ctx, "Received probe datagram", "source", source.String(), "message", message)
		s.handler(source, message)
	}
}

// SendTo emits a plain-text datagram toward the target.
func (s *Server) SendTo(target natprobe.Address, message string) error {
	conn := s.connection()
	if conn == nil {
		return errors.New("probe listener is not started")
	}

	addr, err := net.ResolveUDPAddr("udp", target.String())
	if err != nil {
		return fmt.Errorf("failed to resolve target %s: %w", target, err)
	}
	if _, err := conn.WriteToUDP([]byte(message), addr); err != nil {
		return fmt.Errorf("failed to send datagram to %s: %w", target, err)
	}
	return nil
}

// LocalAddr returns the bound listener address, or the zero Address before
// Listen succeeded.
func (s *Server) LocalAddr() natprobe.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Shutdown stops the read loop and closes the socket.
func (s *Server) Shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	s.shutOnce.Do(func() {
		log.DebugContext(ctx, "Shutting down probe listener")
		close(s.done)
		if conn := s.connection(); conn != nil {
			_ = conn.Close()
		}
	})
}

func (s *Server) connection() *net.UDPConn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}
