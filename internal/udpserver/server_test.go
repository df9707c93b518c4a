// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package udpserver

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/plover/internal/natprobe"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid", config: Config{ListenAddress: "127.0.0.1:0"}, wantErr: false},
		{name: "valid with buffer", config: Config{ListenAddress: "0.0.0.0:6112", ReadBufferSize: 1 << 16}, wantErr: false},
		{name: "empty address", config: Config{}, wantErr: true},
		{name: "unparseable address", config: Config{ListenAddress: "not-an-address"}, wantErr: true},
		{name: "negative buffer", config: Config{ListenAddress: "127.0.0.1:0", ReadBufferSize: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServer_ReceivesAndSends(t *testing.T) {
	var mu sync.Mutex
	var received []natprobe.Packet
	srv := New(Config{ListenAddress: "127.0.0.1:0"}, func(source natprobe.Address, message string) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, natprobe.Packet{Source: source, Message: message})
	})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	require.NoError(t, srv.Listen(ctx))

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	local := srv.LocalAddr()
	require.False(t, local.IsZero())

	// A plain UDP client stands in for the remote peer.
	peer, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer peer.Close()

	dst, err := net.ResolveUDPAddr("udp", local.String())
	require.NoError(t, err)
	_, err = peer.WriteToUDP([]byte("public-probe:abc123"), dst)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	pkt := received[0]
	mu.Unlock()
	assert.Equal(t, "public-probe:abc123", pkt.Message)
	assert.Equal(t, natprobe.AddressFromUDP(peer.LocalAddr().(*net.UDPAddr)), pkt.Source)

	// Outbound path: the peer should see what we send.
	peerAddr := natprobe.AddressFromUDP(peer.LocalAddr().(*net.UDPAddr))
	require.NoError(t, srv.SendTo(peerAddr, "hello:abc123"))

	require.NoError(t, peer.SetReadDeadline(time.Now().Add(time.Second)))
	buf := make([]byte, maxDatagramSize)
	n, _, err := peer.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello:abc123", string(buf[:n]))

	srv.Shutdown(ctx)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop after shutdown")
	}
}

func TestServer_SendBeforeListen(t *testing.T) {
	srv := New(Config{ListenAddress: "127.0.0.1:0"}, func(natprobe.Address, string) {})
	err := srv.SendTo(natprobe.Address{Host: "127.0.0.1", Port: 9}, "hello:abc123")
	assert.ErrorContains(t, err, "not started")
}

func TestServer_ListenIdempotent(t *testing.T) {
	srv := New(Config{ListenAddress: "127.0.0.1:0"}, func(natprobe.Address, string) {})
	ctx := t.Context()

	require.NoError(t, srv.Listen(ctx))
	addr := srv.LocalAddr()
	require.NoError(t, srv.Listen(ctx))
	assert.Equal(t, addr, srv.LocalAddr())

	srv.Shutdown(ctx)
}

func TestServer_BindFailurePropagates(t *testing.T) {
	first := New(Config{ListenAddress: "127.0.0.1:0"}, func(natprobe.Address, string) {})
	ctx := t.Context()
	require.NoError(t, first.Listen(ctx))
	defer first.Shutdown(ctx)

	// An address that cannot be bound must surface the startup failure.
	bad := New(Config{ListenAddress: "203.0.113.1:1"}, func(natprobe.Address, string) {})
	err := bad.Run(ctx)
	assert.ErrorContains(t, err, "failed to bind probe listener")
}

func TestServer_RunStopsOnContextCancel(t *testing.T) {
	srv := New(Config{ListenAddress: "127.0.0.1:0"}, func(natprobe.Address, string) {})
	ctx, cancel := context.WithCancel(t.Context())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool { return !srv.LocalAddr().IsZero() }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("server did not stop after context cancellation")
	}
}
