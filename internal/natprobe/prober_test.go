// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package natprobe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	localAddr = Address{Host: "198.51.100.7", Port: 6112}
	peerAddr  = Address{Host: "10.0.0.5", Port: 6112}
)

func newTestProber(transport *TransportMock, signal *SignalerMock) (*Prober, *Correlator) {
	if transport == nil {
		transport = &TransportMock{
			SendToFunc:    func(Address, string) error { return nil },
			LocalAddrFunc: func() Address { return localAddr },
		}
	}
	if signal == nil {
		signal = &SignalerMock{
			SendNatPacketFunc: func(context.Context, Address, Address, string) error { return nil },
		}
	}
	correlator := NewCorrelator()
	return NewProber(transport, signal, correlator), correlator
}

func TestProber_SendProbe(t *testing.T) {
	transport := &TransportMock{
		SendToFunc:    func(Address, string) error { return nil },
		LocalAddrFunc: func() Address { return localAddr },
	}
	p, _ := newTestProber(transport, nil)

	require.NoError(t, p.SendProbe(t.Context(), peerAddr, "public-probe:abc123"))
	calls := transport.SendToCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, peerAddr, calls[0].Target)
	assert.Equal(t, "public-probe:abc123", calls[0].Message)
}

func TestProber_SendProbeError(t *testing.T) {
	transport := &TransportMock{
		SendToFunc:    func(Address, string) error { return errors.New("socket closed") },
		LocalAddrFunc: func() Address { return localAddr },
	}
	p, _ := newTestProber(transport, nil)

	err := p.SendProbe(t.Context(), peerAddr, "public-probe:abc123")
	assert.ErrorContains(t, err, "failed to send probe")
}

// RequestPeerEcho must point the relay instruction at the local listener so
// the punched hole ends up where we are waiting.
func TestProber_RequestPeerEcho(t *testing.T) {
	signal := &SignalerMock{
		SendNatPacketFunc: func(context.Context, Address, Address, string) error { return nil },
	}
	p, _ := newTestProber(nil, signal)

	require.NoError(t, p.RequestPeerEcho(t.Context(), peerAddr, "hello:abc123"))
	calls := signal.SendNatPacketCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, peerAddr, calls[0].Peer)
	assert.Equal(t, localAddr, calls[0].Target)
	assert.Equal(t, "hello:abc123", calls[0].Message)
}

func TestProber_Await(t *testing.T) {
	source := Address{Host: "203.0.113.9", Port: 51000}
	tests := []struct {
		name     string
		from     *Address
		dispatch bool
		wantOk   bool
	}{
		{name: "resolves without source constraint", dispatch: true, wantOk: true},
		{name: "resolves with matching source", from: &source, dispatch: true, wantOk: true},
		{name: "source mismatch yields absent", from: &peerAddr, dispatch: true, wantOk: false},
		{name: "context cancellation yields absent", dispatch: false, wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, correlator := newTestProber(nil, nil)
			ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
			defer cancel()

			if tt.dispatch {
				go func() {
					// Give the awaiting side a moment to register.
					time.Sleep(10 * time.Millisecond)
					correlator.Dispatch(source, "hello:abc123")
				}()
			}

			pkt, ok := p.Await(ctx, "hello:abc123", tt.from)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, source, pkt.Source)
				assert.Equal(t, "hello:abc123", pkt.Message)
			} else {
				assert.Equal(t, Packet{}, pkt)
			}
		})
	}
}

// An abandoned await must leave the pending table clean so the message key is
// free for the next round.
func TestProber_AwaitCleansUp(t *testing.T) {
	p, correlator := newTestProber(nil, nil)
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, ok := p.Await(ctx, "hello:abc123", nil)
	require.False(t, ok)
	assert.Equal(t, 0, correlator.Pending())
}
