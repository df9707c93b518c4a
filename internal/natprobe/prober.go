// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package natprobe

import (
	"context"
	"fmt"

	"github.com/telekom/plover/internal/logger"
)

// Transport sends probe datagrams and exposes the local listener address.
// The concrete implementation lives in the udpserver package and is injected
// by whoever composes the prober.
//
//go:generate go tool moq -out transport_moq.go . Transport
type Transport interface {
	// SendTo emits a plain-text datagram toward the target. There is no
	// delivery guarantee and no acknowledgement; the error reports local
	// send failures only.
	SendTo(target Address, message string) error
	// LocalAddr returns the address the transport listens on.
	LocalAddr() Address
}

// Signaler instructs the third-party relay to have a peer emit an outbound
// probe packet. Used for the hole-punch test, where the local side cannot
// address the peer directly until the peer first sends outbound.
//
//go:generate go tool moq -out signaler_moq.go . Signaler
type Signaler interface {
	// SendNatPacket asks the relay to instruct peer to send message toward
	// target.
	SendNatPacket(ctx context.Context, peer, target Address, message string) error
}

// Prober is the capability seam between the classifier and the outside
// world: direct sends through the transport, echo requests through the
// signaling relay, and expectation handling through the correlator.
type Prober struct {
	transport  Transport
	signal     Signaler
	correlator *Correlator
}

func NewProber(transport Transport, signal Signaler, correlator *Correlator) *Prober {
	return &Prober{
		transport:  transport,
		signal:     signal,
		correlator: correlator,
	}
}

// SendProbe transmits message toward the target, fire-and-forget.
func (p *Prober) SendProbe(ctx context.Context, target Address, message string) error {
	log := logger.FromContext(ctx)
	log.DebugContext(ctx, "Sending probe", "target", target.String(), "message", message)
	if err := p.transport.SendTo(target, message); err != nil {
		return fmt.Errorf("failed to send probe to %s: %w", target, err)
	}
	return nil
}

// RequestPeerEcho asks the signaling relay to make the peer send message
// toward the local listener.
func (p *Prober) RequestPeerEcho(ctx context.Context, peer Address, message string) error {
	log := logger.FromContext(ctx)
	target := p.transport.LocalAddr()
	log.DebugContext(ctx, "Requesting peer echo", "peer", peer.String(), "target", target.String(), "message", message)
	if err := p.signal.SendNatPacket(ctx, peer, target, message); err != nil {
		return fmt.Errorf("failed to request echo from %s: %w", peer, err)
	}
	return nil
}

// Expect registers a wait for the given message on the correlator.
// See [Correlator.Expect] for the replacement semantics.
func (p *Prober) Expect(message string) *Expectation {
	return p.correlator.Expect(message)
}

// Abandon gives up on an expectation after a timeout. See [Correlator.Forget].
func (p *Prober) Abandon(message string, e *Expectation) {
	p.correlator.Forget(message, e)
}

// Await registers an expectation for message and blocks until it resolves or
// the context ends. When from is non-nil, a resolution whose source does not
// match is treated as a non-match and yields ok == false; the correlator only
// matches on text, so the source check happens here.
func (p *Prober) Await(ctx context.Context, message string, from *Address) (pkt Packet, ok bool) {
	log := logger.FromContext(ctx)
	e := p.Expect(message)
	defer p.Abandon(message, e)

	select {
	case pkt = <-e.C():
		log.DebugContext(ctx, "Received expected packet", "source", pkt.Source.String(), "message", pkt.Message)
		if from != nil && pkt.Source != *from {
			log.DebugContext(ctx, "Packet source does not match constraint", "want", from.String(), "got", pkt.Source.String())
			return Packet{}, false
		}
		return pkt, true
	case <-ctx.Done():
		return Packet{}, false
	}
}
