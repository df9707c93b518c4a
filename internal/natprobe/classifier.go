// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package natprobe

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/telekom/plover/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Probe message prefixes. A probe payload is always "<prefix><identifier>"
// and matches by exact string equality on the receiving side.
const (
	publicProbePrefix = "public-probe:"
	echoProbePrefix   = "hello:"
)

// Timing configures the deadlines and repetition counts of the probe
// protocol.
type Timing struct {
	// ProbeTimeout bounds the wait for an echo of the direct probe.
	ProbeTimeout time.Duration `json:"probeTimeout" yaml:"probeTimeout" mapstructure:"probeTimeout"`
	// ProbeSends is how many duplicate direct probes are sent in quick
	// succession to compensate for UDP loss. Duplicates are harmless
	// because an expectation resolves at most once.
	ProbeSends int `json:"probeSends" yaml:"probeSends" mapstructure:"probeSends"`
	// EchoRounds is the number of hole-punch rounds before giving up.
	EchoRounds int `json:"echoRounds" yaml:"echoRounds" mapstructure:"echoRounds"`
	// EchoSettle is the pause after asking the relay for an echo, giving
	// the instruction time to reach the peer before the wait is armed.
	EchoSettle time.Duration `json:"echoSettle" yaml:"echoSettle" mapstructure:"echoSettle"`
	// EchoTimeout bounds the wait for the echo in each round.
	EchoTimeout time.Duration `json:"echoTimeout" yaml:"echoTimeout" mapstructure:"echoTimeout"`
}

// DefaultTiming returns the protocol's standard timing.
func DefaultTiming() Timing {
	return Timing{
		ProbeTimeout: time.Second,
		ProbeSends:   3,
		EchoRounds:   3,
		EchoSettle:   100 * time.Millisecond,
		EchoTimeout:  500 * time.Millisecond,
	}
}

func (t Timing) Validate() error {
	if t.ProbeTimeout <= 0 {
		return fmt.Errorf("probeTimeout must be positive, got %v", t.ProbeTimeout)
	}
	if t.ProbeSends <= 0 {
		return fmt.Errorf("probeSends must be positive, got %d", t.ProbeSends)
	}
	if t.EchoRounds <= 0 {
		return fmt.Errorf("echoRounds must be positive, got %d", t.EchoRounds)
	}
	if t.EchoSettle <= 0 {
		return fmt.Errorf("echoSettle must be positive, got %v", t.EchoSettle)
	}
	if t.EchoTimeout <= 0 {
		return fmt.Errorf("echoTimeout must be positive, got %v", t.EchoTimeout)
	}
	return nil
}

// MaxDuration returns the upper bound on the wall time of one classification
// run: the direct-probe wait plus all hole-punch rounds.
func (t Timing) MaxDuration() time.Duration {
	return t.ProbeTimeout + time.Duration(t.EchoRounds)*(t.EchoSettle+t.EchoTimeout)
}

// Classifier determines the connectivity state of peers by driving the
// two-phase probing protocol. A Classifier is stateless between runs and safe
// for concurrent use; concurrent runs share only the prober's correlator.
type Classifier struct {
	prober *Prober
	timing Timing
	// clk is swapped for a mock in tests.
	clk    clock.Clock
	tracer trace.Tracer
}

func NewClassifier(prober *Prober, timing Timing) *Classifier {
	return &Classifier{
		prober: prober,
		timing: timing,
		clk:    clock.New(),
		tracer: otel.Tracer("natprobe"),
	}
}

// Classify runs the probing protocol against peer and returns its
// connectivity report. The identifier disambiguates concurrent runs sharing
// the transport; it is embedded in every probe message.
//
// Classify never fails: any timeout or cancellation during a phase falls
// through to the next, more conservative state, and cancellation of the whole
// run yields the PROXY fallback. The call returns within
// [Timing.MaxDuration] plus scheduling slack.
func (c *Classifier) Classify(ctx context.Context, peer Address, identifier string) Report {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	ctx, span := c.tracer.Start(ctx, "natprobe.classify", trace.WithAttributes(
		attribute.Stringer("natprobe.peer", peer),
		attribute.String("natprobe.identifier", identifier),
	))
	defer span.End()

	log.DebugContext(ctx, "Testing peer connectivity", "peer", peer.String(), "identifier", identifier)

	report := c.classify(ctx, peer, identifier)
	span.SetAttributes(attribute.Stringer("natprobe.state", report.State))
	log.InfoContext(ctx, "Peer connectivity determined", "peer", peer.String(), "state", report.State.String(), "addr", report.Addr)
	return report
}

func (c *Classifier) classify(ctx context.Context, peer Address, identifier string) Report {
	if c.testPublic(ctx, peer, identifier) {
		return Report{Addr: peer.String(), State: StatePublic}
	}
	if addr, ok := c.testHolePunch(ctx, peer, identifier); ok {
		return Report{Addr: addr.String(), State: StateStun}
	}
	return Report{State: StateProxy}
}

// testPublic checks whether the peer is reachable without any prior outbound
// packet of its own. The probe is sent directly to the peer's dialed address;
// a text-equal echo within the deadline means PUBLIC.
func (c *Classifier) testPublic(ctx context.Context, peer Address, identifier string) bool {
	log := logger.FromContext(ctx)
	ctx, span := c.tracer.Start(ctx, "natprobe.testPublic")
	defer span.End()
	log.DebugContext(ctx, "Testing PUBLIC", "peer", peer.String())

	message := publicProbePrefix + identifier
	exp := c.prober.Expect(message)
	defer c.prober.Abandon(message, exp)

	for i := 0; i < c.timing.ProbeSends; i++ {
		if err := c.prober.SendProbe(ctx, peer, message); err != nil {
			log.WarnContext(ctx, "Failed to send direct probe", "peer", peer.String(), "error", err)
		}
	}

	timer := c.clk.Timer(c.timing.ProbeTimeout)
	defer timer.Stop()
	select {
	case pkt := <-exp.C():
		span.AddEvent("Direct probe echoed", trace.WithAttributes(
			attribute.Stringer("natprobe.source", pkt.Source),
		))
		log.DebugContext(ctx, "Peer echoed the direct probe", "source", pkt.Source.String())
		return true
	case <-timer.C:
		span.AddEvent("Direct probe timed out")
		log.DebugContext(ctx, "No direct-probe echo within deadline", "timeout", c.timing.ProbeTimeout.String())
		return false
	case <-ctx.Done():
		span.AddEvent("Run canceled during PUBLIC test")
		return false
	}
}

// testHolePunch checks whether the peer becomes reachable once it punches a
// hole by sending outbound first. Each round asks the signaling relay to make
// the peer emit the probe toward our listener, then waits for it to arrive.
// The source address observed on the wire is the peer's externally visible
// endpoint and becomes the resolved address.
func (c *Classifier) testHolePunch(ctx context.Context, peer Address, identifier string) (Address, bool) {
	log := logger.FromContext(ctx)
	ctx, span := c.tracer.Start(ctx, "natprobe.testHolePunch")
	defer span.End()
	log.DebugContext(ctx, "Testing STUN", "peer", peer.String())

	message := echoProbePrefix + identifier
	for round := 1; round <= c.timing.EchoRounds; round++ {
		exp := c.prober.Expect(message)
		if err := c.prober.RequestPeerEcho(ctx, peer, message); err != nil {
			// Non-fatal: the round simply times out and the next one
			// asks again.
			log.WarnContext(ctx, "Failed to request peer echo", "round", round, "error", err)
		}

		select {
		case <-c.clk.After(c.timing.EchoSettle):
		case <-ctx.Done():
			c.prober.Abandon(message, exp)
			span.AddEvent("Run canceled during STUN settle")
			return Address{}, false
		}

		timer := c.clk.Timer(c.timing.EchoTimeout)
		select {
		case pkt := <-exp.C():
			if pkt.Message == message {
				timer.Stop()
				span.AddEvent("Hole-punch echo received", trace.WithAttributes(
					attribute.Stringer("natprobe.source", pkt.Source),
					attribute.Int("natprobe.round", round),
				))
				log.DebugContext(ctx, "Received hole-punch echo", "round", round, "source", pkt.Source.String())
				return pkt.Source, true
			}
			// A packet that resolved the expectation but fails the
			// equality re-check burns the remainder of this round
			// rather than retrying immediately.
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return Address{}, false
			}
		case <-timer.C:
			c.prober.Abandon(message, exp)
			log.DebugContext(ctx, "Hole-punch round timed out", "round", round, "timeout", c.timing.EchoTimeout.String())
		case <-ctx.Done():
			timer.Stop()
			c.prober.Abandon(message, exp)
			span.AddEvent("Run canceled during STUN wait")
			return Address{}, false
		}
	}

	span.AddEvent("All hole-punch rounds exhausted")
	return Address{}, false
}
