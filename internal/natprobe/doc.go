// Package natprobe implements the connectivity-probing protocol used to
// classify how reachable a remote peer is over UDP.
//
// A peer ends up in one of three states:
//   - PUBLIC: the peer answers a direct probe without any prior outbound
//     packet of its own
//   - STUN: the peer answers only after it was asked (through a signaling
//     relay) to punch a hole by sending an outbound packet first
//   - PROXY: the peer answered neither test and must be relayed
//
// The protocol is a sequence of timed, retried plain-text message exchanges
// correlated by exact message content. A [Correlator] matches asynchronously
// arriving datagrams to registered expectations, a [Prober] bundles the
// outbound capabilities (direct sends via a [Transport], echo requests via a
// [Signaler]), and the [Classifier] drives the two test phases and produces
// the final [Report].
//
// Classification is loss-tolerant by construction: direct probes are sent in
// triplicate, the hole-punch test runs multiple rounds, duplicate deliveries
// resolve an expectation at most once, and every timeout or cancellation
// falls through to the next, more conservative state. A run always terminates
// with a Report within [Timing.MaxDuration].
package natprobe
