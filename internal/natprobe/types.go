// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package natprobe

import (
	"fmt"
	"net"
	"strconv"
)

// Address identifies a UDP endpoint by host and port.
// It is a plain value type and immutable once constructed.
type Address struct {
	// Host is the IP address or hostname of the endpoint.
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	// Port is the UDP port of the endpoint.
	Port int `json:"port" yaml:"port" mapstructure:"port"`
}

// AddressFromUDP converts a [net.UDPAddr] into an Address.
func AddressFromUDP(addr *net.UDPAddr) Address {
	if addr == nil {
		return Address{}
	}
	return Address{Host: addr.IP.String(), Port: addr.Port}
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// IsZero reports whether the address is the zero value.
func (a Address) IsZero() bool {
	return a.Host == "" && a.Port == 0
}

func (a Address) Validate() error {
	if a.Host == "" {
		return fmt.Errorf("address host cannot be empty")
	}
	if a.Port <= 0 || a.Port > 65535 {
		return fmt.Errorf("invalid address port: %d, must be between 1 and 65535", a.Port)
	}
	return nil
}

// State describes the connectivity level of a peer.
type State string

// The three connectivity levels, ordered by decreasing reachability.
const (
	// StatePublic means the peer is publicly reachable without prior
	// communication.
	StatePublic State = "PUBLIC"
	// StateStun means the peer must first send an outbound packet before
	// it can receive on the inbound port.
	StateStun State = "STUN"
	// StateProxy means the peer is unreachable by direct or hole-punched
	// means and must be relayed through a third party.
	StateProxy State = "PROXY"
)

func (s State) String() string {
	return string(s)
}

func (s State) IsValid() bool {
	switch s {
	case StatePublic, StateStun, StateProxy:
		return true
	default:
		return false
	}
}

// Rank orders states for decision purposes: the higher the rank, the more
// directly the peer can be reached. Unknown states rank below PROXY.
func (s State) Rank() int {
	switch s {
	case StatePublic:
		return 2
	case StateStun:
		return 1
	case StateProxy:
		return 0
	default:
		return -1
	}
}

// Report is the outcome of a single classification run.
type Report struct {
	// Addr is the address the peer was resolved to, as observed during
	// probing. For PUBLIC this is the dialed peer address, for STUN the
	// source address seen on the wire (which may differ from what the peer
	// believes it has). Empty for PROXY.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
	// State is the connectivity level the peer was classified into.
	State State `json:"state" yaml:"state"`
}
