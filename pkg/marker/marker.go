// Package marker defines the marker record exchanged between bank nodes and
// its wire encoding.
package marker

import (
	"encoding/json"
	"fmt"
)

// MessageType enumerates the message types a bank node understands.
type MessageType string

const (
	TypeCredit      MessageType = "CREDIT"       // credit bank request
	TypeDebit       MessageType = "DEBIT"        // debit bank request
	TypeMarker      MessageType = "MARKER"       // snapshot marker
	TypeGlobalState MessageType = "GLOBAL_STATE" // snapshot result
)

// UnknownSender is the sender ID used when the origin is not a bank node.
const UnknownSender = -1

var messageTypes = []MessageType{TypeCredit, TypeDebit, TypeMarker, TypeGlobalState}

// Resolve maps a wire string to its MessageType.
func Resolve(s string) (MessageType, bool) {
	for _, t := range messageTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Marker is the record sent on the wire. Field order is part of the format.
type Marker struct {
	StrData string      `json:"strData"`
	NumData int         `json:"numData"`
	Type    MessageType `json:"type"`
	From    int         `json:"from"`
}

// New returns a marker from the given sender with empty data fields.
func New(from int) Marker {
	return Marker{
		Type: TypeMarker,
		From: from,
	}
}

// Default returns the marker sent when nothing is configured.
func Default() Marker {
	return New(UnknownSender)
}

// Encode returns the compact JSON form of m.
func (m Marker) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode marker: %w", err)
	}
	return data, nil
}

// Decode parses a wire message into a Marker.
func Decode(data []byte) (Marker, error) {
	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return Marker{}, fmt.Errorf("failed to decode marker: %w", err)
	}
	if _, ok := Resolve(string(m.Type)); !ok {
		return Marker{}, fmt.Errorf("unknown message type %q", m.Type)
	}
	return m, nil
}
