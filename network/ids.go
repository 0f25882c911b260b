package network

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
)

// PayloadIDs allocates payload and metadata identifiers for one connection.
// Values increase monotonically from a random positive base so ids from
// different connections are unlikely to collide in logs.
type PayloadIDs struct {
	mu   sync.Mutex
	next int64
}

// NewPayloadIDs returns a generator for one connection.
func NewPayloadIDs() *PayloadIDs {
	var raw [8]byte
	_, _ = rand.Read(raw[:])
	base := int64(binary.BigEndian.Uint64(raw[:]) >> 2)
	return &PayloadIDs{next: base + 1}
}

// Next returns a fresh identifier.
func (g *PayloadIDs) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next
	g.next++
	return id
}
