// Package idgen generates unique IDs for dispatches and messages.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// Generator is the interface for ID generation.
type Generator interface {
	// Generate creates a new unique ID.
	Generate() string
	// GenerateWithPrefix creates a new unique ID with the given prefix.
	GenerateWithPrefix(prefix string) string
}

// SimpleGenerator builds IDs from a timestamp, an atomic counter, and a
// short random suffix.
type SimpleGenerator struct {
	counter uint64
}

// NewSimpleGenerator creates a new simple ID generator.
func NewSimpleGenerator() *SimpleGenerator {
	return &SimpleGenerator{}
}

// Generate creates a new unique ID in the form timestamp_counter_random.
func (g *SimpleGenerator) Generate() string {
	return g.GenerateWithPrefix("")
}

// GenerateWithPrefix creates a new unique ID with the given prefix.
func (g *SimpleGenerator) GenerateWithPrefix(prefix string) string {
	timestamp := time.Now().UnixNano()
	counter := atomic.AddUint64(&g.counter, 1)

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		// Counter-derived fallback when crypto/rand is unavailable.
		randomBytes = []byte{
			byte(counter >> 24),
			byte(counter >> 16),
			byte(counter >> 8),
			byte(counter),
		}
	}
	randomHex := hex.EncodeToString(randomBytes)

	if prefix != "" {
		return fmt.Sprintf("%s_%d_%d_%s", prefix, timestamp, counter, randomHex)
	}
	return fmt.Sprintf("%d_%d_%s", timestamp, counter, randomHex)
}

// DispatchIDGenerator is specialized for message and dispatch IDs.
type DispatchIDGenerator struct {
	generator Generator
}

// NewDispatchIDGenerator creates a generator backed by SimpleGenerator.
func NewDispatchIDGenerator() *DispatchIDGenerator {
	return &DispatchIDGenerator{generator: NewSimpleGenerator()}
}

// GenerateMessageID generates a message ID with the "msg" prefix.
func (g *DispatchIDGenerator) GenerateMessageID() string {
	return g.generator.GenerateWithPrefix("msg")
}

// GenerateDispatchID generates a dispatch ID with the "disp" prefix.
func (g *DispatchIDGenerator) GenerateDispatchID() string {
	return g.generator.GenerateWithPrefix("disp")
}

var defaultGen = NewDispatchIDGenerator()

// GenerateMessageID generates a message ID using the package-level generator.
func GenerateMessageID() string {
	return defaultGen.GenerateMessageID()
}

// GenerateDispatchID generates a dispatch ID using the package-level generator.
func GenerateDispatchID() string {
	return defaultGen.GenerateDispatchID()
}
