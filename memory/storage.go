// Package memory provides the raw byte storage backing each SDRAM bank.
package memory

import (
	"errors"
	"math/rand"
)

// A Storage holds the content of one SDRAM bank.
//
// The bank is allocated contiguously at construction. The protocol engine
// touches it once per clock beat and the image loader streams whole rows
// through it, so there is nothing to gain from lazy page allocation.
type Storage struct {
	data []byte
}

// NewStorage creates a zero-filled storage with the given capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		data: make([]byte, capacity),
	}
}

// Capacity returns the storage capacity in bytes.
func (s *Storage) Capacity() uint64 {
	return uint64(len(s.data))
}

// Randomize fills the whole storage with bytes drawn from rng.
func (s *Storage) Randomize(rng *rand.Rand) {
	rng.Read(s.data)
}

// ErrOutOfRange is returned when an access reaches beyond the storage
// capacity.
var ErrOutOfRange = errors.New("accessing address beyond the storage capacity")

// Read returns n bytes starting at address.
func (s *Storage) Read(address, n uint64) ([]byte, error) {
	if address+n > uint64(len(s.data)) {
		return nil, ErrOutOfRange
	}

	res := make([]byte, n)
	copy(res, s.data[address:address+n])

	return res, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	if address+uint64(len(data)) > uint64(len(s.data)) {
		return ErrOutOfRange
	}

	copy(s.data[address:], data)

	return nil
}
