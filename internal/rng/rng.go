// Package rng provides the seed source shared by generation requests.
//
// A Source replaces process-wide random state with an explicit handle. Its
// internal state can be snapshotted and restored, which is how "preserve"
// generations avoid advancing it.
package rng

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sync"
)

// Source draws per-dispatch seeds. It is safe for concurrent use; every draw
// is serialized.
type Source struct {
	mu  sync.Mutex
	pcg *rand.PCG
	r   *rand.Rand
}

// New seeds a source deterministically.
func New(seed int64) *Source {
	pcg := rand.NewPCG(uint64(seed), uint64(seed)*0x2545f4914f6cdd1d+1)
	return &Source{pcg: pcg, r: rand.New(pcg)}
}

// NextSeed pops the next dispatch seed in [math.MinInt32, math.MaxInt32).
func (s *Source) NextSeed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLocked()
}

func (s *Source) nextLocked() int64 {
	return int64(math.MinInt32) + s.r.Int64N(int64(math.MaxInt32)-int64(math.MinInt32))
}

// Snapshot returns the encoded internal state.
func (s *Source) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pcg.MarshalBinary()
}

// Restore loads a state produced by Snapshot.
func (s *Source) Restore(state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pcg.UnmarshalBinary(state); err != nil {
		return fmt.Errorf("failed to restore rng state: %w", err)
	}
	return nil
}

// Draw returns the next dispatch seed. With preserve the source is left
// where it was, so repeated preserved draws observe the same seed; otherwise
// the source advances. The peek and the rewind happen under one lock.
func (s *Source) Draw(preserve bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !preserve {
		return s.nextLocked(), nil
	}
	state, err := s.pcg.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("failed to snapshot rng state: %w", err)
	}
	seed := s.nextLocked()
	if err := s.pcg.UnmarshalBinary(state); err != nil {
		return 0, fmt.Errorf("failed to rewind rng state: %w", err)
	}
	return seed, nil
}

// Load reads a state file written by Save into a new source. A missing file
// yields a source seeded with fallbackSeed.
func Load(path string, fallbackSeed int64) (*Source, error) {
	src := New(fallbackSeed)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return src, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rng state %s: %w", path, err)
	}
	if err := src.Restore(data); err != nil {
		return nil, err
	}
	return src, nil
}

// Save writes the current state to path.
func (s *Source) Save(path string) error {
	state, err := s.Snapshot()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, state, 0o644); err != nil {
		return fmt.Errorf("failed to write rng state %s: %w", path, err)
	}
	return nil
}
