package rng

import (
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(s *Source, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = s.NextSeed()
	}
	return out
}

func TestSameSeedSameSequence(t *testing.T) {
	assert.Equal(t, draw(New(42), 8), draw(New(42), 8))
	assert.NotEqual(t, draw(New(42), 8), draw(New(43), 8))
}

func TestSeedsStayInInt32Range(t *testing.T) {
	for _, v := range draw(New(1), 1000) {
		assert.GreaterOrEqual(t, v, int64(math.MinInt32))
		assert.Less(t, v, int64(math.MaxInt32))
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := New(7)
	s.NextSeed()
	state, err := s.Snapshot()
	require.NoError(t, err)

	first := draw(s, 4)
	require.NoError(t, s.Restore(state))
	assert.Equal(t, first, draw(s, 4))

	assert.Error(t, s.Restore([]byte("garbage")))
}

func TestDrawPreserveRewinds(t *testing.T) {
	s := New(99)
	a, err := s.Draw(true)
	require.NoError(t, err)
	b, err := s.Draw(true)
	require.NoError(t, err)
	assert.Equal(t, a, b, "preserve must not advance the source")

	c, err := s.Draw(false)
	require.NoError(t, err)
	d, err := s.Draw(false)
	require.NoError(t, err)
	assert.Equal(t, a, c)
	assert.NotEqual(t, c, d, "advance mode must move the source forward")
}

func TestConcurrentPreservedDrawsAgree(t *testing.T) {
	s := New(8)
	want, err := s.Draw(true)
	require.NoError(t, err)

	var wg sync.WaitGroup
	got := make([]int64, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], _ = s.Draw(true)
		}()
	}
	wg.Wait()

	for _, v := range got {
		assert.Equal(t, want, v)
	}
}

func TestConcurrentDrawsAreUnique(t *testing.T) {
	s := New(3)
	want := draw(New(3), 200)

	var (
		mu  sync.Mutex
		got = make(map[int64]int)
		wg  sync.WaitGroup
	)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				v := s.NextSeed()
				mu.Lock()
				got[v]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	for _, v := range want {
		assert.Equal(t, 1, got[v], "seed %d drawn %d times", v, got[v])
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rng.state")

	missing, err := Load(path, 11)
	require.NoError(t, err)
	assert.Equal(t, draw(New(11), 3), draw(missing, 3))

	s := New(12)
	s.NextSeed()
	require.NoError(t, s.Save(path))

	loaded, err := Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, draw(s, 5), draw(loaded, 5))
}
