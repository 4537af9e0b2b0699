package session

import (
	"math/rand"
	"testing"

	"github.com/desertthunder/sdos/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(from, to int64, track string) models.ConnectionStep {
	return models.ConnectionStep{FromID: from, ToID: to, Track: track}
}

var (
	scenarioPath = models.Path{
		{FromID: 10, ToID: 15, FromName: "A", ToName: "B", Track: "Song1"},
		{FromID: 15, ToID: 20, FromName: "B", ToName: "C", Track: "Song2"},
	}
	altPath   = models.Path{step(10, 30, "x"), step(30, 20, "y")}
	thirdPath = models.Path{step(10, 40, "x"), step(40, 15, "y"), step(15, 20, "z")}
)

func TestSession(t *testing.T) {
	t.Run("found path is recorded with its exclusion set", func(t *testing.T) {
		s := New()
		s.Reset(10, 20)

		status, idx := s.RecordIfNew(scenarioPath)
		assert.Equal(t, Added, status)
		assert.Equal(t, 0, idx)
		assert.Equal(t, 1, s.Len())
		assert.Len(t, s.Paths()[0], 2)
		assert.Equal(t, []models.Edge{{A: 10, B: 15}, {A: 15, B: 20}}, s.BuildExclusionSet())
	})

	t.Run("identical edge sequence is a duplicate and cycles to itself", func(t *testing.T) {
		s := New()
		s.Reset(10, 20)
		s.RecordIfNew(scenarioPath)

		status, idx := s.RecordIfNew(scenarioPath.Clone())
		assert.Equal(t, Duplicate, status)
		assert.Equal(t, 0, idx)
		assert.Equal(t, 1, s.Len())

		p, ok := s.CycleNext()
		require.True(t, ok)
		assert.Equal(t, scenarioPath.Signature(), p.Signature())
		assert.Equal(t, 0, s.Index())
	})

	t.Run("duplicate does not move the index", func(t *testing.T) {
		s := New()
		s.RecordIfNew(scenarioPath)
		s.RecordIfNew(altPath)
		require.Equal(t, 1, s.Index())

		status, idx := s.RecordIfNew(scenarioPath)
		assert.Equal(t, Duplicate, status)
		assert.Equal(t, 0, idx)
		assert.Equal(t, 1, s.Index())
	})

	t.Run("added moves the index to the new path", func(t *testing.T) {
		s := New()
		s.RecordIfNew(scenarioPath)
		s.RecordIfNew(altPath)
		s.CycleNext()
		require.Equal(t, 0, s.Index())

		_, idx := s.RecordIfNew(thirdPath)
		assert.Equal(t, 2, idx)
		assert.Equal(t, 2, s.Index())
	})

	t.Run("recorded signatures are distinct", func(t *testing.T) {
		s := New()
		candidates := []models.Path{scenarioPath, altPath, thirdPath, scenarioPath, altPath}
		for _, p := range candidates {
			s.RecordIfNew(p)
		}

		seen := map[string]bool{}
		for _, p := range s.Paths() {
			assert.False(t, seen[p.Signature()], "duplicate signature %s", p.Signature())
			seen[p.Signature()] = true
		}
		assert.Equal(t, 3, s.Len())
	})

	t.Run("reverse hops are a different route", func(t *testing.T) {
		s := New()
		s.RecordIfNew(models.Path{step(1, 2, "")})
		status, _ := s.RecordIfNew(models.Path{step(2, 1, "")})
		assert.Equal(t, Added, status)
		assert.Equal(t, []models.Edge{{A: 1, B: 2}}, s.BuildExclusionSet())
	})

	t.Run("exclusion set is independent of recording order", func(t *testing.T) {
		paths := []models.Path{scenarioPath, altPath, thirdPath, {step(20, 15, ""), step(15, 10, "")}}
		want := func() []models.Edge {
			s := New()
			for _, p := range paths {
				s.RecordIfNew(p)
			}
			return s.BuildExclusionSet()
		}()

		rng := rand.New(rand.NewSource(7))
		for range 20 {
			shuffled := append([]models.Path(nil), paths...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			s := New()
			for _, p := range shuffled {
				s.RecordIfNew(p)
			}
			assert.Equal(t, want, s.BuildExclusionSet())
		}
	})

	t.Run("CycleNext visits every path once per N calls and wraps", func(t *testing.T) {
		s := New()
		s.RecordIfNew(scenarioPath)
		s.RecordIfNew(altPath)
		s.RecordIfNew(thirdPath)

		n := s.Len()
		first, ok := s.CycleNext()
		require.True(t, ok)

		visited := map[string]int{first.Signature(): 1}
		for i := 1; i < n; i++ {
			p, _ := s.CycleNext()
			visited[p.Signature()]++
		}
		assert.Len(t, visited, n)
		for sig, count := range visited {
			assert.Equal(t, 1, count, "path %s visited %d times", sig, count)
		}

		again, _ := s.CycleNext()
		assert.Equal(t, first.Signature(), again.Signature())
	})

	t.Run("CycleNext on empty session", func(t *testing.T) {
		s := New()
		p, ok := s.CycleNext()
		assert.False(t, ok)
		assert.Nil(t, p)
		assert.Equal(t, 0, s.Index())
	})

	t.Run("Reset empties state and rotates id", func(t *testing.T) {
		s := New()
		id := s.ID()
		s.RecordIfNew(scenarioPath)
		s.CycleNext()

		s.Reset(1, 2)
		assert.Equal(t, 0, s.Len())
		assert.Equal(t, 0, s.Index())
		assert.Empty(t, s.BuildExclusionSet())
		assert.NotEqual(t, id, s.ID())

		src, dst := s.Pair()
		assert.Equal(t, int64(1), src)
		assert.Equal(t, int64(2), dst)

		status, _ := s.RecordIfNew(scenarioPath)
		assert.Equal(t, Added, status)
	})

	t.Run("Endpoints come from the first recorded path", func(t *testing.T) {
		s := New()
		_, _, ok := s.Endpoints()
		assert.False(t, ok)

		s.RecordIfNew(scenarioPath)
		s.RecordIfNew(models.Path{step(99, 98, "")})
		src, dst, ok := s.Endpoints()
		require.True(t, ok)
		assert.Equal(t, int64(10), src)
		assert.Equal(t, int64(20), dst)
	})

	t.Run("stored paths are isolated from callers", func(t *testing.T) {
		s := New()
		p := scenarioPath.Clone()
		s.RecordIfNew(p)
		p[0].FromID = 999

		got := s.Paths()
		assert.Equal(t, int64(10), got[0][0].FromID)
		got[0][0].FromID = 555
		assert.Equal(t, int64(10), s.Paths()[0][0].FromID)
	})

	t.Run("generations", func(t *testing.T) {
		s := New()
		g1 := s.Begin()
		assert.True(t, s.IsCurrent(g1))

		g2 := s.Begin()
		assert.False(t, s.IsCurrent(g1))
		assert.True(t, s.IsCurrent(g2))
		assert.Greater(t, g2, g1)

		s.Reset(1, 2)
		assert.True(t, s.IsCurrent(g2), "reset does not issue a generation")
	})

	t.Run("generation-checked mutators refuse superseded requests", func(t *testing.T) {
		s := New()
		old := s.Begin()
		idx, err := s.ResetWith(old, 10, 20, scenarioPath)
		require.NoError(t, err)
		assert.Equal(t, 0, idx)

		current := s.Begin()
		_, _, err = s.RecordIfNewAt(old, altPath)
		assert.ErrorIs(t, err, ErrStale)
		_, err = s.ResetWith(old, 30, 40, altPath)
		assert.ErrorIs(t, err, ErrStale)
		_, _, err = s.CycleNextAt(old)
		assert.ErrorIs(t, err, ErrStale)

		assert.Equal(t, 1, s.Len(), "stale responses leave the session untouched")
		source, target := s.Pair()
		assert.Equal(t, int64(10), source)
		assert.Equal(t, int64(20), target)

		status, idx, err := s.RecordIfNewAt(current, altPath)
		require.NoError(t, err)
		assert.Equal(t, Added, status)
		assert.Equal(t, 1, idx)

		p, ok, err := s.CycleNextAt(current)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, scenarioPath.Signature(), p.Signature())
	})
}
