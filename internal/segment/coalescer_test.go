package segment

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildFrom(ivs []Interval) *Segments {
	s := &Segments{}
	for _, iv := range ivs {
		s.Add(iv)
	}
	return s
}

func assertSortedDisjoint(t *testing.T, s *Segments) {
	t.Helper()
	list := s.List()
	for i := 1; i < len(list); i++ {
		assert.Lessf(t, list[i-1].End, list[i].Start, "interval %d overlaps/touches %d: %+v", i-1, i, list)
		assert.Less(t, list[i-1].Start, list[i].Start)
	}
}

func union(ivs []Interval) map[uint64]bool {
	u := map[uint64]bool{}
	for _, iv := range ivs {
		for i := iv.Start; i < iv.End; i++ {
			u[i] = true
		}
	}
	return u
}

func TestCoalesce_Gap(t *testing.T) {
	s := buildFrom([]Interval{{1000, 1016}, {1064, 1080}})
	assert.Equal(t, []Interval{{1000, 1016}, {1064, 1080}}, s.List())
	assert.Equal(t, 2, s.NumFiles(16))
}

func TestCoalesce_Contiguous(t *testing.T) {
	s := buildFrom([]Interval{{1000, 1016}, {1016, 1032}, {1032, 1048}})
	assert.Equal(t, []Interval{{1000, 1048}}, s.List())
	assert.Equal(t, 3, s.NumFiles(16))
}

func TestCoalesce_OutOfOrderInsertion(t *testing.T) {
	s := buildFrom([]Interval{{1032, 1048}, {1000, 1016}, {1016, 1032}})
	assert.Equal(t, []Interval{{1000, 1048}}, s.List())
}

func TestCoalesce_OverlapMerge(t *testing.T) {
	s := &Segments{}
	s.Add(Interval{0, 10})
	s.Add(Interval{5, 15})
	assert.Equal(t, []Interval{{0, 15}}, s.List())
}

func TestCoalesce_SubsumedIsNoOp(t *testing.T) {
	s := &Segments{}
	s.Add(Interval{0, 100})
	before := append([]Interval(nil), s.List()...)
	s.Add(Interval{10, 20})
	assert.Equal(t, before, s.List())
}

func TestCoalesce_DegenerateIsNoOp(t *testing.T) {
	s := &Segments{}
	s.Add(Interval{5, 5})
	assert.Equal(t, 0, s.Len())
	s.Add(Interval{5, 1})
	assert.Equal(t, 0, s.Len())
}

func TestCoalesce_EmptyTree(t *testing.T) {
	s := &Segments{}
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []Interval{}, append([]Interval{}, s.List()...))
}

func TestCoalesce_CommutativeAndUnionPreserving(t *testing.T) {
	input := []Interval{{1000, 1016}, {1016, 1032}, {1100, 1120}, {1032, 1048}, {1200, 1210}}
	wantUnion := union(input)

	rng := rand.New(rand.NewSource(1))
	var first []Interval
	for p := 0; p < 20; p++ {
		perm := append([]Interval(nil), input...)
		rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

		s := buildFrom(perm)
		assertSortedDisjoint(t, s)
		assert.Equal(t, wantUnion, union(s.List()))

		if first == nil {
			first = s.List()
		} else {
			assert.Equal(t, first, s.List())
		}
	}
}
