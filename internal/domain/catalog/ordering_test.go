package catalog

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts(n int) []Product {
	out := make([]Product, n)
	for i := range out {
		out[i] = Product{ID: fmt.Sprintf("p%d", i)}
	}
	return out
}

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestParseOrdering(t *testing.T) {
	o, err := ParseOrdering("", OrderShuffle)
	require.NoError(t, err)
	assert.Equal(t, OrderShuffle, o)

	o, err = ParseOrdering("latest", OrderShuffle)
	require.NoError(t, err)
	assert.Equal(t, OrderLatest, o)

	_, err = ParseOrdering("random", OrderLatest)
	assert.Error(t, err)
}

func TestShuffler_ReturnsPermutation(t *testing.T) {
	for _, mode := range []ShuffleMode{ShuffleFisherYates, ShuffleComparator} {
		t.Run(string(mode), func(t *testing.T) {
			s := NewSeededShuffler(mode, 1, 2)
			in := sampleProducts(20)

			out := s.Shuffle(in)

			require.Len(t, out, len(in))
			got := ids(out)
			sort.Strings(got)
			want := ids(in)
			sort.Strings(want)
			assert.Equal(t, want, got)
			// input is not modified
			assert.Equal(t, "p0", in[0].ID)
			assert.Equal(t, "p19", in[19].ID)
		})
	}
}

func TestShuffler_DeterministicWithSeed(t *testing.T) {
	a := NewSeededShuffler(ShuffleFisherYates, 7, 11).Shuffle(sampleProducts(10))
	b := NewSeededShuffler(ShuffleFisherYates, 7, 11).Shuffle(sampleProducts(10))
	assert.Equal(t, ids(a), ids(b))
}

func TestShuffler_FisherYatesIsRoughlyUniform(t *testing.T) {
	s := NewSeededShuffler(ShuffleFisherYates, 42, 4242)
	in := sampleProducts(3)
	const runs = 30000

	first := map[string]int{}
	for i := 0; i < runs; i++ {
		first[s.Shuffle(in)[0].ID]++
	}

	for _, p := range in {
		share := float64(first[p.ID]) / runs
		assert.InDelta(t, 1.0/3.0, share, 0.03, "product %s leads %.3f of the time", p.ID, share)
	}
}

func TestShuffler_UnknownModeFallsBackToFisherYates(t *testing.T) {
	s := NewSeededShuffler("bogus", 1, 1)
	assert.Equal(t, ShuffleFisherYates, s.Mode())
	assert.Empty(t, s.Shuffle(nil))
}
