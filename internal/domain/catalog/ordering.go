package catalog

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/sari-store/storefront/internal/domain/shared"
)

// Ordering selects how a product listing is arranged
type Ordering string

const (
	// OrderLatest keeps the store order: createdAt descending
	OrderLatest Ordering = "latest"
	// OrderShuffle returns a random permutation for discovery browsing
	OrderShuffle Ordering = "shuffle"
)

// ParseOrdering parses s. An empty string yields def.
func ParseOrdering(s string, def Ordering) (Ordering, error) {
	switch Ordering(s) {
	case "":
		return def, nil
	case OrderLatest, OrderShuffle:
		return Ordering(s), nil
	default:
		return "", shared.NewDomainError("INVALID_ORDER", "order must be latest or shuffle")
	}
}

// ShuffleMode selects the shuffle algorithm
type ShuffleMode string

const (
	// ShuffleFisherYates produces every permutation with equal probability
	ShuffleFisherYates ShuffleMode = "fisher_yates"
	// ShuffleComparator sorts with a random comparator. Its permutations are
	// not uniform: items tend to stay near their original position. Kept so
	// product exposure can match the storefront's historical behaviour.
	ShuffleComparator ShuffleMode = "comparator"
)

// Shuffler permutes product listings. It is safe for concurrent use.
type Shuffler struct {
	mode ShuffleMode
	mu   sync.Mutex
	rnd  *rand.Rand
}

// NewShuffler creates a Shuffler seeded from the clock
func NewShuffler(mode ShuffleMode) *Shuffler {
	seed := uint64(time.Now().UnixNano())
	return NewSeededShuffler(mode, seed, seed>>1)
}

// NewSeededShuffler creates a deterministic Shuffler
func NewSeededShuffler(mode ShuffleMode, seed1, seed2 uint64) *Shuffler {
	if mode != ShuffleComparator {
		mode = ShuffleFisherYates
	}
	return &Shuffler{
		mode: mode,
		rnd:  rand.New(rand.NewPCG(seed1, seed2)),
	}
}

// Mode returns the configured algorithm
func (s *Shuffler) Mode() ShuffleMode {
	return s.mode
}

// Shuffle returns a permuted copy of products
func (s *Shuffler) Shuffle(products []Product) []Product {
	out := slices.Clone(products)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case ShuffleComparator:
		slices.SortStableFunc(out, func(_, _ Product) int {
			if s.rnd.Float64() < 0.5 {
				return -1
			}
			return 1
		})
	default:
		s.rnd.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out
}
