package engine

import (
	"fmt"

	"github.com/hailam/othello/internal/board"
)

// Cache dimensions.
const (
	// NumBuckets is one bucket per possible black disc count (0-64).
	NumBuckets = 65
	// DefaultChainCap bounds every bucket's chain.
	DefaultChainCap = 10
)

// CacheEntry is one remembered position.
type CacheEntry struct {
	Fingerprint board.Fingerprint
	Move        board.Move // best move found, or board.NoMove
	Score       int
	Popularity  int // lookups and stores that matched this entry

	lastUsed uint64
}

// EvictionPolicy picks which entry of a full chain a new position replaces.
type EvictionPolicy interface {
	// Victim returns the index of the entry to overwrite, or -1 to drop the
	// incoming entry and leave the chain untouched.
	Victim(chain []CacheEntry) int
	Name() string
}

// PopularityEviction replaces the first entry that has never been hit since
// it was stored. Chains whose entries are all popular keep them.
type PopularityEviction struct{}

// Victim implements EvictionPolicy.
func (PopularityEviction) Victim(chain []CacheEntry) int {
	for i := range chain {
		if chain[i].Popularity == 0 {
			return i
		}
	}
	return -1
}

// Name implements EvictionPolicy.
func (PopularityEviction) Name() string { return "popularity" }

// LRUEviction replaces the least recently stored or matched entry.
type LRUEviction struct{}

// Victim implements EvictionPolicy.
func (LRUEviction) Victim(chain []CacheEntry) int {
	if len(chain) == 0 {
		return -1
	}
	oldest := 0
	for i := 1; i < len(chain); i++ {
		if chain[i].lastUsed < chain[oldest].lastUsed {
			oldest = i
		}
	}
	return oldest
}

// Name implements EvictionPolicy.
func (LRUEviction) Name() string { return "lru" }

// ParseEviction maps a policy name to its implementation.
func ParseEviction(name string) (EvictionPolicy, error) {
	switch name {
	case "", "popularity":
		return PopularityEviction{}, nil
	case "lru":
		return LRUEviction{}, nil
	}
	return nil, fmt.Errorf("unknown eviction policy %q", name)
}

// CacheStats reports cache activity since the last Clear.
type CacheStats struct {
	Entries   int
	Probes    uint64
	Hits      uint64
	Stores    uint64
	Evictions uint64
	Drops     uint64
}

// Cache is the transposition cache: a fixed array of buckets selected by a
// deliberately weak key (the black disc count), each holding a bounded chain
// of entries matched by exact fingerprint. Correctness rests entirely on the
// fingerprint comparison; the weak key only spreads entries across buckets.
//
// A Cache belongs to one engine and is not safe for concurrent use.
type Cache struct {
	buckets  [NumBuckets][]CacheEntry
	chainCap int
	policy   EvictionPolicy
	tick     uint64

	probes    uint64
	hits      uint64
	stores    uint64
	evictions uint64
	drops     uint64
}

// NewCache creates a cache whose chains hold at most chainCap entries.
// A nil policy means PopularityEviction.
func NewCache(chainCap int, policy EvictionPolicy) *Cache {
	if chainCap <= 0 {
		chainCap = DefaultChainCap
	}
	if policy == nil {
		policy = PopularityEviction{}
	}
	return &Cache{chainCap: chainCap, policy: policy}
}

// bucketIndex is the weak key: the number of black discs.
func bucketIndex(fp board.Fingerprint) int {
	return fp.BlackCount()
}

// find returns the index of fp in its chain, or -1.
func (c *Cache) find(chain []CacheEntry, fp board.Fingerprint) int {
	for i := range chain {
		if chain[i].Fingerprint == fp {
			return i
		}
	}
	return -1
}

// Lookup returns the entry stored for fp. A hit bumps the entry's popularity.
func (c *Cache) Lookup(fp board.Fingerprint) (CacheEntry, bool) {
	c.probes++
	chain := c.buckets[bucketIndex(fp)]
	i := c.find(chain, fp)
	if i < 0 {
		return CacheEntry{}, false
	}
	c.hits++
	c.tick++
	chain[i].Popularity++
	chain[i].lastUsed = c.tick
	return chain[i], true
}

// Store remembers move and score for fp. A matching entry is updated in
// place and gains popularity. Otherwise the entry is appended, or, when the
// chain is full, written over the eviction policy's victim. If the policy
// finds no victim the new entry is dropped.
func (c *Cache) Store(fp board.Fingerprint, move board.Move, score int) {
	c.stores++
	c.tick++
	b := bucketIndex(fp)
	chain := c.buckets[b]

	if i := c.find(chain, fp); i >= 0 {
		chain[i].Move = move
		chain[i].Score = score
		chain[i].Popularity++
		chain[i].lastUsed = c.tick
		return
	}

	entry := CacheEntry{Fingerprint: fp, Move: move, Score: score, lastUsed: c.tick}
	if len(chain) >= c.chainCap {
		victim := c.policy.Victim(chain)
		if victim < 0 {
			c.drops++
			return
		}
		c.evictions++
		chain[victim] = entry
		return
	}
	c.buckets[b] = append(chain, entry)
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	n := 0
	for i := range c.buckets {
		n += len(c.buckets[i])
	}
	return n
}

// ChainLen returns the length of the chain holding positions with the given
// number of black discs.
func (c *Cache) ChainLen(blackDiscs int) int {
	if blackDiscs < 0 || blackDiscs >= NumBuckets {
		return 0
	}
	return len(c.buckets[blackDiscs])
}

// Policy returns the eviction policy in use.
func (c *Cache) Policy() EvictionPolicy {
	return c.policy
}

// Clear drops every entry and resets the statistics.
func (c *Cache) Clear() {
	for i := range c.buckets {
		c.buckets[i] = nil
	}
	c.tick = 0
	c.probes, c.hits, c.stores, c.evictions, c.drops = 0, 0, 0, 0, 0
}

// Stats returns a snapshot of cache activity.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries:   c.Len(),
		Probes:    c.probes,
		Hits:      c.hits,
		Stores:    c.stores,
		Evictions: c.evictions,
		Drops:     c.drops,
	}
}

// HitRate returns the lookup hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	if c.probes == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.probes) * 100
}
