package vocab

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Key identifies a vocabulary by its inputs.
type Key struct {
	CorpusHash string
	N          int
	// Options fingerprints the normalization applied to the corpus.
	Options string
}

func (k Key) String() string {
	return "vocab:v1:" + k.CorpusHash + ":" + strconv.Itoa(k.N) + ":" + k.Options
}

// Cache memoizes vocabularies by Key.
type Cache struct {
	cache *gocache.Cache
}

// NewCache creates a cache whose entries expire after ttl (0 keeps them
// forever).
func NewCache(ttl, cleanupInterval time.Duration) *Cache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Cache{cache: gocache.New(ttl, cleanupInterval)}
}

// Get returns the cached vocabulary for key.
func (c *Cache) Get(key Key) (*Vocabulary, bool) {
	if val, found := c.cache.Get(key.String()); found {
		return val.(*Vocabulary), true
	}
	return nil, false
}

// Put stores v under key.
func (c *Cache) Put(key Key, v *Vocabulary) {
	c.cache.SetDefault(key.String(), v)
}

// GetOrBuild returns the cached vocabulary for the corpus, building and
// caching it on a miss.
func (c *Cache) GetOrBuild(corpus [][]string, n int, options string) *Vocabulary {
	if n < 1 {
		n = 1
	}
	key := Key{CorpusHash: HashCorpus(corpus), N: n, Options: options}
	if v, ok := c.Get(key); ok {
		return v
	}
	v := Build(corpus, n)
	c.Put(key, v)
	return v
}

// Len returns the number of cached vocabularies.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}
