package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/ruchit2005/Pran-Protocol/schema"
)

// Cache is the L1 store for retrieval outcomes, keyed by the prepared
// query scope (collection, strategy, text, topK).
type Cache interface {
	Get(key string) (schema.RetrievalOutcome, bool)
	Set(key string, outcome schema.RetrievalOutcome, ttl time.Duration)
	Purge()
}

type outcomeEntry struct {
	key     string
	outcome schema.RetrievalOutcome
	expires time.Time
}

// outcomeLRU evicts least-recently-used outcomes. The recency list owns
// the entries; the index maps keys to list elements.
type outcomeLRU struct {
	mu      sync.Mutex
	cap     int
	ttl     time.Duration
	index   map[string]*list.Element
	recency *list.List
}

// NewLRU creates an outcome cache with capacity and default TTL.
func NewLRU(capacity int, ttl time.Duration) Cache {
	if capacity <= 0 {
		capacity = 512
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &outcomeLRU{
		cap:     capacity,
		ttl:     ttl,
		index:   make(map[string]*list.Element, capacity),
		recency: list.New(),
	}
}

func (c *outcomeLRU) Get(key string) (schema.RetrievalOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		return schema.RetrievalOutcome{}, false
	}
	ent := elem.Value.(*outcomeEntry)
	if !ent.expires.IsZero() && !time.Now().Before(ent.expires) {
		c.drop(elem)
		return schema.RetrievalOutcome{}, false
	}
	c.recency.MoveToFront(elem)
	return ent.outcome, true
}

func (c *outcomeLRU) Set(key string, outcome schema.RetrievalOutcome, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		ent := elem.Value.(*outcomeEntry)
		ent.outcome = outcome
		ent.expires = c.expiry(ttl)
		c.recency.MoveToFront(elem)
		return
	}
	if len(c.index) >= c.cap {
		if oldest := c.recency.Back(); oldest != nil {
			c.drop(oldest)
		}
	}
	c.index[key] = c.recency.PushFront(&outcomeEntry{
		key:     key,
		outcome: outcome,
		expires: c.expiry(ttl),
	})
}

func (c *outcomeLRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = make(map[string]*list.Element, c.cap)
	c.recency.Init()
}

func (c *outcomeLRU) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func (c *outcomeLRU) drop(elem *list.Element) {
	ent := c.recency.Remove(elem).(*outcomeEntry)
	delete(c.index, ent.key)
}
