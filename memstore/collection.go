package memstore

import (
	"errors"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// errDuplicate is returned when a write would break a unique field.
var errDuplicate = errors.New("duplicate key")

// collection is an ordered slice of documents queried with Match. Insertion
// order stands in for MongoDB's natural order.
type collection struct {
	mu     sync.RWMutex
	docs   []bson.M
	unique []string
}

func (c *collection) find(filter bson.M, skip, limit int64, newestFirst bool) []bson.M {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []bson.M
	for _, d := range c.docs {
		if Match(d, filter) {
			matched = append(matched, d)
		}
	}
	if newestFirst {
		sort.SliceStable(matched, func(i, j int) bool {
			return createdAt(matched[i]).After(createdAt(matched[j]))
		})
	}

	if skip > 0 {
		if skip >= int64(len(matched)) {
			return nil
		}
		matched = matched[skip:]
	}
	if limit > 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched
}

func (c *collection) count(filter bson.M) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, d := range c.docs {
		if Match(d, filter) {
			n++
		}
	}
	return n
}

// insert adds every doc or none of them.
func (c *collection) insert(docs ...bson.M) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := make([]bson.M, 0, len(c.docs)+len(docs))
	pending = append(pending, c.docs...)
	for _, d := range docs {
		if c.conflicts(pending, d, -1) {
			return errDuplicate
		}
		pending = append(pending, d)
	}
	c.docs = pending
	return nil
}

// update merges set into the first match. normalize, when non-nil, rewrites
// the merged document before it is stored. It returns nil when nothing
// matched.
func (c *collection) update(filter, set bson.M, normalize func(bson.M) (bson.M, error)) (bson.M, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, d := range c.docs {
		if !Match(d, filter) {
			continue
		}
		merged := make(bson.M, len(d)+len(set))
		for k, v := range d {
			merged[k] = v
		}
		for k, v := range set {
			merged[k] = v
		}
		if normalize != nil {
			var err error
			if merged, err = normalize(merged); err != nil {
				return nil, err
			}
		}
		if c.conflicts(c.docs, merged, i) {
			return nil, errDuplicate
		}
		c.docs[i] = merged
		return merged, nil
	}
	return nil, nil
}

func (c *collection) delete(filter bson.M) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, d := range c.docs {
		if Match(d, filter) {
			c.docs = append(c.docs[:i:i], c.docs[i+1:]...)
			return true
		}
	}
	return false
}

func (c *collection) conflicts(docs []bson.M, d bson.M, skip int) bool {
	for _, field := range c.unique {
		v, ok := d[field]
		if !ok || v == nil {
			continue
		}
		for i, other := range docs {
			if i != skip && equal(other[field], v) {
				return true
			}
		}
	}
	return false
}
