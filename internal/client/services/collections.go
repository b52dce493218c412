package services

import (
	"sync"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
)

// collections is the per-kind record store. While at least one bulk load is
// in flight every local mutation is also journaled, and a finished load
// replays the journal entries made after it started on top of the fetched
// listing before publishing it. Slices are replaced, never modified in
// place, so the slices handed out stay valid.
type collections struct {
	mu      sync.RWMutex
	items   map[string][]models.Record
	seq     uint64
	loads   int
	journal []mutation
}

type mutationOp int

const (
	opAdd mutationOp = iota
	opReplace
	opRemove
)

// mutation is one local change recorded while a load was running.
type mutation struct {
	seq    uint64
	kind   string
	op     mutationOp
	id     string
	record models.Record
}

func newCollections(kinds []string) *collections {
	c := &collections{
		items: make(map[string][]models.Record, len(kinds)),
	}
	for _, k := range kinds {
		c.items[k] = []models.Record{}
	}
	return c
}

// beginLoad marks a bulk load as running and returns the journal position
// it starts from. Every beginLoad must be paired with one publish.
func (c *collections) beginLoad() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	return c.seq
}

// publish installs loaded in one step. Local changes made after since are
// replayed on top of each listing; the kinds that needed a replay are
// returned.
func (c *collections) publish(loaded map[string][]models.Record, since uint64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var replayed []string
	for kind, items := range loaded {
		merged, n := c.replay(kind, items, since)
		if n > 0 {
			replayed = append(replayed, kind)
		}
		c.items[kind] = merged
	}

	c.loads--
	if c.loads == 0 {
		c.journal = nil
	}
	return replayed
}

// replay applies the journaled changes of kind newer than since to items.
func (c *collections) replay(kind string, items []models.Record, since uint64) ([]models.Record, int) {
	n := 0
	for _, m := range c.journal {
		if m.seq <= since || m.kind != kind {
			continue
		}
		n++
		switch m.op {
		case opAdd:
			if i := indexOf(items, m.id); i >= 0 {
				items = withAt(items, i, m.record)
			} else {
				items = appendCopy(items, m.record)
			}
		case opReplace:
			if i := indexOf(items, m.id); i >= 0 {
				items = withAt(items, i, m.record)
			}
		case opRemove:
			items = without(items, m.id)
		}
	}
	return items, n
}

func (c *collections) record(m mutation) {
	c.seq++
	if c.loads == 0 {
		return
	}
	m.seq = c.seq
	c.journal = append(c.journal, m)
}

func (c *collections) list(kind string) []models.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items[kind]
}

func (c *collections) find(kind, id string) (models.Record, bool) {
	for _, r := range c.list(kind) {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

func (c *collections) add(kind string, r models.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[kind] = appendCopy(c.items[kind], r)
	c.record(mutation{kind: kind, op: opAdd, id: r.ID(), record: r})
}

// replace swaps the record with id. It reports false when the record is not
// held locally; the change is still journaled for a running load.
func (c *collections) replace(kind, id string, r models.Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(mutation{kind: kind, op: opReplace, id: id, record: r})
	i := indexOf(c.items[kind], id)
	if i < 0 {
		return false
	}
	c.items[kind] = withAt(c.items[kind], i, r)
	return true
}

func (c *collections) remove(kind, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(mutation{kind: kind, op: opRemove, id: id})
	cur := c.items[kind]
	next := without(cur, id)
	if len(next) == len(cur) {
		return false
	}
	c.items[kind] = next
	return true
}

func indexOf(items []models.Record, id string) int {
	for i, r := range items {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

func appendCopy(items []models.Record, r models.Record) []models.Record {
	next := make([]models.Record, len(items), len(items)+1)
	copy(next, items)
	return append(next, r)
}

func withAt(items []models.Record, i int, r models.Record) []models.Record {
	next := make([]models.Record, len(items))
	copy(next, items)
	next[i] = r
	return next
}

func without(items []models.Record, id string) []models.Record {
	next := make([]models.Record, 0, len(items))
	for _, r := range items {
		if r.ID() != id {
			next = append(next, r)
		}
	}
	return next
}
