package qbittorrent

import (
	"cmp"
	"slices"
	"strings"
	"sync"
)

// registry hands out stable numeric ids for info hashes. Ids are never reused
// within a session.
type registry struct {
	mu     sync.Mutex
	byHash map[string]int64
	byID   map[int64]string
	next   int64
}

func newRegistry() *registry {
	return &registry{
		byHash: make(map[string]int64),
		byID:   make(map[int64]string),
		next:   1,
	}
}

type hashEntry struct {
	hash    string
	addedOn int64
}

// observe registers unseen hashes, oldest first, and returns the id for each
// entry in input order.
func (r *registry) observe(entries []hashEntry) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	unseen := make([]hashEntry, 0)
	for _, e := range entries {
		if _, ok := r.byHash[normalizeHash(e.hash)]; !ok {
			unseen = append(unseen, e)
		}
	}
	slices.SortStableFunc(unseen, func(a, b hashEntry) int {
		if c := cmp.Compare(a.addedOn, b.addedOn); c != 0 {
			return c
		}
		return strings.Compare(a.hash, b.hash)
	})
	for _, e := range unseen {
		r.assignLocked(normalizeHash(e.hash))
	}

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = r.byHash[normalizeHash(e.hash)]
	}
	return ids
}

// ensure returns the id for hash, assigning one if needed.
func (r *registry) ensure(hash string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash = normalizeHash(hash)
	if id, ok := r.byHash[hash]; ok {
		return id
	}
	return r.assignLocked(hash)
}

func (r *registry) hash(id int64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, ok := r.byID[id]
	return hash, ok
}

func (r *registry) assignLocked(hash string) int64 {
	id := r.next
	r.next++
	r.byHash[hash] = id
	r.byID[id] = hash
	return id
}

func normalizeHash(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}

func validHash(hash string) bool {
	if len(hash) != 40 && len(hash) != 64 {
		return false
	}
	for _, c := range hash {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}
