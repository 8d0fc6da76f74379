package service

import (
	"fmt"
	"hash/fnv"
	"sync"
)

// docLocks serializes list writes per document within this process. Each
// toggle rewrites whole denormalized lists on two rows, so every mutation
// must hold both documents it writes: otherwise two actors touching the same
// document would both read the old list and the last write would erase the
// other's entry. Locks are striped by key hash so memory stays bounded
// regardless of how many documents are touched.
type docLocks struct {
	stripes [64]sync.Mutex
}

func (p *docLocks) stripe(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % uint32(len(p.stripes))
}

// lock acquires the stripes for both document keys in index order so two
// mutations sharing a document always serialize and never deadlock.
func (p *docLocks) lock(keyA, keyB string) func() {
	i, j := p.stripe(keyA), p.stripe(keyB)
	if i == j {
		mu := &p.stripes[i]
		mu.Lock()
		return mu.Unlock
	}
	if i > j {
		i, j = j, i
	}
	p.stripes[i].Lock()
	p.stripes[j].Lock()
	return func() {
		p.stripes[j].Unlock()
		p.stripes[i].Unlock()
	}
}

// lockOne acquires the stripe for a single document key.
func (p *docLocks) lockOne(key string) func() {
	mu := &p.stripes[p.stripe(key)]
	mu.Lock()
	return mu.Unlock
}

func userKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func postKey(id uint) string {
	return fmt.Sprintf("post:%d", id)
}
