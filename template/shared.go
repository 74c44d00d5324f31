package template

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/c360/streamkit/pkg/cache"
)

// sharedData is the per-fragment-shape record: the fragment list plus
// the metadata cell. Templates built from equal fragment lists point
// at one sharedData instance.
type sharedData struct {
	fragments []string
	meta      metaCell
}

// internBound caps the number of distinct fragment shapes kept alive.
// Shapes evicted from the cache simply intern fresh records next time.
const internBound = 256

var (
	internMu    sync.Mutex
	internCache cache.Cache[*sharedData]
)

// intern returns the canonical sharedData for a fragment list,
// creating and caching it on first sight. The mutex makes lookup and
// insert one step so concurrent callers with equal fragments observe
// a single record.
func intern(fragments []string) *sharedData {
	key := internKey(fragments)
	internMu.Lock()
	defer internMu.Unlock()
	if internCache == nil {
		c, err := cache.NewLRU[*sharedData](internBound)
		if err != nil {
			return &sharedData{fragments: slices.Clone(fragments)}
		}
		internCache = c
	}
	if sd, ok := internCache.Get(key); ok {
		return sd
	}
	sd := &sharedData{fragments: slices.Clone(fragments)}
	if _, err := internCache.Set(key, sd); err != nil {
		return sd
	}
	return sd
}

// internKey joins fragments with the unit separator. The leading
// fragment count keeps the key non-empty and distinguishes shapes of
// different arity.
func internKey(fragments []string) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(fragments)))
	for _, f := range fragments {
		b.WriteByte(0x1f)
		b.WriteString(f)
	}
	return b.String()
}

// metaCell is a single-claim metadata slot. Ownership and value are
// published together, so readers never observe a claimed cell without
// its value.
type metaCell struct {
	slot atomic.Pointer[metaEntry]
}

type metaEntry struct {
	owner any
	value any
}

// get returns the cell's value for the claiming owner. An unclaimed
// cell is claimed with compute's result; when a concurrent claim wins
// the race the losing computation is discarded and the winner's entry
// decides what get returns.
func (c *metaCell) get(owner any, compute func() any) any {
	if e := c.slot.Load(); e != nil {
		if e.owner == owner {
			return e.value
		}
		return nil
	}
	entry := &metaEntry{owner: owner, value: compute()}
	if c.slot.CompareAndSwap(nil, entry) {
		return entry.value
	}
	e := c.slot.Load()
	if e.owner == owner {
		return e.value
	}
	return nil
}
