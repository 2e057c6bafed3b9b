// Package addrquota rate limits events per client IP block.
package addrquota

import (
	"net"
	"net/netip"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/time/rate"

	"go.minekube.com/enforcedomain/pkg/util/netutil"
)

// Quota implements a simple IP-based rate limiter.
// Each set of incoming IP addresses with the same
// low-order byte gets events per second.
// Information is kept in an LRU cache of size maxEntries.
type Quota struct {
	eps   float32    // allowed events per second
	burst int        // maximum events per second (queue)
	mu    sync.Mutex // protects cache
	cache *lru.Cache
}

// New returns a new Quota.
func New(eventsPerSecond float32, burst, maxEntries int) *Quota {
	return &Quota{
		eps:   eventsPerSecond,
		burst: burst,
		cache: lru.New(maxEntries),
	}
}

// Blocked consumes an event for addr's IP block and
// reports whether the block exceeded its quota.
// Addresses without an IP are never blocked.
func (q *Quota) Blocked(addr net.Addr) bool {
	key, ok := ipKey(addr)
	if !ok {
		return false
	}
	q.mu.Lock()
	var limiter *rate.Limiter
	if v, ok := q.cache.Get(key); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rate.Limit(q.eps), q.burst)
		q.cache.Add(key, limiter)
	}
	q.mu.Unlock()
	return !limiter.Allow()
}

func ipKey(addr net.Addr) (netip.Addr, bool) {
	if addr == nil {
		return netip.Addr{}, false
	}
	ip, err := netip.ParseAddr(netutil.Host(addr))
	if err != nil {
		return netip.Addr{}, false
	}
	// Zero out last byte, to cover ranges.
	b := ip.Unmap().AsSlice()
	b[len(b)-1] = 0
	ip, _ = netip.AddrFromSlice(b)
	return ip, true
}
