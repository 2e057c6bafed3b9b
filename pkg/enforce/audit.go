package enforce

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// maxAuditEntries bounds the remembered denials.
const maxAuditEntries = 10_000

type auditKey struct {
	ip   string
	host string
}

// auditLimiter reports whether a denial is logged at info level.
// A nil auditLimiter logs every denial.
type auditLimiter struct {
	seen *ttlcache.Cache[auditKey, struct{}]
}

func newAuditLimiter(interval time.Duration) *auditLimiter {
	if interval <= 0 {
		return nil
	}
	return &auditLimiter{seen: ttlcache.New[auditKey, struct{}](
		ttlcache.WithTTL[auditKey, struct{}](interval),
		ttlcache.WithDisableTouchOnHit[auditKey, struct{}](),
		ttlcache.WithCapacity[auditKey, struct{}](maxAuditEntries),
	)}
}

// first reports whether ip and host were not denied within the interval.
func (a *auditLimiter) first(ip, host string) bool {
	if a == nil {
		return true
	}
	key := auditKey{ip: ip, host: host}
	if a.seen.Get(key) != nil {
		return false
	}
	a.seen.Set(key, struct{}{}, ttlcache.DefaultTTL)
	return true
}
