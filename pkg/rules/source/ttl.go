package source

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseMaxAge extracts the max-age directive from a Cache-Control header value.
// It returns false when the directive is absent or not a non-negative integer.
func ParseMaxAge(header string) (time.Duration, bool) {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "max-age") {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		secs, err := strconv.ParseInt(value, 10, 64)
		if err != nil || secs < 0 || secs > math.MaxInt64/int64(time.Second) {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// TTLFromHeader returns the max-age of header, or fallback when none is usable.
func TTLFromHeader(header string, fallback time.Duration) time.Duration {
	if ttl, ok := ParseMaxAge(header); ok {
		return ttl
	}
	return fallback
}
