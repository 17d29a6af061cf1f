package http

import (
	"fmt"
	"net/http"
	"time"
)

// SetListCacheHeaders marks public list responses cacheable and attaches a
// weak ETag derived from the result count and the current second. Two
// different result sets fetched within the same second can collide, so the
// validator is explicitly weak.
func SetListCacheHeaders(w http.ResponseWriter, maxAge time.Duration, total int64) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
	w.Header().Set("ETag", fmt.Sprintf(`W/"%d-%d"`, total, time.Now().Unix()))
}
