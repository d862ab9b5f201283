package limbo

import (
	"encoding/base64"
	"os"
	"sync"
)

// faviconDataURLPrefix precedes the base64 PNG payload in a Status
// response, per spec §6.
const faviconDataURLPrefix = "data:image/png;base64,"

// faviconCache caches the encoded favicon on first successful read; an
// empty string is used as the sentinel for "absent / previously failed"
// so the filesystem is not re-hit per status ping (spec §9).
type faviconCache struct {
	once sync.Once
	data string
}

func (f *faviconCache) get(path string) string {
	f.once.Do(func() {
		if path == "" {
			return
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return
		}
		f.data = faviconDataURLPrefix + base64.StdEncoding.EncodeToString(raw)
	})
	return f.data
}
