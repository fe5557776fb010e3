package harness

import (
	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

// DefaultFlushBytes is larger than the last level cache of common CPUs.
const DefaultFlushBytes = 64 << 20

const cacheLineSize = 64

// CacheFlushHook evicts the CPU caches after every setup, so kernels start
// from cold caches instead of reading inputs the setup just wrote.
type CacheFlushHook struct {
	BaseHook
	buf     []byte
	flushes int
}

// NewCacheFlushHook returns a hook writing bytes of memory to flush caches.
// bytes <= 0 selects DefaultFlushBytes.
func NewCacheFlushHook(bytes int) *CacheFlushHook {
	if bytes <= 0 {
		bytes = DefaultFlushBytes
	}
	return &CacheFlushHook{buf: make([]byte, bytes)}
}

func (h *CacheFlushHook) AtInit(*Args) {
	klog.V(2).Infof("flushing caches with %s before every run", humanize.IBytes(uint64(len(h.buf))))
}

// PostSetup touches every cache line twice with different patterns.
func (h *CacheFlushHook) PostSetup() {
	for i := 0; i < len(h.buf); i += cacheLineSize {
		h.buf[i] = byte(i)
	}
	for i := 0; i < len(h.buf); i += cacheLineSize {
		h.buf[i] = byte(i * 7)
	}
	h.flushes++
}

// Flushes returns the number of flushes done.
func (h *CacheFlushHook) Flushes() int {
	return h.flushes
}
