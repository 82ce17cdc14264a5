package amf3

import "sync"

// Size-tiered buffer pool backing Writer's growable buffer, adapted from the
// teacher's video-chunk allocator (pkg/rtmp/buf/allocator.go). An AMF3
// message is a single in-memory tree, not a multi-megabyte video frame, so
// the tiers stop well short of the teacher's 8MB ceiling.
const (
	tierSize64   = 1 << 6  // 64 bytes
	tierSize1K   = 1 << 10 // 1 KB
	tierSize16K  = 1 << 14 // 16 KB
	tierSize256K = 1 << 18 // 256 KB
)

var (
	pool64   = sync.Pool{New: func() any { return make([]byte, 0, tierSize64) }}
	pool1K   = sync.Pool{New: func() any { return make([]byte, 0, tierSize1K) }}
	pool16K  = sync.Pool{New: func() any { return make([]byte, 0, tierSize16K) }}
	pool256K = sync.Pool{New: func() any { return make([]byte, 0, tierSize256K) }}
)

// allocBuf returns a zero-length buffer with at least the requested capacity.
func allocBuf(capHint int) []byte {
	switch {
	case capHint <= tierSize64:
		return pool64.Get().([]byte)[:0]
	case capHint <= tierSize1K:
		return pool1K.Get().([]byte)[:0]
	case capHint <= tierSize16K:
		return pool16K.Get().([]byte)[:0]
	case capHint <= tierSize256K:
		return pool256K.Get().([]byte)[:0]
	default:
		return make([]byte, 0, capHint)
	}
}

// freeBuf returns a buffer to its tier pool based on capacity, or drops it
// for the GC to collect when it was never pool-backed or has grown past the
// largest tier.
func freeBuf(buf []byte) {
	if buf == nil {
		return
	}
	switch cap(buf) {
	case tierSize64:
		pool64.Put(buf[:0])
	case tierSize1K:
		pool1K.Put(buf[:0])
	case tierSize16K:
		pool16K.Put(buf[:0])
	case tierSize256K:
		pool256K.Put(buf[:0])
	}
}
