package pipeline

import (
	"crypto/rand"
	"math"

	"github.com/haybale/chaff/types"
)

// maxFileBytes caps any single generated file, padding included.
const maxFileBytes = 100 << 20 // 100 MB

// padChunk bounds individual random reads while filling padding.
const padChunk = 1 << 20 // 1 MB

// perFileTarget returns the padded size each file should reach so total
// output approaches the requested target, or 0 when no target is set.
// The result is clamped, never an error: an unreachable target degrades
// to the cap.
func perFileTarget(req *types.GenerationRequest) int64 {
	if req.TargetSize <= 0 {
		return 0
	}
	t := req.TargetSize / req.FileCount
	if t > maxFileBytes {
		t = maxFileBytes
	}
	return t
}

// paddedSize resolves the final buffer length for content plus padding,
// clamped to the per-file cap and addressable buffer limits.
func paddedSize(contentLen int, target int64) int {
	size := target
	if size < int64(contentLen) {
		size = int64(contentLen)
	}
	if size > maxFileBytes {
		size = maxFileBytes
	}
	if size > math.MaxInt32 {
		size = math.MaxInt32
	}
	return int(size)
}

// fillRandom fills b with random bytes in bounded chunks. Random padding
// keeps compressed archive sizes honest; repeating filler would deflate to
// nearly nothing.
func fillRandom(b []byte) {
	for len(b) > 0 {
		n := len(b)
		if n > padChunk {
			n = padChunk
		}
		// crypto/rand.Read never returns a short read without an error, and
		// on supported platforms it does not fail.
		_, _ = rand.Read(b[:n])
		b = b[n:]
	}
}
