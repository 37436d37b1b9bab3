package iso8583

import "sync"

// maxPooledBuffer keeps one oversized message from pinning memory in the pool.
const maxPooledBuffer = 2 * DefaultBufferSize

var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, DefaultBufferSize)
		return &buf
	},
}

// getBuffer returns an empty encode buffer. Only buffers are pooled, never
// messages.
func getBuffer() []byte {
	buf := bufferPool.Get().(*[]byte)
	return (*buf)[:0]
}

func putBuffer(buf []byte) {
	if cap(buf) <= maxPooledBuffer {
		b := buf[:0]
		bufferPool.Put(&b)
	}
}
