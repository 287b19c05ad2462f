package byte_ring_go

import (
	"errors"
	"fmt"
)

// RingBufferInterface defines the public API for the ring buffer.
//
// The occupied region is the GetLength() bytes starting at GetTail(), wrapping
// at GetCapacity(). The next write position (head) is derived from tail and
// length and is never stored.
//
// Notes on semantics:
//   - Write and WriteVia copy min(requested, GetFreeSpace()) bytes. A full
//     buffer yields 0. Asking for more than fits is a partial success, not an
//     error.
//   - Read and ReadVia copy min(requested, GetLength()) bytes. An empty buffer
//     yields 0.
//   - Write and Read return ErrOutOfBounds when offset/length do not describe
//     a range inside the caller's slice. Nothing is copied in that case.
//   - WriteVia and ReadVia invoke their callback zero, one or two times. When
//     the span wraps, the end-of-store segment comes first, then the segment
//     starting at index 0.
//
// The buffer is not safe for concurrent use. Callers sharing one across
// goroutines must guard it themselves.
type RingBufferInterface interface {
	GetLength() int
	GetCapacity() int
	GetFreeSpace() int
	GetStore() []byte
	GetTail() int
	Write(source []byte, offset, length int) (int, error)
	WriteVia(writer StoreWriter, length int) int
	Read(destination []byte, offset, length int) (int, error)
	ReadVia(reader StoreReader, length int) int
	Reset()
}

var _ RingBufferInterface = &RingBuffer{}
var _ fmt.Stringer = &RingBuffer{}

// StoreWriter fills part of a ring buffer's backing store.
//
// WriteStore must populate exactly length bytes of store starting at offset.
// It is called by RingBuffer.WriteVia and must not keep store after it returns.
type StoreWriter interface {
	WriteStore(store []byte, offset, length int)
}

// StoreReader drains part of a ring buffer's backing store.
//
// ReadStore must consume exactly length bytes of store starting at offset and
// must not modify them. It is called by RingBuffer.ReadVia and must not keep
// store after it returns.
type StoreReader interface {
	ReadStore(store []byte, offset, length int)
}

// StoreWriterFunc adapts a plain function to StoreWriter.
type StoreWriterFunc func(store []byte, offset, length int)

func (f StoreWriterFunc) WriteStore(store []byte, offset, length int) {
	f(store, offset, length)
}

// StoreReaderFunc adapts a plain function to StoreReader.
type StoreReaderFunc func(store []byte, offset, length int)

func (f StoreReaderFunc) ReadStore(store []byte, offset, length int) {
	f(store, offset, length)
}

// ErrOutOfBounds indicates that an offset/length pair does not fit inside the
// slice handed to Write or Read. It is a caller bug, never a buffer state.
var ErrOutOfBounds = errors.New("ringbuffer: index out of bounds")
