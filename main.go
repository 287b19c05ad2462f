package byte_ring_go

import (
	"fmt"
)

// RingBuffer is a fixed-capacity circular byte buffer.
//
// It tracks the occupied region with a stored tail index and an occupied
// length. Because length alone tells full from empty, tail == head is
// unambiguous. The zero value is not usable; construct with New, FromStore or
// FromStoreWithData.
type RingBuffer struct {
	store []byte

	tail   int
	length int
}

// New creates a buffer with a zeroed store of the given capacity.
// It panics if capacity is not positive.
func New(capacity int) *RingBuffer {
	if capacity <= 0 {
		panic(fmt.Sprintf("ringbuffer: capacity must be positive, got %d", capacity))
	}

	return &RingBuffer{
		store: make([]byte, capacity),
	}
}

// FromStore adopts store as the backing store of an empty buffer. Existing
// bytes are treated as free space. The buffer aliases store; the caller must
// not modify it through another reference while the buffer is in use.
func FromStore(store []byte) *RingBuffer {
	return FromStoreWithData(store, 0, 0)
}

// FromStoreWithData adopts store and declares that it already holds length
// valid bytes starting at tail. The claim about the contents is trusted as is.
// It panics if store is empty or tail/length fall outside the store.
func FromStoreWithData(store []byte, tail, length int) *RingBuffer {
	if len(store) == 0 {
		panic("ringbuffer: store must not be empty")
	}

	if tail < 0 || tail >= len(store) {
		panic(fmt.Sprintf("ringbuffer: tail %d outside store of %d bytes", tail, len(store)))
	}

	if length < 0 || length > len(store) {
		panic(fmt.Sprintf("ringbuffer: length %d outside store of %d bytes", length, len(store)))
	}

	return &RingBuffer{
		store:  store,
		tail:   tail,
		length: length,
	}
}

func (buffer *RingBuffer) cap() int {
	return len(buffer.store)
}

// head is the next write position.
func (buffer *RingBuffer) head() int {
	return (buffer.tail + buffer.length) % buffer.cap()
}

// GetLength returns the number of occupied bytes.
func (buffer *RingBuffer) GetLength() int {
	return buffer.length
}

// GetCapacity returns the fixed size of the backing store.
func (buffer *RingBuffer) GetCapacity() int {
	return buffer.cap()
}

// GetFreeSpace returns how many bytes can be written before the buffer is full.
func (buffer *RingBuffer) GetFreeSpace() int {
	return buffer.cap() - buffer.length
}

// GetStore returns the live backing store. It must be treated as read-only.
func (buffer *RingBuffer) GetStore() []byte {
	return buffer.store
}

// GetTail returns the index of the oldest occupied byte.
func (buffer *RingBuffer) GetTail() int {
	return buffer.tail
}

func checkBounds(op string, p []byte, offset, length int) error {
	if offset < 0 || length < 0 || offset > len(p) || length > len(p)-offset {
		return fmt.Errorf("%w: %s offset %d length %d on slice of %d bytes", ErrOutOfBounds, op, offset, length, len(p))
	}

	return nil
}

// Write copies up to length bytes from source[offset:] into the buffer and
// returns how many were copied, which is less than length when free space
// runs out and 0 when the buffer is full.
//
// The whole range source[offset:offset+length] must lie inside source,
// otherwise ErrOutOfBounds is returned and nothing is written.
func (buffer *RingBuffer) Write(source []byte, offset, length int) (int, error) {
	if err := checkBounds("write", source, offset, length); err != nil {
		return 0, err
	}

	head := buffer.head()
	toEnd := buffer.cap() - head
	toWrite := min(length, buffer.GetFreeSpace())

	if toWrite > toEnd {
		copy(buffer.store[head:], source[offset:offset+toEnd])
		copy(buffer.store, source[offset+toEnd:offset+toWrite])
	} else {
		copy(buffer.store[head:head+toWrite], source[offset:offset+toWrite])
	}

	buffer.length += toWrite

	return toWrite, nil
}

// WriteVia is the callback form of Write. Instead of copying from a caller
// slice, it hands writer the segments of its own store to fill, which saves
// an intermediate copy when the data comes from elsewhere (a socket read, a
// decoder). writer is called once, or twice when the free region wraps, and
// not at all when nothing can be written. A negative length writes nothing.
func (buffer *RingBuffer) WriteVia(writer StoreWriter, length int) int {
	toWrite := min(max(length, 0), buffer.GetFreeSpace())
	if toWrite == 0 {
		return 0
	}

	head := buffer.head()
	toEnd := buffer.cap() - head

	if toWrite > toEnd {
		writer.WriteStore(buffer.store, head, toEnd)
		writer.WriteStore(buffer.store, 0, toWrite-toEnd)
	} else {
		writer.WriteStore(buffer.store, head, toWrite)
	}

	buffer.length += toWrite

	return toWrite
}

// Read moves up to length bytes from the buffer into destination[offset:] and
// returns how many were moved, which is less than length when the buffer holds
// fewer bytes and 0 when it is empty.
//
// The whole range destination[offset:offset+length] must lie inside
// destination, otherwise ErrOutOfBounds is returned and nothing is read.
func (buffer *RingBuffer) Read(destination []byte, offset, length int) (int, error) {
	if err := checkBounds("read", destination, offset, length); err != nil {
		return 0, err
	}

	toEnd := buffer.cap() - buffer.tail
	toRead := min(length, buffer.length)

	if toRead > toEnd {
		copy(destination[offset:offset+toEnd], buffer.store[buffer.tail:])
		copy(destination[offset+toEnd:offset+toRead], buffer.store[:toRead-toEnd])
	} else {
		copy(destination[offset:offset+toRead], buffer.store[buffer.tail:buffer.tail+toRead])
	}

	buffer.advanceTail(toRead)

	return toRead, nil
}

// ReadVia is the callback form of Read. reader receives the occupied segments
// of the store directly, tail-to-end first, so it can drain them into their
// destination without a staging slice. It is called once, twice when the
// occupied region wraps, or not at all when the buffer is empty. A negative
// length reads nothing.
func (buffer *RingBuffer) ReadVia(reader StoreReader, length int) int {
	toRead := min(max(length, 0), buffer.length)
	if toRead == 0 {
		return 0
	}

	toEnd := buffer.cap() - buffer.tail

	if toRead > toEnd {
		reader.ReadStore(buffer.store, buffer.tail, toEnd)
		reader.ReadStore(buffer.store, 0, toRead-toEnd)
	} else {
		reader.ReadStore(buffer.store, buffer.tail, toRead)
	}

	buffer.advanceTail(toRead)

	return toRead
}

func (buffer *RingBuffer) advanceTail(n int) {
	buffer.tail = (buffer.tail + n) % buffer.cap()
	buffer.length -= n
}

// Reset discards all data, zeroes the store and moves tail back to 0.
func (buffer *RingBuffer) Reset() {
	buffer.tail = 0
	buffer.length = 0

	clear(buffer.store)
}

// String renders the store followed by tail and length, e.g. "[1 2 3], 0, 3".
func (buffer *RingBuffer) String() string {
	return fmt.Sprintf("%v, %d, %d", buffer.store, buffer.tail, buffer.length)
}
