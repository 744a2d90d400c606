package request

import (
	"bytes"
	"fmt"
	"hash"
	"io"
	"net/url"
	"sync/atomic"
)

// Body describes a request payload: its length, content type, and either
// in-memory bytes or a stream handle. A Body backed by a non-seekable stream
// can be opened exactly once.
//
// Body values are shared between copies of a Request and must not be mutated
// after construction.
type Body struct {
	contentType string
	length      int64
	data        []byte
	stream      io.Reader
	consumed    atomic.Bool
}

// BytesBody returns an in-memory body. The slice is not copied.
func BytesBody(data []byte, contentType string) *Body {
	if data == nil {
		data = []byte{}
	}
	return &Body{contentType: contentType, length: int64(len(data)), data: data}
}

// StringBody returns an in-memory body holding s.
func StringBody(s, contentType string) *Body {
	return BytesBody([]byte(s), contentType)
}

// FormBody returns an application/x-www-form-urlencoded body.
func FormBody(values url.Values) *Body {
	return StringBody(values.Encode(), "application/x-www-form-urlencoded")
}

// StreamBody returns a body read from r. If r also implements io.Seeker the
// body is rewindable; otherwise it can be sent once. Pass a negative length
// when unknown.
func StreamBody(r io.Reader, length int64, contentType string) *Body {
	return &Body{contentType: contentType, length: length, stream: r}
}

// ContentType returns the declared media type.
func (b *Body) ContentType() string {
	return b.contentType
}

// Length returns the declared byte length, or -1 when unknown.
func (b *Body) Length() int64 {
	if b.length < 0 {
		return -1
	}
	return b.length
}

// Bytes returns the in-memory payload, if any.
func (b *Body) Bytes() ([]byte, bool) {
	if b.data != nil {
		return b.data, true
	}
	return nil, false
}

// Rewindable reports whether the body can be read more than once.
func (b *Body) Rewindable() bool {
	if b.data != nil {
		return true
	}
	_, ok := b.stream.(io.Seeker)
	return ok
}

// Consumed reports whether a non-rewindable stream has already been opened.
func (b *Body) Consumed() bool {
	return !b.Rewindable() && b.consumed.Load()
}

// Open returns a reader positioned at the start of the payload.
func (b *Body) Open() (io.Reader, error) {
	if b.data != nil {
		return bytes.NewReader(b.data), nil
	}
	if s, ok := b.stream.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind body: %w", err)
		}
		return b.stream, nil
	}
	if b.consumed.Swap(true) {
		return nil, ErrBodyConsumed
	}
	return b.stream, nil
}

// Hash writes the whole payload into h and leaves a seekable stream rewound.
// Non-seekable streams cannot be hashed without consuming them and return
// ErrBodyNotSeekable.
func (b *Body) Hash(h hash.Hash) error {
	if b.data != nil {
		_, err := h.Write(b.data)
		return err
	}
	s, ok := b.stream.(io.ReadSeeker)
	if !ok {
		return ErrBodyNotSeekable
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind body: %w", err)
	}
	if _, err := io.Copy(h, s); err != nil {
		return fmt.Errorf("hash body: %w", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind body: %w", err)
	}
	return nil
}
