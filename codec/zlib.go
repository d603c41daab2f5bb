// Package codec implements the ImageCodec collaborator: the zlib-deflated
// raw-pixel wire format tiles and images are transported in (spec.md §6
// "Tile/image wire formats"), plus the PNG and monochrome-mask readers/
// writers layered on top of it. It is grounded on the teacher's
// internal/image/io.go, which wraps the same stdlib image codecs behind
// a small, error-wrapped surface.
package codec

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// ErrSizeMismatch is returned by Inflate when the decompressed payload
// is not exactly the caller-declared size — the Go equivalent of the
// source's "provide_output_buffer callback reports a size mismatch"
// contract (spec.md §6).
var ErrSizeMismatch = errors.New("codec: decompressed size does not match declared dimensions")

// Codec is the ImageCodec collaborator: symmetric inflate/deflate over
// raw pixel bytes in canonical BGRA wire order.
type Codec interface {
	// Inflate decompresses payload and returns exactly wantSize bytes,
	// or ErrSizeMismatch if the decompressed stream is a different
	// length.
	Inflate(payload []byte, wantSize int) ([]byte, error)
	// Deflate compresses raw into a zlib stream.
	Deflate(raw []byte) []byte
}

// Zlib is the production Codec: plain zlib framing, stdlib
// compress/zlib, no custom dictionary.
type Zlib struct{}

// Inflate decompresses payload via zlib and requires the result be
// exactly wantSize bytes.
func (Zlib) Inflate(payload []byte, wantSize int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("codec: zlib: %w", err)
	}
	defer func() { _ = r.Close() }()

	out := make([]byte, wantSize)
	if _, err := io.ReadFull(r, out); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrSizeMismatch
		}
		return nil, fmt.Errorf("codec: zlib: %w", err)
	}
	// A well-formed payload ends exactly at wantSize; anything left
	// over means the declared size was wrong.
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return nil, ErrSizeMismatch
	}
	return out, nil
}

// Deflate compresses raw with the default zlib compression level.
func (Zlib) Deflate(raw []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(raw)
	_ = w.Close()
	return buf.Bytes()
}
