package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Sum returns the hex SHA-256 of content.
func Sum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Stream drains r and returns its hex SHA-256 and length.
func Stream(r io.Reader) (string, int64, error) {
	cr := NewReader(r)
	if _, err := io.Copy(io.Discard, cr); err != nil {
		return "", cr.Bytes(), err
	}
	return cr.Sum(), cr.Bytes(), nil
}

// Reader hashes and counts bytes as they are read from the underlying
// reader. Sum and Bytes reflect only what has been consumed so far.
type Reader struct {
	r     io.Reader
	h     hash.Hash
	count int64
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, h: sha256.New()}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.h.Write(p[:n])
		r.count += int64(n)
	}
	return n, err
}

// Sum returns the hex SHA-256 of the bytes read so far.
func (r *Reader) Sum() string {
	return hex.EncodeToString(r.h.Sum(nil))
}

// Bytes returns the number of bytes read so far.
func (r *Reader) Bytes() int64 {
	return r.count
}
