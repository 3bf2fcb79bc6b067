package encoding

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// byteReader walks a flat byte slice field-by-field, matching the
// big-endian, variable-length-per-list layouts described by the wire
// format: a run of fixed-width scalar fields followed, in some messages,
// by a length-prefixed list of fixed-width elements.
type byteReader struct {
	buf []byte
	pos int
}

func newByteReader(buf []byte) *byteReader {
	return &byteReader{buf: buf}
}

func (r *byteReader) remaining() int {
	return len(r.buf) - r.pos
}

// take reads n bytes, or reports InsufficientData for the named field.
func (r *byteReader) take(field string, n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, newInsufficientData(field, n, r.remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// uintBE reads an n-byte (n <= 8) big-endian unsigned integer.
func (r *byteReader) uintBE(field string, n int) (uint64, error) {
	b, err := r.take(field, n)
	if err != nil {
		return 0, err
	}
	var padded [8]byte
	copy(padded[8-n:], b)
	return binary.BigEndian.Uint64(padded[:]), nil
}

func (r *byteReader) address(field string) (common.Address, error) {
	b, err := r.take(field, common.AddressLength)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(b), nil
}

func (r *byteReader) hash(field string) (common.Hash, error) {
	b, err := r.take(field, common.HashLength)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(b), nil
}

func (r *byteReader) byteVal(field string) (byte, error) {
	b, err := r.take(field, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// byteWriter is the mirror-image encoder used by Encode* and round-trip tests.
type byteWriter struct {
	buf []byte
}

func (w *byteWriter) putUintBE(v uint64, n int) {
	var full [8]byte
	binary.BigEndian.PutUint64(full[:], v)
	w.buf = append(w.buf, full[8-n:]...)
}

func (w *byteWriter) putAddress(a common.Address) {
	w.buf = append(w.buf, a.Bytes()...)
}

func (w *byteWriter) putHash(h common.Hash) {
	w.buf = append(w.buf, h.Bytes()...)
}

func (w *byteWriter) putByte(b byte) {
	w.buf = append(w.buf, b)
}

func (w *byteWriter) putBytes(b []byte) {
	w.buf = append(w.buf, b...)
}
