package codec

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/btcsuite/btcd/wire"
)

// maxVarIntSize is the longest Satoshi VarInt encoding of a uint64.
const maxVarIntSize = 10

// ErrVarIntOverflow is returned when a decoded VarInt does not fit into 64 bits.
var ErrVarIntOverflow = fmt.Errorf("varint overflows uint64")

// AppendVarInt appends the Satoshi VarInt encoding of n to buf.
// Groups of 7 bits are written most significant first, every group but the last
// carries the continuation bit and is biased by -1.
func AppendVarInt(buf []byte, n uint64) []byte {
	var tmp [maxVarIntSize]byte
	i := 0
	for {
		tmp[i] = byte(n & 0x7f)
		if i > 0 {
			tmp[i] |= 0x80
		}
		if n <= 0x7f {
			break
		}
		n = (n >> 7) - 1
		i++
	}
	for ; i >= 0; i-- {
		buf = append(buf, tmp[i])
	}
	return buf
}

// WriteVarInt writes the Satoshi VarInt encoding of n to the writer.
func WriteVarInt(w io.Writer, n uint64) error {
	_, err := w.Write(AppendVarInt(nil, n))
	return err
}

// ReadVarInt reads a Satoshi VarInt from the reader.
func ReadVarInt(r io.ByteReader) (uint64, error) {
	var n uint64
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if n > math.MaxUint64>>7 {
			return 0, ErrVarIntOverflow
		}
		n = (n << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			return n, nil
		}
		if n == math.MaxUint64 {
			return 0, ErrVarIntOverflow
		}
		n++
	}
}

// VarIntSize returns the number of bytes needed to encode n as a Satoshi VarInt.
func VarIntSize(n uint64) int {
	size := 1
	for n > 0x7f {
		n = (n >> 7) - 1
		size++
	}
	return size
}

// WriteCompactSize writes n as a compact size integer (1, 3, 5 or 9 bytes).
func WriteCompactSize(w io.Writer, n uint64) error {
	return wire.WriteVarInt(w, 0, n)
}

// ReadCompactSize reads a canonically encoded compact size integer.
func ReadCompactSize(r io.Reader) (uint64, error) {
	return wire.ReadVarInt(r, 0)
}

// WriteVarBytes writes buf prefixed by its compact size length.
func WriteVarBytes(w io.Writer, buf []byte) error {
	return wire.WriteVarBytes(w, 0, buf)
}

// ReadVarBytes reads a compact size prefixed byte slice of at most maxLen bytes.
func ReadVarBytes(r io.Reader, maxLen uint32, fieldName string) ([]byte, error) {
	return wire.ReadVarBytes(r, 0, maxLen, fieldName)
}

// ReadFixed reads exactly size bytes from the reader.
func ReadFixed(r *bytes.Reader, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid size %d", size)
	}
	if r.Len() < size {
		return nil, io.ErrUnexpectedEOF
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
