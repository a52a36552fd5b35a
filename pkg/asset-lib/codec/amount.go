package codec

import (
	"fmt"
	"io"
)

// MaxAmount is the largest amount, in satoshis, the asset outputs can carry.
// It matches the money range enforced by the node.
const MaxAmount uint64 = 21_000_000 * 100_000_000

// CompressAmount packs a satoshi amount into a dense integer code by stripping
// up to 9 trailing decimal zeros. The mapping is the one used by the node's
// asset deserializer and is a bijection over [0, MaxAmount]. Codes of amounts
// above roughly MaxUint64/9 overflow.
func CompressAmount(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	e := uint64(0)
	for n%10 == 0 && e < 9 {
		n /= 10
		e++
	}
	if e < 9 {
		d := n % 10
		n /= 10
		return 1 + (n*9+d-1)*10 + e
	}
	return 1 + (n-1)*10 + 9
}

// DecompressAmount is the inverse of CompressAmount.
func DecompressAmount(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	x--
	e := x % 10
	x /= 10
	var n uint64
	if e < 9 {
		d := (x % 9) + 1
		x /= 9
		n = x*10 + d
	} else {
		n = x + 1
	}
	for ; e > 0; e-- {
		n *= 10
	}
	return n
}

// WriteCompressedAmount writes the VarInt of the compressed amount.
func WriteCompressedAmount(w io.Writer, amount uint64) error {
	if amount > MaxAmount {
		return fmt.Errorf("amount %d out of range [0, %d]", amount, MaxAmount)
	}
	return WriteVarInt(w, CompressAmount(amount))
}

// ReadCompressedAmount reads a VarInt coded compressed amount and decompresses it.
func ReadCompressedAmount(r io.ByteReader) (uint64, error) {
	code, err := ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	return DecompressAmount(code), nil
}

// CompressedAmountSize returns the encoded size of the compressed amount.
func CompressedAmountSize(amount uint64) int {
	return VarIntSize(CompressAmount(amount))
}
