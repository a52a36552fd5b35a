package codec_test

import (
	"bytes"
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syscoin/sysasset/pkg/asset-lib/codec"
)

func TestVarInt(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		fixtures := []struct {
			n   uint64
			hex string
		}{
			{0, "00"},
			{1, "01"},
			{127, "7f"},
			{128, "8000"},
			{255, "807f"},
			{256, "8100"},
			{16383, "fe7f"},
			{16384, "ff00"},
			{123456, "86c340"},
			{math.MaxUint32, "8efefefe7f"},
		}
		for _, f := range fixtures {
			buf := codec.AppendVarInt(nil, f.n)
			require.Equal(t, f.hex, hex.EncodeToString(buf))
			require.Equal(t, len(buf), codec.VarIntSize(f.n))

			got, err := codec.ReadVarInt(bytes.NewReader(buf))
			require.NoError(t, err)
			require.Equal(t, f.n, got)
		}
	})

	t.Run("max uint64", func(t *testing.T) {
		var w bytes.Buffer
		require.NoError(t, codec.WriteVarInt(&w, math.MaxUint64))
		got, err := codec.ReadVarInt(bytes.NewReader(w.Bytes()))
		require.NoError(t, err)
		require.Equal(t, uint64(math.MaxUint64), got)
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name string
			hex  string
		}{
			{"truncated", "80"},
			{"empty", ""},
			{"overflow", "ffffffffffffffffffff7f"},
		}
		for _, f := range fixtures {
			buf, err := hex.DecodeString(f.hex)
			require.NoError(t, err)
			_, err = codec.ReadVarInt(bytes.NewReader(buf))
			require.Error(t, err, f.name)
		}
	})
}

func TestCompressAmount(t *testing.T) {
	t.Parallel()

	fixtures := []struct {
		amount uint64
		code   uint64
		hex    string
	}{
		{0, 0, "00"},
		{1, 1, "01"},
		{546, 4911, "a52f"},
		{1000, 4, "04"},
		{100000000, 9, "09"},
		{123456789, 1111111101, "8390e7ea3d"},
		{500000000, 49, "31"},
		{1500000000, 139, "800b"},
		{2099999900000000, 188999999, "d98ed13f"},
		{codec.MaxAmount, 21000000, "8980dd40"},
		{codec.MaxAmount - 1, 18899999999999991, "a0c8adb1d183fe77"},
	}
	for _, f := range fixtures {
		require.Equal(t, f.code, codec.CompressAmount(f.amount))
		require.Equal(t, f.amount, codec.DecompressAmount(f.code))

		var w bytes.Buffer
		require.NoError(t, codec.WriteCompressedAmount(&w, f.amount))
		require.Equal(t, f.hex, hex.EncodeToString(w.Bytes()))
		require.Equal(t, w.Len(), codec.CompressedAmountSize(f.amount))

		got, err := codec.ReadCompressedAmount(bytes.NewReader(w.Bytes()))
		require.NoError(t, err)
		require.Equal(t, f.amount, got)
	}
}

func TestCompressAmountRoundTrip(t *testing.T) {
	t.Parallel()

	amounts := []uint64{
		2, 9, 10, 11, 99, 100, 101, 545, 547, 999, 1001, 10000, 123456,
		99999999, 100000001, 2099999999999999, codec.MaxAmount,
	}
	for i := uint64(0); i < 2000; i++ {
		amounts = append(amounts, i, i*1000, i*100000000+i)
	}
	for _, amount := range amounts {
		require.Equal(t, amount, codec.DecompressAmount(codec.CompressAmount(amount)))
	}
}

func TestCompressAmountOutOfRange(t *testing.T) {
	t.Parallel()

	// Codes overflow past MaxUint64/9, writers must refuse these amounts.
	require.NotEqual(t, uint64(math.MaxUint64), codec.DecompressAmount(codec.CompressAmount(math.MaxUint64)))
	require.NotEqual(t, uint64(1<<63), codec.DecompressAmount(codec.CompressAmount(1<<63)))

	for _, amount := range []uint64{codec.MaxAmount + 1, 1 << 63, math.MaxUint64} {
		var w bytes.Buffer
		require.ErrorContains(t, codec.WriteCompressedAmount(&w, amount), "out of range")
		require.Zero(t, w.Len())
	}
}

func TestCompactSize(t *testing.T) {
	t.Parallel()

	fixtures := []struct {
		n   uint64
		hex string
	}{
		{0, "00"},
		{252, "fc"},
		{253, "fdfd00"},
		{0xffff, "fdffff"},
		{0x10000, "fe00000100"},
	}
	for _, f := range fixtures {
		var w bytes.Buffer
		require.NoError(t, codec.WriteCompactSize(&w, f.n))
		require.Equal(t, f.hex, hex.EncodeToString(w.Bytes()))

		got, err := codec.ReadCompactSize(&w)
		require.NoError(t, err)
		require.Equal(t, f.n, got)
	}

	var w bytes.Buffer
	require.NoError(t, codec.WriteVarBytes(&w, []byte{0xab, 0xcd}))
	require.Equal(t, "02abcd", hex.EncodeToString(w.Bytes()))
	buf, err := codec.ReadVarBytes(&w, 10, "blob")
	require.NoError(t, err)
	require.Equal(t, []byte{0xab, 0xcd}, buf)
}
