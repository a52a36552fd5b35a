package allocation

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"math"

	"github.com/syscoin/sysasset/pkg/asset-lib/codec"
)

// maxListLen bounds the element count of any decoded list.
const maxListLen = 1 << 16

// AssetOutValue assigns Value units of an asset to the output at index N.
type AssetOutValue struct {
	N     uint32 `json:"n"`
	Value uint64 `json:"value"`
}

// AssetOut lists the outputs receiving the asset identified by Key.
type AssetOut struct {
	Key    uint64          `json:"guid"`
	Values []AssetOutValue `json:"values"`
}

// Allocation is the ordered asset commitment of a transaction.
type Allocation []AssetOut

// Payload is implemented by every commitment that can be embedded in a tx.
type Payload interface {
	Serialize(w io.Writer) error
	Bytes() ([]byte, error)
	Base() Allocation
}

// NewAllocationFromBytes deserializes a plain allocation, rejecting trailing bytes.
func NewAllocationFromBytes(buf []byte) (Allocation, error) {
	r := bytes.NewReader(buf)
	a, err := newAllocationFromReader(r)
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("invalid allocation length, left %d unknown bytes to read", r.Len())
	}
	return a, nil
}

// NewAllocationFromString deserializes a hex encoded allocation.
func NewAllocationFromString(s string) (Allocation, error) {
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid allocation format, must be hex")
	}
	return NewAllocationFromBytes(buf)
}

func (a Allocation) Base() Allocation {
	return a
}

// Serialize writes the count-prefixed list of asset outs.
func (a Allocation) Serialize(w io.Writer) error {
	if err := codec.WriteCompactSize(w, uint64(len(a))); err != nil {
		return err
	}
	for _, out := range a {
		if err := out.serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func (a Allocation) Bytes() ([]byte, error) {
	var w bytes.Buffer
	if err := a.Serialize(&w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (a Allocation) String() string {
	// nolint
	buf, _ := a.Bytes()
	return hex.EncodeToString(buf)
}

// Totals sums the allocated value per asset guid.
func (a Allocation) Totals() map[uint64]uint64 {
	totals := make(map[uint64]uint64, len(a))
	for _, out := range a {
		for _, v := range out.Values {
			totals[out.Key] += v.Value
		}
	}
	return totals
}

// Validate checks the invariants the node enforces when loading an allocation
// into a tx with numOutputs outputs: no duplicated guid, no empty asset out,
// every output index in range.
func (a Allocation) Validate(numOutputs int) error {
	if len(a) <= 0 {
		return fmt.Errorf("missing asset outputs")
	}
	seen := make(map[uint64]struct{}, len(a))
	for _, out := range a {
		if _, ok := seen[out.Key]; ok {
			return fmt.Errorf("duplicated asset guid %d", out.Key)
		}
		seen[out.Key] = struct{}{}
		if len(out.Values) <= 0 {
			return fmt.Errorf("asset %d has no outputs", out.Key)
		}
		for _, v := range out.Values {
			if int(v.N) >= numOutputs {
				return fmt.Errorf(
					"asset %d output index %d out of range [0, %d]", out.Key, v.N, numOutputs-1,
				)
			}
			if v.Value > codec.MaxAmount {
				return fmt.Errorf("asset %d value %d out of range", out.Key, v.Value)
			}
		}
	}
	return nil
}

func (o AssetOut) serialize(w io.Writer) error {
	if err := codec.WriteVarInt(w, o.Key); err != nil {
		return err
	}
	if err := codec.WriteCompactSize(w, uint64(len(o.Values))); err != nil {
		return err
	}
	for _, v := range o.Values {
		if err := v.serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func (v AssetOutValue) serialize(w io.Writer) error {
	if err := codec.WriteCompactSize(w, uint64(v.N)); err != nil {
		return err
	}
	return codec.WriteCompressedAmount(w, v.Value)
}

func newAllocationFromReader(r *bytes.Reader) (Allocation, error) {
	count, err := readListLen(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset out count: %w", err)
	}
	a := make(Allocation, 0, count)
	for range count {
		out, err := newAssetOutFromReader(r)
		if err != nil {
			return nil, err
		}
		a = append(a, *out)
	}
	return a, nil
}

func newAssetOutFromReader(r *bytes.Reader) (*AssetOut, error) {
	key, err := codec.ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset guid: %w", err)
	}
	count, err := readListLen(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %d value count: %w", key, err)
	}
	values := make([]AssetOutValue, 0, count)
	for range count {
		n, err := codec.ReadCompactSize(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read asset %d output index: %w", key, err)
		}
		if n > math.MaxUint32 {
			return nil, fmt.Errorf("asset %d output index %d out of range", key, n)
		}
		value, err := codec.ReadCompressedAmount(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read asset %d value: %w", key, err)
		}
		values = append(values, AssetOutValue{N: uint32(n), Value: value})
	}
	return &AssetOut{Key: key, Values: values}, nil
}

func readListLen(r *bytes.Reader) (uint64, error) {
	count, err := codec.ReadCompactSize(r)
	if err != nil {
		return 0, err
	}
	if count > maxListLen {
		return 0, fmt.Errorf("list length %d exceeds max %d", count, maxListLen)
	}
	return count, nil
}
