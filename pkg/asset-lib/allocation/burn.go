package allocation

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/syscoin/sysasset/pkg/asset-lib/codec"
)

// NEVMAddressLen is the byte length of an NEVM address.
const NEVMAddressLen = 20

// NEVMAddress is a 20-byte account address on the NEVM layer.
type NEVMAddress [NEVMAddressLen]byte

// InvalidNEVMAddressError is returned when a string is not a valid NEVM address.
type InvalidNEVMAddressError struct {
	Address string
	Reason  string
}

func (e InvalidNEVMAddressError) Error() string {
	return fmt.Sprintf("invalid nevm address %q: %s", e.Address, e.Reason)
}

// ParseNEVMAddress decodes a hex address of exactly 40 characters, optionally 0x prefixed.
func ParseNEVMAddress(s string) (NEVMAddress, error) {
	var addr NEVMAddress
	raw := s
	if len(raw) >= 2 && strings.EqualFold(raw[:2], "0x") {
		raw = raw[2:]
	}
	if len(raw) != 2*NEVMAddressLen {
		return addr, InvalidNEVMAddressError{
			s, fmt.Sprintf("expected %d hex chars, got %d", 2*NEVMAddressLen, len(raw)),
		}
	}
	buf, err := hex.DecodeString(raw)
	if err != nil {
		return addr, InvalidNEVMAddressError{s, "not hex encoded"}
	}
	copy(addr[:], buf)
	return addr, nil
}

func (a NEVMAddress) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a NEVMAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *NEVMAddress) UnmarshalText(text []byte) error {
	addr, err := ParseNEVMAddress(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// BurnAllocation is the commitment of a burn. Burns to the NEVM layer carry the
// receiving address, burns between the native coin and SYSX carry none.
type BurnAllocation struct {
	Allocation  Allocation   `json:"allocation"`
	NEVMAddress *NEVMAddress `json:"nevm_address,omitempty"`
}

// NewBurnAllocationFromBytes deserializes a burn allocation, rejecting trailing bytes.
func NewBurnAllocationFromBytes(buf []byte) (*BurnAllocation, error) {
	r := bytes.NewReader(buf)
	base, err := newAllocationFromReader(r)
	if err != nil {
		return nil, err
	}
	addr, err := codec.ReadVarBytes(r, NEVMAddressLen, "nevm address")
	if err != nil {
		return nil, fmt.Errorf("failed to read nevm address: %w", err)
	}
	if len(addr) != 0 && len(addr) != NEVMAddressLen {
		return nil, fmt.Errorf("invalid nevm address length %d", len(addr))
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("invalid burn allocation length, left %d unknown bytes to read", r.Len())
	}
	b := &BurnAllocation{Allocation: base}
	if len(addr) > 0 {
		b.NEVMAddress = &NEVMAddress{}
		copy(b.NEVMAddress[:], addr)
	}
	return b, nil
}

func (b *BurnAllocation) Base() Allocation {
	return b.Allocation
}

// Serialize writes the base allocation followed by the length-prefixed address.
func (b *BurnAllocation) Serialize(w io.Writer) error {
	if err := b.Allocation.Serialize(w); err != nil {
		return err
	}
	var addr []byte
	if b.NEVMAddress != nil {
		addr = b.NEVMAddress[:]
	}
	return codec.WriteVarBytes(w, addr)
}

func (b *BurnAllocation) Bytes() ([]byte, error) {
	var w bytes.Buffer
	if err := b.Serialize(&w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
