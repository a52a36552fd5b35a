package allocation

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/syscoin/sysasset/pkg/asset-lib/codec"
)

const (
	hashLen = 32
	// maxProofBlobLen bounds every length-prefixed field of a proof.
	maxProofBlobLen = 1 << 20
)

// HexBytes is a byte slice that encodes to hex in text formats.
type HexBytes []byte

func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

func (b *HexBytes) UnmarshalText(text []byte) error {
	buf, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid hex bytes: %w", err)
	}
	*b = buf
	return nil
}

// Hash32 is a 32-byte hash written in its raw byte order.
type Hash32 [hashLen]byte

func (h Hash32) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h[:])), nil
}

func (h *Hash32) UnmarshalText(text []byte) error {
	buf, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid hash: %w", err)
	}
	if len(buf) != hashLen {
		return fmt.Errorf("invalid hash length %d, expected %d", len(buf), hashLen)
	}
	copy(h[:], buf)
	return nil
}

// SPVProof is the evidence that a burn happened on the NEVM layer.
// Its fields are forwarded verbatim into the mint commitment.
type SPVProof struct {
	TxHash             Hash32   `json:"tx_hash"`
	TxValue            HexBytes `json:"tx_value"`
	TxPos              uint32   `json:"tx_pos"`
	BlockHash          Hash32   `json:"block_hash"`
	TxParentNodes      HexBytes `json:"tx_parent_nodes"`
	TxPath             HexBytes `json:"tx_path"`
	ReceiptPos         uint32   `json:"receipt_pos"`
	ReceiptParentNodes HexBytes `json:"receipt_parent_nodes"`
	TxRoot             Hash32   `json:"tx_root"`
	ReceiptRoot        Hash32   `json:"receipt_root"`
}

// MintAllocation is the commitment of a mint backed by an SPV proof.
type MintAllocation struct {
	Allocation Allocation `json:"allocation"`
	Proof      SPVProof   `json:"proof"`
}

// NewMintAllocationFromBytes deserializes a mint allocation. The tx value is
// written without a length prefix so its length must be known by the caller.
func NewMintAllocationFromBytes(buf []byte, txValueLen int) (*MintAllocation, error) {
	r := bytes.NewReader(buf)
	base, err := newAllocationFromReader(r)
	if err != nil {
		return nil, err
	}
	m := &MintAllocation{Allocation: base}
	p := &m.Proof

	if err := readHash(r, &p.TxHash); err != nil {
		return nil, fmt.Errorf("failed to read tx hash: %w", err)
	}
	if p.TxValue, err = codec.ReadFixed(r, txValueLen); err != nil {
		return nil, fmt.Errorf("failed to read tx value: %w", err)
	}
	if p.TxPos, err = readUint32(r); err != nil {
		return nil, fmt.Errorf("failed to read tx pos: %w", err)
	}
	if err := readHash(r, &p.BlockHash); err != nil {
		return nil, fmt.Errorf("failed to read block hash: %w", err)
	}
	if p.TxParentNodes, err = codec.ReadVarBytes(r, maxProofBlobLen, "tx parent nodes"); err != nil {
		return nil, err
	}
	if p.TxPath, err = codec.ReadVarBytes(r, maxProofBlobLen, "tx path"); err != nil {
		return nil, err
	}
	if p.ReceiptPos, err = readUint32(r); err != nil {
		return nil, fmt.Errorf("failed to read receipt pos: %w", err)
	}
	p.ReceiptParentNodes, err = codec.ReadVarBytes(r, maxProofBlobLen, "receipt parent nodes")
	if err != nil {
		return nil, err
	}
	if err := readHash(r, &p.TxRoot); err != nil {
		return nil, fmt.Errorf("failed to read tx root: %w", err)
	}
	if err := readHash(r, &p.ReceiptRoot); err != nil {
		return nil, fmt.Errorf("failed to read receipt root: %w", err)
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("invalid mint allocation length, left %d unknown bytes to read", r.Len())
	}
	return m, nil
}

func (m *MintAllocation) Base() Allocation {
	return m.Allocation
}

// Serialize writes the base allocation followed by the proof fields.
func (m *MintAllocation) Serialize(w io.Writer) error {
	if err := m.Allocation.Serialize(w); err != nil {
		return err
	}
	p := m.Proof
	if _, err := w.Write(p.TxHash[:]); err != nil {
		return err
	}
	if _, err := w.Write(p.TxValue); err != nil {
		return err
	}
	if err := writeUint32(w, p.TxPos); err != nil {
		return err
	}
	if _, err := w.Write(p.BlockHash[:]); err != nil {
		return err
	}
	if err := codec.WriteVarBytes(w, p.TxParentNodes); err != nil {
		return err
	}
	if err := codec.WriteVarBytes(w, p.TxPath); err != nil {
		return err
	}
	if err := writeUint32(w, p.ReceiptPos); err != nil {
		return err
	}
	if err := codec.WriteVarBytes(w, p.ReceiptParentNodes); err != nil {
		return err
	}
	if _, err := w.Write(p.TxRoot[:]); err != nil {
		return err
	}
	_, err := w.Write(p.ReceiptRoot[:])
	return err
}

func (m *MintAllocation) Bytes() ([]byte, error) {
	var w bytes.Buffer
	if err := m.Serialize(&w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r *bytes.Reader) (uint32, error) {
	buf, err := codec.ReadFixed(r, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func readHash(r *bytes.Reader, h *Hash32) error {
	buf, err := codec.ReadFixed(r, hashLen)
	if err != nil {
		return err
	}
	copy(h[:], buf)
	return nil
}
