package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

type Outpoint struct {
	Txid string
	VOut uint32
}

func (k *Outpoint) FromString(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid outpoint string: %s", s)
	}
	if _, err := chainhash.NewHashFromStr(parts[0]); err != nil {
		return fmt.Errorf("invalid txid string: %s", parts[0])
	}
	k.Txid = parts[0]
	vout, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid vout string: %s", parts[1])
	}
	k.VOut = uint32(vout)
	return nil
}

func (k Outpoint) String() string {
	return fmt.Sprintf("%s:%d", k.Txid, k.VOut)
}

// AssetBalance is the amount of one asset held by an output, in satoshi units.
type AssetBalance struct {
	Guid   uint64
	Amount int64
}

// Utxo is a spendable output as listed by the ledger. Amounts are in satoshis.
type Utxo struct {
	Outpoint
	Address       string
	ScriptPubKey  []byte
	Amount        int64
	Confirmations int64
	Assets        []AssetBalance
}

var _ coinset.Coin = Utxo{}

func (u Utxo) String() string {
	// nolint
	b, _ := json.MarshalIndent(u, "", "  ")
	return string(b)
}

// AssetAmount returns the balance of the given asset held by the output.
func (u Utxo) AssetAmount(guid uint64) int64 {
	var total int64
	for _, a := range u.Assets {
		if a.Guid == guid {
			total += a.Amount
		}
	}
	return total
}

func (u Utxo) HasAssets() bool {
	return len(u.Assets) > 0
}

func (u Utxo) Hash() *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(u.Txid)
	if err != nil {
		return &chainhash.Hash{}
	}
	return hash
}

func (u Utxo) Index() uint32 {
	return u.VOut
}

func (u Utxo) Value() btcutil.Amount {
	return btcutil.Amount(u.Amount)
}

func (u Utxo) PkScript() []byte {
	return u.ScriptPubKey
}

func (u Utxo) NumConfs() int64 {
	return u.Confirmations
}

func (u Utxo) ValueAge() int64 {
	return u.Amount * u.Confirmations
}
