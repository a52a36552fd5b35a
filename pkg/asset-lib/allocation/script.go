package allocation

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// ScriptNotFoundError is returned when a transaction has no allocation output.
type ScriptNotFoundError struct {
	Txid string
}

func (e ScriptNotFoundError) Error() string {
	return fmt.Sprintf("allocation output not found in tx %s", e.Txid)
}

// Script serializes the payload into an OP_RETURN null-data script.
// Mint proofs exceed the standard push size so the data is pushed in full.
func Script(p Payload) ([]byte, error) {
	data, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize allocation: %w", err)
	}
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddFullData(data).
		Script()
}

// TxOut wraps the payload into an OP_RETURN output carrying the given value.
func TxOut(p Payload, value int64) (*wire.TxOut, error) {
	script, err := Script(p)
	if err != nil {
		return nil, fmt.Errorf("failed to build output script: %w", err)
	}
	return wire.NewTxOut(value, script), nil
}

// DataFromScript extracts the raw payload from an OP_RETURN script.
func DataFromScript(script []byte) ([]byte, error) {
	if len(script) <= 0 {
		return nil, fmt.Errorf("missing output script")
	}
	if script[0] != txscript.OP_RETURN {
		return nil, fmt.Errorf("OP_RETURN not found in output script")
	}

	tokenizer := txscript.MakeScriptTokenizer(0, script[1:])
	if !tokenizer.Next() {
		if err := tokenizer.Err(); err != nil {
			return nil, fmt.Errorf("invalid output script: %w", err)
		}
		return nil, fmt.Errorf("missing allocation data")
	}
	data := tokenizer.Data()
	if tokenizer.Next() {
		return nil, fmt.Errorf("unexpected opcodes after allocation data")
	}
	if err := tokenizer.Err(); err != nil {
		return nil, fmt.Errorf("invalid output script: %w", err)
	}
	if len(data) <= 0 {
		return nil, fmt.Errorf("missing allocation data")
	}
	return data, nil
}

// DataOutputIndex returns the index of the first unspendable output of the tx,
// the one the node reads the allocation from.
func DataOutputIndex(tx *wire.MsgTx) (int, error) {
	for i, out := range tx.TxOut {
		if txscript.IsUnspendable(out.PkScript) {
			return i, nil
		}
	}
	return -1, ScriptNotFoundError{Txid: tx.TxID()}
}

// DataFromTx extracts the allocation payload of the tx.
func DataFromTx(tx *wire.MsgTx) (int, []byte, error) {
	index, err := DataOutputIndex(tx)
	if err != nil {
		return -1, nil, err
	}
	data, err := DataFromScript(tx.TxOut[index].PkScript)
	if err != nil {
		return -1, nil, err
	}
	return index, data, nil
}
