package ports

import (
	"context"

	"github.com/syscoin/sysasset/internal/core/domain"
)

// TxOutput is one entry of the ordered outputs passed to CreateRawTransaction.
// Data outputs carry the hex encoded OP_RETURN payload instead of an address.
type TxOutput struct {
	Address string
	Amount  int64
	Data    string
}

func (o TxOutput) IsData() bool {
	return o.Data != ""
}

type TxDetails struct {
	Txid          string
	Confirmations int64
	BlockHeight   int64
	Hex           string
}

type LedgerService interface {
	// ListUnspent returns the wallet utxos with at least minConf confirmations,
	// restricted to the given addresses if any.
	ListUnspent(ctx context.Context, minConf int64, addresses ...string) ([]domain.Utxo, error)
	NewAddress(ctx context.Context) (string, error)
	CreateRawTransaction(
		ctx context.Context, inputs []domain.Outpoint, outputs []TxOutput,
	) (string, error)
	SignRawTransaction(ctx context.Context, txHex string) (string, error)
	SendRawTransaction(ctx context.Context, txHex string) (string, error)
	GetBlockCount(ctx context.Context) (int64, error)
	GetTransaction(ctx context.Context, txid string) (*TxDetails, error)
	Close()
}
