package application

import (
	"context"
	"sort"

	"github.com/syscoin/sysasset/internal/core/domain"
	"github.com/syscoin/sysasset/internal/core/ports"
	"github.com/syscoin/sysasset/pkg/errors"
)

type Service interface {
	SelectCoins(
		ctx context.Context, targetNative int64, targetAssets map[uint64]int64, maxInputs int,
	) (*Selection, errors.Error)
	BuildTransaction(ctx context.Context, intent *domain.Intent) (*BuiltTx, errors.Error)
	Broadcast(ctx context.Context, signedTx string) (string, errors.Error)
	VerifyOutputs(
		ctx context.Context, txid string, kind domain.TxKind, details []domain.IntendedOutput,
	) errors.Error
	// VerifyWhenConfirmed verifies the journaled outputs of txid once it has
	// the given number of confirmations.
	VerifyWhenConfirmed(ctx context.Context, txid string, confirmations int64) <-chan error
	History(ctx context.Context, status ...domain.TxStatus) ([]domain.JournalEntry, errors.Error)
	// Close waits for the pending alerts to be published.
	Close()
}

// Selection is the result of a coin selection.
type Selection struct {
	Inputs      []domain.Utxo
	NativeTotal int64
	AssetTotals map[uint64]int64
	// NativeChange is zero if below dust.
	NativeChange int64
	AssetChange  map[uint64]int64
}

func (s Selection) Outpoints() []domain.Outpoint {
	outpoints := make([]domain.Outpoint, 0, len(s.Inputs))
	for _, in := range s.Inputs {
		outpoints = append(outpoints, in.Outpoint)
	}
	return outpoints
}

// AssetChangeGuids returns the guids with a change output, in ascending order.
func (s Selection) AssetChangeGuids() []uint64 {
	return sortedGuids(s.AssetChange)
}

// BuiltTx is a signed transaction ready to be broadcast.
type BuiltTx struct {
	JournalId       string
	Kind            domain.TxKind
	Txid            string
	RawTx           string
	SignedTx        string
	Fee             int64
	Selection       *Selection
	Outputs         []ports.TxOutput
	DataIndex       uint32
	Data            string
	IntendedOutputs []domain.IntendedOutput
}

func sortedGuids[V any](m map[uint64]V) []uint64 {
	guids := make([]uint64, 0, len(m))
	for guid := range m {
		guids = append(guids, guid)
	}
	sort.Slice(guids, func(i, j int) bool { return guids[i] < guids[j] })
	return guids
}
