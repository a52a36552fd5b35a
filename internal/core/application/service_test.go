package application

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/syscoin/sysasset/internal/core/domain"
	"github.com/syscoin/sysasset/internal/core/ports"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
	"github.com/syscoin/sysasset/pkg/asset-lib/allocation"
	"github.com/syscoin/sysasset/pkg/errors"
)

const (
	nativeChangeAddr = "sys1qnativechange"
	assetChangeAddr  = "sys1qassetchange"
	destination      = "sys1qdestination"
)

// requireConsistentTx checks the signed tx carries the reported outputs and
// that the allocation only points at existing outputs.
func requireConsistentTx(t *testing.T, built *BuiltTx) (*wire.MsgTx, allocation.Allocation) {
	t.Helper()
	tx, err := decodeTx(built.SignedTx)
	require.NoError(t, err)
	require.Equal(t, built.Txid, tx.TxID())
	require.Equal(t, built.Kind.Version(), tx.Version)
	require.Len(t, tx.TxOut, len(built.Outputs))

	index, data, err := allocation.DataFromTx(tx)
	require.NoError(t, err)
	require.Equal(t, int(built.DataIndex), index)
	require.Equal(t, len(tx.TxOut)-1, index)
	require.Equal(t, built.Data, hex.EncodeToString(data))

	for i, out := range built.Outputs {
		require.Equal(t, out.Amount, tx.TxOut[i].Value, "output %d", i)
		if !out.IsData() {
			require.Equal(t, testScript(out.Address), tx.TxOut[i].PkScript, "output %d", i)
		}
	}

	var alloc allocation.Allocation
	switch built.Kind {
	case domain.KindAllocationSend:
		alloc, err = allocation.NewAllocationFromBytes(data)
	case domain.KindAllocationMint:
		// the proofs of these tests carry a 3 bytes tx value
		var mint *allocation.MintAllocation
		mint, err = allocation.NewMintAllocationFromBytes(data, 3)
		if mint != nil {
			alloc = mint.Allocation
		}
	default:
		var burn *allocation.BurnAllocation
		burn, err = allocation.NewBurnAllocationFromBytes(data)
		if burn != nil {
			alloc = burn.Allocation
		}
	}
	require.NoError(t, err)
	require.NoError(t, alloc.Validate(len(tx.TxOut)))
	for _, out := range alloc {
		for _, v := range out.Values {
			if v.N == built.DataIndex {
				require.True(t, built.Kind.IsBurn(), "only burns commit to the data output")
			}
		}
	}
	return tx, alloc
}

func TestBuildTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("send", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{
			nativeUtxo("a", 10*assetlib.CoinThreshold),
			assetUtxo("b", assetlib.DustAmount, domain.AssetBalance{Guid: sysx, Amount: 20}),
		}
		env.expectBuild(utxos, 1000, nativeChangeAddr, assetChangeAddr)

		intent, err := domain.NewSendIntent([]domain.AssetTriple{
			{Guid: sysx, Amount: 5, Destination: destination},
		}, 0, "")
		require.NoError(t, err)

		built, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.NoError(t, buildErr)
		require.Equal(t, int64(474), built.Fee)
		require.Equal(t, []ports.TxOutput{
			{Address: nativeChangeAddr, Amount: 999998980},
			{Address: destination, Amount: assetlib.DustAmount},
			{Address: assetChangeAddr, Amount: assetlib.DustAmount},
			{Data: built.Data},
		}, built.Outputs)
		require.Equal(t, uint32(3), built.DataIndex)
		require.Equal(t, map[uint64]int64{sysx: 15}, built.Selection.AssetChange)
		require.Equal(t, []domain.IntendedOutput{
			{Destination: destination, Guid: sysx, Amount: 5},
		}, built.IntendedOutputs)

		_, alloc := requireConsistentTx(t, built)
		require.Equal(t, allocation.Allocation{
			{Key: sysx, Values: []allocation.AssetOutValue{{N: 1, Value: 5}, {N: 2, Value: 15}}},
		}, alloc)

		env.journal.AssertCalled(t, "AddOrUpdateEntry", mock.Anything,
			mock.MatchedBy(func(e domain.JournalEntry) bool {
				return e.Id == built.JournalId && e.Txid == built.Txid &&
					e.Fee == 474 && len(e.Inputs) == 2 &&
					e.Kind == domain.KindAllocationSend
			}),
		)
		env.ledger.AssertExpectations(t)
	})

	t.Run("send with native amount and many assets", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{
			assetUtxo("a", assetlib.DustAmount, domain.AssetBalance{Guid: 2, Amount: 7}),
			nativeUtxo("b", 10*assetlib.CoinThreshold),
			assetUtxo("c", assetlib.DustAmount,
				domain.AssetBalance{Guid: 1, Amount: 9},
				domain.AssetBalance{Guid: 3, Amount: 4},
			),
		}
		env.expectBuild(utxos, 1000, nativeChangeAddr, "sys1qchange1", "sys1qchange3")

		intent, err := domain.NewSendIntent([]domain.AssetTriple{
			{Guid: 1, Amount: 5, Destination: "sys1qdest1"},
			{Guid: 2, Amount: 7, Destination: "sys1qdest2"},
			{Guid: 1, Amount: 1, Destination: "sys1qdest3"},
		}, 2000, "sys1qnative")
		require.NoError(t, err)

		built, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.NoError(t, buildErr)

		outputs := built.Outputs
		require.Len(t, outputs, 8)
		require.Equal(t, ports.TxOutput{Address: "sys1qnative", Amount: 2000}, outputs[0])
		require.Equal(t, nativeChangeAddr, outputs[1].Address)
		require.Equal(t, "sys1qdest1", outputs[2].Address)
		require.Equal(t, "sys1qdest2", outputs[3].Address)
		require.Equal(t, "sys1qdest3", outputs[4].Address)
		require.Equal(t, "sys1qchange1", outputs[5].Address)
		require.Equal(t, "sys1qchange3", outputs[6].Address)
		require.True(t, outputs[7].IsData())

		_, alloc := requireConsistentTx(t, built)
		require.Equal(t, allocation.Allocation{
			{Key: 1, Values: []allocation.AssetOutValue{{N: 2, Value: 5}, {N: 4, Value: 1}, {N: 5, Value: 3}}},
			{Key: 2, Values: []allocation.AssetOutValue{{N: 3, Value: 7}}},
			{Key: 3, Values: []allocation.AssetOutValue{{N: 6, Value: 4}}},
		}, alloc)

		fee := built.Selection.NativeTotal - built.Selection.NativeChange -
			2000 - 5*assetlib.DustAmount
		require.Equal(t, fee, built.Fee)
	})

	t.Run("fixed fee", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{
			nativeUtxo("a", 10*assetlib.CoinThreshold),
			assetUtxo("b", assetlib.DustAmount, domain.AssetBalance{Guid: sysx, Amount: 20}),
		}
		env.expectBuild(utxos, 1000, nativeChangeAddr, assetChangeAddr)

		intent, err := domain.NewSendIntent([]domain.AssetTriple{
			{Guid: sysx, Amount: 5, Destination: destination},
		}, 0, "")
		require.NoError(t, err)
		intent, err = intent.WithFee(1000)
		require.NoError(t, err)

		built, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.NoError(t, buildErr)
		require.Equal(t, int64(1000), built.Fee)
		require.Equal(t, int64(999998454), built.Outputs[0].Amount)
		env.fees.AssertNotCalled(t, "FeeRate", mock.Anything)
	})

	t.Run("mint", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{nativeUtxo("a", 10*assetlib.CoinThreshold)}
		env.expectBuild(utxos, 1000, nativeChangeAddr)

		proof := allocation.SPVProof{
			TxValue:            allocation.HexBytes{0xc0, 0xff, 0xee},
			TxPos:              3,
			TxParentNodes:      allocation.HexBytes{0xab, 0xcd},
			TxPath:             allocation.HexBytes{0x01},
			ReceiptPos:         4,
			ReceiptParentNodes: allocation.HexBytes{0x01, 0x02, 0x03},
		}
		intent, err := domain.NewMintIntent(
			domain.AssetTriple{Guid: 555, Amount: 1000, Destination: destination}, proof,
		)
		require.NoError(t, err)

		built, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.NoError(t, buildErr)
		require.Equal(t, int64(546), built.Fee)
		require.Equal(t, []ports.TxOutput{
			{Address: nativeChangeAddr, Amount: 999998908},
			{Address: destination, Amount: assetlib.DustAmount},
			{Data: built.Data},
		}, built.Outputs)

		_, alloc := requireConsistentTx(t, built)
		require.Equal(t, allocation.Allocation{
			{Key: 555, Values: []allocation.AssetOutValue{{N: 1, Value: 1000}}},
		}, alloc)
	})

	t.Run("burn to nevm", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{
			assetUtxo("a", assetlib.DustAmount, domain.AssetBalance{Guid: sysx, Amount: 10}),
			nativeUtxo("b", 10*assetlib.CoinThreshold),
		}
		env.expectBuild(utxos, 1000, nativeChangeAddr, assetChangeAddr)

		nevmAddress := "0x" + testTxid("1")[:40]
		intent, err := domain.NewBurnToNEVMIntent(sysx, 4, nevmAddress)
		require.NoError(t, err)

		built, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.NoError(t, buildErr)
		require.Equal(t, int64(460), built.Fee)
		require.Equal(t, []ports.TxOutput{
			{Address: nativeChangeAddr, Amount: 999999540},
			{Address: assetChangeAddr, Amount: assetlib.DustAmount},
			{Data: built.Data},
		}, built.Outputs)

		_, alloc := requireConsistentTx(t, built)
		require.Equal(t, allocation.Allocation{
			{Key: sysx, Values: []allocation.AssetOutValue{{N: 2, Value: 4}, {N: 1, Value: 6}}},
		}, alloc)

		data, err := hex.DecodeString(built.Data)
		require.NoError(t, err)
		burn, err := allocation.NewBurnAllocationFromBytes(data)
		require.NoError(t, err)
		require.NotNil(t, burn.NEVMAddress)
		require.Equal(t, nevmAddress, burn.NEVMAddress.String())
		require.Equal(t, []domain.IntendedOutput{
			{Guid: sysx, Amount: 4, Burned: true},
		}, built.IntendedOutputs)
	})

	t.Run("malformed nevm address", func(t *testing.T) {
		env := newTestEnv(t)

		intent, err := domain.NewBurnToNEVMIntent(sysx, 4, "0x1234")
		require.Error(t, err)
		require.Nil(t, intent)
		var addrErr allocation.InvalidNEVMAddressError
		require.ErrorAs(t, err, &addrErr)

		_, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.True(t, errors.INVALID_INTENT.Is(buildErr))
		env.ledger.AssertNotCalled(t, "ListUnspent", mock.Anything, mock.Anything)
	})

	t.Run("wrap", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{nativeUtxo("a", 10*assetlib.CoinThreshold)}
		env.expectBuild(utxos, 1000, nativeChangeAddr)

		intent, err := domain.NewWrapIntent(5*assetlib.CoinThreshold, destination)
		require.NoError(t, err)

		built, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.NoError(t, buildErr)
		require.Equal(t, int64(273), built.Fee)
		require.Equal(t, []ports.TxOutput{
			{Address: nativeChangeAddr, Amount: 499999181},
			{Address: destination, Amount: assetlib.DustAmount},
			{Data: built.Data, Amount: 5 * assetlib.CoinThreshold},
		}, built.Outputs)

		tx, alloc := requireConsistentTx(t, built)
		require.Equal(t, int32(139), tx.Version)
		require.Equal(t, 5*assetlib.CoinThreshold, tx.TxOut[2].Value)
		require.Equal(t, allocation.Allocation{
			{Key: sysx, Values: []allocation.AssetOutValue{{N: 1, Value: 500000000}}},
		}, alloc)

		data, err := hex.DecodeString(built.Data)
		require.NoError(t, err)
		burn, err := allocation.NewBurnAllocationFromBytes(data)
		require.NoError(t, err)
		require.Nil(t, burn.NEVMAddress)
	})

	t.Run("unwrap", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{
			assetUtxo("a", assetlib.DustAmount, domain.AssetBalance{Guid: sysx, Amount: 3e8}),
			nativeUtxo("b", 10*assetlib.CoinThreshold),
		}
		env.expectBuild(utxos, 1000, nativeChangeAddr, assetChangeAddr)

		intent, err := domain.NewUnwrapIntent(
			domain.AssetTriple{Guid: sysx, Amount: 1e8, Destination: destination},
		)
		require.NoError(t, err)

		built, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.NoError(t, buildErr)
		require.Equal(t, int64(474), built.Fee)
		require.Equal(t, []ports.TxOutput{
			{Address: destination, Amount: 1e8},
			{Address: nativeChangeAddr, Amount: 999999526},
			{Address: assetChangeAddr, Amount: assetlib.DustAmount},
			{Data: built.Data},
		}, built.Outputs)

		tx, alloc := requireConsistentTx(t, built)
		require.Equal(t, int32(138), tx.Version)
		require.Equal(t, allocation.Allocation{
			{Key: sysx, Values: []allocation.AssetOutValue{{N: 3, Value: 1e8}, {N: 2, Value: 2e8}}},
		}, alloc)
		require.Equal(t, []domain.IntendedOutput{
			{Destination: destination, Amount: 1e8},
			{Guid: sysx, Amount: 1e8, Burned: true},
		}, built.IntendedOutputs)
	})

	t.Run("insufficient asset", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{
			nativeUtxo("a", 10*assetlib.CoinThreshold),
			assetUtxo("b", assetlib.DustAmount, domain.AssetBalance{Guid: sysx, Amount: 3}),
		}
		env.ledger.On("ListUnspent", mock.Anything, int64(1)).Return(utxos, nil)
		env.fees.On("FeeRate", mock.Anything).Return(int64(1000))

		intent, err := domain.NewSendIntent([]domain.AssetTriple{
			{Guid: sysx, Amount: 5, Destination: destination},
		}, 0, "")
		require.NoError(t, err)

		built, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.Nil(t, built)
		requireInsufficientFunds(t, buildErr, errors.InsufficientFundsMetadata{
			Guid: sysx, Required: 5, Selected: 3, Deficit: 2,
		})
		env.ledger.AssertNotCalled(t, "NewAddress", mock.Anything)
		env.journal.AssertNotCalled(t, "AddOrUpdateEntry", mock.Anything, mock.Anything)
	})

	t.Run("insufficient funds for fee", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{
			assetUtxo("a", assetlib.DustAmount, domain.AssetBalance{Guid: sysx, Amount: 20}),
			nativeUtxo("b", 600),
		}
		env.ledger.On("ListUnspent", mock.Anything, int64(1)).Return(utxos, nil)
		env.fees.On("FeeRate", mock.Anything).Return(int64(1000))

		intent, err := domain.NewSendIntent([]domain.AssetTriple{
			{Guid: sysx, Amount: 5, Destination: destination},
		}, 0, "")
		require.NoError(t, err)

		_, buildErr := env.svc.BuildTransaction(ctx, intent)
		requireInsufficientFunds(t, buildErr, errors.InsufficientFundsMetadata{
			Required: 1566, Selected: 1146, Deficit: 420,
		})
	})

	t.Run("funds below placeholder fee", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{
			assetUtxo("a", assetlib.DustAmount, domain.AssetBalance{Guid: sysx, Amount: 20}),
			nativeUtxo("b", 3000),
		}
		env.expectBuild(utxos, 1000, nativeChangeAddr, assetChangeAddr)

		intent, err := domain.NewSendIntent([]domain.AssetTriple{
			{Guid: sysx, Amount: 5, Destination: destination},
		}, 0, "")
		require.NoError(t, err)

		built, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.NoError(t, buildErr)
		require.Equal(t, int64(474), built.Fee)
		require.Len(t, built.Selection.Inputs, 2)
		require.Equal(t, []ports.TxOutput{
			{Address: nativeChangeAddr, Amount: 3546 - 2*assetlib.DustAmount - 474},
			{Address: destination, Amount: assetlib.DustAmount},
			{Address: assetChangeAddr, Amount: assetlib.DustAmount},
			{Data: built.Data},
		}, built.Outputs)
		requireConsistentTx(t, built)
	})

	t.Run("ledger failure", func(t *testing.T) {
		env := newTestEnv(t)
		cause := fmt.Errorf("connection refused")
		env.ledger.On("ListUnspent", mock.Anything, int64(1)).Return(nil, cause)

		intent, err := domain.NewWrapIntent(1000, destination)
		require.NoError(t, err)

		_, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.True(t, errors.LEDGER_ERROR.Is(buildErr))
		require.ErrorIs(t, buildErr, cause)
		require.Equal(t, "listunspent", buildErr.Metadata()["method"])
	})

	t.Run("ledger tampered outputs", func(t *testing.T) {
		env := newTestEnv(t)
		utxos := []domain.Utxo{nativeUtxo("a", 10*assetlib.CoinThreshold)}
		env.ledger.On("ListUnspent", mock.Anything, int64(1)).Return(utxos, nil)
		env.fees.On("FeeRate", mock.Anything).Return(int64(1000))
		env.ledger.On("NewAddress", mock.Anything).Return(nativeChangeAddr, nil)
		env.ledger.On("CreateRawTransaction", mock.Anything, mock.Anything, mock.Anything).
			Return(func(inputs []domain.Outpoint, outputs []ports.TxOutput) string {
				outputs = append([]ports.TxOutput(nil), outputs...)
				outputs[0].Amount++
				return createRawTx(inputs, outputs)
			}, nil)

		intent, err := domain.NewWrapIntent(1000, destination)
		require.NoError(t, err)

		_, buildErr := env.svc.BuildTransaction(ctx, intent)
		require.True(t, errors.INTERNAL_ERROR.Is(buildErr))
		env.ledger.AssertNotCalled(t, "SignRawTransaction", mock.Anything, mock.Anything)
	})
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()

	prevout, err := chainhash.NewHashFromStr(testTxid("f"))
	require.NoError(t, err)
	tx := wire.NewMsgTx(142)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(prevout, 1), nil, nil))
	tx.AddTxOut(wire.NewTxOut(1000, testScript(destination)))
	signedTx := serializeTx(tx)
	txid := tx.TxID()

	newEntry := func() *domain.JournalEntry {
		return &domain.JournalEntry{
			Id:       "entry",
			Kind:     domain.KindAllocationSend,
			Txid:     txid,
			SignedTx: signedTx,
			Status:   domain.TxStatusBuilt,
		}
	}

	t.Run("valid", func(t *testing.T) {
		env := newTestEnv(t)
		env.journal.On("GetEntryByTxid", mock.Anything, txid).Return(newEntry(), nil)
		env.journal.On("AddOrUpdateEntry", mock.Anything, mock.Anything).Return(nil)
		env.ledger.On("SendRawTransaction", mock.Anything, signedTx).Return(txid, nil)

		sent, err := env.svc.Broadcast(ctx, signedTx)
		require.NoError(t, err)
		require.Equal(t, txid, sent)
		env.journal.AssertCalled(t, "AddOrUpdateEntry", mock.Anything,
			mock.MatchedBy(func(e domain.JournalEntry) bool {
				return e.Status == domain.TxStatusBroadcast && e.Txid == txid
			}),
		)
	})

	t.Run("alert delivered before close", func(t *testing.T) {
		env := newTestEnv(t)
		alerts := &mockAlerts{}
		env.svc.alerts = alerts
		var delivered atomic.Bool
		alerts.On("Publish", mock.Anything, ports.TxBroadcast, mock.Anything).
			Run(func(mock.Arguments) {
				time.Sleep(100 * time.Millisecond)
				delivered.Store(true)
			}).Return(nil)
		env.journal.On("GetEntryByTxid", mock.Anything, txid).Return(newEntry(), nil)
		env.journal.On("AddOrUpdateEntry", mock.Anything, mock.Anything).Return(nil)
		env.ledger.On("SendRawTransaction", mock.Anything, signedTx).Return(txid, nil)

		_, err := env.svc.Broadcast(ctx, signedTx)
		require.NoError(t, err)

		env.svc.Close()
		require.True(t, delivered.Load())
		alerts.AssertCalled(t, "Publish", mock.Anything, ports.TxBroadcast,
			mock.MatchedBy(func(a ports.TxAlert) bool {
				return a.Txid == txid && a.Kind == domain.KindAllocationSend.String()
			}),
		)
	})

	t.Run("not journaled", func(t *testing.T) {
		env := newTestEnv(t)
		env.journal.On("GetEntryByTxid", mock.Anything, txid).Return(nil, fmt.Errorf("not found"))
		env.ledger.On("SendRawTransaction", mock.Anything, signedTx).Return(txid, nil)

		sent, err := env.svc.Broadcast(ctx, signedTx)
		require.NoError(t, err)
		require.Equal(t, txid, sent)
		env.journal.AssertNotCalled(t, "AddOrUpdateEntry", mock.Anything, mock.Anything)
	})

	t.Run("rejected", func(t *testing.T) {
		env := newTestEnv(t)
		env.journal.On("GetEntryByTxid", mock.Anything, txid).Return(newEntry(), nil)
		env.journal.On("AddOrUpdateEntry", mock.Anything, mock.Anything).Return(nil)
		cause := fmt.Errorf("bad-txns-inputs-missingorspent")
		env.ledger.On("SendRawTransaction", mock.Anything, signedTx).Return("", cause)

		_, err := env.svc.Broadcast(ctx, signedTx)
		require.True(t, errors.LEDGER_ERROR.Is(err))
		require.ErrorIs(t, err, cause)
		env.journal.AssertCalled(t, "AddOrUpdateEntry", mock.Anything,
			mock.MatchedBy(func(e domain.JournalEntry) bool {
				return e.Status == domain.TxStatusFailed && e.Error == cause.Error()
			}),
		)
	})

	t.Run("invalid tx", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Broadcast(ctx, "zz")
		require.True(t, errors.INVALID_INTENT.Is(err))
		env.ledger.AssertNotCalled(t, "SendRawTransaction", mock.Anything, mock.Anything)
	})
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	entries := []domain.JournalEntry{{Id: "b"}, {Id: "a"}}
	env.journal.On("ListEntries", mock.Anything, []domain.TxStatus{domain.TxStatusBuilt}).
		Return(entries, nil)

	got, err := env.svc.History(context.Background(), domain.TxStatusBuilt)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestNewService(t *testing.T) {
	repo := &mockRepoManager{journal: &mockJournal{}}
	_, err := NewService(nil, &mockFeeManager{}, repo, nil, nil, 0, 1)
	require.Error(t, err)
	_, err = NewService(&mockLedger{}, nil, repo, nil, nil, 0, 1)
	require.Error(t, err)
	_, err = NewService(&mockLedger{}, &mockFeeManager{}, nil, nil, nil, 0, 1)
	require.Error(t, err)
	_, err = NewService(&mockLedger{}, &mockFeeManager{}, repo, nil, nil, 0, -1)
	require.Error(t, err)

	svc, err := NewService(&mockLedger{}, &mockFeeManager{}, repo, nil, nil, 0, 0)
	require.NoError(t, err)
	require.Equal(t, assetlib.DefaultMaxInputs, svc.(*service).maxInputs)
}
