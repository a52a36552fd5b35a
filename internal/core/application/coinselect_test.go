package application

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syscoin/sysasset/internal/core/domain"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
	"github.com/syscoin/sysasset/pkg/errors"
)

const sysx = assetlib.SYSXGuid

func nativeUtxo(txid string, amount int64) domain.Utxo {
	return domain.Utxo{
		Outpoint:      domain.Outpoint{Txid: testTxid(txid), VOut: 0},
		Address:       "sys1q" + txid,
		Amount:        amount,
		Confirmations: 6,
	}
}

func assetUtxo(txid string, amount int64, assets ...domain.AssetBalance) domain.Utxo {
	u := nativeUtxo(txid, amount)
	u.Assets = assets
	return u
}

func requireInsufficientFunds(
	t *testing.T, err errors.Error, expected errors.InsufficientFundsMetadata,
) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.INSUFFICIENT_FUNDS.Is(err))
	var typed errors.TypedError[errors.InsufficientFundsMetadata]
	require.ErrorAs(t, err, &typed)
	require.Equal(t, expected, typed.TypedMetadata())
}

func TestSelectCoins(t *testing.T) {
	t.Run("asset send", func(t *testing.T) {
		utxos := []domain.Utxo{
			nativeUtxo("a", 10*assetlib.CoinThreshold),
			assetUtxo("b", assetlib.DustAmount, domain.AssetBalance{Guid: sysx, Amount: 20}),
		}
		sel, err := SelectCoins(utxos, 10546, map[uint64]int64{sysx: 5}, 10)
		require.NoError(t, err)
		require.Equal(t, []domain.Utxo{utxos[1], utxos[0]}, sel.Inputs)
		require.Equal(t, int64(1000000546), sel.NativeTotal)
		require.Equal(t, int64(999990000), sel.NativeChange)
		require.Equal(t, map[uint64]int64{sysx: 20}, sel.AssetTotals)
		require.Equal(t, map[uint64]int64{sysx: 15}, sel.AssetChange)
		require.Equal(t, []uint64{sysx}, sel.AssetChangeGuids())
		require.Equal(t, []domain.Outpoint{utxos[1].Outpoint, utxos[0].Outpoint}, sel.Outpoints())
	})

	t.Run("insufficient asset", func(t *testing.T) {
		utxos := []domain.Utxo{
			nativeUtxo("a", 10*assetlib.CoinThreshold),
			assetUtxo("b", assetlib.DustAmount, domain.AssetBalance{Guid: sysx, Amount: 3}),
		}
		sel, err := SelectCoins(utxos, 1000, map[uint64]int64{sysx: 5}, 10)
		require.Nil(t, sel)
		requireInsufficientFunds(t, err, errors.InsufficientFundsMetadata{
			Guid: sysx, Required: 5, Selected: 3, Deficit: 2,
		})
	})

	t.Run("lowest missing guid is reported", func(t *testing.T) {
		utxos := []domain.Utxo{
			assetUtxo("a", assetlib.DustAmount,
				domain.AssetBalance{Guid: 7, Amount: 1},
				domain.AssetBalance{Guid: 9, Amount: 1},
			),
		}
		_, err := SelectCoins(utxos, 0, map[uint64]int64{9: 4, 7: 2}, 10)
		requireInsufficientFunds(t, err, errors.InsufficientFundsMetadata{
			Guid: 7, Required: 2, Selected: 1, Deficit: 1,
		})
	})

	t.Run("insufficient native", func(t *testing.T) {
		utxos := []domain.Utxo{nativeUtxo("a", 1000), nativeUtxo("b", 2000)}
		_, err := SelectCoins(utxos, 5000, nil, 10)
		requireInsufficientFunds(t, err, errors.InsufficientFundsMetadata{
			Required: 5000, Selected: 3000, Deficit: 2000,
		})
	})

	t.Run("dust change is dropped", func(t *testing.T) {
		utxos := []domain.Utxo{nativeUtxo("a", 1000)}
		sel, err := SelectCoins(utxos, 600, nil, 10)
		require.NoError(t, err)
		require.Equal(t, int64(1000), sel.NativeTotal)
		require.Zero(t, sel.NativeChange)
		require.Empty(t, sel.AssetChange)
	})

	t.Run("input ceiling", func(t *testing.T) {
		utxos := make([]domain.Utxo, 0, 12)
		for _, c := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "a", "b", "c"} {
			utxos = append(utxos, nativeUtxo(c, 100))
		}
		_, err := SelectCoins(utxos, 1200, nil, 10)
		requireInsufficientFunds(t, err, errors.InsufficientFundsMetadata{
			Required: 1200, Selected: 1000, Deficit: 200,
		})

		sel, err := SelectCoins(utxos, 1200, nil, 12)
		require.NoError(t, err)
		require.Len(t, sel.Inputs, 12)
	})

	t.Run("largest first above one coin", func(t *testing.T) {
		utxos := []domain.Utxo{
			nativeUtxo("a", 1*assetlib.CoinThreshold),
			nativeUtxo("b", 5*assetlib.CoinThreshold),
			nativeUtxo("c", 3*assetlib.CoinThreshold),
		}
		sel, err := SelectCoins(utxos, 2*assetlib.CoinThreshold, nil, 10)
		require.NoError(t, err)
		require.Equal(t, []domain.Utxo{utxos[1]}, sel.Inputs)
	})

	t.Run("smallest first below one coin", func(t *testing.T) {
		utxos := []domain.Utxo{
			nativeUtxo("a", assetlib.CoinThreshold),
			nativeUtxo("b", 2000),
			nativeUtxo("c", 600),
		}
		sel, err := SelectCoins(utxos, 1000, nil, 10)
		require.NoError(t, err)
		require.Equal(t, []domain.Utxo{utxos[2], utxos[1]}, sel.Inputs)
		require.Equal(t, int64(1600), sel.NativeChange)
	})

	t.Run("asset utxos are spent last", func(t *testing.T) {
		utxos := []domain.Utxo{
			assetUtxo("a", 5000,
				domain.AssetBalance{Guid: 1, Amount: 10},
				domain.AssetBalance{Guid: 2, Amount: 10},
			),
			assetUtxo("b", 3000, domain.AssetBalance{Guid: 7, Amount: 4}),
			nativeUtxo("c", 1000),
		}
		sel, err := SelectCoins(utxos, 2000, nil, 10)
		require.NoError(t, err)
		require.Equal(t, []domain.Utxo{utxos[2], utxos[1]}, sel.Inputs)
		require.Equal(t, map[uint64]int64{7: 4}, sel.AssetChange)
		require.Equal(t, int64(2000), sel.NativeChange)
	})

	t.Run("biggest contribution first", func(t *testing.T) {
		utxos := []domain.Utxo{
			assetUtxo("a", assetlib.DustAmount, domain.AssetBalance{Guid: 1, Amount: 4}),
			assetUtxo("b", assetlib.DustAmount, domain.AssetBalance{Guid: 1, Amount: 10}),
			assetUtxo("c", assetlib.DustAmount, domain.AssetBalance{Guid: 1, Amount: 10}),
		}
		sel, err := SelectCoins(utxos, 0, map[uint64]int64{1: 10}, 10)
		require.NoError(t, err)
		require.Equal(t, []domain.Utxo{utxos[1]}, sel.Inputs)
		require.Empty(t, sel.AssetChange)
	})

	t.Run("deterministic", func(t *testing.T) {
		utxos := []domain.Utxo{
			nativeUtxo("a", 700),
			assetUtxo("b", assetlib.DustAmount, domain.AssetBalance{Guid: 1, Amount: 3}),
			nativeUtxo("c", 700),
			assetUtxo("d", assetlib.DustAmount, domain.AssetBalance{Guid: 1, Amount: 3}),
			nativeUtxo("e", 900),
		}
		targets := map[uint64]int64{1: 5}
		first, err := SelectCoins(utxos, 2000, targets, 10)
		require.NoError(t, err)
		for range 10 {
			sel, err := SelectCoins(utxos, 2000, targets, 10)
			require.NoError(t, err)
			require.Equal(t, first, sel)
		}
		require.Equal(t, utxos[1], first.Inputs[0])
		require.Equal(t, utxos[3], first.Inputs[1])
		require.Equal(t, utxos[0], first.Inputs[2])
		require.Equal(t, utxos[2], first.Inputs[3])
	})

	t.Run("invalid targets", func(t *testing.T) {
		_, err := SelectCoins(nil, -1, nil, 10)
		require.True(t, errors.INVALID_INTENT.Is(err))
		_, err = SelectCoins(nil, 0, map[uint64]int64{1: -1}, 10)
		require.True(t, errors.INVALID_INTENT.Is(err))
	})
}
