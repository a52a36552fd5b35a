package application

import (
	"sort"

	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/syscoin/sysasset/internal/core/domain"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
	"github.com/syscoin/sysasset/pkg/errors"
)

// SelectCoins picks the utxos covering targetNative satoshis and every amount of
// targetAssets, using at most maxInputs inputs.
//
// Asset targets are covered first by the utxos contributing the most to what is
// still missing. The native target is then covered by pure native utxos, the
// biggest first for targets above one coin and the smallest first otherwise.
// Other asset-bearing utxos are spent last, their assets going to change.
// Ties always resolve to the listing order of utxos.
func SelectCoins(
	utxos []domain.Utxo, targetNative int64, targetAssets map[uint64]int64, maxInputs int,
) (*Selection, errors.Error) {
	if maxInputs <= 0 {
		maxInputs = assetlib.DefaultMaxInputs
	}
	if targetNative < 0 {
		return nil, errors.INVALID_INTENT.New("negative native target %d", targetNative).
			WithMetadata(errors.IntentMetadata{Field: "amount"})
	}
	for guid, amount := range targetAssets {
		if amount < 0 {
			return nil, errors.INVALID_INTENT.New(
				"negative target %d for asset %d", amount, guid,
			).WithMetadata(errors.IntentMetadata{Field: "assets"})
		}
	}

	s, err := selectCoins(utxos, targetNative, targetAssets, maxInputs)
	if err != nil {
		return nil, err
	}
	return s.selection(targetNative, targetAssets), nil
}

// selectCoins runs the selection. When only the native target is missed, the
// selector is returned along with the error so the inputs it picked can still
// be inspected.
func selectCoins(
	utxos []domain.Utxo, targetNative int64, targetAssets map[uint64]int64, maxInputs int,
) (*coinSelector, errors.Error) {
	s := newCoinSelector(utxos, maxInputs)
	if err := s.selectAssets(targetAssets); err != nil {
		return nil, err
	}
	if err := s.selectNative(targetNative); err != nil {
		return s, err
	}
	return s, nil
}

type coinSelector struct {
	utxos     []domain.Utxo
	maxInputs int
	selected  []bool
	coins     *coinset.CoinSet
	inputs    []domain.Utxo
	assets    map[uint64]int64
}

func newCoinSelector(utxos []domain.Utxo, maxInputs int) *coinSelector {
	return &coinSelector{
		utxos:     utxos,
		maxInputs: maxInputs,
		selected:  make([]bool, len(utxos)),
		coins:     coinset.NewCoinSet(nil),
		inputs:    make([]domain.Utxo, 0),
		assets:    make(map[uint64]int64),
	}
}

func (s *coinSelector) add(i int) bool {
	if len(s.inputs) >= s.maxInputs {
		return false
	}
	u := s.utxos[i]
	s.selected[i] = true
	s.coins.PushCoin(u)
	s.inputs = append(s.inputs, u)
	for _, a := range u.Assets {
		s.assets[a.Guid] += a.Amount
	}
	return true
}

func (s *coinSelector) nativeTotal() int64 {
	return int64(s.coins.TotalValue())
}

func (s *coinSelector) selectAssets(targets map[uint64]int64) errors.Error {
	remaining := make(map[uint64]int64)
	for guid, amount := range targets {
		if amount > 0 {
			remaining[guid] = amount
		}
	}

	for len(remaining) > 0 {
		best, bestContribution := -1, int64(0)
		for i, u := range s.utxos {
			if s.selected[i] {
				continue
			}
			if c := contribution(u, remaining); c > bestContribution {
				best, bestContribution = i, c
			}
		}
		if best < 0 || !s.add(best) {
			break
		}
		for guid, missing := range remaining {
			missing -= s.utxos[best].AssetAmount(guid)
			if missing <= 0 {
				delete(remaining, guid)
				continue
			}
			remaining[guid] = missing
		}
	}

	if missing := sortedGuids(remaining); len(missing) > 0 {
		guid := missing[0]
		return errors.INSUFFICIENT_FUNDS.New(
			"not enough asset %d: need %d, have %d", guid, targets[guid], s.assets[guid],
		).WithMetadata(errors.InsufficientFundsMetadata{
			Guid:     guid,
			Required: targets[guid],
			Selected: s.assets[guid],
			Deficit:  remaining[guid],
		})
	}
	return nil
}

func (s *coinSelector) selectNative(target int64) errors.Error {
	if s.nativeTotal() >= target {
		return nil
	}

	pure := make([]int, 0)
	others := make([]int, 0)
	for i, u := range s.utxos {
		if s.selected[i] || u.Amount <= 0 {
			continue
		}
		if u.HasAssets() {
			others = append(others, i)
			continue
		}
		pure = append(pure, i)
	}

	sort.SliceStable(pure, func(i, j int) bool {
		a, b := s.utxos[pure[i]].Amount, s.utxos[pure[j]].Amount
		if target > assetlib.CoinThreshold {
			return a > b
		}
		return a < b
	})
	// Spend the utxos bringing the fewest unrelated assets first.
	sort.SliceStable(others, func(i, j int) bool {
		a, b := s.utxos[others[i]], s.utxos[others[j]]
		if len(a.Assets) != len(b.Assets) {
			return len(a.Assets) < len(b.Assets)
		}
		return a.Amount > b.Amount
	})

	for _, i := range append(pure, others...) {
		if s.nativeTotal() >= target {
			break
		}
		if !s.add(i) {
			break
		}
	}

	if total := s.nativeTotal(); total < target {
		return errors.INSUFFICIENT_FUNDS.New(
			"not enough funds: need %d, have %d", target, total,
		).WithMetadata(errors.InsufficientFundsMetadata{
			Required: target,
			Selected: total,
			Deficit:  target - total,
		})
	}
	return nil
}

func (s *coinSelector) selection(targetNative int64, targetAssets map[uint64]int64) *Selection {
	total := s.nativeTotal()
	nativeChange := total - targetNative
	if nativeChange < assetlib.DustAmount {
		nativeChange = 0
	}

	assetTotals := make(map[uint64]int64, len(s.assets))
	assetChange := make(map[uint64]int64)
	for guid, amount := range s.assets {
		assetTotals[guid] = amount
		if change := amount - targetAssets[guid]; change > 0 {
			assetChange[guid] = change
		}
	}

	return &Selection{
		Inputs:       s.inputs,
		NativeTotal:  total,
		AssetTotals:  assetTotals,
		NativeChange: nativeChange,
		AssetChange:  assetChange,
	}
}

// contribution is how much of the missing asset amounts the utxo covers.
func contribution(u domain.Utxo, remaining map[uint64]int64) int64 {
	var c int64
	for guid, missing := range remaining {
		c += min(u.AssetAmount(guid), missing)
	}
	return c
}
