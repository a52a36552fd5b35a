package assetlib

import (
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
)

// AmountFromCoins converts a decimal coin amount into satoshis.
func AmountFromCoins(coins float64) (int64, error) {
	amount, err := btcutil.NewAmount(coins)
	if err != nil {
		return 0, err
	}
	if amount < 0 || int64(amount) > MaxMoney {
		return 0, fmt.Errorf("amount %s out of range", amount)
	}
	return int64(amount), nil
}

// FormatAmount formats satoshis as a decimal coin string.
func FormatAmount(sats int64) string {
	return strconv.FormatFloat(btcutil.Amount(sats).ToBTC(), 'f', 8, 64)
}
