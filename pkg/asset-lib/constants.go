package assetlib

import "github.com/btcsuite/btcd/btcutil"

const (
	// SYSXGuid is the asset guid of the wrapped native coin.
	SYSXGuid uint64 = 123456

	// DustAmount is the minimum value of a spendable output.
	DustAmount int64 = 546
	// CoinThreshold is the native target above which larger utxos are spent first.
	CoinThreshold = int64(btcutil.SatoshiPerBitcoin)
	// MinTxFee is the minimum fee of any transaction built by the library.
	MinTxFee int64 = 10
	// DefaultFeeRate is the fee rate in sat/kB used when the ledger can't provide one.
	DefaultFeeRate int64 = 1000
	// DefaultPlaceholderFee is the fee assumed for the first selection pass.
	DefaultPlaceholderFee int64 = 10000
	// DefaultMaxInputs is the default ceiling on the number of selected inputs.
	DefaultMaxInputs = 10

	// MaxMoney is the maximum amount of satoshis that can ever exist.
	MaxMoney = int64(21000000 * btcutil.SatoshiPerBitcoin)
)

// TxVersion is the transaction version tagging an asset transaction kind.
type TxVersion int32

const (
	TxVersionAllocationBurnToSyscoin TxVersion = 138
	TxVersionSyscoinBurnToAllocation TxVersion = 139
	TxVersionAllocationMint          TxVersion = 140
	TxVersionAllocationBurnToNEVM    TxVersion = 141
	TxVersionAllocationSend          TxVersion = 142
)

// IsAssetAllocationTx returns whether the version belongs to a tx carrying an allocation.
func IsAssetAllocationTx(version int32) bool {
	switch TxVersion(version) {
	case TxVersionAllocationBurnToSyscoin, TxVersionSyscoinBurnToAllocation,
		TxVersionAllocationMint, TxVersionAllocationBurnToNEVM, TxVersionAllocationSend:
		return true
	}
	return false
}
