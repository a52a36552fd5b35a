package application

import (
	"github.com/syscoin/sysasset/internal/core/domain"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
	"github.com/syscoin/sysasset/pkg/asset-lib/allocation"
)

const (
	// version (4) + locktime (4) + input and output counts (1 + 1)
	txOverheadSize = 10
	// prevout (36) + script len (1) + signature script (~107) + sequence (4)
	inputSize = 148
	// value (8) + script len (1) + pubkey script (~25)
	outputSize = 34
	// value (8) + script len (1) + OP_RETURN (1)
	dataOutputOverhead = 10
	sizePadding        = 1.1

	maxFeePasses = 3
)

// EstimateTxSize estimates the size in bytes of a tx with the given number of
// inputs and value outputs, plus the allocation output when assetCount > 0.
func EstimateTxSize(numInputs, numOutputs int, kind domain.TxKind, assetCount int) int {
	size := txOverheadSize + numInputs*inputSize + numOutputs*outputSize
	if assetCount > 0 {
		size += dataOutputOverhead + allocation.EstimateCommitmentSize(
			assetCount, commitmentExtraSize(kind),
		)
	}
	return int(float64(size) * sizePadding)
}

// FeeForSize converts a size into a fee at the given rate in sat/kB, rounding
// up and never going below the minimum fee.
func FeeForSize(size int, feeRate int64) int64 {
	fee := (int64(size)*feeRate + 999) / 1000
	return max(fee, assetlib.MinTxFee)
}

func commitmentExtraSize(kind domain.TxKind) int {
	switch kind {
	case domain.KindAllocationMint:
		return allocation.MintProofSizeEstimate
	case domain.KindAllocationBurnToNEVM:
		return allocation.NEVMAddressSizeEstimate
	default:
		return 0
	}
}
