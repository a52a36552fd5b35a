package allocation

const (
	// allocation overhead: asset out count (1)
	allocationOverhead = 1
	// average asset out: guid varint + value count + output index + compressed amount
	assetOutSizeEstimate = 12
	// MintProofSizeEstimate covers the fixed proof fields plus typical parent nodes and path.
	MintProofSizeEstimate = 136 + 100
	// NEVMAddressSizeEstimate is the address plus its length byte.
	NEVMAddressSizeEstimate = 1 + NEVMAddressLen
	// commitmentPadding is the safety margin applied to every estimate.
	commitmentPadding = 1.05
)

// EstimateCommitmentSize estimates the serialized size of a commitment moving
// assetCount assets plus extra bytes of kind specific data.
func EstimateCommitmentSize(assetCount, extra int) int {
	size := allocationOverhead + assetCount*assetOutSizeEstimate + extra
	return int(float64(size) * commitmentPadding)
}
