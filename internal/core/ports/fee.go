package ports

import "context"

// FeeRateSource exposes the node fee rate endpoints, in sat/kB.
type FeeRateSource interface {
	RelayFeeRate(ctx context.Context) (int64, error)
	EstimateFeeRate(ctx context.Context, numBlocks int64) (int64, error)
}

type FeeManager interface {
	// FeeRate never fails, it falls back to the configured default rate.
	FeeRate(ctx context.Context) int64
}
