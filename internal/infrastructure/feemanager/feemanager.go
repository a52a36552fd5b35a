package feemanager

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/syscoin/sysasset/internal/core/ports"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
)

const estimateTargetBlocks = 2

type nodeFeeManager struct {
	source      ports.FeeRateSource
	defaultRate int64
}

// NewNodeFeeManager returns a fee manager asking the node for its relay fee
// rate first, then for a 2 blocks estimate, and finally falling back to
// defaultRate (sat/kB).
func NewNodeFeeManager(source ports.FeeRateSource, defaultRate int64) ports.FeeManager {
	if defaultRate <= 0 {
		defaultRate = assetlib.DefaultFeeRate
	}
	return &nodeFeeManager{source, defaultRate}
}

func (m *nodeFeeManager) FeeRate(ctx context.Context) int64 {
	if m.source == nil {
		return m.defaultRate
	}

	rate, err := m.source.RelayFeeRate(ctx)
	if err == nil && rate > 0 {
		return rate
	}
	if err != nil {
		log.WithError(err).Debug("failed to get relay fee rate")
	}

	rate, err = m.source.EstimateFeeRate(ctx, estimateTargetBlocks)
	if err == nil && rate > 0 {
		return rate
	}

	log.WithError(err).Warnf(
		"failed to get fee rate from node, falling back to default %d sat/kB", m.defaultRate,
	)
	return m.defaultRate
}
