package application

import (
	"encoding/hex"
	"fmt"

	"github.com/syscoin/sysasset/internal/core/domain"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
	"github.com/syscoin/sysasset/pkg/asset-lib/allocation"
)

// txPlan holds what the coin selection needs to know about an intent before
// any output exists.
type txPlan struct {
	kind    domain.TxKind
	targets map[uint64]int64
	// native value funded by the inputs, change excluded
	fundedNative int64
	// value outputs other than change
	valueOutputs int
	// asset amounts credited without being spent from inputs
	issued map[uint64]int64
}

func newTxPlan(intent *domain.Intent) txPlan {
	plan := txPlan{
		kind:    intent.Kind(),
		targets: map[uint64]int64{},
		issued:  map[uint64]int64{},
	}
	assets := intent.Assets()

	switch intent.Kind() {
	case domain.KindAllocationSend:
		plan.targets = intent.AssetTargets()
		plan.fundedNative = int64(len(assets))*assetlib.DustAmount + intent.NativeAmount()
		plan.valueOutputs = len(assets)
		if intent.NativeAmount() > 0 {
			plan.valueOutputs++
		}
	case domain.KindAllocationMint:
		plan.issued[assets[0].Guid] = assets[0].Amount
		plan.fundedNative = assetlib.DustAmount
		plan.valueOutputs = 1
	case domain.KindAllocationBurnToNEVM:
		plan.targets = intent.AssetTargets()
	case domain.KindSyscoinBurnToAllocation:
		plan.issued[assetlib.SYSXGuid] = assets[0].Amount
		// the burnt amount is the value of the data output
		plan.fundedNative = assetlib.DustAmount + assets[0].Amount
		plan.valueOutputs = 1
	case domain.KindAllocationBurnToSyscoin:
		// the destination is paid by the burnt SYSX
		plan.targets = intent.AssetTargets()
		plan.valueOutputs = 1
	}
	return plan
}

// required is the native amount the inputs must cover.
func (p txPlan) required(assetChangeCount int, fee int64) int64 {
	return p.fundedNative + int64(assetChangeCount)*assetlib.DustAmount + fee
}

// numOutputs counts the value outputs, a native change always included.
func (p txPlan) numOutputs(assetChangeCount int) int {
	return p.valueOutputs + assetChangeCount + 1
}

// assetCount is the number of asset outs of the allocation.
func (p txPlan) assetCount(sel *Selection) int {
	guids := make(map[uint64]struct{})
	for guid := range p.targets {
		guids[guid] = struct{}{}
	}
	for guid := range p.issued {
		guids[guid] = struct{}{}
	}
	for guid := range sel.AssetChange {
		guids[guid] = struct{}{}
	}
	return len(guids)
}

type changeAddresses struct {
	native string
	assets map[uint64]string
}

type assembledTx struct {
	outputs   *OutputBuilder
	payload   allocation.Payload
	dataIndex uint32
	data      []byte
	intended  []domain.IntendedOutput
}

// allocationBuilder groups the asset out values by guid, in order of first use.
type allocationBuilder struct {
	order  []uint64
	values map[uint64][]allocation.AssetOutValue
}

func newAllocationBuilder() *allocationBuilder {
	return &allocationBuilder{values: make(map[uint64][]allocation.AssetOutValue)}
}

func (a *allocationBuilder) add(guid uint64, n uint32, amount int64) {
	if _, ok := a.values[guid]; !ok {
		a.order = append(a.order, guid)
	}
	a.values[guid] = append(a.values[guid], allocation.AssetOutValue{N: n, Value: uint64(amount)})
}

func (a *allocationBuilder) build() allocation.Allocation {
	alloc := make(allocation.Allocation, 0, len(a.order))
	for _, guid := range a.order {
		alloc = append(alloc, allocation.AssetOut{Key: guid, Values: a.values[guid]})
	}
	return alloc
}

type assetValue struct {
	guid   uint64
	n      uint32
	amount int64
}

// assemble lays out the outputs of the intent and the allocation committing
// the asset movements to their indexes. The data output is always the last.
func assemble(
	intent *domain.Intent, sel *Selection, plan txPlan, addrs changeAddresses,
) (*assembledTx, error) {
	b := &OutputBuilder{}
	alloc := newAllocationBuilder()
	intended := make([]domain.IntendedOutput, 0)
	assets := intent.Assets()

	addNativeChange := func() {
		if sel.NativeChange > 0 {
			b.AddAddress(addrs.native, sel.NativeChange)
		}
	}
	addAssetChange := func() ([]assetValue, error) {
		changes := make([]assetValue, 0, len(sel.AssetChange))
		for _, guid := range sel.AssetChangeGuids() {
			addr, ok := addrs.assets[guid]
			if !ok {
				return nil, fmt.Errorf("missing change address for asset %d", guid)
			}
			amount := sel.AssetChange[guid]
			n := b.AddAddress(addr, assetlib.DustAmount)
			changes = append(changes, assetValue{guid, n, amount})
		}
		return changes, nil
	}

	var (
		changes   []assetValue
		dataValue int64
		err       error
		payload   func(allocation.Allocation) allocation.Payload
	)

	switch intent.Kind() {
	case domain.KindAllocationSend:
		if amount := intent.NativeAmount(); amount > 0 {
			b.AddAddress(intent.NativeDestination(), amount)
			intended = append(intended, domain.IntendedOutput{
				Destination: intent.NativeDestination(), Amount: amount,
			})
		}
		addNativeChange()
		for _, a := range assets {
			n := b.AddAddress(a.Destination, assetlib.DustAmount)
			alloc.add(a.Guid, n, a.Amount)
			intended = append(intended, domain.IntendedOutput{
				Destination: a.Destination, Guid: a.Guid, Amount: a.Amount,
			})
		}
		if changes, err = addAssetChange(); err != nil {
			return nil, err
		}
		payload = func(a allocation.Allocation) allocation.Payload { return a }

	case domain.KindAllocationMint:
		a := assets[0]
		addNativeChange()
		n := b.AddAddress(a.Destination, assetlib.DustAmount)
		alloc.add(a.Guid, n, a.Amount)
		intended = append(intended, domain.IntendedOutput{
			Destination: a.Destination, Guid: a.Guid, Amount: a.Amount,
		})
		if changes, err = addAssetChange(); err != nil {
			return nil, err
		}
		proof := intent.Proof()
		payload = func(a allocation.Allocation) allocation.Payload {
			return &allocation.MintAllocation{Allocation: a, Proof: *proof}
		}

	case domain.KindAllocationBurnToNEVM:
		a := assets[0]
		addNativeChange()
		if changes, err = addAssetChange(); err != nil {
			return nil, err
		}
		alloc.add(a.Guid, b.NextIndex(), a.Amount)
		intended = append(intended, domain.IntendedOutput{
			Guid: a.Guid, Amount: a.Amount, Burned: true,
		})
		nevmAddress := intent.NEVMAddress()
		payload = func(a allocation.Allocation) allocation.Payload {
			return &allocation.BurnAllocation{Allocation: a, NEVMAddress: &nevmAddress}
		}

	case domain.KindSyscoinBurnToAllocation:
		a := assets[0]
		addNativeChange()
		n := b.AddAddress(a.Destination, assetlib.DustAmount)
		alloc.add(assetlib.SYSXGuid, n, a.Amount)
		intended = append(intended, domain.IntendedOutput{
			Destination: a.Destination, Guid: assetlib.SYSXGuid, Amount: a.Amount,
		})
		if changes, err = addAssetChange(); err != nil {
			return nil, err
		}
		dataValue = a.Amount
		payload = func(a allocation.Allocation) allocation.Payload {
			return &allocation.BurnAllocation{Allocation: a}
		}

	case domain.KindAllocationBurnToSyscoin:
		a := assets[0]
		b.AddAddress(a.Destination, a.Amount)
		intended = append(intended,
			domain.IntendedOutput{Destination: a.Destination, Amount: a.Amount},
			domain.IntendedOutput{Guid: assetlib.SYSXGuid, Amount: a.Amount, Burned: true},
		)
		addNativeChange()
		if changes, err = addAssetChange(); err != nil {
			return nil, err
		}
		alloc.add(assetlib.SYSXGuid, b.NextIndex(), a.Amount)
		payload = func(a allocation.Allocation) allocation.Payload {
			return &allocation.BurnAllocation{Allocation: a}
		}

	default:
		return nil, fmt.Errorf("unknown tx kind %s", intent.Kind())
	}

	for _, c := range changes {
		alloc.add(c.guid, c.n, c.amount)
	}

	p := payload(alloc.build())
	data, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize allocation: %w", err)
	}
	dataIndex := b.AddData(hex.EncodeToString(data), dataValue)

	if err := checkAllocation(p.Base(), b.Len(), sel, plan); err != nil {
		return nil, err
	}

	return &assembledTx{
		outputs:   b,
		payload:   p,
		dataIndex: dataIndex,
		data:      data,
		intended:  intended,
	}, nil
}

// checkAllocation makes sure the allocation is well formed and reallocates
// exactly the spent asset amounts plus the issued ones.
func checkAllocation(
	alloc allocation.Allocation, numOutputs int, sel *Selection, plan txPlan,
) error {
	if err := alloc.Validate(numOutputs); err != nil {
		return err
	}

	expected := make(map[uint64]int64)
	for guid, amount := range sel.AssetTotals {
		if amount > 0 {
			expected[guid] += amount
		}
	}
	for guid, amount := range plan.issued {
		expected[guid] += amount
	}

	totals := alloc.Totals()
	if len(totals) != len(expected) {
		return fmt.Errorf(
			"allocation moves %d assets, expected %d", len(totals), len(expected),
		)
	}
	for guid, amount := range expected {
		if totals[guid] != uint64(amount) {
			return fmt.Errorf(
				"allocation moves %d of asset %d, expected %d", totals[guid], guid, amount,
			)
		}
	}
	return nil
}
