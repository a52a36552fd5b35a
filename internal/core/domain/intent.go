package domain

import (
	"fmt"
	"strings"

	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
	"github.com/syscoin/sysasset/pkg/asset-lib/allocation"
)

type TxKind int

const (
	KindAllocationSend TxKind = iota
	KindAllocationMint
	KindAllocationBurnToNEVM
	KindSyscoinBurnToAllocation
	KindAllocationBurnToSyscoin
)

var kindNames = map[TxKind]string{
	KindAllocationSend:          "allocation-send",
	KindAllocationMint:          "allocation-mint",
	KindAllocationBurnToNEVM:    "allocation-burn-to-nevm",
	KindSyscoinBurnToAllocation: "wrap",
	KindAllocationBurnToSyscoin: "unwrap",
}

func (k TxKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Version is the transaction version the node expects for the kind.
func (k TxKind) Version() int32 {
	switch k {
	case KindAllocationSend:
		return int32(assetlib.TxVersionAllocationSend)
	case KindAllocationMint:
		return int32(assetlib.TxVersionAllocationMint)
	case KindAllocationBurnToNEVM:
		return int32(assetlib.TxVersionAllocationBurnToNEVM)
	case KindSyscoinBurnToAllocation:
		return int32(assetlib.TxVersionSyscoinBurnToAllocation)
	case KindAllocationBurnToSyscoin:
		return int32(assetlib.TxVersionAllocationBurnToSyscoin)
	default:
		return 0
	}
}

// IsBurn reports whether the kind destroys the moved asset amount, so that
// no destination output holds it afterwards.
func (k TxKind) IsBurn() bool {
	return k == KindAllocationBurnToNEVM || k == KindAllocationBurnToSyscoin
}

func ParseTxKind(s string) (TxKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, name := range kindNames {
		if name == s {
			return kind, nil
		}
	}
	return -1, fmt.Errorf("unknown tx kind %q", s)
}

// AssetTriple is one asset movement requested by the caller.
type AssetTriple struct {
	Guid        uint64
	Amount      int64
	Destination string
}

// Intent describes a transaction to build. It can only be obtained through
// the per-kind constructors, each of which validates the fields its kind needs.
type Intent struct {
	kind              TxKind
	nativeAmount      int64
	nativeDestination string
	assets            []AssetTriple
	nevmAddress       allocation.NEVMAddress
	proof             *allocation.SPVProof
	fee               int64
}

// IntentError is a precondition failure of an intent constructor.
type IntentError struct {
	Kind  TxKind
	Field string
	Msg   string
}

func (e IntentError) Error() string {
	return fmt.Sprintf("invalid %s intent: %s: %s", e.Kind, e.Field, e.Msg)
}

// NewSendIntent moves one or more assets to their destinations. A native
// amount can be paid alongside to nativeDestination.
func NewSendIntent(
	assets []AssetTriple, nativeAmount int64, nativeDestination string,
) (*Intent, error) {
	kind := KindAllocationSend
	if len(assets) <= 0 {
		return nil, IntentError{kind, "assets", "at least one asset is required"}
	}
	if err := validateTriples(kind, assets); err != nil {
		return nil, err
	}
	if nativeAmount < 0 {
		return nil, IntentError{kind, "amount", "must not be negative"}
	}
	if nativeAmount > 0 && nativeDestination == "" {
		return nil, IntentError{kind, "destination", "missing native destination"}
	}
	return &Intent{
		kind:              kind,
		nativeAmount:      nativeAmount,
		nativeDestination: nativeDestination,
		assets:            cloneTriples(assets),
	}, nil
}

// NewMintIntent credits an asset amount proven burnt on the NEVM side.
func NewMintIntent(asset AssetTriple, proof allocation.SPVProof) (*Intent, error) {
	kind := KindAllocationMint
	if err := validateTriples(kind, []AssetTriple{asset}); err != nil {
		return nil, err
	}
	return &Intent{
		kind:   kind,
		assets: []AssetTriple{asset},
		proof:  &proof,
	}, nil
}

// NewBurnToNEVMIntent burns an asset amount towards an NEVM address. The
// triple destination is not used.
func NewBurnToNEVMIntent(guid uint64, amount int64, nevmAddress string) (*Intent, error) {
	kind := KindAllocationBurnToNEVM
	addr, err := allocation.ParseNEVMAddress(nevmAddress)
	if err != nil {
		return nil, err
	}
	asset := AssetTriple{Guid: guid, Amount: amount}
	if err := validateAmount(kind, asset); err != nil {
		return nil, err
	}
	return &Intent{
		kind:        kind,
		assets:      []AssetTriple{asset},
		nevmAddress: addr,
	}, nil
}

// NewWrapIntent burns native coins to mint the same amount of SYSX to destination.
func NewWrapIntent(amount int64, destination string) (*Intent, error) {
	kind := KindSyscoinBurnToAllocation
	if amount <= 0 {
		return nil, IntentError{kind, "amount", "must be positive"}
	}
	if amount > assetlib.MaxMoney {
		return nil, IntentError{kind, "amount", "out of range"}
	}
	if destination == "" {
		return nil, IntentError{kind, "destination", "missing destination"}
	}
	return &Intent{
		kind:   kind,
		assets: []AssetTriple{{Guid: assetlib.SYSXGuid, Amount: amount, Destination: destination}},
	}, nil
}

// NewUnwrapIntent burns SYSX to credit the same amount of native coins to the
// triple destination.
func NewUnwrapIntent(asset AssetTriple) (*Intent, error) {
	kind := KindAllocationBurnToSyscoin
	if asset.Guid != assetlib.SYSXGuid {
		return nil, IntentError{
			kind, "guid", fmt.Sprintf("only asset %d can be unwrapped", assetlib.SYSXGuid),
		}
	}
	if err := validateTriples(kind, []AssetTriple{asset}); err != nil {
		return nil, err
	}
	return &Intent{
		kind:   kind,
		assets: []AssetTriple{asset},
	}, nil
}

// WithFee returns a copy of the intent that pays exactly fee satoshis
// instead of the estimated one.
func (i Intent) WithFee(fee int64) (*Intent, error) {
	if fee < 0 || fee > assetlib.MaxMoney {
		return nil, IntentError{i.kind, "fee", "out of range"}
	}
	i.fee = fee
	return &i, nil
}

func (i Intent) Kind() TxKind {
	return i.kind
}

func (i Intent) NativeAmount() int64 {
	return i.nativeAmount
}

func (i Intent) NativeDestination() string {
	return i.nativeDestination
}

func (i Intent) Assets() []AssetTriple {
	return cloneTriples(i.assets)
}

func (i Intent) NEVMAddress() allocation.NEVMAddress {
	return i.nevmAddress
}

func (i Intent) Proof() *allocation.SPVProof {
	return i.proof
}

// Fee returns the fixed fee, 0 means the fee is estimated.
func (i Intent) Fee() int64 {
	return i.fee
}

// AssetTargets sums the requested amounts per asset.
func (i Intent) AssetTargets() map[uint64]int64 {
	targets := make(map[uint64]int64)
	for _, a := range i.assets {
		targets[a.Guid] += a.Amount
	}
	return targets
}

func validateTriples(kind TxKind, assets []AssetTriple) error {
	for _, a := range assets {
		if err := validateAmount(kind, a); err != nil {
			return err
		}
		if a.Destination == "" {
			return IntentError{kind, "destination", fmt.Sprintf("missing destination for asset %d", a.Guid)}
		}
	}
	return nil
}

func validateAmount(kind TxKind, a AssetTriple) error {
	if a.Amount <= 0 {
		return IntentError{kind, "amount", fmt.Sprintf("amount for asset %d must be positive", a.Guid)}
	}
	if a.Amount > assetlib.MaxMoney {
		return IntentError{kind, "amount", fmt.Sprintf("amount for asset %d out of range", a.Guid)}
	}
	return nil
}

func cloneTriples(assets []AssetTriple) []AssetTriple {
	return append([]AssetTriple(nil), assets...)
}
