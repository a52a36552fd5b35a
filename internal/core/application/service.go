package application

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/syscoin/sysasset/internal/core/domain"
	"github.com/syscoin/sysasset/internal/core/ports"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
	"github.com/syscoin/sysasset/pkg/asset-lib/allocation"
	"github.com/syscoin/sysasset/pkg/errors"
)

type service struct {
	// services
	ledger      ports.LedgerService
	fees        ports.FeeManager
	repoManager ports.RepoManager
	scheduler   ports.SchedulerService
	alerts      ports.Alerts

	// config
	maxInputs      int
	minConf        int64
	placeholderFee int64

	pendingAlerts sync.WaitGroup
}

const alertTimeout = 30 * time.Second

// NewService returns the transaction building service. The scheduler and
// alerts are optional.
func NewService(
	ledger ports.LedgerService,
	fees ports.FeeManager,
	repoManager ports.RepoManager,
	scheduler ports.SchedulerService,
	alerts ports.Alerts,
	maxInputs int,
	minConf int64,
) (Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger service")
	}
	if fees == nil {
		return nil, fmt.Errorf("missing fee manager")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if maxInputs <= 0 {
		maxInputs = assetlib.DefaultMaxInputs
	}
	if minConf < 0 {
		return nil, fmt.Errorf("invalid min confirmations %d", minConf)
	}

	return &service{
		ledger:         ledger,
		fees:           fees,
		repoManager:    repoManager,
		scheduler:      scheduler,
		alerts:         alerts,
		maxInputs:      maxInputs,
		minConf:        minConf,
		placeholderFee: assetlib.DefaultPlaceholderFee,
	}, nil
}

func (s *service) SelectCoins(
	ctx context.Context, targetNative int64, targetAssets map[uint64]int64, maxInputs int,
) (*Selection, errors.Error) {
	if maxInputs <= 0 {
		maxInputs = s.maxInputs
	}

	utxos, err := s.ledger.ListUnspent(ctx, s.minConf)
	if err != nil {
		return nil, errors.LEDGER_ERROR.Wrap(err).
			WithMetadata(errors.LedgerMetadata{Method: "listunspent"})
	}

	sel, selErr := SelectCoins(utxos, targetNative, targetAssets, maxInputs)
	if selErr != nil {
		return nil, selErr
	}

	log.WithFields(log.Fields{
		"inputs":        len(sel.Inputs),
		"native_total":  sel.NativeTotal,
		"native_change": sel.NativeChange,
		"asset_change":  sel.AssetChange,
	}).Debug("selected coins")
	return sel, nil
}

func (s *service) BuildTransaction(
	ctx context.Context, intent *domain.Intent,
) (*BuiltTx, errors.Error) {
	if intent == nil {
		return nil, errors.INVALID_INTENT.New("missing intent")
	}
	kind := intent.Kind()
	plan := newTxPlan(intent)

	utxos, err := s.ledger.ListUnspent(ctx, s.minConf)
	if err != nil {
		return nil, errors.LEDGER_ERROR.Wrap(err).
			WithMetadata(errors.LedgerMetadata{Method: "listunspent"})
	}

	sel, fee, selErr := s.selectWithFee(ctx, plan, utxos, intent.Fee())
	if selErr != nil {
		return nil, selErr
	}

	addrs, addrErr := s.changeAddresses(ctx, sel)
	if addrErr != nil {
		return nil, addrErr
	}

	tx, err := assemble(intent, sel, plan, addrs)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"kind": kind.String(),
		})
	}
	outputs := tx.outputs.Outputs()

	rawTx, err := s.ledger.CreateRawTransaction(ctx, sel.Outpoints(), outputs)
	if err != nil {
		return nil, errors.LEDGER_ERROR.Wrap(err).
			WithMetadata(errors.LedgerMetadata{Method: "createrawtransaction"})
	}

	rawTx, err = finalizeRawTx(rawTx, kind, sel.Outpoints(), outputs, tx.dataIndex, tx.data)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"kind": kind.String(),
		})
	}

	signedTx, err := s.ledger.SignRawTransaction(ctx, rawTx)
	if err != nil {
		return nil, errors.LEDGER_ERROR.Wrap(err).
			WithMetadata(errors.LedgerMetadata{Method: "signrawtransactionwithwallet"})
	}

	txid, err := txidFromHex(signedTx)
	if err != nil {
		return nil, errors.LEDGER_ERROR.New("invalid signed tx: %s", err).
			WithMetadata(errors.LedgerMetadata{Method: "signrawtransactionwithwallet"})
	}

	// The paid fee includes any change too small to be worth an output.
	paidFee := sel.NativeTotal - plan.required(len(sel.AssetChange), 0) - sel.NativeChange

	now := time.Now().Unix()
	entry := domain.JournalEntry{
		Id:              uuid.New().String(),
		Kind:            kind,
		Txid:            txid,
		RawTx:           rawTx,
		SignedTx:        signedTx,
		Fee:             paidFee,
		Inputs:          sel.Outpoints(),
		IntendedOutputs: tx.intended,
		Status:          domain.TxStatusBuilt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repoManager.Journal().AddOrUpdateEntry(ctx, entry); err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to journal tx: %w", err))
	}

	log.WithFields(log.Fields{
		"kind":      kind.String(),
		"txid":      txid,
		"inputs":    len(sel.Inputs),
		"outputs":   len(outputs),
		"fee":       paidFee,
		"estimated": fee,
	}).Info("built tx")

	return &BuiltTx{
		JournalId:       entry.Id,
		Kind:            kind,
		Txid:            txid,
		RawTx:           rawTx,
		SignedTx:        signedTx,
		Fee:             paidFee,
		Selection:       sel,
		Outputs:         outputs,
		DataIndex:       tx.dataIndex,
		Data:            hex.EncodeToString(tx.data),
		IntendedOutputs: tx.intended,
	}, nil
}

func (s *service) Broadcast(ctx context.Context, signedTx string) (string, errors.Error) {
	txid, err := txidFromHex(signedTx)
	if err != nil {
		return "", errors.INVALID_INTENT.New("invalid tx: %s", err).
			WithMetadata(errors.IntentMetadata{Field: "tx"})
	}

	journal := s.repoManager.Journal()
	entry, err := journal.GetEntryByTxid(ctx, txid)
	if err != nil {
		log.WithError(err).Debugf("tx %s not found in journal", txid)
		entry = nil
	}

	sentTxid, err := s.ledger.SendRawTransaction(ctx, signedTx)
	if err != nil {
		if entry != nil {
			entry.Fail(err.Error(), time.Now().Unix())
			s.updateEntry(ctx, *entry)
		}
		return "", errors.LEDGER_ERROR.Wrap(err).
			WithMetadata(errors.LedgerMetadata{Method: "sendrawtransaction"})
	}

	if entry != nil {
		if err := entry.Broadcast(sentTxid, time.Now().Unix()); err != nil {
			log.WithError(err).Warn("failed to update journal entry")
		} else {
			s.updateEntry(ctx, *entry)
			s.publish(ctx, ports.TxBroadcast, *entry)
		}
	}

	log.Infof("broadcasted tx %s", sentTxid)
	return sentTxid, nil
}

func (s *service) History(
	ctx context.Context, status ...domain.TxStatus,
) ([]domain.JournalEntry, errors.Error) {
	entries, err := s.repoManager.Journal().ListEntries(ctx, status...)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return entries, nil
}

// selectWithFee selects the coins paying for the plan and its fee. The fee
// depends on the number of inputs and change outputs, so the selection is
// repeated against the updated fee until the selected coins cover it.
//
// The first pass assumes a placeholder fee. If the wallet can't cover it, the
// selection starts over once from no fee at all, so that the deficit reported
// is always computed from a fee estimated for the inputs actually available.
func (s *service) selectWithFee(
	ctx context.Context, plan txPlan, utxos []domain.Utxo, fixedFee int64,
) (*Selection, int64, errors.Error) {
	fee := fixedFee
	var feeRate int64
	if fixedFee <= 0 {
		fee = s.placeholderFee
		feeRate = s.fees.FeeRate(ctx)
	}
	feeFor := func(sel *Selection) int64 {
		if fixedFee > 0 {
			return fixedFee
		}
		size := EstimateTxSize(
			len(sel.Inputs), plan.numOutputs(len(sel.AssetChange)), plan.kind, plan.assetCount(sel),
		)
		return FeeForSize(size, feeRate)
	}

	assetChangeCount := 0
	restarted := false
	for pass := 1; ; pass++ {
		target := plan.required(assetChangeCount, fee)
		selector, err := selectCoins(utxos, target, plan.targets, s.maxInputs)
		if err != nil {
			if selector == nil || fixedFee > 0 {
				return nil, 0, err
			}
			if !restarted {
				log.Debugf("selection pass %d can't pay fee %d, starting over without fee", pass, fee)
				restarted = true
				fee, assetChangeCount, pass = 0, 0, 0
				continue
			}
			partial := selector.selection(target, plan.targets)
			required := plan.required(len(partial.AssetChange), feeFor(partial))
			return nil, 0, insufficientFee(required, partial.NativeTotal)
		}
		sel := selector.selection(target, plan.targets)
		assetChangeCount = len(sel.AssetChange)

		nextFee := feeFor(sel)
		required := plan.required(assetChangeCount, nextFee)
		if sel.NativeTotal >= required {
			sel.NativeChange = sel.NativeTotal - required
			if sel.NativeChange < assetlib.DustAmount {
				sel.NativeChange = 0
			}
			return sel, nextFee, nil
		}

		log.Debugf(
			"selection pass %d short of %d sats, fee %d", pass, required-sel.NativeTotal, nextFee,
		)
		if pass >= maxFeePasses {
			return nil, 0, insufficientFee(required, sel.NativeTotal)
		}
		fee = nextFee
	}
}

func insufficientFee(required, selected int64) errors.Error {
	return errors.INSUFFICIENT_FUNDS.New(
		"not enough funds to pay fee: need %d, have %d", required, selected,
	).WithMetadata(errors.InsufficientFundsMetadata{
		Required: required,
		Selected: selected,
		Deficit:  required - selected,
	})
}

// changeAddresses asks the ledger a fresh address for every change output.
func (s *service) changeAddresses(
	ctx context.Context, sel *Selection,
) (changeAddresses, errors.Error) {
	addrs := changeAddresses{assets: make(map[uint64]string)}
	newAddress := func() (string, errors.Error) {
		addr, err := s.ledger.NewAddress(ctx)
		if err != nil {
			return "", errors.LEDGER_ERROR.Wrap(err).
				WithMetadata(errors.LedgerMetadata{Method: "getnewaddress"})
		}
		return addr, nil
	}

	if sel.NativeChange > 0 {
		addr, err := newAddress()
		if err != nil {
			return addrs, err
		}
		addrs.native = addr
	}
	for _, guid := range sel.AssetChangeGuids() {
		addr, err := newAddress()
		if err != nil {
			return addrs, err
		}
		addrs.assets[guid] = addr
	}
	return addrs, nil
}

func (s *service) updateEntry(ctx context.Context, entry domain.JournalEntry) {
	if err := s.repoManager.Journal().AddOrUpdateEntry(ctx, entry); err != nil {
		log.WithError(err).Warnf("failed to update journal entry %s", entry.Id)
	}
}

func (s *service) publish(ctx context.Context, topic ports.Topic, entry domain.JournalEntry) {
	if s.alerts == nil {
		return
	}
	assets := make(map[uint64]int64)
	for _, out := range entry.IntendedOutputs {
		if out.Guid != 0 {
			assets[out.Guid] += out.Amount
		}
	}
	alert := ports.TxAlert{
		Txid:   entry.Txid,
		Kind:   entry.Kind.String(),
		Fee:    entry.Fee,
		Assets: assets,
	}
	s.pendingAlerts.Add(1)
	go func() {
		defer s.pendingAlerts.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
		defer cancel()
		if err := s.alerts.Publish(ctx, topic, alert); err != nil {
			log.WithError(err).Warnf("failed to publish %s alert", topic)
		}
	}()
}

// Close waits for the alerts still being published.
func (s *service) Close() {
	s.pendingAlerts.Wait()
}

// finalizeRawTx checks the tx created by the ledger matches the planned inputs
// and outputs, then tags it with the kind version and sets the value of the
// data output.
func finalizeRawTx(
	rawTx string, kind domain.TxKind, inputs []domain.Outpoint,
	outputs []ports.TxOutput, dataIndex uint32, data []byte,
) (string, error) {
	tx, err := decodeTx(rawTx)
	if err != nil {
		return "", fmt.Errorf("failed to decode raw tx: %w", err)
	}

	if len(tx.TxIn) != len(inputs) {
		return "", fmt.Errorf("raw tx has %d inputs, expected %d", len(tx.TxIn), len(inputs))
	}
	for i, in := range tx.TxIn {
		prevout := in.PreviousOutPoint
		if prevout.Hash.String() != inputs[i].Txid || prevout.Index != inputs[i].VOut {
			return "", fmt.Errorf("raw tx input %d spends %s, expected %s", i, prevout, inputs[i])
		}
	}

	if len(tx.TxOut) != len(outputs) {
		return "", fmt.Errorf("raw tx has %d outputs, expected %d", len(tx.TxOut), len(outputs))
	}
	index, payload, err := allocation.DataFromTx(tx)
	if err != nil {
		return "", err
	}
	if uint32(index) != dataIndex || !bytes.Equal(payload, data) {
		return "", fmt.Errorf("raw tx data output %d doesn't match the allocation", index)
	}
	for i, out := range outputs {
		if !out.IsData() && tx.TxOut[i].Value != out.Amount {
			return "", fmt.Errorf(
				"raw tx output %d has value %d, expected %d", i, tx.TxOut[i].Value, out.Amount,
			)
		}
	}

	tx.Version = kind.Version()
	tx.TxOut[dataIndex].Value = outputs[dataIndex].Amount

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("failed to serialize tx: %w", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

func decodeTx(txHex string) (*wire.MsgTx, error) {
	buf, err := hex.DecodeString(txHex)
	if err != nil {
		return nil, err
	}
	tx := &wire.MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(buf)); err != nil {
		return nil, err
	}
	return tx, nil
}

func txidFromHex(txHex string) (string, error) {
	tx, err := decodeTx(txHex)
	if err != nil {
		return "", err
	}
	return tx.TxID(), nil
}
