package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/syscoin/sysasset/internal/core/domain"
	"github.com/syscoin/sysasset/internal/core/ports"
	"github.com/syscoin/sysasset/pkg/asset-lib/allocation"
	"github.com/syscoin/sysasset/pkg/errors"
)

// VerifyOutputs checks that the wallet utxos created by txid hold every
// intended output, and that burned amounts went to the data output only.
// When details is empty, the intended outputs recorded at build time are used.
func (s *service) VerifyOutputs(
	ctx context.Context, txid string, kind domain.TxKind, details []domain.IntendedOutput,
) errors.Error {
	journal := s.repoManager.Journal()
	entry, err := journal.GetEntryByTxid(ctx, txid)
	if err != nil {
		entry = nil
	}
	if len(details) <= 0 {
		if entry == nil {
			return errors.INVALID_INTENT.New("no intended outputs to verify for tx %s", txid).
				WithMetadata(errors.IntentMetadata{Kind: kind.String(), Field: "details"})
		}
		details = entry.IntendedOutputs
		kind = entry.Kind
	}

	txDetails, err := s.ledger.GetTransaction(ctx, txid)
	if err != nil {
		return errors.TX_NOT_FOUND.Wrap(err).WithMetadata(errors.TxNotFoundMetadata{Txid: txid})
	}

	utxos, err := s.ledger.ListUnspent(ctx, 0)
	if err != nil {
		return errors.LEDGER_ERROR.Wrap(err).
			WithMetadata(errors.LedgerMetadata{Method: "listunspent"})
	}
	txUtxos := make([]domain.Utxo, 0)
	for _, u := range utxos {
		if u.Txid == txid {
			txUtxos = append(txUtxos, u)
		}
	}

	if verr := verifyIntendedOutputs(txid, kind, details, txUtxos, txDetails); verr != nil {
		verr.Log().Error("output verification failed")
		if entry != nil {
			entry.Fail(verr.Error(), time.Now().Unix())
			s.updateEntry(ctx, *entry)
		}
		return verr
	}

	if entry != nil {
		entry.Verified(time.Now().Unix())
		s.updateEntry(ctx, *entry)
		s.publish(ctx, ports.TxVerified, *entry)
	}
	log.Infof("verified outputs of tx %s", txid)
	return nil
}

func (s *service) VerifyWhenConfirmed(
	ctx context.Context, txid string, confirmations int64,
) <-chan error {
	ch := make(chan error, 1)
	done := func(err error) {
		ch <- err
		close(ch)
	}
	if s.scheduler == nil {
		done(fmt.Errorf("scheduler not configured"))
		return ch
	}
	if confirmations <= 0 {
		confirmations = 1
	}

	verify := func() {
		if err := ctx.Err(); err != nil {
			done(err)
			return
		}
		// the kind is resolved from the journal
		if err := s.VerifyOutputs(ctx, txid, domain.TxKind(-1), nil); err != nil {
			done(err)
			return
		}
		done(nil)
	}

	var waitForBlock func()
	waitForBlock = func() {
		if err := ctx.Err(); err != nil {
			done(err)
			return
		}
		details, err := s.ledger.GetTransaction(ctx, txid)
		if err != nil {
			done(errors.TX_NOT_FOUND.Wrap(err).WithMetadata(errors.TxNotFoundMetadata{Txid: txid}))
			return
		}
		if details.Confirmations < 0 {
			done(fmt.Errorf("tx %s conflicts with the chain", txid))
			return
		}

		task, at := verify, details.BlockHeight+confirmations-1
		if details.BlockHeight <= 0 {
			// still in mempool, look again at the next block
			next, err := s.scheduler.AddNow(1)
			if err != nil {
				done(err)
				return
			}
			task, at = waitForBlock, next
		}
		if err := s.scheduler.ScheduleTaskOnce(at, task); err != nil {
			done(err)
		}
	}
	waitForBlock()
	return ch
}

func verifyIntendedOutputs(
	txid string, kind domain.TxKind, details []domain.IntendedOutput,
	utxos []domain.Utxo, txDetails *ports.TxDetails,
) errors.TypedError[errors.OutputMismatchMetadata] {
	used := make([]bool, len(utxos))
	mismatch := func(
		d domain.IntendedOutput, format string, args ...any,
	) errors.TypedError[errors.OutputMismatchMetadata] {
		return errors.OUTPUT_MISMATCH.New(format, args...).
			WithMetadata(errors.OutputMismatchMetadata{
				Txid:        txid,
				Destination: d.Destination,
				Guid:        d.Guid,
				Amount:      d.Amount,
			})
	}

	for _, d := range details {
		burned := d.Burned || (kind.IsBurn() && d.Guid != 0)
		if burned {
			// change outputs may hold the same asset, so without a destination
			// only the commitment can tell where the amount went
			if d.Destination == "" {
				if txDetails != nil && txDetails.Hex != "" {
					if err := verifyBurnCommitment(d, txDetails.Hex); err != nil {
						return mismatch(d, "%s", err)
					}
				}
				continue
			}
			for _, u := range utxos {
				if u.Address == d.Destination && u.AssetAmount(d.Guid) == d.Amount {
					return mismatch(d, "burned asset %d found in output %d", d.Guid, u.VOut)
				}
			}
			continue
		}

		found := false
		for i, u := range utxos {
			if used[i] || u.Address != d.Destination {
				continue
			}
			amount := u.Amount
			if d.Guid != 0 {
				amount = u.AssetAmount(d.Guid)
			}
			if amount == d.Amount {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return mismatch(
				d, "output of %d (asset %d) to %s not found", d.Amount, d.Guid, d.Destination,
			)
		}
	}
	return nil
}

// verifyBurnCommitment checks the tx allocation commits the burned amount to
// the data output.
func verifyBurnCommitment(d domain.IntendedOutput, txHex string) error {
	tx, err := decodeTx(txHex)
	if err != nil {
		return fmt.Errorf("failed to decode tx: %w", err)
	}
	index, data, err := allocation.DataFromTx(tx)
	if err != nil {
		return err
	}
	burn, err := allocation.NewBurnAllocationFromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to parse burn allocation: %w", err)
	}
	for _, out := range burn.Allocation {
		if out.Key != d.Guid {
			continue
		}
		for _, v := range out.Values {
			if v.N == uint32(index) && v.Value == uint64(d.Amount) {
				return nil
			}
		}
	}
	return fmt.Errorf("burn of %d (asset %d) not committed to data output %d", d.Amount, d.Guid, index)
}
