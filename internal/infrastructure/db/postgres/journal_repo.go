package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/syscoin/sysasset/internal/core/domain"
	"github.com/syscoin/sysasset/internal/infrastructure/db/postgres/sqlc/queries"
)

type journalRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewJournalRepository(config ...interface{}) (domain.JournalRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config: expected 1 argument, got %d", len(config))
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf(
			"cannot open journal repository: expected *sql.DB but got %T", config[0],
		)
	}

	return &journalRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *journalRepository) AddOrUpdateEntry(
	ctx context.Context, entry domain.JournalEntry,
) error {
	if entry.Id == "" {
		return fmt.Errorf("missing journal entry id")
	}

	txBody := func(querierWithTx *queries.Queries) error {
		if err := querierWithTx.UpsertJournalEntry(ctx, queries.UpsertJournalEntryParams{
			ID:        entry.Id,
			Kind:      int64(entry.Kind),
			Txid:      entry.Txid,
			RawTx:     entry.RawTx,
			SignedTx:  entry.SignedTx,
			Fee:       entry.Fee,
			Status:    string(entry.Status),
			Error:     entry.Error,
			CreatedAt: entry.CreatedAt,
			UpdatedAt: entry.UpdatedAt,
		}); err != nil {
			return fmt.Errorf("failed to upsert journal entry: %w", err)
		}

		if err := querierWithTx.DeleteJournalInputs(ctx, entry.Id); err != nil {
			return fmt.Errorf("failed to reset journal inputs: %w", err)
		}
		for i, in := range entry.Inputs {
			if err := querierWithTx.InsertJournalInput(ctx, queries.InsertJournalInputParams{
				EntryID:  entry.Id,
				Position: int64(i),
				Txid:     in.Txid,
				Vout:     int64(in.VOut),
			}); err != nil {
				return fmt.Errorf("failed to insert journal input: %w", err)
			}
		}

		if err := querierWithTx.DeleteJournalOutputs(ctx, entry.Id); err != nil {
			return fmt.Errorf("failed to reset journal outputs: %w", err)
		}
		for i, out := range entry.IntendedOutputs {
			if err := querierWithTx.InsertJournalOutput(ctx, queries.InsertJournalOutputParams{
				EntryID:     entry.Id,
				Position:    int64(i),
				Destination: out.Destination,
				// guids are stored bit-for-bit in the signed column
				Guid:   int64(out.Guid),
				Amount: out.Amount,
				Burned: out.Burned,
			}); err != nil {
				return fmt.Errorf("failed to insert journal output: %w", err)
			}
		}
		return nil
	}

	return execTx(ctx, r.db, txBody)
}

func (r *journalRepository) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	row, err := r.querier.SelectJournalEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrJournalEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry %s: %w", id, err)
	}
	return r.toEntry(ctx, row)
}

func (r *journalRepository) GetEntryByTxid(
	ctx context.Context, txid string,
) (*domain.JournalEntry, error) {
	row, err := r.querier.SelectLatestJournalEntryByTxid(ctx, txid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tx %s", domain.ErrJournalEntryNotFound, txid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry for tx %s: %w", txid, err)
	}
	return r.toEntry(ctx, row)
}

func (r *journalRepository) ListEntries(
	ctx context.Context, status ...domain.TxStatus,
) ([]domain.JournalEntry, error) {
	var rows []queries.JournalEntry
	if len(status) == 1 {
		res, err := r.querier.SelectJournalEntriesWithStatus(ctx, string(status[0]))
		if err != nil {
			return nil, fmt.Errorf("failed to list journal entries: %w", err)
		}
		rows = res
	} else {
		res, err := r.querier.SelectJournalEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list journal entries: %w", err)
		}
		rows = filterByStatus(res, status)
	}

	entries := make([]domain.JournalEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := r.toEntry(ctx, row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (r *journalRepository) Close() {
	_ = r.db.Close()
}

func (r *journalRepository) toEntry(
	ctx context.Context, row queries.JournalEntry,
) (*domain.JournalEntry, error) {
	inputs, err := r.querier.SelectJournalInputs(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inputs of journal entry %s: %w", row.ID, err)
	}
	outputs, err := r.querier.SelectJournalOutputs(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get outputs of journal entry %s: %w", row.ID, err)
	}

	entry := &domain.JournalEntry{
		Id:        row.ID,
		Kind:      domain.TxKind(row.Kind),
		Txid:      row.Txid,
		RawTx:     row.RawTx,
		SignedTx:  row.SignedTx,
		Fee:       row.Fee,
		Status:    domain.TxStatus(row.Status),
		Error:     row.Error,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	for _, in := range inputs {
		entry.Inputs = append(entry.Inputs, domain.Outpoint{
			Txid: in.Txid,
			VOut: uint32(in.Vout),
		})
	}
	for _, out := range outputs {
		entry.IntendedOutputs = append(entry.IntendedOutputs, domain.IntendedOutput{
			Destination: out.Destination,
			Guid:        uint64(out.Guid),
			Amount:      out.Amount,
			Burned:      out.Burned,
		})
	}
	return entry, nil
}

func filterByStatus(rows []queries.JournalEntry, status []domain.TxStatus) []queries.JournalEntry {
	if len(status) <= 0 {
		return rows
	}
	filtered := make([]queries.JournalEntry, 0, len(rows))
	for _, row := range rows {
		for _, s := range status {
			if row.Status == string(s) {
				filtered = append(filtered, row)
				break
			}
		}
	}
	return filtered
}
