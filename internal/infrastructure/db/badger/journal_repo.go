package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/syscoin/sysasset/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const journalStoreDir = "journal"

type journalRepository struct {
	store *badgerhold.Store
}

func NewJournalRepository(config ...interface{}) (domain.JournalRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, journalStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal store: %s", err)
	}

	return &journalRepository{store}, nil
}

func (r *journalRepository) AddOrUpdateEntry(
	ctx context.Context, entry domain.JournalEntry,
) error {
	if entry.Id == "" {
		return fmt.Errorf("missing journal entry id")
	}
	if err := r.store.Upsert(entry.Id, &entry); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(entry.Id, &entry)
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *journalRepository) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	err := r.store.Get(id, &entry)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrJournalEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry %s: %w", id, err)
	}
	return &entry, nil
}

func (r *journalRepository) GetEntryByTxid(
	ctx context.Context, txid string,
) (*domain.JournalEntry, error) {
	var entries []domain.JournalEntry
	query := badgerhold.Where("Txid").Eq(txid).SortBy("CreatedAt", "Id").Reverse().Limit(1)
	if err := r.store.Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to get journal entry for tx %s: %w", txid, err)
	}
	if len(entries) <= 0 {
		return nil, fmt.Errorf("%w: tx %s", domain.ErrJournalEntryNotFound, txid)
	}
	return &entries[0], nil
}

func (r *journalRepository) ListEntries(
	ctx context.Context, status ...domain.TxStatus,
) ([]domain.JournalEntry, error) {
	var query *badgerhold.Query
	if len(status) > 0 {
		values := make([]interface{}, 0, len(status))
		for _, s := range status {
			values = append(values, s)
		}
		query = badgerhold.Where("Status").In(values...)
	} else {
		query = &badgerhold.Query{}
	}

	entries := make([]domain.JournalEntry, 0)
	if err := r.store.Find(&entries, query.SortBy("CreatedAt", "Id").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nil
}

func (r *journalRepository) Close() {
	// nolint:all
	r.store.Close()
}
