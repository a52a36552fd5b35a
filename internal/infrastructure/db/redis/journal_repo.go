package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/syscoin/sysasset/internal/core/domain"
)

const (
	entriesKey = "journal:entries"
	txidsKey   = "journal:txids"
	createdKey = "journal:created"

	defaultNumOfRetries = 5
)

type journalRepository struct {
	rdb          *redis.Client
	numOfRetries int
	retryDelay   time.Duration
}

// NewJournalRepository expects the redis url and, optionally, the number of
// retries for conflicting updates.
func NewJournalRepository(config ...interface{}) (domain.JournalRepository, error) {
	if len(config) < 1 || len(config) > 2 {
		return nil, fmt.Errorf("invalid config: expected 1 or 2 arguments, got %d", len(config))
	}
	redisUrl, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid redis url, expected string but got %T", config[0])
	}
	numOfRetries := defaultNumOfRetries
	if len(config) > 1 {
		if n, ok := config[1].(int); ok && n > 0 {
			numOfRetries = n
		}
	}

	opts, err := redis.ParseURL(redisUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// nolint
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &journalRepository{
		rdb:          rdb,
		numOfRetries: numOfRetries,
		retryDelay:   10 * time.Millisecond,
	}, nil
}

func (r *journalRepository) AddOrUpdateEntry(
	ctx context.Context, entry domain.JournalEntry,
) error {
	if entry.Id == "" {
		return fmt.Errorf("missing journal entry id")
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize journal entry: %w", err)
	}

	for range r.numOfRetries {
		if err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			// The txid index points to the newest entry for the tx.
			indexTxid := false
			if entry.Txid != "" {
				latestId, err := tx.HGet(ctx, txidsKey, entry.Txid).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					return err
				}
				indexTxid = latestId == "" || latestId == entry.Id
				if !indexTxid {
					score, err := tx.ZScore(ctx, createdKey, latestId).Result()
					if err != nil && !errors.Is(err, redis.Nil) {
						return err
					}
					latestCreatedAt := int64(score)
					indexTxid = errors.Is(err, redis.Nil) ||
						entry.CreatedAt > latestCreatedAt ||
						(entry.CreatedAt == latestCreatedAt && entry.Id > latestId)
				}
			}

			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, entriesKey, entry.Id, value)
				pipe.ZAdd(ctx, createdKey, redis.Z{
					Score:  float64(entry.CreatedAt),
					Member: entry.Id,
				})
				if indexTxid {
					pipe.HSet(ctx, txidsKey, entry.Txid, entry.Id)
				}
				return nil
			})
			return err
		}, txidsKey, entriesKey); err == nil {
			return nil
		}
		time.Sleep(r.retryDelay)
	}
	return fmt.Errorf("failed to store journal entry after max number of retries: %v", err)
}

func (r *journalRepository) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	value, err := r.rdb.HGet(ctx, entriesKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrJournalEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry %s: %w", id, err)
	}
	return deserialize(value)
}

func (r *journalRepository) GetEntryByTxid(
	ctx context.Context, txid string,
) (*domain.JournalEntry, error) {
	id, err := r.rdb.HGet(ctx, txidsKey, txid).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: tx %s", domain.ErrJournalEntryNotFound, txid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry for tx %s: %w", txid, err)
	}
	return r.GetEntry(ctx, id)
}

func (r *journalRepository) ListEntries(
	ctx context.Context, status ...domain.TxStatus,
) ([]domain.JournalEntry, error) {
	// Members with the same score come in reverse lexicographical order.
	ids, err := r.rdb.ZRevRange(ctx, createdKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	if len(ids) <= 0 {
		return []domain.JournalEntry{}, nil
	}
	values, err := r.rdb.HMGet(ctx, entriesKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	entries := make([]domain.JournalEntry, 0, len(values))
	for i, value := range values {
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("journal entry %s missing in storage", ids[i])
		}
		entry, err := deserialize(str)
		if err != nil {
			return nil, err
		}
		if !hasStatus(*entry, status) {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (r *journalRepository) Close() {
	// nolint
	r.rdb.Close()
}

func deserialize(value string) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		return nil, fmt.Errorf("malformed journal entry in storage: %w", err)
	}
	return &entry, nil
}

func hasStatus(entry domain.JournalEntry, status []domain.TxStatus) bool {
	if len(status) <= 0 {
		return true
	}
	for _, s := range status {
		if entry.Status == s {
			return true
		}
	}
	return false
}
