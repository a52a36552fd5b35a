package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrJournalEntryNotFound = errors.New("journal entry not found")

type TxStatus string

const (
	TxStatusBuilt     TxStatus = "built"
	TxStatusBroadcast TxStatus = "broadcast"
	TxStatusVerified  TxStatus = "verified"
	TxStatusFailed    TxStatus = "failed"
)

// IntendedOutput is a movement the built tx is expected to produce, checked
// by the output verifier once the tx is confirmed. Guid 0 is the native coin.
// Burned movements must not show up in any output.
type IntendedOutput struct {
	Destination string `json:"destination"`
	Guid        uint64 `json:"guid"`
	Amount      int64  `json:"amount"`
	Burned      bool   `json:"burned,omitempty"`
}

// JournalEntry records a transaction built by the service.
type JournalEntry struct {
	Id              string           `json:"id"`
	Kind            TxKind           `json:"kind"`
	Txid            string           `json:"txid"`
	RawTx           string           `json:"raw_tx"`
	SignedTx        string           `json:"signed_tx"`
	Fee             int64            `json:"fee"`
	Inputs          []Outpoint       `json:"inputs"`
	IntendedOutputs []IntendedOutput `json:"intended_outputs"`
	Status          TxStatus         `json:"status"`
	Error           string           `json:"error,omitempty"`
	CreatedAt       int64            `json:"created_at"`
	UpdatedAt       int64            `json:"updated_at"`
}

func (e JournalEntry) String() string {
	// nolint
	b, _ := json.MarshalIndent(e, "", "  ")
	return string(b)
}

func (e *JournalEntry) Broadcast(txid string, at int64) error {
	if e.Status != TxStatusBuilt && e.Status != TxStatusFailed {
		return fmt.Errorf("tx %s already %s", e.Txid, e.Status)
	}
	e.Txid = txid
	e.Status = TxStatusBroadcast
	e.Error = ""
	e.UpdatedAt = at
	return nil
}

func (e *JournalEntry) Verified(at int64) {
	e.Status = TxStatusVerified
	e.Error = ""
	e.UpdatedAt = at
}

func (e *JournalEntry) Fail(reason string, at int64) {
	e.Status = TxStatusFailed
	e.Error = reason
	e.UpdatedAt = at
}

// JournalRepository stores the built transactions. Lookups of unknown
// entries fail with ErrJournalEntryNotFound.
type JournalRepository interface {
	AddOrUpdateEntry(ctx context.Context, entry JournalEntry) error
	GetEntry(ctx context.Context, id string) (*JournalEntry, error)
	GetEntryByTxid(ctx context.Context, txid string) (*JournalEntry, error)
	// ListEntries returns entries from the newest to the oldest.
	ListEntries(ctx context.Context, status ...TxStatus) ([]JournalEntry, error)
	Close()
}
