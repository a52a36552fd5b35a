package application

import (
	"bytes"
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/syscoin/sysasset/internal/core/domain"
	"github.com/syscoin/sysasset/internal/core/ports"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) ListUnspent(
	ctx context.Context, minConf int64, addresses ...string,
) ([]domain.Utxo, error) {
	args := m.Called(ctx, minConf)
	var utxos []domain.Utxo
	if res := args.Get(0); res != nil {
		utxos = res.([]domain.Utxo)
	}
	return utxos, args.Error(1)
}

func (m *mockLedger) NewAddress(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// CreateRawTransaction and SignRawTransaction accept either a static result
// or a function computing it from the call arguments.
func (m *mockLedger) CreateRawTransaction(
	ctx context.Context, inputs []domain.Outpoint, outputs []ports.TxOutput,
) (string, error) {
	args := m.Called(ctx, inputs, outputs)
	if fn, ok := args.Get(0).(func([]domain.Outpoint, []ports.TxOutput) string); ok {
		return fn(inputs, outputs), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

func (m *mockLedger) SignRawTransaction(ctx context.Context, txHex string) (string, error) {
	args := m.Called(ctx, txHex)
	if fn, ok := args.Get(0).(func(string) string); ok {
		return fn(txHex), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

func (m *mockLedger) SendRawTransaction(ctx context.Context, txHex string) (string, error) {
	args := m.Called(ctx, txHex)
	return args.String(0), args.Error(1)
}

func (m *mockLedger) GetBlockCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedger) GetTransaction(ctx context.Context, txid string) (*ports.TxDetails, error) {
	args := m.Called(ctx, txid)
	var details *ports.TxDetails
	if res := args.Get(0); res != nil {
		details = res.(*ports.TxDetails)
	}
	return details, args.Error(1)
}

func (m *mockLedger) Close() {}

type mockFeeManager struct {
	mock.Mock
}

func (m *mockFeeManager) FeeRate(ctx context.Context) int64 {
	args := m.Called(ctx)
	return args.Get(0).(int64)
}

type mockJournal struct {
	mock.Mock
}

func (m *mockJournal) AddOrUpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockJournal) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, id)
	var entry *domain.JournalEntry
	if res := args.Get(0); res != nil {
		entry = res.(*domain.JournalEntry)
	}
	return entry, args.Error(1)
}

func (m *mockJournal) GetEntryByTxid(
	ctx context.Context, txid string,
) (*domain.JournalEntry, error) {
	args := m.Called(ctx, txid)
	var entry *domain.JournalEntry
	if res := args.Get(0); res != nil {
		entry = res.(*domain.JournalEntry)
	}
	return entry, args.Error(1)
}

func (m *mockJournal) ListEntries(
	ctx context.Context, status ...domain.TxStatus,
) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, status)
	var entries []domain.JournalEntry
	if res := args.Get(0); res != nil {
		entries = res.([]domain.JournalEntry)
	}
	return entries, args.Error(1)
}

func (m *mockJournal) Close() {}

type mockRepoManager struct {
	journal *mockJournal
}

func (m *mockRepoManager) Journal() domain.JournalRepository { return m.journal }
func (m *mockRepoManager) Close()                            {}

// mockScheduler runs every task as soon as it's scheduled.
type mockScheduler struct {
	height int64
	tipErr error
	at     []int64
}

func (m *mockScheduler) Start() {}
func (m *mockScheduler) Stop()  {}
func (m *mockScheduler) AddNow(delta int64) (int64, error) {
	if m.tipErr != nil {
		return 0, m.tipErr
	}
	return m.height + delta, nil
}
func (m *mockScheduler) AfterNow(at int64) bool { return at > m.height }
func (m *mockScheduler) ScheduleTaskOnce(at int64, task func()) error {
	m.at = append(m.at, at)
	task()
	return nil
}

// testTxid returns a valid txid made of the repeated hex char.
func testTxid(c string) string {
	return strings.Repeat(c, 64)
}

func testScript(address string) []byte {
	return append([]byte{txscript.OP_0, 0x14}, btcutil.Hash160([]byte(address))...)
}

// createRawTx mimics createrawtransaction: outputs are created in order and
// data outputs have no value.
func createRawTx(inputs []domain.Outpoint, outputs []ports.TxOutput) string {
	tx := wire.NewMsgTx(wire.TxVersion)
	for _, in := range inputs {
		hash, err := chainhash.NewHashFromStr(in.Txid)
		if err != nil {
			panic(err)
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, in.VOut), nil, nil))
	}
	for _, out := range outputs {
		if out.IsData() {
			data, err := hex.DecodeString(out.Data)
			if err != nil {
				panic(err)
			}
			script, err := txscript.NewScriptBuilder().
				AddOp(txscript.OP_RETURN).
				AddFullData(data).
				Script()
			if err != nil {
				panic(err)
			}
			tx.AddTxOut(wire.NewTxOut(0, script))
			continue
		}
		tx.AddTxOut(wire.NewTxOut(out.Amount, testScript(out.Address)))
	}
	return serializeTx(tx)
}

func serializeTx(tx *wire.MsgTx) string {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf.Bytes())
}

func signRawTx(txHex string) string {
	return txHex
}

type mockAlerts struct {
	mock.Mock
}

func (m *mockAlerts) Publish(ctx context.Context, topic ports.Topic, message interface{}) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

type testEnv struct {
	ledger    *mockLedger
	fees      *mockFeeManager
	journal   *mockJournal
	scheduler *mockScheduler
	svc       *service
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		ledger:    &mockLedger{},
		fees:      &mockFeeManager{},
		journal:   &mockJournal{},
		scheduler: &mockScheduler{height: 100},
	}
	svc, err := NewService(
		env.ledger, env.fees, &mockRepoManager{journal: env.journal}, env.scheduler, nil, 0, 1,
	)
	require.NoError(t, err)
	env.svc = svc.(*service)
	return env
}

// expectBuild sets up the ledger for a successful build, returning the
// given change addresses in order.
func (e *testEnv) expectBuild(utxos []domain.Utxo, feeRate int64, changeAddrs ...string) {
	e.ledger.On("ListUnspent", mock.Anything, int64(1)).Return(utxos, nil)
	e.fees.On("FeeRate", mock.Anything).Return(feeRate)
	for _, addr := range changeAddrs {
		e.ledger.On("NewAddress", mock.Anything).Return(addr, nil).Once()
	}
	e.ledger.On("CreateRawTransaction", mock.Anything, mock.Anything, mock.Anything).
		Return(createRawTx, nil)
	e.ledger.On("SignRawTransaction", mock.Anything, mock.Anything).Return(signRawTx, nil)
	e.journal.On("AddOrUpdateEntry", mock.Anything, mock.MatchedBy(func(entry domain.JournalEntry) bool {
		return entry.Status == domain.TxStatusBuilt
	})).Return(nil)
}
