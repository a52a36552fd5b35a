package syscoind

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/syscoin/sysasset/internal/core/domain"
	"github.com/syscoin/sysasset/internal/core/ports"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
)

type assetBalance struct {
	AssetGuid   json.RawMessage `json:"asset_guid"`
	AssetAmount float64         `json:"asset_amount"`
}

type unspent struct {
	Txid          string  `json:"txid"`
	Vout          uint32  `json:"vout"`
	Address       string  `json:"address"`
	ScriptPubKey  string  `json:"scriptPubKey"`
	Amount        float64 `json:"amount"`
	Confirmations int64   `json:"confirmations"`
	Spendable     *bool   `json:"spendable"`
	assetBalance
	Assets []assetBalance `json:"assets"`
}

func (u unspent) toUtxo() (domain.Utxo, error) {
	amount, err := assetlib.AmountFromCoins(u.Amount)
	if err != nil {
		return domain.Utxo{}, fmt.Errorf("invalid amount for %s:%d: %w", u.Txid, u.Vout, err)
	}
	script, err := hex.DecodeString(u.ScriptPubKey)
	if err != nil {
		return domain.Utxo{}, fmt.Errorf("invalid script for %s:%d: %w", u.Txid, u.Vout, err)
	}

	balances := u.Assets
	if guid := u.assetBalance.AssetGuid; len(guid) > 0 && string(guid) != "null" {
		balances = append([]assetBalance{u.assetBalance}, balances...)
	}
	assets := make([]domain.AssetBalance, 0, len(balances))
	for _, b := range balances {
		guid, err := parseGuid(b.AssetGuid)
		if err != nil {
			return domain.Utxo{}, fmt.Errorf("invalid asset guid for %s:%d: %w", u.Txid, u.Vout, err)
		}
		assetAmount, err := assetlib.AmountFromCoins(b.AssetAmount)
		if err != nil {
			return domain.Utxo{}, fmt.Errorf(
				"invalid asset amount for %s:%d: %w", u.Txid, u.Vout, err,
			)
		}
		assets = append(assets, domain.AssetBalance{Guid: guid, Amount: assetAmount})
	}
	if len(assets) <= 0 {
		assets = nil
	}

	return domain.Utxo{
		Outpoint:      domain.Outpoint{Txid: u.Txid, VOut: u.Vout},
		Address:       u.Address,
		ScriptPubKey:  script,
		Amount:        amount,
		Confirmations: u.Confirmations,
		Assets:        assets,
	}, nil
}

// parseGuid accepts guids encoded either as json numbers or strings.
func parseGuid(raw json.RawMessage) (uint64, error) {
	str := strings.Trim(string(raw), `"`)
	return strconv.ParseUint(str, 10, 64)
}

func (l *Ledger) ListUnspent(
	ctx context.Context, minConf int64, addresses ...string,
) ([]domain.Utxo, error) {
	params := []interface{}{minConf, maxConfirmations}
	if len(addresses) > 0 {
		params = append(params, addresses)
	}

	var res []unspent
	if err := l.call(ctx, "listunspent", &res, params...); err != nil {
		return nil, err
	}

	utxos := make([]domain.Utxo, 0, len(res))
	for _, u := range res {
		if u.Spendable != nil && !*u.Spendable {
			continue
		}
		utxo, err := u.toUtxo()
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, utxo)
	}
	return utxos, nil
}

func (l *Ledger) NewAddress(ctx context.Context) (string, error) {
	var address string
	if err := l.call(ctx, "getnewaddress", &address); err != nil {
		return "", err
	}
	return address, nil
}

func (l *Ledger) CreateRawTransaction(
	ctx context.Context, inputs []domain.Outpoint, outputs []ports.TxOutput,
) (string, error) {
	type txInput struct {
		Txid string `json:"txid"`
		Vout uint32 `json:"vout"`
	}
	ins := make([]txInput, 0, len(inputs))
	for _, in := range inputs {
		ins = append(ins, txInput{in.Txid, in.VOut})
	}

	// The array form keeps the outputs in the given order.
	outs := make([]map[string]interface{}, 0, len(outputs))
	for _, out := range outputs {
		if out.IsData() {
			outs = append(outs, map[string]interface{}{"data": out.Data})
			continue
		}
		outs = append(outs, map[string]interface{}{
			out.Address: json.Number(assetlib.FormatAmount(out.Amount)),
		})
	}

	var txHex string
	if err := l.call(ctx, "createrawtransaction", &txHex, ins, outs); err != nil {
		return "", err
	}
	return txHex, nil
}

func (l *Ledger) SignRawTransaction(ctx context.Context, txHex string) (string, error) {
	var res struct {
		Hex      string `json:"hex"`
		Complete bool   `json:"complete"`
		Errors   []struct {
			Txid  string `json:"txid"`
			Vout  uint32 `json:"vout"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	if err := l.call(ctx, "signrawtransactionwithwallet", &res, txHex); err != nil {
		return "", err
	}
	if !res.Complete {
		if len(res.Errors) > 0 {
			e := res.Errors[0]
			return "", fmt.Errorf("failed to sign input %s:%d: %s", e.Txid, e.Vout, e.Error)
		}
		return "", fmt.Errorf("tx is not completely signed")
	}
	return res.Hex, nil
}

func (l *Ledger) SendRawTransaction(ctx context.Context, txHex string) (string, error) {
	var txid string
	if err := l.call(ctx, "sendrawtransaction", &txid, txHex); err != nil {
		return "", err
	}
	return txid, nil
}

func (l *Ledger) GetBlockCount(ctx context.Context) (int64, error) {
	var count int64
	if err := l.call(ctx, "getblockcount", &count); err != nil {
		return -1, err
	}
	return count, nil
}

func (l *Ledger) GetTransaction(ctx context.Context, txid string) (*ports.TxDetails, error) {
	var res struct {
		Txid          string `json:"txid"`
		Confirmations int64  `json:"confirmations"`
		BlockHeight   int64  `json:"blockheight"`
		Hex           string `json:"hex"`
	}
	if err := l.call(ctx, "gettransaction", &res, txid); err != nil {
		return nil, err
	}
	return &ports.TxDetails{
		Txid:          res.Txid,
		Confirmations: res.Confirmations,
		BlockHeight:   res.BlockHeight,
		Hex:           res.Hex,
	}, nil
}

func (l *Ledger) RelayFeeRate(ctx context.Context) (int64, error) {
	var res struct {
		RelayFee float64 `json:"relayfee"`
	}
	if err := l.call(ctx, "getnetworkinfo", &res); err != nil {
		return -1, err
	}
	return assetlib.AmountFromCoins(res.RelayFee)
}

func (l *Ledger) EstimateFeeRate(ctx context.Context, numBlocks int64) (int64, error) {
	var res struct {
		FeeRate *float64 `json:"feerate"`
		Errors  []string `json:"errors"`
	}
	err := l.call(ctx, "estimatesmartfee", &res, numBlocks)
	if isMethodNotFound(err) {
		var rate float64
		if err := l.call(ctx, "estimatefee", &rate, numBlocks); err != nil {
			return -1, err
		}
		if rate <= 0 {
			return -1, fmt.Errorf("insufficient data to estimate fee rate")
		}
		return assetlib.AmountFromCoins(rate)
	}
	if err != nil {
		return -1, err
	}
	if res.FeeRate == nil {
		if len(res.Errors) > 0 {
			return -1, fmt.Errorf("failed to estimate fee rate: %s", strings.Join(res.Errors, ", "))
		}
		return -1, fmt.Errorf("failed to estimate fee rate")
	}
	return assetlib.AmountFromCoins(*res.FeeRate)
}
