package syscoind

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	log "github.com/sirupsen/logrus"
	"github.com/syscoin/sysasset/internal/core/ports"
)

const (
	maxConfirmations = 9999999

	requestTimeout = time.Minute
)

type Config struct {
	Host     string
	User     string
	Password string
	// Wallet, if set, routes the calls to /wallet/<name>.
	Wallet string
	// TLSCertPath enables TLS with the given certificate.
	TLSCertPath string
}

type Ledger struct {
	url        string
	user       string
	password   string
	httpClient *http.Client
	nextId     atomic.Uint64
}

// NewLedger returns a LedgerService and FeeRateSource backed by the node
// json-rpc api.
func NewLedger(cfg Config) (*Ledger, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("missing rpc host")
	}

	host := strings.TrimPrefix(strings.TrimPrefix(cfg.Host, "http://"), "https://")
	host = strings.TrimSuffix(host, "/")
	if strings.Contains(host, "/") {
		return nil, fmt.Errorf("invalid rpc host %s, must be host:port", cfg.Host)
	}

	scheme := "http"
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.TLSCertPath != "" {
		cert, err := os.ReadFile(cfg.TLSCertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read rpc tls cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(cert) {
			return nil, fmt.Errorf("invalid rpc tls cert %s", cfg.TLSCertPath)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
		scheme = "https"
	}

	endpoint := url.URL{Scheme: scheme, Host: host, Path: "/"}
	if cfg.Wallet != "" {
		endpoint.Path = "/wallet/" + cfg.Wallet
	}

	return &Ledger{
		url:      endpoint.String(),
		user:     cfg.User,
		password: cfg.Password,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
	}, nil
}

var (
	_ ports.LedgerService = (*Ledger)(nil)
	_ ports.FeeRateSource = (*Ledger)(nil)
)

func (l *Ledger) Close() {
	l.httpClient.CloseIdleConnections()
}

// call sends a json-rpc request and decodes its result into res, if not nil.
// Errors returned by the node are *btcjson.RPCError.
func (l *Ledger) call(
	ctx context.Context, method string, res interface{}, params ...interface{},
) error {
	req, err := btcjson.NewRequest(btcjson.RpcVersion1, l.nextId.Add(1), method, params)
	if err != nil {
		return fmt.Errorf("failed to encode %s params: %w", method, err)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(l.user, l.password)

	httpResp, err := l.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}
	defer httpResp.Body.Close()

	buf, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	// The node answers rpc errors with a non-2xx status and a json body, so the
	// status alone is only reported when the body isn't a json-rpc response.
	var resp btcjson.Response
	if err := json.Unmarshal(buf, &resp); err != nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return fmt.Errorf("%s request failed with status %s", method, httpResp.Status)
		}
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	log.WithField("method", method).Tracef("rpc response: %s", resp.Result)
	if resp.Error != nil {
		return resp.Error
	}
	if res == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, res); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

func isMethodNotFound(err error) bool {
	var rpcErr *btcjson.RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == btcjson.ErrRPCMethodNotFound.Code
}
