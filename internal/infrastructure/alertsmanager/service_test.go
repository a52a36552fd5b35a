package alertsmanager

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syscoin/sysasset/internal/core/ports"
)

func TestPublish(t *testing.T) {
	ctx := context.Background()
	alert := ports.TxAlert{
		Txid:   "aa",
		Kind:   "allocation_send",
		Fee:    474,
		Assets: map[uint64]int64{123456: 5, 7: 1},
	}

	t.Run("tx alert", func(t *testing.T) {
		var received []Alert
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		svc := NewService(srv.URL, "https://explorer.syscoin.org/")
		require.NoError(t, svc.Publish(ctx, ports.TxVerified, alert))

		require.Len(t, received, 1)
		require.Equal(t, map[string]string{
			"alertname": string(ports.TxVerified),
			"service":   serviceName,
			"severity":  severity,
			"txid":      "aa",
			"kind":      "allocation_send",
		}, received[0].Labels)
		require.Equal(t,
			"https://explorer.syscoin.org/tx/aa\n\n*Txid:* `aa`\n*Kind:* allocation_send\n"+
				"*Fee:* 0.00000474 SYS\n\n*Assets:*\n• 7: 1\n• 123456: 5",
			received[0].Annotations["description"],
		)
	})

	t.Run("invalid message", func(t *testing.T) {
		svc := NewService("http://127.0.0.1:0", "")
		require.Error(t, svc.Publish(ctx, ports.TxBroadcast, "tx"))
	})

	t.Run("retries on server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		svc := NewService(srv.URL, "")
		require.NoError(t, svc.Publish(ctx, ports.TxBroadcast, alert))
		require.Equal(t, int32(3), calls.Load())
	})

	t.Run("no retries on client errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		svc := NewService(srv.URL, "")
		require.Error(t, svc.Publish(ctx, ports.TxBroadcast, alert))
		require.Equal(t, int32(1), calls.Load())
	})
}

func TestFormatSYS(t *testing.T) {
	require.Equal(t, "1 SYS", formatSYS(1e8))
	require.Equal(t, "1.5 SYS", formatSYS(1.5e8))
	require.Equal(t, "0.00000546 SYS", formatSYS(546))
	require.Equal(t, "-0.1 SYS", formatSYS(-1e7))
}
