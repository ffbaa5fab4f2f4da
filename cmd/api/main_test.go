package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func testConfig(port int) *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "stock-ledger", Env: "test", StorageDriver: config.StorageMemory},
		JWT:    config.JWTConfig{Secret: "secreto"},
		HTTP:   config.HTTPConfig{Host: "127.0.0.1", Port: port},
		Ledger: config.LedgerConfig{MaxRetries: 3, TxTimeout: time.Second},
	}
}

func TestRun_SinSecretoJWT(t *testing.T) {
	cfg := testConfig(0)
	cfg.JWT.Secret = ""
	assert.ErrorContains(t, run(context.Background(), cfg, logger.Nop()), "JWT_SECRET")
}

func TestRun_PuertoOcupadoRetornaError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), testConfig(port), logger.Nop()) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "servidor HTTP")
	case <-time.After(10 * time.Second):
		t.Fatal("run no retornó con el puerto ocupado")
	}
}
