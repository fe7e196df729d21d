package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StorageMode = config.StorageModeMemory
	c.Mailer = config.MailerLog
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.MetricsAddr = "127.0.0.1:0"
	return c
}

func TestNewApp_MemoryStorage(t *testing.T) {
	app, err := newApp(context.Background(), memoryConfig(), logging.Nop{})
	require.NoError(t, err)
	assert.Nil(t, app.db)
	assert.NotNil(t, app.auth)
}

func TestNewApp_OpenDBError(t *testing.T) {
	orig := openDB
	openDB = func(string, string) (*sql.DB, error) { return nil, errors.New("boom") }
	t.Cleanup(func() { openDB = orig })

	c := memoryConfig()
	c.StorageMode = config.StorageModePostgres

	_, err := newApp(context.Background(), c, logging.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := newApp(context.Background(), memoryConfig(), logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
