package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifiedUser(t, "a@b.c", "pw")

	_, err := f.svc.Issuer().IssueResetCode(ctx, "a@b.c")
	require.NoError(t, err)

	n, err := f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// reset code lapses, the refresh from Register does not
	f.clock.Advance(f.cfg.ResetCodeValidityDuration)
	n, err = f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), f.metrics.purged)

	_, err = f.rm.Credentials(nil).FindLatestActiveByOwner(ctx, mustUserID(t, f, "a@b.c"), models.KindRefresh)
	require.NoError(t, err)
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.svc.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestRunJanitor_DisabledReturnsImmediately(t *testing.T) {
	f := newFixture(t)
	f.svc.RunJanitor(context.Background(), 0)
}

func mustUserID(t *testing.T, f *fixture, email string) string {
	t.Helper()
	u, err := f.rm.Users(nil).GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u.ID
}
