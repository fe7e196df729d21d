package services

import (
	"context"
	"fmt"
	"time"
)

// PurgeExpired physically deletes credentials whose expiry has passed.
// Verification already ignores them; this only reclaims space.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Credentials(s.db).DeleteExpired(ctx, timeNow())
	if err != nil {
		return 0, fmt.Errorf("error purging expired credentials: %w", err)
	}
	s.metrics.CredentialsPurged(n)
	return n, nil
}

// RunJanitor calls PurgeExpired every interval until ctx is done. A
// non-positive interval returns immediately.
func (s *AuthService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				s.log.Error(ctx, "janitor run failed", "error", err)
				continue
			}
			if n > 0 {
				s.log.Debug(ctx, "expired credentials purged", "count", n)
			}
		}
	}
}
