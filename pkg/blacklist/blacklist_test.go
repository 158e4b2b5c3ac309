package blacklist

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRevokeToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewMemoryBlacklist()
	b.now = func() time.Time { return now }

	if err := b.Revoke(ctx, "jti-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if err := b.Revoke(ctx, "jti-old", now.Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke(expired) error = %v", err)
	}

	if revoked, _ := b.IsRevoked(ctx, "jti-1"); !revoked {
		t.Error("jti-1 should be revoked")
	}
	if revoked, _ := b.IsRevoked(ctx, "jti-old"); revoked {
		t.Error("already expired token should not be stored")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := b.IsRevoked(ctx, "jti-1"); revoked {
		t.Error("marker should expire with the token")
	}
}

func TestMemoryRevokeUser(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewMemoryBlacklist()
	b.now = func() time.Time { return now }

	if err := b.RevokeUser(ctx, "u1", time.Hour); err != nil {
		t.Fatalf("RevokeUser() error = %v", err)
	}

	if revoked, _ := b.IsUserRevoked(ctx, "u1", now.Add(-time.Minute)); !revoked {
		t.Error("token issued before revocation should be revoked")
	}
	if revoked, _ := b.IsUserRevoked(ctx, "u1", now); revoked {
		t.Error("token issued at revocation time should stay valid")
	}
	if revoked, _ := b.IsUserRevoked(ctx, "u2", now.Add(-time.Minute)); revoked {
		t.Error("other users are unaffected")
	}
}
