package tenauth_test

import (
	"context"
	"errors"
	"github.com/tripwell/tenauth"
	"sync"
	"testing"
	"time"
)

func loginForRefresh(t *testing.T, engine *tenauth.Engine) *tenauth.Session {
	t.Helper()
	session, err := engine.Login(context.Background(), tenauth.LoginRequest{
		Email:    "alice@acme.test",
		Password: "correct-horse",
		TenantID: "tenant-acme",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return session
}

func seedRefreshPrincipal(t *testing.T, cfg tenauth.Config) (*tenauth.Engine, *fakeClock, *tenauth.Session) {
	t.Helper()
	engine, store, clock := newTestEngine(t, cfg)
	seedTestPrincipal(t, store, cfg, tenauth.Principal{
		ID:       "p1",
		TenantID: "tenant-acme",
		Email:    "alice@acme.test",
		Active:   true,
		Roles:    []string{tenauth.RoleCustomer},
	}, "correct-horse")
	return engine, clock, loginForRefresh(t, engine)
}

func TestRefreshRotatesToken(t *testing.T) {
	cfg := engineTestConfig()
	engine, clock, session := seedRefreshPrincipal(t, cfg)

	clock.Advance(time.Minute)

	rotated, err := engine.Refresh(context.Background(), "p1", session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if rotated.RefreshToken == session.RefreshToken {
		t.Fatal("refresh must issue a new refresh token")
	}
	if rotated.AccessToken == session.AccessToken {
		t.Fatal("refresh must issue a new access token")
	}
	if want := clock.Now().Add(cfg.Refresh.TTL); !rotated.RefreshExpiresAt.Equal(want) {
		t.Fatalf("expiry %v, want %v", rotated.RefreshExpiresAt, want)
	}

	// The rotated-out token is dead.
	if _, err := engine.Refresh(context.Background(), "p1", session.RefreshToken); !errors.Is(err, tenauth.ErrRefreshInvalid) {
		t.Fatalf("stale token: got %v, want invalid refresh", err)
	}

	// The new one keeps working.
	if _, err := engine.Refresh(context.Background(), "p1", rotated.RefreshToken); err != nil {
		t.Fatalf("second rotation failed: %v", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	cfg := engineTestConfig()
	engine, clock, session := seedRefreshPrincipal(t, cfg)

	clock.Advance(cfg.Refresh.TTL)

	if _, err := engine.Refresh(context.Background(), "p1", session.RefreshToken); !errors.Is(err, tenauth.ErrRefreshInvalid) {
		t.Fatalf("got %v, want invalid refresh", err)
	}
}

func TestRefreshAfterRevoke(t *testing.T) {
	cfg := engineTestConfig()
	engine, _, session := seedRefreshPrincipal(t, cfg)

	if err := engine.Revoke(context.Background(), "p1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	// Revoking again is a no-op, not an error.
	if err := engine.Revoke(context.Background(), "p1"); err != nil {
		t.Fatalf("second revoke failed: %v", err)
	}

	if _, err := engine.Refresh(context.Background(), "p1", session.RefreshToken); !errors.Is(err, tenauth.ErrRefreshInvalid) {
		t.Fatalf("got %v, want invalid refresh", err)
	}
}

func TestRefreshUnknownPrincipal(t *testing.T) {
	cfg := engineTestConfig()
	engine, _, session := seedRefreshPrincipal(t, cfg)

	if _, err := engine.Refresh(context.Background(), "ghost", session.RefreshToken); !errors.Is(err, tenauth.ErrUnknownPrincipal) {
		t.Fatalf("got %v, want unknown principal", err)
	}
	if err := engine.Revoke(context.Background(), "ghost"); !errors.Is(err, tenauth.ErrUnknownPrincipal) {
		t.Fatalf("revoke: got %v, want unknown principal", err)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	cfg := engineTestConfig()
	engine, _, _ := seedRefreshPrincipal(t, cfg)

	for _, token := range []string{"", "not-base64!!!", "c2hvcnQ"} {
		if _, err := engine.Refresh(context.Background(), "p1", token); !errors.Is(err, tenauth.ErrRefreshInvalid) {
			t.Fatalf("token %q: got %v, want invalid refresh", token, err)
		}
	}
}

func TestRefreshUsesCurrentRoles(t *testing.T) {
	cfg := engineTestConfig()
	engine, store, _ := newTestEngine(t, cfg)
	seedTestPrincipal(t, store, cfg, tenauth.Principal{
		ID:       "p1",
		TenantID: "tenant-acme",
		Email:    "alice@acme.test",
		Active:   true,
		Roles:    []string{tenauth.RoleCustomer},
	}, "correct-horse")
	session := loginForRefresh(t, engine)

	// Promote the principal between login and refresh, keeping the stored
	// refresh state.
	current, _ := store.Principal("p1")
	current.Roles = []string{tenauth.RoleTenantAdmin}
	store.SeedPrincipal(*current)

	rotated, err := engine.Refresh(context.Background(), "p1", session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	result, err := engine.Validate(context.Background(), rotated.AccessToken)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(result.Roles) != 1 || result.Roles[0] != tenauth.RoleTenantAdmin {
		t.Fatalf("access token carries %v, want current roles", result.Roles)
	}
}

func TestRefreshRejectsInactivePrincipal(t *testing.T) {
	cfg := engineTestConfig()
	engine, store, _ := newTestEngine(t, cfg)
	seedTestPrincipal(t, store, cfg, tenauth.Principal{
		ID:       "p1",
		TenantID: "tenant-acme",
		Email:    "alice@acme.test",
		Active:   true,
		Roles:    []string{tenauth.RoleCustomer},
	}, "correct-horse")
	session := loginForRefresh(t, engine)

	current, _ := store.Principal("p1")
	current.Active = false
	store.SeedPrincipal(*current)

	if _, err := engine.Refresh(context.Background(), "p1", session.RefreshToken); !errors.Is(err, tenauth.ErrAccountInactive) {
		t.Fatalf("got %v, want inactive", err)
	}
}

func TestRefreshConcurrentRotationSingleWinner(t *testing.T) {
	cfg := engineTestConfig()
	engine, _, session := seedRefreshPrincipal(t, cfg)

	const attempts = 8
	var (
		start    sync.WaitGroup
		done     sync.WaitGroup
		mu       sync.Mutex
		winners  int
		failures int
	)
	start.Add(1)
	done.Add(attempts)

	for i := 0; i < attempts; i++ {
		go func() {
			defer done.Done()
			start.Wait()

			_, err := engine.Refresh(context.Background(), "p1", session.RefreshToken)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, tenauth.ErrRefreshInvalid):
				failures++
			default:
				t.Errorf("unexpected refresh error: %v", err)
			}
		}()
	}

	start.Done()
	done.Wait()

	if winners != 1 {
		t.Fatalf("got %d winners, want exactly 1", winners)
	}
	if failures != attempts-1 {
		t.Fatalf("got %d losers, want %d", failures, attempts-1)
	}
}
