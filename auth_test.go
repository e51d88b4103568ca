package main

import (
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "arena.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTicketRoundTrip(t *testing.T) {
	a := NewAuth(nil)
	tok, err := a.IssueTicket(Ticket{SessionID: "s1", Seat: "seat-1", Name: "Pancho", AccountID: 7})
	if err != nil {
		t.Fatal(err)
	}
	got, err := a.ValidateTicket(tok)
	if err != nil {
		t.Fatal(err)
	}
	if got.SessionID != "s1" || got.Seat != "seat-1" || got.Name != "Pancho" || got.AccountID != 7 {
		t.Errorf("unexpected ticket %+v", got)
	}
}

func TestTicketRejections(t *testing.T) {
	a := NewAuth(nil)
	other := NewAuth(nil)

	foreign, _ := other.IssueTicket(Ticket{SessionID: "s1"})
	account, _ := a.generateToken(1, "Pancho")
	noSession, _ := a.IssueTicket(Ticket{})

	tests := []struct {
		name string
		tok  string
	}{
		{"garbage", "not-a-token"},
		{"other secret", foreign},
		{"account token", account},
		{"no session", noSession},
	}
	for _, tt := range tests {
		if _, err := a.ValidateTicket(tt.tok); !errors.Is(err, ErrInvalidTicket) {
			t.Errorf("%s: expected ErrInvalidTicket, got %v", tt.name, err)
		}
	}
}

func TestTicketNotAccountToken(t *testing.T) {
	a := NewAuth(nil)
	tok, _ := a.IssueTicket(Ticket{SessionID: "s1"})
	if _, _, err := a.ValidateToken(tok); err == nil {
		t.Error("a travel ticket must not authenticate an account")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	a := NewAuth(db)
	a.cost = bcrypt.MinCost

	id, tok, err := a.Register("Pancho", "secret")
	if err != nil {
		t.Fatal(err)
	}
	pid, name, err := a.ValidateToken(tok)
	if err != nil || pid != id || name != "Pancho" {
		t.Errorf("token validation: %d %q %v", pid, name, err)
	}

	if _, _, err := a.Register("Pancho", "secret"); err == nil {
		t.Error("duplicate username should fail")
	}
	if _, _, err := a.Register("x", "secret"); err == nil {
		t.Error("short username should fail")
	}
	if _, _, err := a.Register("Lola", "abc"); err == nil {
		t.Error("short password should fail")
	}

	if _, _, err := a.Login("Pancho", "wrong", "1.2.3.4"); err == nil {
		t.Error("wrong password should fail")
	}
	lid, _, err := a.Login("Pancho", "secret", "1.2.3.4")
	if err != nil || lid != id {
		t.Errorf("login: %d %v", lid, err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	db := newTestDB(t)
	a := NewAuth(db)
	for i := 0; i < maxLoginAttempts; i++ {
		a.Login("nobody", "pw", "9.9.9.9")
	}
	_, _, err := a.Login("nobody", "pw", "9.9.9.9")
	if err == nil || err.Error() != "too many login attempts, try again later" {
		t.Errorf("expected rate limit, got %v", err)
	}
}

func TestSecretPersists(t *testing.T) {
	db := newTestDB(t)
	tok, _ := NewAuth(db).IssueTicket(Ticket{SessionID: "s1"})
	if _, err := NewAuth(db).ValidateTicket(tok); err != nil {
		t.Errorf("secret should survive a restart: %v", err)
	}
}

func TestAccountsDisabledWithoutDB(t *testing.T) {
	a := NewAuth(nil)
	if _, _, err := a.Register("Pancho", "secret"); err == nil {
		t.Error("register without a database should fail")
	}
}
