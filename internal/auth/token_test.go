package auth

import (
	"strings"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	secret := "test-secret"
	caller := Caller{ID: "662f1b2c3d4e5f6a7b8c9d0e", Role: RoleAdmin}

	token := Sign(secret, caller, time.Hour)

	got, err := Verify(secret, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != caller.ID || got.Role != caller.Role {
		t.Errorf("got %+v, want %+v", got, caller)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	secret := "test-secret"
	token := Sign(secret, Caller{ID: "abc", Role: RoleUser}, time.Hour)

	parts := strings.SplitN(token, ".", 2)
	forged := Sign(secret, Caller{ID: "abc", Role: RoleAdmin}, time.Hour)
	forgedPayload := strings.SplitN(forged, ".", 2)[0]

	if _, err := Verify(secret, forgedPayload+"."+parts[1]); err == nil {
		t.Error("expected signature mismatch for tampered payload")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token := Sign("secret-a", Caller{ID: "abc", Role: RoleAdmin}, time.Hour)
	if _, err := Verify("secret-b", token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	token := Sign("s", Caller{ID: "abc", Role: RoleAdmin}, -time.Minute)
	if _, err := Verify("s", token); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "no-dot", "a.b.c.d", "!!!.sig"} {
		if _, err := Verify("s", token); err == nil {
			t.Errorf("expected error for token %q", token)
		}
	}
}
