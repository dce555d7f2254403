package internal

import (
	"strings"
	"testing"
)

func TestRefreshTokenRoundTrip(t *testing.T) {
	secret, err := NewRefreshSecret()
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}

	token := EncodeRefreshToken(secret)
	if len(token) != 43 {
		t.Fatalf("token length %d, want 43", len(token))
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("token not base64url: %s", token)
	}

	decoded, err := DecodeRefreshToken(token)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded != secret {
		t.Fatal("decoded secret differs from original")
	}
}

func TestDecodeRefreshTokenRejections(t *testing.T) {
	for _, token := range []string{"", "!!!", "c2hvcnQ", strings.Repeat("A", 100)} {
		if _, err := DecodeRefreshToken(token); err == nil {
			t.Errorf("token %q accepted", token)
		}
	}
}

func TestRefreshSecretsAreUnique(t *testing.T) {
	first, err := NewRefreshSecret()
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	second, err := NewRefreshSecret()
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	if first == second {
		t.Fatal("two secrets are identical")
	}
}

func TestNewBackupCodes(t *testing.T) {
	codes, err := NewBackupCodes(10, 10)
	if err != nil {
		t.Fatalf("NewBackupCodes: %v", err)
	}
	if len(codes) != 10 {
		t.Fatalf("got %d codes, want 10", len(codes))
	}

	seen := make(map[string]struct{})
	for _, code := range codes {
		if len(code) != 10 {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(backupCodeAlphabet, r) {
				t.Fatalf("code %q uses character %q outside the alphabet", code, r)
			}
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = struct{}{}
	}
}

func TestNewBackupCodeLengthBounds(t *testing.T) {
	for _, length := range []int{0, 7, 33} {
		if _, err := NewBackupCode(length); err == nil {
			t.Errorf("length %d accepted", length)
		}
	}
}

func TestHashBackupCodeNormalizes(t *testing.T) {
	base := HashBackupCode("ABCD234567")
	if HashBackupCode("abcd234567") != base {
		t.Error("lowercase presentation hashes differently")
	}
	if HashBackupCode("  ABCD234567  ") != base {
		t.Error("padded presentation hashes differently")
	}
	if HashBackupCode("ABCD234568") == base {
		t.Error("distinct codes collide")
	}
}
