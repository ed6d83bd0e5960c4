package util

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	tok, err := GenerateToken("secret", "timeclock", "u-1", "approver", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	claims, err := ParseToken("secret", tok)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != "approver" || claims.Issuer != "timeclock" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken("secret", "", "u-1", "user", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	if _, err := ParseToken("other", tok); err == nil {
		t.Error("ParseToken with wrong secret error = nil, want error")
	}
}

func TestGenerateToken_DefaultTTL(t *testing.T) {
	tok, err := GenerateToken("secret", "", "u-1", "user", -time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	// a non-positive ttl falls back to the default, so the token is valid
	if _, err := ParseToken("secret", tok); err != nil {
		t.Errorf("ParseToken error = %v, want nil", err)
	}
}

func TestGenerateToken_EmptyUser(t *testing.T) {
	if _, err := GenerateToken("secret", "", "", "user", time.Hour); err == nil {
		t.Error("GenerateToken with empty user error = nil, want error")
	}
}
