package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", 60)

	token, _, err := manager.GenerateToken("email-gateway")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Service != "email-gateway" {
		t.Errorf("service = %q", claims.Service)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)

	token, _, err := issuer.GenerateToken("email-gateway")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Error("token signed with a different secret must not verify")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", 60)
	if _, err := manager.ParseToken("not-a-jwt"); err == nil {
		t.Error("garbage must not parse")
	}
}
