package service

import "testing"

func TestAdminTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateAdminToken("ops@example.com")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	subject, err := ParseAdminToken(token)
	if err != nil {
		t.Fatalf("ParseAdminToken: %v", err)
	}
	if subject != "ops@example.com" {
		t.Fatalf("subject = %q; want ops@example.com", subject)
	}
}

func TestParseAdminTokenRejectsGarbage(t *testing.T) {
	InitJWT("test-secret")

	if _, err := ParseAdminToken("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestParseAdminTokenRejectsWrongSecret(t *testing.T) {
	InitJWT("secret-a")
	token, err := GenerateAdminToken("ops@example.com")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	InitJWT("secret-b")
	if _, err := ParseAdminToken(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}
