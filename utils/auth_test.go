package utils

import (
	"testing"

	"cureliah-server/config"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("S3curePass!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "S3curePass!" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPasswordHash("S3curePass!", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateAndVerifyToken(t *testing.T) {
	config.Load()

	token, err := GenerateToken(42, "doctor")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.Role != "doctor" {
		t.Errorf("role = %q, want doctor", claims.Role)
	}

	if _, err := VerifyToken(token + "tampered"); err == nil {
		t.Error("tampered token accepted")
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"doctor@example.com", "a.b+c@clinic.fr"}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{"", "not-an-email", "@missing.local", "spaces in@mail.com"}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Doctor@Example.COM "); got != "doctor@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
