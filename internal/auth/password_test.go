// ABOUTME: Unit tests for bcrypt password helpers
// ABOUTME: Covers round trips, mismatches and the empty-hash path

package auth

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "123" {
		t.Fatal("HashPassword() returned the plaintext")
	}

	if err := CheckPassword(hash, "123"); err != nil {
		t.Errorf("CheckPassword() error = %v, want nil", err)
	}
	if err := CheckPassword(hash, "456"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("CheckPassword() error = %v, want ErrPasswordMismatch", err)
	}
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	if err := CheckPassword("", "anything"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("CheckPassword() error = %v, want ErrPasswordMismatch", err)
	}
}
