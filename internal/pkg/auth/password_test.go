package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("S3cret!pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "S3cret!pass" {
		t.Fatal("hash equals the plaintext")
	}

	if !CheckPassword(hash, "S3cret!pass") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
	if CheckPassword("not-a-hash", "S3cret!pass") {
		t.Error("garbage hash accepted")
	}
}
