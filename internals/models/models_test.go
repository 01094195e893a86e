package models_test

import (
	"testing"
	"time"

	"tasklist/internals/models"
)

func TestNormalizePriority(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Low", models.PriorityLow},
		{"low", models.PriorityLow},
		{"HIGH", models.PriorityHigh},
		{" Medium ", models.PriorityMedium},
		{"", models.PriorityMedium},
		{"urgent", models.PriorityMedium},
		{"nonsense", models.PriorityMedium},
	}
	for _, c := range cases {
		if got := models.NormalizePriority(c.in); got != c.want {
			t.Errorf("NormalizePriority(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseDeadline_Valid(t *testing.T) {
	d := models.ParseDeadline("2025-03-01")
	if d == nil {
		t.Fatal("ParseDeadline returned nil for a valid date")
	}
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("got %v, want %v", d, want)
	}
}

func TestParseDeadline_Lenient(t *testing.T) {
	for _, in := range []string{"", "  ", "not-a-date", "2025-13-01", "2025-02-30", "01/03/2025", "2025-3-1"} {
		if d := models.ParseDeadline(in); d != nil {
			t.Errorf("ParseDeadline(%q) = %v, want nil", in, d)
		}
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := models.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("digest equals plaintext")
	}
	u := &models.User{Id: 1, Username: "alice", PasswordHash: hash}
	if !u.CheckPassword("secret1") {
		t.Error("correct password rejected")
	}
	if u.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}
	if u.CheckPassword("") {
		t.Error("empty password accepted")
	}
}
