package session

import (
	"strings"
	"testing"

	"github.com/health-tracker-project/health-client/schema"
)

func TestSynthesizeAccountShape(t *testing.T) {
	account := SynthesizeAccount("小明Ming", "0123456789abcdef")

	if !strings.HasSuffix(account.Email, EmailSuffix) {
		t.Errorf("email %q missing suffix %q", account.Email, EmailSuffix)
	}
	if !strings.HasPrefix(account.Email, "ming") {
		t.Errorf("email %q should start with the sanitized lowercase nickname", account.Email)
	}
	if !strings.HasPrefix(account.Username, UsernamePrefix+"Ming") {
		t.Errorf("username %q should start with %q plus sanitized nickname", account.Username, UsernamePrefix)
	}
	if account.Password != "wx_89abcdef" {
		t.Errorf("password %q should be wx_ plus the last 8 code characters", account.Password)
	}
	if account.FullName != "小明Ming" {
		t.Errorf("full name should keep the raw nickname, got %q", account.FullName)
	}
	if !account.IsActive {
		t.Error("synthesized accounts are active")
	}
}

func TestSynthesizeAccountEmptyNickname(t *testing.T) {
	account := SynthesizeAccount("", "shortcode")

	if !strings.HasPrefix(account.Username, UsernamePrefix+"user") {
		t.Errorf("username %q should fall back to the user placeholder", account.Username)
	}
	if account.FullName == "" {
		t.Error("full name must not be empty")
	}
	if account.Password != "wx_hortcode" {
		t.Errorf("password %q should use the last 8 characters of the code", account.Password)
	}
}

func TestSynthesizeAccountShortCode(t *testing.T) {
	account := SynthesizeAccount("bob", "abc")
	if account.Password != "wx_abc" {
		t.Errorf("codes shorter than the tail length are used whole, got %q", account.Password)
	}
}

func TestSynthesizeAccountUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		account := SynthesizeAccount("bob", "code")
		if seen[account.Email] {
			t.Fatalf("duplicate email %q", account.Email)
		}
		seen[account.Email] = true
	}
}

func TestSynthesizedAccountPassesValidation(t *testing.T) {
	validator, err := schema.NewUserValidator()
	if err != nil {
		t.Fatalf("NewUserValidator: %v", err)
	}

	for _, nickname := range []string{"", "小明", "Alice", "weird!!chars##"} {
		account := SynthesizeAccount(nickname, "0123456789abcdef")
		if err := validator.ValidateCreate(account); err != nil {
			t.Errorf("nickname %q: synthesized account fails validation: %v", nickname, err)
		}
	}
}
