package schema

import (
	"strings"
	"testing"

	"github.com/health-tracker-project/health-client/types"
)

func newValidator(t *testing.T) *UserValidator {
	t.Helper()
	v, err := NewUserValidator()
	if err != nil {
		t.Fatalf("NewUserValidator: %v", err)
	}
	return v
}

func validCreate() types.UserCreate {
	return types.UserCreate{
		Email:    "user_abc123@miniprogram.example",
		Username: "user_abc123",
		FullName: "Abc",
		Password: "wx_12345678",
		IsActive: true,
	}
}

func TestValidateCreateAccepts(t *testing.T) {
	v := newValidator(t)
	if err := v.ValidateCreate(validCreate()); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
}

func TestValidateCreateRejects(t *testing.T) {
	v := newValidator(t)

	cases := []struct {
		name   string
		mutate func(*types.UserCreate)
	}{
		{"bad email", func(u *types.UserCreate) { u.Email = "not-an-email" }},
		{"short username", func(u *types.UserCreate) { u.Username = "ab" }},
		{"username with spaces", func(u *types.UserCreate) { u.Username = "user abc" }},
		{"long username", func(u *types.UserCreate) { u.Username = strings.Repeat("a", 51) }},
		{"short password", func(u *types.UserCreate) { u.Password = "wx_1" }},
		{"long full name", func(u *types.UserCreate) { u.FullName = strings.Repeat("名", 101) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := validCreate()
			tc.mutate(&payload)
			if err := v.ValidateCreate(payload); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}

func TestValidateCreateMissingRequired(t *testing.T) {
	v := newValidator(t)
	if err := v.ValidateCreate(map[string]interface{}{"email": "a@b.co"}); err == nil {
		t.Error("payload missing username and password must fail")
	}
}

func TestValidateUpdateAcceptsPartial(t *testing.T) {
	v := newValidator(t)

	name := "Zhang Wei"
	if err := v.ValidateUpdate(types.UserUpdate{FullName: &name}); err != nil {
		t.Errorf("single-field update rejected: %v", err)
	}
	if err := v.ValidateUpdate(types.UserUpdate{}); err != nil {
		t.Errorf("empty update rejected: %v", err)
	}
}

func TestValidateUpdateRejectsBadFields(t *testing.T) {
	v := newValidator(t)

	badEmail := "nope"
	if err := v.ValidateUpdate(types.UserUpdate{Email: &badEmail}); err == nil {
		t.Error("malformed email must fail")
	}
	shortUsername := "ab"
	if err := v.ValidateUpdate(types.UserUpdate{Username: &shortUsername}); err == nil {
		t.Error("short username must fail")
	}
}

func TestValidationErrorNamesField(t *testing.T) {
	v := newValidator(t)

	payload := validCreate()
	payload.Username = "a"
	err := v.ValidateCreate(payload)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "username") {
		t.Errorf("error should name the offending field: %v", err)
	}
}
