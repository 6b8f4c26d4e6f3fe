package session

import (
	"strings"

	"github.com/google/uuid"

	"github.com/health-tracker-project/health-client/types"
)

// Account synthesis constants.
const (
	// EmailSuffix is the fixed domain appended to generated pseudo-emails.
	EmailSuffix = "@miniprogram.example"
	// UsernamePrefix marks accounts created by this client.
	UsernamePrefix = "user_"
	// passwordPrefix plus the trailing characters of the login code forms
	// the account password. The code is short-lived so this is only a
	// placeholder credential, never shown to the user.
	passwordPrefix = "wx_"
	codeTailLen    = 8
)

// SynthesizeAccount derives a creatable account from a nickname and the
// one-time login code. The nickname is stripped to ASCII letters and
// digits; an empty result falls back to "user". The random suffix keeps
// generated emails and usernames unique across devices.
func SynthesizeAccount(nickname, code string) types.UserCreate {
	clean := sanitizeNickname(nickname)
	if clean == "" {
		clean = "user"
	}
	suffix := randomSuffix()

	fullName := nickname
	if fullName == "" {
		fullName = clean + suffix
	}

	return types.UserCreate{
		Email:    strings.ToLower(clean) + suffix + EmailSuffix,
		Username: UsernamePrefix + clean + suffix,
		FullName: fullName,
		Password: passwordPrefix + tail(code, codeTailLen),
		IsActive: true,
	}
}

// sanitizeNickname keeps only ASCII letters and digits.
func sanitizeNickname(nickname string) string {
	var b strings.Builder
	for _, r := range nickname {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
