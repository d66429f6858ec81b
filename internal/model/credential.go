// internal/model/credential.go
package model

import "regexp"

// Sender providers.
const (
	ProviderSES    = "ses"
	ProviderGoogle = "google"
)

var (
	gmailAddressRe = regexp.MustCompile(`^[^@\s]+@gmail\.com$`)
	appPasswordRe  = regexp.MustCompile(`^[A-Za-z0-9]{16}$`)
)

// SenderCredential is a registered sender identity. The address is unique per
// provider per user. Testing is a transient in-flight flag toggled while a
// probe message is being sent; it is never persisted.
type SenderCredential struct {
	UserID   string `db:"user_id" json:"-"`
	Address  string `db:"address" json:"address"`
	Secret   string `db:"secret" json:"-"`
	Provider string `db:"provider" json:"provider"`
	Testing  bool   `json:"testing"`
}

// ValidProvider reports whether p is a known sender provider.
func ValidProvider(p string) bool {
	return p == ProviderSES || p == ProviderGoogle
}

// ValidGmailAddress reports whether s is a well-formed gmail.com address.
// SES addresses get no local format check; verification is delegated to SES.
func ValidGmailAddress(s string) bool {
	return gmailAddressRe.MatchString(s)
}

// ValidAppPassword reports whether p looks like a Google app password:
// exactly 16 alphanumeric characters.
func ValidAppPassword(p string) bool {
	return appPasswordRe.MatchString(p)
}
