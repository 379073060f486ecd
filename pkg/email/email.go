// Package email derives identity attributes from email addresses.
package email

import "strings"

// LocalPart returns the part of an email address before the '@', or the whole
// string when no '@' is present.
func LocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// DeriveUserID builds a stable user id from an email address: the local part,
// lowercased, with dots replaced by underscores. "Jane.Doe@example.com" becomes
// "jane_doe".
func DeriveUserID(email string) string {
	local := strings.ToLower(LocalPart(strings.TrimSpace(email)))
	return strings.ReplaceAll(local, ".", "_")
}
