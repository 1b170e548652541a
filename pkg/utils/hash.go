package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// SubscriberHash returns the identifier Mailchimp uses for a list member:
// the hex MD5 of the lowercased email address. It is also what we log in
// place of the raw address.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}
