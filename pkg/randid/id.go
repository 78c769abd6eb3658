// Package randid generates short random identifiers.
package randid

import (
	"crypto/rand"
	"encoding/base32"
	"math/big"
	"time"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// crockford orders digits before letters so encoded timestamps sort
// lexicographically.
const crockford = "0123456789abcdefghjkmnpqrstvwxyz"

var sortableEncoding = base32.NewEncoding(crockford).WithPadding(base32.NoPadding)

// Generate returns a random string of n lowercase alphanumeric characters.
func Generate(n int) string {
	if n <= 0 {
		return ""
	}

	limit := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic("randid: crypto/rand unavailable: " + err.Error())
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b)
}

// Sortable returns an id that orders by t to the second: seven characters of
// encoded Unix seconds followed by n random characters. Valid until 2106.
func Sortable(t time.Time, n int) string {
	sec := uint32(t.Unix())
	buf := []byte{byte(sec >> 24), byte(sec >> 16), byte(sec >> 8), byte(sec)}
	return sortableEncoding.EncodeToString(buf) + Generate(n)
}
