// Package recordid generates the 24 character hexadecimal keys used as
// primary keys for every stored record.
package recordid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// Length is the size of an encoded record ID.
const Length = 24

// New returns a new ID: 4 bytes of big-endian unix seconds followed by 8
// random bytes, hex encoded.
func New() string {
	return NewAt(time.Now())
}

// NewAt is New with an explicit timestamp.
func NewAt(t time.Time) string {
	var raw [12]byte
	binary.BigEndian.PutUint32(raw[:4], uint32(t.Unix()))
	if _, err := rand.Read(raw[4:]); err != nil {
		panic(fmt.Sprintf("recordid: read random: %v", err))
	}
	return hex.EncodeToString(raw[:])
}

// Valid reports whether s has the shape of a record ID. Upper case hex digits
// are accepted.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Time extracts the creation timestamp embedded in a valid ID.
func Time(id string) (time.Time, error) {
	if !Valid(id) {
		return time.Time{}, fmt.Errorf("recordid: invalid id %q", id)
	}
	raw, err := hex.DecodeString(id[:8])
	if err != nil {
		return time.Time{}, fmt.Errorf("recordid: decode: %w", err)
	}
	return time.Unix(int64(binary.BigEndian.Uint32(raw)), 0).UTC(), nil
}
