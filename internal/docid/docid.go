package docid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"sync/atomic"
	"time"
)

// Document IDs follow the classic 12-byte layout: a 4-byte big-endian
// timestamp in Unix seconds, 5 bytes of per-process entropy, and a 3-byte
// counter that starts at a random value. Rendered as 24 lowercase hex
// characters, IDs minted by the same process sort in creation order.

// entropy is drawn once at startup and shared by all IDs of this process.
var entropy [5]byte

// counter holds the 3-byte sequence number. Only the low 24 bits are used.
var counter uint32

func init() {
	if _, err := rand.Read(entropy[:]); err != nil {
		panic("docid: cannot seed entropy: " + err.Error())
	}
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic("docid: cannot seed counter: " + err.Error())
	}
	counter = binary.BigEndian.Uint32(seed[:])
}

// New mints a unique document ID. It is safe for concurrent use.
func New() string {
	return NewWithTime(time.Now())
}

// NewWithTime mints a document ID carrying the given creation time.
func NewWithTime(t time.Time) string {
	var id [12]byte
	binary.BigEndian.PutUint32(id[0:4], uint32(t.Unix()))
	copy(id[4:9], entropy[:])
	seq := atomic.AddUint32(&counter, 1)
	id[9] = byte(seq >> 16)
	id[10] = byte(seq >> 8)
	id[11] = byte(seq)
	return hex.EncodeToString(id[:])
}

// IsValid reports whether s is a well-formed document ID, i.e. exactly 24
// lowercase hex characters.
func IsValid(s string) bool {
	if len(s) != 24 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Timestamp extracts the creation time embedded in an ID. The second
// return value is false if the ID is malformed.
func Timestamp(s string) (time.Time, bool) {
	if !IsValid(s) {
		return time.Time{}, false
	}
	raw, err := hex.DecodeString(s[:8])
	if err != nil {
		return time.Time{}, false
	}
	secs := binary.BigEndian.Uint32(raw)
	return time.Unix(int64(secs), 0).UTC(), true
}
