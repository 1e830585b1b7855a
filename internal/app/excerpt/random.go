package excerpt

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// Source is the random source used for every draw.
// Intn returns a uniform integer in [0, n).
type Source interface {
	Intn(n int) int
}

// NewSource returns a pseudorandom source seeded from crypto/rand,
// falling back to the clock if the system source is unavailable.
func NewSource() Source {
	var seed int64
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(buf[:]))
	} else {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
