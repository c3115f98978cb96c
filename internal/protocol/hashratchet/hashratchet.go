package hashratchet

import (
	"olmcore/internal/crypto"
	"olmcore/internal/util/memzero"
)

const (
	// PartLength is the size of one ratchet part.
	PartLength = 32
	// Parts is the number of parts in the ratchet.
	Parts = 4
	// Length is the serialized ratchet size, excluding the counter.
	Length = PartLength * Parts

	counterMask = 0x00FFFFFF
)

// Ratchet is the Megolm four-part hash ratchet. Part i is rehashed every
// 2^(8*(3-i)) steps, so advancing by n steps costs at most a few hundred
// HMACs regardless of n.
type Ratchet struct {
	Data    [Length]byte `cbor:"data"`
	Counter uint32       `cbor:"counter"`
}

// New returns a ratchet seeded from data at counter.
func New(data [Length]byte, counter uint32) *Ratchet {
	return &Ratchet{Data: data, Counter: counter}
}

// Index returns the message index the ratchet currently sits at.
func (r *Ratchet) Index() uint32 { return r.Counter }

// Clone returns an independent copy.
func (r *Ratchet) Clone() *Ratchet {
	c := *r
	return &c
}

// Advance moves the ratchet forward by exactly one step.
func (r *Ratchet) Advance() {
	var mask uint32 = counterMask
	h := 0
	r.Counter++

	// Find the highest part whose counter bits rolled over.
	for h < Parts {
		if r.Counter&mask == 0 {
			break
		}
		h++
		mask >>= 8
	}

	for i := Parts - 1; i >= h; i-- {
		r.rehash(h, i)
	}
}

// AdvanceTo moves the ratchet forward until it reaches target. A target
// below the current counter wraps around through 2^32.
func (r *Ratchet) AdvanceTo(target uint32) {
	for j := 0; j < Parts; j++ {
		shift := uint((Parts - j - 1) * 8)
		var mask uint32 = ^uint32(0) << shift

		steps := ((target >> shift) - (r.Counter >> shift)) & 0xff
		if steps == 0 {
			// Matching byte. If the target is behind the counter this part
			// has to wrap all the way round.
			if target < r.Counter {
				steps = 0x100
			} else {
				continue
			}
		}

		for steps > 1 {
			r.rehash(j, j)
			steps--
		}

		for k := Parts - 1; k >= j; k-- {
			r.rehash(j, k)
		}
		r.Counter = target & mask
	}
}

// MessageCipher derives the cipher for the current index.
func (r *Ratchet) MessageCipher() *crypto.Cipher {
	return crypto.NewCipher(r.Data[:], crypto.InfoMegolmKeys)
}

// Wipe zeroes the ratchet data.
func (r *Ratchet) Wipe() { memzero.Zero(r.Data[:]) }

// rehash replaces part to with HMAC(part from, to).
func (r *Ratchet) rehash(from, to int) {
	key := r.Data[from*PartLength : (from+1)*PartLength]
	sum := crypto.HMACSHA256(key, []byte{byte(to)})
	copy(r.Data[to*PartLength:(to+1)*PartLength], sum)
	memzero.Zero(sum)
}
