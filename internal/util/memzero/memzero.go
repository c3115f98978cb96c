package memzero

import "github.com/awnumar/memguard"

// Zero overwrites b with zeros.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
}

// Zero32 wipes a fixed-size key array in place.
func Zero32(k *[32]byte) { Zero(k[:]) }
