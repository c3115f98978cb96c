package x3dh

import (
	"olmcore/internal/crypto"
	"olmcore/internal/util/memzero"
)

// Shared is the key material both sides derive from the handshake.
type Shared struct {
	RootKey  [32]byte
	ChainKey [32]byte
}

// Wipe zeroes both keys.
func (s *Shared) Wipe() {
	memzero.Zero32(&s.RootKey)
	memzero.Zero32(&s.ChainKey)
}

// Initiator derives the shared keys for the party creating the session.
//
// The transcript is DH(IA, OTKB) ‖ DH(EA, IB) ‖ DH(EA, OTKB).
func Initiator(
	ourIdentity *crypto.Curve25519SecretKey,
	ourBase *crypto.Curve25519SecretKey,
	peerIdentity crypto.Curve25519PublicKey,
	peerOneTime crypto.Curve25519PublicKey,
) (*Shared, error) {
	dh1, err := ourIdentity.DiffieHellman(peerOneTime) // DH(IA, OTKB)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero32(&dh1)
	dh2, err := ourBase.DiffieHellman(peerIdentity) // DH(EA, IB)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero32(&dh2)
	dh3, err := ourBase.DiffieHellman(peerOneTime) // DH(EA, OTKB)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero32(&dh3)

	return expand(dh1, dh2, dh3), nil
}

// Responder mirrors Initiator for the party receiving the first message.
func Responder(
	ourIdentity *crypto.Curve25519SecretKey,
	ourOneTime *crypto.Curve25519SecretKey,
	peerIdentity crypto.Curve25519PublicKey,
	peerBase crypto.Curve25519PublicKey,
) (*Shared, error) {
	dh1, err := ourOneTime.DiffieHellman(peerIdentity) // DH(OTKB, IA)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero32(&dh1)
	dh2, err := ourIdentity.DiffieHellman(peerBase) // DH(IB, EA)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero32(&dh2)
	dh3, err := ourOneTime.DiffieHellman(peerBase) // DH(OTKB, EA)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero32(&dh3)

	return expand(dh1, dh2, dh3), nil
}

func expand(dh1, dh2, dh3 [32]byte) *Shared {
	transcript := make([]byte, 0, 32*3)
	transcript = append(transcript, dh1[:]...)
	transcript = append(transcript, dh2[:]...)
	transcript = append(transcript, dh3[:]...)

	okm := crypto.Expand(transcript, nil, crypto.InfoRoot, 64)
	memzero.Zero(transcript)

	s := &Shared{}
	copy(s.RootKey[:], okm[:32])
	copy(s.ChainKey[:], okm[32:])
	memzero.Zero(okm)
	return s
}
