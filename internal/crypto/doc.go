// Package crypto exposes the primitives the Olm and Megolm ratchets are built on.
//
// Contents
//
//   - Curve25519 key generation, clamping and Diffie–Hellman (GenerateCurve25519,
//     Curve25519SecretKey.DiffieHellman)
//   - Ed25519 key pairs built from a seed or from a libolm expanded secret key,
//     signing and verification (GenerateEd25519, Ed25519KeyPair.Sign,
//     Ed25519PublicKey.Verify)
//   - HKDF-SHA-256 expansion helpers (Expand)
//   - The AES-256-CBC + HMAC-SHA-256 message cipher (NewCipher)
//   - Unpadded base64 helpers shared by every wire and pickle format
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Key types are fixed-size arrays so copies never alias. Every type holding
// secret material has a Wipe method; callers should wipe secrets as soon as
// they are no longer needed.
package crypto
