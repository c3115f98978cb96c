package domain

// Fingerprint is a short human-comparable digest of an identity key.
type Fingerprint string

// String returns the fingerprint in its hex form.
func (f Fingerprint) String() string { return string(f) }

// Profile is the public, unencrypted summary of the local account. It lets
// commands show keys without asking for the passphrase.
type Profile struct {
	IdentityKey string      `json:"identity_key"`
	SigningKey  string      `json:"signing_key"`
	Fingerprint Fingerprint `json:"fingerprint"`
	CreatedUTC  int64       `json:"created_utc"`
}

// KeyBundle is what a device uploads so that others can start sessions
// with it. Signature covers the JSON encoding of the bundle with the
// signature left empty.
type KeyBundle struct {
	IdentityKey string            `json:"identity_key"`
	SigningKey  string            `json:"signing_key"`
	OneTimeKeys map[string]string `json:"one_time_keys"`
	FallbackKey map[string]string `json:"fallback_key,omitempty"`
	Signature   string            `json:"signature,omitempty"`
}

// StoredSession is a pickled Olm session with a peer device, identified by
// the peer's Curve25519 identity key.
type StoredSession struct {
	ID          string `json:"id"`
	Peer        string `json:"peer"`
	Pickle      string `json:"pickle"`
	CreatedUTC  int64  `json:"created_utc"`
	LastUsedUTC int64  `json:"last_used_utc"`
}

// StoredGroupSession is a pickled Megolm session. Outbound sessions are the
// ones this device sends with; inbound ones were received from others.
type StoredGroupSession struct {
	ID         string `json:"id"`
	Outbound   bool   `json:"outbound"`
	Pickle     string `json:"pickle"`
	CreatedUTC int64  `json:"created_utc"`
}
