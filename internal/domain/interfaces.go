package domain

// AccountStore persists the pickled local account and its public profile.
type AccountStore interface {
	SaveAccount(pickle string, profile Profile) error
	LoadAccount() (pickle string, profile Profile, ok bool, err error)
}

// SessionStore keeps pickled Olm sessions per peer.
type SessionStore interface {
	SaveSession(s StoredSession) error
	// LoadSessions returns the sessions with peer, most recently used first.
	LoadSessions(peer string) ([]StoredSession, error)
}

// GroupSessionStore keeps pickled Megolm sessions by session id.
type GroupSessionStore interface {
	SaveGroupSession(g StoredGroupSession) error
	LoadGroupSession(id string, outbound bool) (StoredGroupSession, bool, error)
}
