package megolm

import (
	"fmt"

	"olmcore/internal/domain"
	"olmcore/internal/protocol/message"
)

// SessionConfig selects the group message format: version 1 truncates the
// MAC to 8 bytes, version 2 keeps all 32.
type SessionConfig struct {
	version uint8
}

// SessionConfigV1 is compatible with libolm.
func SessionConfigV1() SessionConfig { return SessionConfig{version: 1} }

// SessionConfigV2 uses full MACs.
func SessionConfigV2() SessionConfig { return SessionConfig{version: 2} }

// DefaultSessionConfig returns SessionConfigV1.
func DefaultSessionConfig() SessionConfig { return SessionConfigV1() }

// Version returns 1 or 2.
func (c SessionConfig) Version() uint8 { return c.version }

func (c SessionConfig) orDefault() SessionConfig {
	if c.version == 0 {
		return DefaultSessionConfig()
	}
	return c
}

func (c SessionConfig) messageVersion() byte {
	if c.version == 2 {
		return message.VersionFullMAC
	}
	return message.VersionTruncatedMAC
}

func (c SessionConfig) macLength() int {
	n, _ := message.MacLength(c.messageVersion())
	return n
}

func configFromVersion(v uint8) (SessionConfig, error) {
	switch v {
	case 1, 2:
		return SessionConfig{version: v}, nil
	default:
		return SessionConfig{}, fmt.Errorf("session config version %d: %w", v, domain.ErrCorruptPickle)
	}
}
