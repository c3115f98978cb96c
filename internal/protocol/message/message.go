package message

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
)

// Version bytes. The version selects the MAC length; both use AES-256-CBC.
const (
	VersionTruncatedMAC byte = 3
	VersionFullMAC      byte = 4
)

// MacLength returns the MAC length for a version byte.
func MacLength(version byte) (int, error) {
	switch version {
	case VersionTruncatedMAC:
		return crypto.TruncatedMacSize, nil
	case VersionFullMAC:
		return crypto.MacSize, nil
	default:
		return 0, fmt.Errorf("unknown message version %d: %w", version, domain.ErrDecode)
	}
}

// field is a decoded length-delimited or varint field.
type field struct {
	num    protowire.Number
	typ    protowire.Type
	bytes  []byte
	varint uint64
}

// parseFields walks a protobuf-encoded payload, keeping only bytes and varint
// fields. Unknown fields of other wire types are skipped.
func parseFields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("tag: %w", domain.ErrDecode)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("field %d: %w", num, domain.ErrDecode)
			}
			f.bytes, n = v, m
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("field %d: %w", num, domain.ErrDecode)
			}
			f.varint, n = v, m
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("field %d: %w", num, domain.ErrDecode)
			}
			b = b[m:]
			continue
		}
		b = b[n:]
		out = append(out, f)
	}
	return out, nil
}

func keyField(f field) (crypto.Curve25519PublicKey, error) {
	if f.typ != protowire.BytesType {
		return crypto.Curve25519PublicKey{}, fmt.Errorf("field %d: %w", f.num, domain.ErrDecode)
	}
	k, err := crypto.Curve25519PublicKeyFromSlice(f.bytes)
	if err != nil {
		return k, fmt.Errorf("field %d: %w", f.num, domain.ErrDecode)
	}
	return k, nil
}

func indexField(f field) (uint32, error) {
	if f.typ != protowire.VarintType || f.varint > math.MaxUint32 {
		return 0, fmt.Errorf("field %d: %w", f.num, domain.ErrDecode)
	}
	return uint32(f.varint), nil
}

func bytesField(f field) ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, fmt.Errorf("field %d: %w", f.num, domain.ErrDecode)
	}
	return f.bytes, nil
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }
