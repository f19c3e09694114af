package crypto

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/gagliardetto/solana-go"
)

// AddressPrefix is the human-readable part used for bech32 encoded addresses.
type AddressPrefix string

const TestudoPrefix AddressPrefix = "tdo"

// AddressLength is the size in bytes of every identity and record reference.
const AddressLength = 32

// Address represents a 32-byte identity. Wallets, derived record addresses,
// value accounts and the program itself all share the same address space.
type Address [AddressLength]byte

// ZeroAddress is the all-zero identity. It never corresponds to a wallet.
var ZeroAddress Address

// AddressFromBytes copies a 32-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var addr Address
	if len(b) != AddressLength {
		return addr, fmt.Errorf("address must be %d bytes long, got %d", AddressLength, len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

// AddressFromPublicKey converts a solana-go public key.
func AddressFromPublicKey(pk solana.PublicKey) Address {
	return Address(pk)
}

// PublicKey returns the address as a solana-go public key.
func (a Address) PublicKey() solana.PublicKey {
	return solana.PublicKey(a)
}

func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) Equal(other Address) bool {
	return bytes.Equal(a[:], other[:])
}

// String returns the bech32 form of the address.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(TestudoPrefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Base58 returns the base58 form used by Solana tooling.
func (a Address) Base58() string {
	return a.PublicKey().String()
}

// MarshalText lets addresses appear as bech32 strings in JSON and TOML.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress accepts either a bech32 address with the tdo prefix or a
// base58 encoded public key.
func ParseAddress(s string) (Address, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Address{}, fmt.Errorf("address must not be empty")
	}
	if strings.HasPrefix(strings.ToLower(trimmed), string(TestudoPrefix)+"1") {
		return decodeBech32(trimmed)
	}
	pk, err := solana.PublicKeyFromBase58(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", trimmed, err)
	}
	return AddressFromPublicKey(pk), nil
}

func decodeBech32(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	if prefix != string(TestudoPrefix) {
		return Address{}, fmt.Errorf("unexpected address prefix %q", prefix)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("error converting bits: %w", err)
	}
	return AddressFromBytes(conv)
}

// MustParseAddress panics when s is not a valid address. Intended for
// constants and tests.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// --- Key Management ---

type PrivateKey struct {
	key solana.PrivateKey
}

func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes wraps a 64-byte ed25519 private key.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 64 {
		return nil, fmt.Errorf("crypto: private key must be 64 bytes, got %d", len(b))
	}
	return &PrivateKey{key: solana.PrivateKey(append([]byte(nil), b...))}, nil
}

func (k *PrivateKey) Bytes() []byte {
	return append([]byte(nil), k.key...)
}

func (k *PrivateKey) Address() Address {
	return AddressFromPublicKey(k.key.PublicKey())
}

// Sign produces an ed25519 signature over msg.
func (k *PrivateKey) Sign(msg []byte) ([64]byte, error) {
	sig, err := k.key.Sign(msg)
	if err != nil {
		return [64]byte{}, err
	}
	return [64]byte(sig), nil
}

// Verify reports whether sig is a valid signature of msg by addr.
func Verify(addr Address, msg []byte, sig [64]byte) bool {
	return solana.Signature(sig).Verify(addr.PublicKey(), msg)
}
