package crypto

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
)

// SaveKeyFile writes the key as a JSON byte array, the format produced by
// solana-keygen. Parent directories are created with 0700 permissions.
func SaveKeyFile(path string, key *PrivateKey) error {
	if key == nil {
		return errors.New("crypto: nil private key")
	}
	if path == "" {
		return errors.New("crypto: empty key file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw := key.Bytes()
	ints := make([]int, len(raw))
	for i, b := range raw {
		ints[i] = int(b)
	}
	encoded, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadKeyFile reads a solana-keygen compatible key file.
func LoadKeyFile(path string) (*PrivateKey, error) {
	if path == "" {
		return nil, errors.New("crypto: empty key file path")
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}
