package common

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"

	"github.com/0xPolygon/cdk-gateway/config/types"
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-iden3-crypto/keccak256"
)

// ErrKeystoreNotConfigured is returned when the keystore path and password are both empty
var ErrKeystoreNotConfigured = errors.New("keystore not configured")

// Uint64ToBytes converts a uint64 to a byte slice
func Uint64ToBytes(num uint64) []byte {
	const uint64ByteSize = 8

	bytes := make([]byte, uint64ByteSize)
	binary.BigEndian.PutUint64(bytes, num)

	return bytes
}

// BatchHash computes the fingerprint of an ordered list of calls.
// Every call contributes its target and the keccak of its calldata, so two
// lists hash equal only if they hold the same calls in the same order.
func BatchHash(to []common.Address, data [][]byte) common.Hash {
	parts := make([][]byte, 0, 1+2*len(to)) //nolint:mnd
	parts = append(parts, Uint64ToBytes(uint64(len(to))))
	for i := range to {
		var payload []byte
		if i < len(data) {
			payload = data[i]
		}
		parts = append(parts, to[i].Bytes(), keccak256.Hash(payload))
	}

	return common.BytesToHash(keccak256.Hash(parts...))
}

// NewKeyFromKeystore creates an instance of a keystore key from a keystore file
func NewKeyFromKeystore(cfg types.KeystoreFileConfig) (*keystore.Key, error) {
	if cfg.Path == "" && cfg.Password == "" {
		return nil, ErrKeystoreNotConfigured
	}
	keystoreEncrypted, err := os.ReadFile(filepath.Clean(cfg.Path))
	if err != nil {
		return nil, err
	}
	log.Infof("decrypting key from: %v", cfg.Path)
	key, err := keystore.DecryptKey(keystoreEncrypted, cfg.Password)
	if err != nil {
		return nil, err
	}

	return key, nil
}
