package common

import (
	"os"
	"path"
	"testing"

	"github.com/0xPolygon/cdk-gateway/config/types"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestUint64ToBytes(t *testing.T) {
	t.Parallel()

	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, Uint64ToBytes(0))
	require.Equal(t, []byte{0, 0, 0, 1, 0, 0, 0, 0}, Uint64ToBytes(1<<32))
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, Uint64ToBytes(^uint64(0)))
}

func TestBatchHash(t *testing.T) {
	t.Parallel()

	a := common.HexToAddress("0xA")
	b := common.HexToAddress("0xB")

	tests := []struct {
		name  string
		left  func() common.Hash
		right func() common.Hash
		equal bool
	}{
		{
			name:  "same calls",
			left:  func() common.Hash { return BatchHash([]common.Address{a, b}, [][]byte{{0x01}, {0x02}}) },
			right: func() common.Hash { return BatchHash([]common.Address{a, b}, [][]byte{{0x01}, {0x02}}) },
			equal: true,
		},
		{
			name:  "order matters",
			left:  func() common.Hash { return BatchHash([]common.Address{a, b}, [][]byte{{0x01}, {0x02}}) },
			right: func() common.Hash { return BatchHash([]common.Address{b, a}, [][]byte{{0x02}, {0x01}}) },
		},
		{
			name:  "appended call",
			left:  func() common.Hash { return BatchHash([]common.Address{a}, [][]byte{{0x01}}) },
			right: func() common.Hash { return BatchHash([]common.Address{a, a}, [][]byte{{0x01}, {0x01}}) },
		},
		{
			name:  "data differs",
			left:  func() common.Hash { return BatchHash([]common.Address{a}, [][]byte{{0x01}}) },
			right: func() common.Hash { return BatchHash([]common.Address{a}, [][]byte{{0x01, 0x00}}) },
		},
		{
			name:  "empty",
			left:  func() common.Hash { return BatchHash(nil, nil) },
			right: func() common.Hash { return BatchHash([]common.Address{}, [][]byte{}) },
			equal: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.equal {
				require.Equal(t, tt.left(), tt.right())
			} else {
				require.NotEqual(t, tt.left(), tt.right())
			}
		})
	}
}

func TestNewKeyFromKeystore(t *testing.T) {
	_, err := NewKeyFromKeystore(types.KeystoreFileConfig{})
	require.ErrorIs(t, err, ErrKeystoreNotConfigured)

	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	key := &keystore.Key{
		Address:    crypto.PubkeyToAddress(pk.PublicKey),
		PrivateKey: pk,
	}
	encrypted, err := keystore.EncryptKey(key, "secret", keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)

	keyPath := path.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(keyPath, encrypted, 0o600))

	loaded, err := NewKeyFromKeystore(types.KeystoreFileConfig{Path: keyPath, Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, key.Address, loaded.Address)

	_, err = NewKeyFromKeystore(types.KeystoreFileConfig{Path: keyPath, Password: "wrong"})
	require.ErrorIs(t, err, keystore.ErrDecrypt)
}
