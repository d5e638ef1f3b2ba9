package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/0xPolygon/cdk-gateway/common"
	cfgTypes "github.com/0xPolygon/cdk-gateway/config/types"
	"github.com/ethereum/go-ethereum/accounts"
	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	signatureLength = 65
	recoveryIDIndex = 64
	// legacyRecoveryOffset is added to the recovery id of the signatures handed to the backend
	legacyRecoveryOffset = 27
)

// Provider is the signing capability of a wallet. Key material never leaves it.
type Provider interface {
	Address() ethCommon.Address
	PersonalSign(ctx context.Context, message []byte) ([]byte, error)
	SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error)
}

var _ Provider = (*KeyProvider)(nil)

// KeyProvider signs with a private key held in memory
type KeyProvider struct {
	key     *ecdsa.PrivateKey
	address ethCommon.Address
}

// NewKeyProvider returns a provider signing with key
func NewKeyProvider(key *ecdsa.PrivateKey) *KeyProvider {
	return &KeyProvider{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// NewKeyProviderFromKeystore decrypts the keystore file described by cfg
func NewKeyProviderFromKeystore(cfg cfgTypes.KeystoreFileConfig) (*KeyProvider, error) {
	key, err := common.NewKeyFromKeystore(cfg)
	if err != nil {
		return nil, fmt.Errorf("error loading wallet key: %w", err)
	}

	return NewKeyProvider(key.PrivateKey), nil
}

// Address returns the address of the key
func (p *KeyProvider) Address() ethCommon.Address {
	return p.address
}

// PersonalSign signs message with the EIP-191 personal message prefix
func (p *KeyProvider) PersonalSign(_ context.Context, message []byte) ([]byte, error) {
	return p.sign(accounts.TextHash(message))
}

// SignTypedData signs the EIP-712 hash of typedData
func (p *KeyProvider) SignTypedData(_ context.Context, typedData apitypes.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("error hashing typed data: %w", err)
	}

	return p.sign(hash)
}

func (p *KeyProvider) sign(hash []byte) ([]byte, error) {
	sig, err := crypto.Sign(hash, p.key)
	if err != nil {
		return nil, err
	}
	sig[recoveryIDIndex] += legacyRecoveryOffset

	return sig, nil
}

// RecoverPersonalSigner returns the address that produced sig over message with PersonalSign
func RecoverPersonalSigner(message, sig []byte) (ethCommon.Address, error) {
	return recoverSigner(accounts.TextHash(message), sig)
}

// RecoverTypedDataSigner returns the address that produced sig over typedData with SignTypedData
func RecoverTypedDataSigner(typedData apitypes.TypedData, sig []byte) (ethCommon.Address, error) {
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return ethCommon.Address{}, err
	}

	return recoverSigner(hash, sig)
}

func recoverSigner(hash, sig []byte) (ethCommon.Address, error) {
	if len(sig) != signatureLength {
		return ethCommon.Address{}, errors.New("invalid signature length")
	}
	normalized := make([]byte, signatureLength)
	copy(normalized, sig)
	if normalized[recoveryIDIndex] >= legacyRecoveryOffset {
		normalized[recoveryIDIndex] -= legacyRecoveryOffset
	}
	pub, err := crypto.SigToPub(hash, normalized)
	if err != nil {
		return ethCommon.Address{}, err
	}

	return crypto.PubkeyToAddress(*pub), nil
}
