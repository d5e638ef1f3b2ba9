package wallet

import (
	"context"
	"sync"

	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/subject"
	"github.com/0xPolygon/cdk-gateway/types"
	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Service exposes the connected wallet and its address as an observable value
type Service struct {
	logger   *log.Logger
	mu       sync.RWMutex
	provider Provider
	address  *subject.Subject[ethCommon.Address]
}

// NewService returns a service connected to provider, which may be nil
func NewService(logger *log.Logger, provider Provider) *Service {
	s := &Service{
		logger:  logger,
		address: subject.NewUnique(ethCommon.Address{}),
	}
	s.SwitchProvider(provider)

	return s
}

// SwitchProvider replaces the connected wallet. nil disconnects it.
func (s *Service) SwitchProvider(provider Provider) {
	s.mu.Lock()
	s.provider = provider
	s.mu.Unlock()

	var address ethCommon.Address
	if provider != nil {
		address = provider.Address()
		s.logger.Debugf("wallet connected: %s", address.Hex())
	} else {
		s.logger.Debug("wallet disconnected")
	}
	s.address.Set(address)
}

// Provider returns the connected provider or nil
func (s *Service) Provider() Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.provider
}

// Address returns the connected wallet address, zero when disconnected
func (s *Service) Address() ethCommon.Address {
	return s.address.Value()
}

// AddressSubject is the observable wallet address
func (s *Service) AddressSubject() *subject.Subject[ethCommon.Address] {
	return s.address
}

// PersonalSign signs message with the connected wallet
func (s *Service) PersonalSign(ctx context.Context, message []byte) ([]byte, error) {
	p := s.Provider()
	if p == nil {
		return nil, types.ErrWalletRequired
	}

	return p.PersonalSign(ctx, message)
}

// SignTypedData signs typedData with the connected wallet
func (s *Service) SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error) {
	p := s.Provider()
	if p == nil {
		return nil, types.ErrWalletRequired
	}

	return p.SignTypedData(ctx, typedData)
}
