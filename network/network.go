package network

import (
	"fmt"

	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/subject"
	"github.com/0xPolygon/cdk-gateway/types"
)

// Service keeps the registry of supported networks and the current one
type Service struct {
	logger   *log.Logger
	networks []NetworkConfig
	byName   map[string]NetworkConfig
	name     *subject.Subject[string]
	chainID  *subject.Subject[uint64]
}

// NewService builds the registry and selects cfg.Name when set
func NewService(logger *log.Logger, cfg Config) (*Service, error) {
	s := &Service{
		logger:   logger,
		networks: cfg.Networks,
		byName:   make(map[string]NetworkConfig, len(cfg.Networks)),
		name:     subject.NewUnique(""),
		chainID:  subject.NewUnique(uint64(0)),
	}
	for _, n := range cfg.Networks {
		if _, ok := s.byName[n.Name]; ok {
			return nil, fmt.Errorf("duplicated network %s", n.Name)
		}
		if n.ChainID == 0 {
			return nil, fmt.Errorf("network %s: chain id must be set", n.Name)
		}
		s.byName[n.Name] = n
	}

	if cfg.Name != "" {
		if err := s.Switch(cfg.Name); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Supported returns the supported networks in configuration order
func (s *Service) Supported() []types.Network {
	res := make([]types.Network, 0, len(s.networks))
	for _, n := range s.networks {
		res = append(res, types.Network{Name: n.Name, ChainID: n.ChainID})
	}

	return res
}

// ChainID returns the current chain id, 0 when no network is selected
func (s *Service) ChainID() uint64 {
	return s.chainID.Value()
}

// ChainIDSubject is the observable current chain id
func (s *Service) ChainIDSubject() *subject.Subject[uint64] {
	return s.chainID
}

// Current returns the configuration of the selected network
func (s *Service) Current() (NetworkConfig, bool) {
	n, ok := s.byName[s.name.Value()]
	return n, ok
}

// ChainIDOf resolves name to its chain id. An empty name resolves to the current network.
func (s *Service) ChainIDOf(name string) (uint64, error) {
	if name == "" {
		return s.ChainID(), nil
	}
	n, ok := s.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", types.ErrUnsupportedNetwork, name)
	}

	return n.ChainID, nil
}

// Switch selects the network called name. An empty name unselects the current one.
func (s *Service) Switch(name string) error {
	if name == "" {
		s.name.Set("")
		s.chainID.Set(0)
		return nil
	}
	n, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrUnsupportedNetwork, name)
	}

	s.logger.Debugf("switching network to %s (chain id %d)", n.Name, n.ChainID)
	s.name.Set(n.Name)
	s.chainID.Set(n.ChainID)

	return nil
}
