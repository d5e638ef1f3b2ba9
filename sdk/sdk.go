package sdk

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/0xPolygon/cdk-gateway/account"
	"github.com/0xPolygon/cdk-gateway/api"
	cdkcommon "github.com/0xPolygon/cdk-gateway/common"
	"github.com/0xPolygon/cdk-gateway/contracts"
	"github.com/0xPolygon/cdk-gateway/gateway"
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/network"
	"github.com/0xPolygon/cdk-gateway/project"
	"github.com/0xPolygon/cdk-gateway/session"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/0xPolygon/cdk-gateway/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is the gateway backend the Sdk talks to. api.Client implements it.
type Backend interface {
	account.Backend
	session.Backend
	gateway.BatchBackend
	gateway.ReadBackend
}

type scopeSetter interface {
	SetScope(scope api.ScopeProvider)
}

// ChainClient reads contracts and sends transactions on one network
type ChainClient interface {
	bind.ContractCaller
	wallet.EthClienter
}

// ChainDialer opens the chain client of a network
type ChainDialer func(ctx context.Context, n network.NetworkConfig) (ChainClient, error)

// Option customizes New
type Option func(*Sdk)

// WithLogger sets the root logger of every service
func WithLogger(logger *log.Logger) Option {
	return func(s *Sdk) {
		s.logger = logger
	}
}

// WithSessionStorage keeps sessions in storage instead of the configured one
func WithSessionStorage(storage session.Storage) Option {
	return func(s *Sdk) {
		s.storage = storage
	}
}

// WithChainDialer replaces the ethclient dialer used for on-chain reads
func WithChainDialer(dialer ChainDialer) Option {
	return func(s *Sdk) {
		s.dial = dialer
	}
}

func dialEthClient(ctx context.Context, n network.NetworkConfig) (ChainClient, error) {
	if n.URLRPC == "" {
		return nil, fmt.Errorf("network %s has no rpc url", n.Name)
	}
	client, err := ethclient.DialContext(ctx, n.URLRPC)
	if err != nil {
		return nil, fmt.Errorf("error dialing %s: %w", n.URLRPC, err)
	}

	return client, nil
}

// Sdk owns the state of one gateway client: the connected wallet, the
// selected network and project, the account, the session and the batch
// being built. Instances share nothing.
type Sdk struct {
	logger  *log.Logger
	storage session.Storage
	dial    ChainDialer

	networks *network.Service
	wallet   *wallet.Service
	projects *project.Service
	accounts *account.Service
	sessions *session.Service
	builder  *gateway.Builder
	tracker  *gateway.Tracker

	chainMu sync.Mutex
	chains  map[string]ChainClient
	closers []func() error
}

// New builds an Sdk connected to provider, which may be nil, and backend.
// When backend accepts a request scope it is pointed at the new instance.
func New(cfg Config, provider wallet.Provider, backend Backend, opts ...Option) (*Sdk, error) {
	s := &Sdk{
		logger: log.GetDefaultLogger(),
		dial:   dialEthClient,
		chains: map[string]ChainClient{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.storage == nil && cfg.SessionDBPath != "" {
		storage, err := session.NewSQLStorage(s.logger.WithFields("module", cdkcommon.SESSION_STORE), cfg.SessionDBPath)
		if err != nil {
			return nil, fmt.Errorf("error opening session storage: %w", err)
		}
		s.storage = storage
		s.closers = append(s.closers, storage.Close)
	}

	networks, err := network.NewService(s.logger.WithFields("module", "network"), cfg.Network)
	if err != nil {
		s.close()
		return nil, err
	}
	s.networks = networks
	s.wallet = wallet.NewService(s.logger.WithFields("module", "wallet"), provider)
	var initial *types.Project
	if cfg.Project.Key != "" {
		initial = &cfg.Project
	}
	s.projects = project.NewService(s.logger.WithFields("module", "project"), initial)

	s.accounts = account.NewService(
		s.logger.WithFields("module", cdkcommon.ACCOUNT),
		backend,
		registryDeriver{sdk: s},
		s.wallet.AddressSubject(),
		s.networks.ChainIDSubject(),
	)
	s.sessions = session.NewService(
		s.logger.WithFields("module", cdkcommon.SESSION),
		backend,
		s.wallet,
		s.accounts,
		s.storage,
		s.wallet.AddressSubject(),
	)
	gatewayLogger := s.logger.WithFields("module", cdkcommon.GATEWAY)
	s.builder = gateway.NewBuilder(gatewayLogger, backend, s, s.wallet)
	s.tracker = gateway.NewTracker(gatewayLogger, backend, cfg.PollInterval.Duration)

	if scoped, ok := backend.(scopeSetter); ok {
		scoped.SetScope(s)
	}
	s.logger.Infof("sdk ready: network %q, wallet %s", cfg.Network.Name, s.wallet.Address().Hex())

	return s, nil
}

// Destroy detaches every service and closes the resources opened by New
func (s *Sdk) Destroy() {
	s.sessions.Destroy()
	s.accounts.Destroy()

	s.chainMu.Lock()
	for name, c := range s.chains {
		if closer, ok := c.(interface{ Close() }); ok {
			closer.Close()
		}
		delete(s.chains, name)
	}
	s.chainMu.Unlock()

	s.close()
}

func (s *Sdk) close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.logger.Warnf("error closing sdk resource: %v", err)
		}
	}
	s.closers = nil
}

// Scope is the context of the next backend request
func (s *Sdk) Scope() api.Scope {
	return api.Scope{
		ChainID:         s.networks.ChainID(),
		AuthToken:       s.sessions.Token(),
		ProjectKey:      s.projects.Key(),
		ProjectMetadata: s.projects.Metadata(),
	}
}

// Account returns the current account
func (s *Sdk) Account() *types.Account {
	return s.accounts.Account()
}

// AccountMember returns the caller's membership in the current contract account
func (s *Sdk) AccountMember() *types.AccountMember {
	return s.accounts.Member()
}

// Session returns the current session
func (s *Sdk) Session() *types.Session {
	return s.sessions.Session()
}

// WalletAddress returns the connected wallet address
func (s *Sdk) WalletAddress() common.Address {
	return s.wallet.Address()
}

// CurrentProject returns the selected project
func (s *Sdk) CurrentProject() *types.Project {
	return s.projects.Current()
}

// Networks returns the supported networks
func (s *Sdk) Networks() []types.Network {
	return s.networks.Supported()
}

// GatewayBatch returns a snapshot of the batch being built
func (s *Sdk) GatewayBatch() types.GatewayBatch {
	return s.builder.Batch()
}

// GatewayBatchState returns the state of the batch being built
func (s *Sdk) GatewayBatchState() gateway.State {
	return s.builder.State()
}

// SwitchWallet connects provider, nil disconnects the wallet
func (s *Sdk) SwitchWallet(provider wallet.Provider) {
	s.wallet.SwitchProvider(provider)
}

// SwitchNetwork selects the network called name
func (s *Sdk) SwitchNetwork(name string) error {
	return s.networks.Switch(name)
}

// SwitchCurrentProject selects project, nil unselects it
func (s *Sdk) SwitchCurrentProject(p *types.Project) {
	s.projects.Switch(p)
}

// NetworkChainID returns the chain id of the network called name, the
// current one when name is empty
func (s *Sdk) NetworkChainID(name string) (uint64, error) {
	chainID, err := s.networks.ChainIDOf(name)
	if err != nil {
		return 0, err
	}
	if chainID == 0 {
		return 0, types.ErrUnknownNetwork
	}

	return chainID, nil
}

func (s *Sdk) currentNetwork() (network.NetworkConfig, error) {
	n, ok := s.networks.Current()
	if !ok {
		return network.NetworkConfig{}, types.ErrUnknownNetwork
	}

	return n, nil
}

func (s *Sdk) chainClient(ctx context.Context, n network.NetworkConfig) (ChainClient, error) {
	s.chainMu.Lock()
	defer s.chainMu.Unlock()

	if c, ok := s.chains[n.Name]; ok {
		return c, nil
	}
	c, err := s.dial(ctx, n)
	if err != nil {
		return nil, err
	}
	s.chains[n.Name] = c

	return c, nil
}

// lazyCaller dials the chain client of a network on the first read
type lazyCaller struct {
	sdk     *Sdk
	network network.NetworkConfig
}

func (c lazyCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	client, err := c.sdk.chainClient(ctx, c.network)
	if err != nil {
		return nil, err
	}

	return client.CodeAt(ctx, contract, blockNumber)
}

func (c lazyCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	client, err := c.sdk.chainClient(ctx, c.network)
	if err != nil {
		return nil, err
	}

	return client.CallContract(ctx, call, blockNumber)
}

// GatewayContract returns the gateway contract of the current network
func (s *Sdk) GatewayContract() (gateway.Contract, error) {
	n, err := s.currentNetwork()
	if err != nil {
		return nil, err
	}
	if n.GatewayAddr == (common.Address{}) {
		return nil, fmt.Errorf("%w: no gateway deployed on %s", types.ErrUnsupportedNetwork, n.Name)
	}

	return contracts.NewGateway(n.GatewayAddr, n.ChainID, lazyCaller{sdk: s, network: n}), nil
}

func (s *Sdk) accountRegistry() (*contracts.AccountRegistry, error) {
	n, err := s.currentNetwork()
	if err != nil {
		return nil, err
	}
	if n.AccountRegistryAddr == (common.Address{}) {
		return nil, fmt.Errorf("%w: no account registry deployed on %s", types.ErrUnsupportedNetwork, n.Name)
	}

	return contracts.NewAccountRegistry(n.AccountRegistryAddr, n.AccountByteCodeHash), nil
}

// registryDeriver derives contract accounts with the registry of the current network
type registryDeriver struct {
	sdk *Sdk
}

func (d registryDeriver) ComputeAccountCreate2Address(owner common.Address) (common.Address, bool) {
	registry, err := d.sdk.accountRegistry()
	if err != nil {
		return common.Address{}, false
	}

	return registry.ComputeAccountCreate2Address(owner)
}
