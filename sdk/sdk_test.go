package sdk

import (
	"context"
	"errors"
	"math/big"
	"path"
	"sync"
	"testing"

	"github.com/0xPolygon/cdk-gateway/api"
	"github.com/0xPolygon/cdk-gateway/api/apitest"
	"github.com/0xPolygon/cdk-gateway/contracts"
	"github.com/0xPolygon/cdk-gateway/gateway"
	"github.com/0xPolygon/cdk-gateway/network"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/0xPolygon/cdk-gateway/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const chainID = 1337

var (
	gatewayAddr  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	registryAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	byteCodeHash = crypto.Keccak256Hash([]byte("account init code"))
	targetA      = common.HexToAddress("0xA")
	targetB      = common.HexToAddress("0xB")
)

// fakeChain answers gateway nonce reads and records sent transactions
type fakeChain struct {
	mu    sync.Mutex
	nonce *big.Int
	sent  []*ethTypes.Transaction
}

func (c *fakeChain) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (c *fakeChain) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if call.To == nil || *call.To != gatewayAddr {
		return nil, errors.New("unexpected call")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return contracts.GatewayABI.Methods["getAccountNonce"].Outputs.Pack(c.nonce)
}

func (c *fakeChain) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(chainID), nil
}

func (c *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 0, nil
}

func (c *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (c *fakeChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (c *fakeChain) SendTransaction(_ context.Context, tx *ethTypes.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, tx)
	return nil
}

// signOnly is a wallet without a transaction sender
type signOnly struct {
	wallet.Provider
}

type testEnv struct {
	backend *apitest.Backend
	chain   *fakeChain
	owner   *wallet.KeyProvider
	sdk     *Sdk
}

func testConfig() Config {
	return Config{
		Network: network.Config{
			Name: "testnet",
			Networks: []network.NetworkConfig{
				{
					Name:                "testnet",
					ChainID:             chainID,
					GatewayAddr:         gatewayAddr,
					AccountRegistryAddr: registryAddr,
					AccountByteCodeHash: byteCodeHash,
				},
				{Name: "bare", ChainID: 5},
			},
		},
		Project: types.Project{Key: "project-key", Metadata: "project-metadata"},
	}
}

func newKey(t *testing.T) *wallet.KeyProvider {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	return wallet.NewKeyProvider(key)
}

func newTestEnv(t *testing.T, cfg Config, opts ...Option) *testEnv {
	t.Helper()

	env := &testEnv{
		backend: apitest.NewBackend(),
		chain:   &fakeChain{nonce: big.NewInt(0)},
		owner:   newKey(t),
	}
	env.backend.Gateway = contracts.NewGateway(gatewayAddr, chainID, nil)

	opts = append(opts, WithChainDialer(func(context.Context, network.NetworkConfig) (ChainClient, error) {
		return env.chain, nil
	}))
	s, err := New(cfg, env.owner, env.backend.NewClient(t), opts...)
	require.NoError(t, err)
	t.Cleanup(s.Destroy)
	env.sdk = s

	return env
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	s := env.sdk

	require.NoError(t, s.Require(ctx, DefaultRequirements()))
	require.ErrorIs(t, s.Require(ctx, Requirements{ContractAccount: true}), types.ErrContractAccountRequired)

	s.SwitchWallet(nil)
	err := s.Require(ctx, Requirements{Wallet: true, Session: true})
	require.ErrorIs(t, err, types.ErrWalletRequired)
	require.Zero(t, env.backend.Calls("session_createSessionCode"))

	require.NoError(t, s.SwitchNetwork(""))
	require.ErrorIs(t, s.Require(ctx, DefaultRequirements()), types.ErrUnknownNetwork)

	s.SwitchWallet(env.owner)
	require.NoError(t, s.SwitchNetwork("testnet"))
	s.SwitchCurrentProject(nil)
	require.ErrorIs(t, s.Require(ctx, Requirements{CurrentProject: true}), types.ErrProjectRequired)
}

func TestRequireSessionCreatesSessionOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())

	require.NoError(t, env.sdk.Require(ctx, DefaultRequirements().withSession()))
	require.NoError(t, env.sdk.Require(ctx, DefaultRequirements().withSession()))
	require.Equal(t, 1, env.backend.Calls("session_createSession"))
	require.NotNil(t, env.sdk.Session())

	// requests carry the session and the project
	_, err := env.sdk.SyncAccount(ctx)
	require.NoError(t, err)
	header := env.backend.LastHeader()
	require.Equal(t, env.sdk.Session().Token, header.Get(api.HeaderAuthToken))
	require.Equal(t, "1337", header.Get(api.HeaderChainID))
	require.Equal(t, "project-key", header.Get(api.HeaderProjectKey))
	require.Equal(t, "project-metadata", header.Get(api.HeaderProjectMetadata))
}

func TestComputeContractAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())

	first, err := env.sdk.ComputeContractAccount(ctx, false)
	require.NoError(t, err)
	require.Equal(t, types.ContractManaged, first.Type)
	require.Zero(t, env.backend.Calls("session_createSession"))

	second, err := env.sdk.ComputeContractAccount(ctx, true)
	require.NoError(t, err)
	require.Equal(t, first.Address, second.Address)
	require.Equal(t, types.Synced, second.State)
	require.NotNil(t, second.SynchronizedAt)
	require.Equal(t, types.MemberAdded, env.sdk.AccountMember().State)

	expected, ok := contracts.NewAccountRegistry(registryAddr, byteCodeHash).ComputeAccountCreate2Address(env.owner.Address())
	require.True(t, ok)
	require.Equal(t, expected, second.Address)
}

func TestComputeContractAccountWithoutRegistry(t *testing.T) {
	env := newTestEnv(t, testConfig())
	require.NoError(t, env.sdk.SwitchNetwork("bare"))

	_, err := env.sdk.ComputeContractAccount(context.Background(), false)
	require.ErrorIs(t, err, types.ErrUnsupportedNetwork)
}

func TestJoinContractAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	shared := common.HexToAddress("0x5AFE")

	account, err := env.sdk.JoinContractAccount(ctx, shared, true)
	require.NoError(t, err)
	require.Equal(t, shared, account.Address)
	require.Equal(t, types.MemberOwner, env.sdk.AccountMember().Type)

	members, err := env.sdk.GetAccountMembers(ctx, common.Address{}, 0)
	require.NoError(t, err)
	require.Len(t, members.Items, 1)
	require.Equal(t, uint64(1), members.CurrentPage)

	remote, err := env.sdk.GetAccount(ctx, shared)
	require.NoError(t, err)
	require.Equal(t, types.ContractManaged, remote.Type)

	connected, err := env.sdk.GetConnectedAccounts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, connected.Items, 2)
}

func TestGetAccountWithoutWallet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	env.sdk.SwitchWallet(nil)

	_, err := env.sdk.GetAccount(ctx, common.Address{})
	require.ErrorIs(t, err, types.ErrWalletRequired)

	account, err := env.sdk.GetAccount(ctx, targetA)
	require.NoError(t, err)
	require.Equal(t, targetA, account.Address)
}

func TestSubmitGatewayBatchScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	s := env.sdk

	_, err := s.BatchGatewayTransactionRequest(ctx, types.TransactionRequest{To: targetA, Data: []byte{0x01}})
	require.ErrorIs(t, err, types.ErrContractAccountRequired)

	_, err = s.ComputeContractAccount(ctx, true)
	require.NoError(t, err)

	batch, err := s.BatchGatewayTransactionRequest(ctx,
		types.TransactionRequest{To: targetA, Data: []byte{0x01}},
		types.TransactionRequest{To: targetB, Data: []byte{0x02}},
	)
	require.NoError(t, err)
	require.Len(t, batch.Requests, 2)
	require.Equal(t, gateway.Draft, s.GatewayBatchState())

	_, err = s.SubmitGatewayBatch(ctx, "")
	require.ErrorIs(t, err, types.ErrStaleEstimate)

	batch, err = s.EstimateGatewayBatch(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, batch.Estimation)
	require.Equal(t, gateway.Estimated, s.GatewayBatchState())

	submitted, err := s.SubmitGatewayBatch(ctx, "custom-metadata")
	require.NoError(t, err)
	require.Equal(t, types.Queued, submitted.State)
	require.Equal(t, s.Account().Address, submitted.Account)
	require.Equal(t, gateway.Empty, s.GatewayBatchState())
	require.Equal(t, "custom-metadata", env.backend.LastHeader().Get(api.HeaderProjectMetadata))

	got, err := s.GetGatewaySubmittedBatch(ctx, submitted.Hash)
	require.NoError(t, err)
	require.Contains(t, []types.SubmittedBatchState{types.Sent, types.Confirmed, types.Reverted, types.Failed}, got.State)

	final, err := s.WaitGatewaySubmittedBatch(ctx, submitted.Hash)
	require.NoError(t, err)
	require.True(t, final.State.IsFinal())

	page, err := s.GetGatewaySubmittedBatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestEstimateThenAppendIsStale(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	s := env.sdk
	_, err := s.ComputeContractAccount(ctx, true)
	require.NoError(t, err)

	_, err = s.BatchGatewayTransactionRequest(ctx, types.TransactionRequest{To: targetA, Data: []byte{0x01}})
	require.NoError(t, err)
	_, err = s.EstimateGatewayBatch(ctx, nil)
	require.NoError(t, err)
	_, err = s.BatchGatewayTransactionRequest(ctx, types.TransactionRequest{To: targetB, Data: []byte{0x02}})
	require.NoError(t, err)
	require.Equal(t, gateway.Draft, s.GatewayBatchState())

	_, err = s.SubmitGatewayBatch(ctx, "")
	require.ErrorIs(t, err, types.ErrStaleEstimate)
	require.Zero(t, env.backend.Calls("gateway_submitGatewayBatch"))

	_, err = s.EstimateGatewayBatch(ctx, nil)
	require.NoError(t, err)
	_, err = s.SubmitGatewayBatch(ctx, "")
	require.NoError(t, err)

	require.Empty(t, s.ClearGatewayBatch().Requests)
}

func TestEncodeGatewayBatchModes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	s := env.sdk
	_, err := s.ComputeContractAccount(ctx, false)
	require.NoError(t, err)
	_, err = s.BatchGatewayTransactionRequest(ctx, types.TransactionRequest{To: targetA, Data: []byte{0x01}})
	require.NoError(t, err)

	direct, err := s.EncodeGatewayBatch(ctx, false)
	require.NoError(t, err)
	delegated, err := s.EncodeGatewayBatch(ctx, true)
	require.NoError(t, err)

	require.Equal(t, gatewayAddr, direct.To)
	require.Equal(t, gatewayAddr, delegated.To)
	require.NotEqual(t, direct.Data, delegated.Data)
	require.Equal(t, env.owner.Address(), *direct.From)
	require.Nil(t, delegated.From)

	hash, err := s.SendTransaction(ctx, direct)
	require.NoError(t, err)
	require.Len(t, env.chain.sent, 1)
	require.Equal(t, hash, env.chain.sent[0].Hash())
	require.Equal(t, gatewayAddr, *env.chain.sent[0].To())

	s.SwitchWallet(signOnly{Provider: env.owner})
	_, err = s.SendTransaction(ctx, direct)
	require.ErrorIs(t, err, errNoSender)
}

func TestAccountOwnerOperations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	s := env.sdk
	newOwner := common.HexToAddress("0x0E")

	_, err := s.EncodeAddAccountOwner(ctx, newOwner)
	require.ErrorIs(t, err, types.ErrContractAccountRequired)

	account, err := s.ComputeContractAccount(ctx, false)
	require.NoError(t, err)

	add, err := s.EncodeAddAccountOwner(ctx, newOwner)
	require.NoError(t, err)
	require.Equal(t, registryAddr, add.To)
	args, err := contracts.AccountRegistryABI.Methods["addAccountOwner"].Inputs.Unpack(add.Data[4:])
	require.NoError(t, err)
	require.Equal(t, account.Address, args[0])
	require.Equal(t, newOwner, args[1])

	batch, err := s.BatchAddAccountOwner(ctx, newOwner)
	require.NoError(t, err)
	require.Len(t, batch.Requests, 1)
	require.Equal(t, add.Data, batch.Requests[0].Data)

	batch, err = s.BatchRemoveAccountOwner(ctx, newOwner)
	require.NoError(t, err)
	require.Len(t, batch.Requests, 2)

	batch, err = s.BatchExecuteAccountTransaction(ctx, types.TransactionRequest{
		To:    targetA,
		Data:  []byte{0xCA, 0xFE},
		Value: big.NewInt(1),
	})
	require.NoError(t, err)
	require.Len(t, batch.Requests, 3)
	require.Equal(t, registryAddr, batch.Requests[2].To)

	_, err = s.BatchGatewayTransactionRequest(ctx, types.TransactionRequest{To: targetA, Value: big.NewInt(1)})
	require.Error(t, err)
	require.Len(t, s.GatewayBatch().Requests, 3)
}

func TestWalletChangeOpensNewSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	s := env.sdk

	first, err := s.CreateSession(ctx, 0)
	require.NoError(t, err)

	other := newKey(t)
	s.SwitchWallet(other)
	require.Nil(t, s.Session())
	require.Equal(t, types.KeyOwned, s.Account().Type)
	require.Equal(t, other.Address(), s.Account().Address)

	account, err := s.SyncAccount(ctx)
	require.NoError(t, err)
	require.Equal(t, other.Address(), account.Address)
	require.NotNil(t, s.Session())
	require.NotEqual(t, first.Token, s.Session().Token)
	require.Equal(t, 2, env.backend.Calls("session_createSessionCode"))
}

func TestCanonicalAccountAdoption(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	canonical := common.HexToAddress("0xCA0")
	env.backend.SetCanonicalAccount(env.owner.Address(), canonical)

	_, err := env.sdk.CreateSession(ctx, 60)
	require.NoError(t, err)
	require.Equal(t, canonical, env.sdk.Account().Address)
	require.Equal(t, uint64(60), env.sdk.Session().TTL)
}

func TestSessionInvalid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	env.backend.Fail("session_createSession", errors.New("rejected"))

	_, err := env.sdk.SyncAccount(ctx)
	require.ErrorIs(t, err, types.ErrSessionInvalid)
	require.ErrorIs(t, err, types.ErrRemoteSyncFailure)
	require.Nil(t, env.sdk.Session())
}

func TestPublicReads(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	token := types.SupportedToken{Address: common.HexToAddress("0x70"), Symbol: "USDC", Decimals: 6}
	env.backend.AddSupportedToken(token)
	env.sdk.SwitchWallet(nil)

	tokens, err := env.sdk.GetGatewaySupportedTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	got, err := env.sdk.GetGatewaySupportedToken(ctx, token.Address)
	require.NoError(t, err)
	require.Equal(t, "USDC", got.Symbol)

	_, err = env.sdk.EstimateGatewayKnownOp(ctx, "addAccountOwner", nil)
	require.ErrorIs(t, err, types.ErrWalletRequired)

	env.sdk.SwitchWallet(env.owner)
	op, err := env.sdk.EstimateGatewayKnownOp(ctx, "addAccountOwner", &token.Address)
	require.NoError(t, err)
	require.NotZero(t, op.EstimatedGas)
}

func TestSignatures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	require.NoError(t, env.sdk.SwitchNetwork(""))

	// personal signatures do not need a network
	sig, err := env.sdk.PersonalSignMessage(ctx, []byte("hello"))
	require.NoError(t, err)
	signer, err := wallet.RecoverPersonalSigner([]byte("hello"), sig)
	require.NoError(t, err)
	require.Equal(t, env.owner.Address(), signer)

	typedData := contracts.NewGateway(gatewayAddr, chainID, nil).
		DelegatedBatchTypedData(targetA, big.NewInt(0), []common.Address{targetB}, [][]byte{{0x01}})
	_, err = env.sdk.SignTypedData(ctx, typedData)
	require.ErrorIs(t, err, types.ErrUnknownNetwork)

	require.NoError(t, env.sdk.SwitchNetwork("testnet"))
	sig, err = env.sdk.SignTypedData(ctx, typedData)
	require.NoError(t, err)
	signer, err = wallet.RecoverTypedDataSigner(typedData, sig)
	require.NoError(t, err)
	require.Equal(t, env.owner.Address(), signer)
}

func TestNetworkChainID(t *testing.T) {
	env := newTestEnv(t, testConfig())

	id, err := env.sdk.NetworkChainID("")
	require.NoError(t, err)
	require.Equal(t, uint64(chainID), id)
	id, err = env.sdk.NetworkChainID("bare")
	require.NoError(t, err)
	require.Equal(t, uint64(5), id)
	_, err = env.sdk.NetworkChainID("mainnet")
	require.ErrorIs(t, err, types.ErrUnsupportedNetwork)

	require.NoError(t, env.sdk.SwitchNetwork(""))
	_, err = env.sdk.NetworkChainID("")
	require.ErrorIs(t, err, types.ErrUnknownNetwork)
	require.ErrorIs(t, env.sdk.SwitchNetwork("mainnet"), types.ErrUnsupportedNetwork)
	require.Len(t, env.sdk.Networks(), 2)
}

func TestDurableSessions(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SessionDBPath = path.Join(t.TempDir(), "sdkTestDurableSessions.sqlite")
	env := newTestEnv(t, cfg)

	created, err := env.sdk.CreateSession(ctx, 0)
	require.NoError(t, err)

	// a second instance with the same wallet and database reuses the session
	again, err := New(cfg, env.owner, env.backend.NewClient(t))
	require.NoError(t, err)
	defer again.Destroy()

	_, err = again.SyncAccount(ctx)
	require.NoError(t, err)
	require.Equal(t, created.Token, again.Session().Token)
	require.Equal(t, 1, env.backend.Calls("session_createSessionCode"))
}

func TestInstancesAreIndependent(t *testing.T) {
	ctx := context.Background()
	first := newTestEnv(t, testConfig())
	second := newTestEnv(t, testConfig())

	_, err := first.sdk.ComputeContractAccount(ctx, false)
	require.NoError(t, err)
	require.Equal(t, types.ContractManaged, first.sdk.Account().Type)
	require.Equal(t, types.KeyOwned, second.sdk.Account().Type)
}
