// Package apitest provides an in-memory gateway backend served over JSON-RPC
// for tests of the packages built on the api client.
package apitest

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/0xPolygon/cdk-gateway/api"
	"github.com/0xPolygon/cdk-gateway/common"
	"github.com/0xPolygon/cdk-gateway/contracts"
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/0xPolygon/cdk-gateway/wallet"
	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"
)

const (
	defaultSessionTTL  = 3600
	defaultEstimateTTL = 5 * time.Minute
	gasPerCall         = 50000
)

var (
	// ErrUnauthorized is returned by methods called without a valid session token
	ErrUnauthorized = errors.New("unauthorized")

	// DefaultGasPrice is the gas price of every estimate
	DefaultGasPrice = big.NewInt(10_000_000_000)
	// RefundTokenPayee receives every refund
	RefundTokenPayee = ethCommon.HexToAddress("0x00000000000000000000000000000000000fee00")
)

type headerKey struct{}

type sessionRecord struct {
	wallet   ethCommon.Address
	expireAt time.Time
}

type estimateRecord struct {
	account   ethCommon.Address
	batch     ethCommon.Hash
	gasPrice  *big.Int
	expiredAt time.Time
}

// Backend is an in-memory gateway backend
type Backend struct {
	// Gateway verifies the owner signature of submitted batches when set
	Gateway *contracts.Gateway
	// SessionTTL in seconds of the sessions created without an explicit ttl
	SessionTTL uint64
	// EstimateTTL is the validity of estimates
	EstimateTTL time.Duration
	// Now is the backend clock
	Now func() time.Time

	mu        sync.Mutex
	codes     map[ethCommon.Address]string
	sessions  map[string]sessionRecord
	canonical map[ethCommon.Address]ethCommon.Address
	members   map[ethCommon.Address][]types.AccountMember
	estimates map[string]estimateRecord
	submitted map[ethCommon.Hash]*types.SubmittedBatch
	order     []ethCommon.Hash
	tokens    []types.SupportedToken
	failures  map[string]error
	calls     map[string]int
	headers   []http.Header
}

// NewBackend returns an empty backend
func NewBackend() *Backend {
	return &Backend{
		SessionTTL:  defaultSessionTTL,
		EstimateTTL: defaultEstimateTTL,
		Now:         time.Now,
		codes:       map[ethCommon.Address]string{},
		sessions:    map[string]sessionRecord{},
		canonical:   map[ethCommon.Address]ethCommon.Address{},
		members:     map[ethCommon.Address][]types.AccountMember{},
		estimates:   map[string]estimateRecord{},
		submitted:   map[ethCommon.Hash]*types.SubmittedBatch{},
		failures:    map[string]error{},
		calls:       map[string]int{},
	}
}

// Fail makes the next call of method return err
func (b *Backend) Fail(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures[method] = err
}

// Calls returns how many times method was called
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.calls[method]
}

// LastHeader returns the headers of the last request
func (b *Backend) LastHeader() http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.headers) == 0 {
		return nil
	}

	return b.headers[len(b.headers)-1]
}

// SetCanonicalAccount makes sessions created by wallet report account as their canonical account
func (b *Backend) SetCanonicalAccount(wallet, account ethCommon.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.canonical[wallet] = account
}

// AddSupportedToken registers a refund token
func (b *Backend) AddSupportedToken(token types.SupportedToken) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = append(b.tokens, token)
}

// ExpireSessions invalidates every issued token
func (b *Backend) ExpireSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions = map[string]sessionRecord{}
}

// Handler returns the JSON-RPC handler of the backend
func (b *Backend) Handler() (http.Handler, error) {
	server := rpc.NewServer()
	if err := server.RegisterName("account", &AccountAPI{b: b}); err != nil {
		return nil, err
	}
	if err := server.RegisterName("session", &SessionAPI{b: b}); err != nil {
		return nil, err
	}
	if err := server.RegisterName("gateway", &GatewayAPI{b: b}); err != nil {
		return nil, err
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), headerKey{}, r.Header.Clone())
		server.ServeHTTP(w, r.WithContext(ctx))
	}), nil
}

// Serve starts an http server for the backend, stopped when t ends, and returns its url
func (b *Backend) Serve(t testing.TB) string {
	t.Helper()

	handler, err := b.Handler()
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv.URL
}

// NewClient serves the backend and returns a client connected to it
func (b *Backend) NewClient(t testing.TB) *api.Client {
	t.Helper()

	url := b.Serve(t)
	rpcClient, err := rpc.DialHTTP(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(rpcClient.Close)

	return api.NewClientWithRPC(log.GetDefaultLogger(), rpcClient, 0)
}

func (b *Backend) before(ctx context.Context, method string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls[method]++
	if h, ok := ctx.Value(headerKey{}).(http.Header); ok {
		b.headers = append(b.headers, h)
	}
	if err, ok := b.failures[method]; ok {
		delete(b.failures, method)
		return err
	}

	return nil
}

// authenticate returns the wallet owning the token of the request. b.mu must be held.
func (b *Backend) authenticate(ctx context.Context) (ethCommon.Address, error) {
	h, _ := ctx.Value(headerKey{}).(http.Header)
	if h.Get(api.HeaderChainID) == "" {
		return ethCommon.Address{}, errors.New("missing chain id")
	}
	rec, ok := b.sessions[h.Get(api.HeaderAuthToken)]
	if !ok || !b.Now().Before(rec.expireAt) {
		return ethCommon.Address{}, ErrUnauthorized
	}

	return rec.wallet, nil
}

func (b *Backend) canonicalOf(wallet ethCommon.Address) ethCommon.Address {
	if account, ok := b.canonical[wallet]; ok {
		return account
	}

	return wallet
}

func (b *Backend) timestamp() *time.Time {
	now := b.Now()
	return &now
}

// AccountAPI serves the account namespace
type AccountAPI struct {
	b *Backend
}

// SyncAccount returns the canonical key account of the caller
func (a *AccountAPI) SyncAccount(ctx context.Context) (*types.Account, error) {
	if err := a.b.before(ctx, "account_syncAccount"); err != nil {
		return nil, err
	}
	a.b.mu.Lock()
	defer a.b.mu.Unlock()

	wallet, err := a.b.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	return &types.Account{
		Address:   a.b.canonicalOf(wallet),
		Type:      types.KeyOwned,
		State:     types.Synced,
		CreatedAt: a.b.timestamp(),
		UpdatedAt: a.b.timestamp(),
	}, nil
}

// SyncAccountMember registers the caller as owner of account and returns the membership
func (a *AccountAPI) SyncAccountMember(ctx context.Context, account ethCommon.Address) (*types.AccountMember, error) {
	if err := a.b.before(ctx, "account_syncAccountMember"); err != nil {
		return nil, err
	}
	a.b.mu.Lock()
	defer a.b.mu.Unlock()

	wallet, err := a.b.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	member := types.AccountMember{
		Member:    &types.Account{Address: wallet, Type: types.KeyOwned, State: types.Synced},
		Type:      types.MemberOwner,
		State:     types.MemberAdded,
		CreatedAt: a.b.timestamp(),
	}
	found := false
	for _, m := range a.b.members[account] {
		if m.Member != nil && m.Member.Address == wallet {
			member = m
			found = true
		}
	}
	if !found {
		a.b.members[account] = append(a.b.members[account], member)
	}
	member.Account = &types.Account{
		Address:   account,
		Type:      types.ContractManaged,
		State:     types.Synced,
		CreatedAt: a.b.timestamp(),
		UpdatedAt: a.b.timestamp(),
	}

	return &member, nil
}

// GetAccount returns the record of account
func (a *AccountAPI) GetAccount(ctx context.Context, account ethCommon.Address) (*types.Account, error) {
	if err := a.b.before(ctx, "account_getAccount"); err != nil {
		return nil, err
	}
	a.b.mu.Lock()
	defer a.b.mu.Unlock()

	if _, ok := a.b.members[account]; ok {
		return &types.Account{Address: account, Type: types.ContractManaged, State: types.Synced}, nil
	}

	return &types.Account{Address: account, Type: types.KeyOwned, State: types.UnknownRemote}, nil
}

// GetConnectedAccounts lists the key account of the caller and the contract accounts it joined
func (a *AccountAPI) GetConnectedAccounts(ctx context.Context, page uint64) (*types.Accounts, error) {
	if err := a.b.before(ctx, "account_getConnectedAccounts"); err != nil {
		return nil, err
	}
	a.b.mu.Lock()
	defer a.b.mu.Unlock()

	wallet, err := a.b.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	res := &types.Accounts{
		Items:       []types.Account{{Address: a.b.canonicalOf(wallet), Type: types.KeyOwned, State: types.Synced}},
		CurrentPage: page,
	}
	for account, members := range a.b.members {
		for _, m := range members {
			if m.Member != nil && m.Member.Address == wallet {
				res.Items = append(res.Items, types.Account{Address: account, Type: types.ContractManaged, State: types.Synced})
			}
		}
	}

	return res, nil
}

// GetAccountMembers lists the members of account
func (a *AccountAPI) GetAccountMembers(
	ctx context.Context, account ethCommon.Address, page uint64,
) (*types.AccountMembers, error) {
	if err := a.b.before(ctx, "account_getAccountMembers"); err != nil {
		return nil, err
	}
	a.b.mu.Lock()
	defer a.b.mu.Unlock()

	return &types.AccountMembers{
		Items:       append([]types.AccountMember{}, a.b.members[account]...),
		CurrentPage: page,
	}, nil
}

// SessionAPI serves the session namespace
type SessionAPI struct {
	b *Backend
}

// CreateSessionCode issues a one time code for account
func (s *SessionAPI) CreateSessionCode(ctx context.Context, account ethCommon.Address) (string, error) {
	if err := s.b.before(ctx, "session_createSessionCode"); err != nil {
		return "", err
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	code := uuid.NewString()
	s.b.codes[account] = code

	return code, nil
}

// CreateSession verifies the signed code and issues a session
func (s *SessionAPI) CreateSession(ctx context.Context, params api.CreateSessionParams) (*types.CreatedSession, error) {
	if err := s.b.before(ctx, "session_createSession"); err != nil {
		return nil, err
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	code, ok := s.b.codes[params.Account]
	if !ok || code != params.Code {
		return nil, errors.New("invalid session code")
	}
	delete(s.b.codes, params.Account)

	signer, err := wallet.RecoverPersonalSigner([]byte(api.SessionMessage(code)), params.Signature)
	if err != nil || signer != params.Account {
		return nil, errors.New("invalid session signature")
	}

	ttl := params.TTL
	if ttl == 0 {
		ttl = s.b.SessionTTL
	}
	token := uuid.NewString()
	s.b.sessions[token] = sessionRecord{
		wallet:   params.Account,
		expireAt: s.b.Now().Add(time.Duration(ttl) * time.Second),
	}

	return &types.CreatedSession{
		Token: token,
		TTL:   ttl,
		Account: &types.Account{
			Address: s.b.canonicalOf(params.Account),
			Type:    types.KeyOwned,
			State:   types.Synced,
		},
	}, nil
}

// GatewayAPI serves the gateway namespace
type GatewayAPI struct {
	b *Backend
}

// EstimateGatewayBatch prices a draft and signs the terms
func (g *GatewayAPI) EstimateGatewayBatch(
	ctx context.Context, params api.EstimateBatchParams,
) (*types.EstimatedBatch, error) {
	if err := g.b.before(ctx, "gateway_estimateGatewayBatch"); err != nil {
		return nil, err
	}
	g.b.mu.Lock()
	defer g.b.mu.Unlock()

	if _, err := g.b.authenticate(ctx); err != nil {
		return nil, err
	}
	if len(params.To) == 0 || len(params.To) != len(params.Data) {
		return nil, errors.New("invalid batch")
	}

	sig := make([]byte, 65) //nolint:mnd
	if _, err := rand.Read(sig); err != nil {
		return nil, err
	}
	now := g.b.Now()
	estimate := &types.EstimatedBatch{
		RefundToken:       params.RefundToken,
		RefundAmount:      big.NewInt(int64(1000 * len(params.To))),
		RefundTokenPayee:  RefundTokenPayee,
		EstimatedGas:      uint64(gasPerCall * len(params.To)),
		EstimatedGasPrice: new(big.Int).Set(DefaultGasPrice),
		Signature:         sig,
		CreatedAt:         now,
		ExpiredAt:         now.Add(g.b.EstimateTTL),
	}
	g.b.estimates[hexutil.Encode(sig)] = estimateRecord{
		account:   params.Account,
		batch:     common.BatchHash(params.To, toBytes(params.Data)),
		gasPrice:  estimate.EstimatedGasPrice,
		expiredAt: estimate.ExpiredAt,
	}

	return estimate, nil
}

// SubmitGatewayBatch queues a batch paired with one of the issued estimates
func (g *GatewayAPI) SubmitGatewayBatch(ctx context.Context, params api.SubmitBatchParams) (*types.SubmittedBatch, error) {
	if err := g.b.before(ctx, "gateway_submitGatewayBatch"); err != nil {
		return nil, err
	}
	g.b.mu.Lock()
	defer g.b.mu.Unlock()

	caller, err := g.b.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	key := hexutil.Encode(params.RefundSignature)
	estimate, ok := g.b.estimates[key]
	if !ok {
		return nil, errors.New("unknown estimate")
	}
	switch {
	case estimate.account != params.Account:
		return nil, errors.New("estimate issued for another account")
	case estimate.batch != common.BatchHash(params.To, toBytes(params.Data)):
		return nil, errors.New("estimate issued for another batch")
	case !g.b.Now().Before(estimate.expiredAt):
		return nil, errors.New("estimate expired")
	case params.GasPrice == nil || params.GasPrice.Cmp(estimate.gasPrice) != 0:
		return nil, errors.New("gas price mismatch")
	case params.Nonce == nil:
		return nil, errors.New("missing nonce")
	}
	if g.b.Gateway != nil {
		typedData := g.b.Gateway.DelegatedBatchWithGasPriceTypedData(
			params.Account, params.Nonce, params.To, toBytes(params.Data), params.GasPrice,
		)
		signer, err := wallet.RecoverTypedDataSigner(typedData, params.SenderSignature)
		if err != nil || signer != caller {
			return nil, errors.New("invalid sender signature")
		}
	}
	delete(g.b.estimates, key)

	now := g.b.Now()
	hash := crypto.Keccak256Hash(params.SenderSignature, params.RefundSignature)
	batch := &types.SubmittedBatch{
		Hash:         hash,
		State:        types.Queued,
		Sender:       caller,
		Account:      params.Account,
		Nonce:        params.Nonce.Uint64(),
		To:           params.To,
		Data:         params.Data,
		GasPrice:     params.GasPrice,
		GasLimit:     params.GasLimit,
		RefundToken:  params.RefundToken,
		RefundAmount: params.RefundAmount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	g.b.submitted[hash] = batch
	g.b.order = append(g.b.order, hash)
	res := *batch

	return &res, nil
}

// GetGatewaySubmittedBatch returns the batch and moves it one step towards Confirmed
func (g *GatewayAPI) GetGatewaySubmittedBatch(ctx context.Context, hash ethCommon.Hash) (*types.SubmittedBatch, error) {
	if err := g.b.before(ctx, "gateway_getGatewaySubmittedBatch"); err != nil {
		return nil, err
	}
	g.b.mu.Lock()
	defer g.b.mu.Unlock()

	batch, ok := g.b.submitted[hash]
	if !ok {
		return nil, fmt.Errorf("batch %s not found", hash.Hex())
	}
	switch batch.State {
	case types.Queued:
		batch.State = types.Sent
	case types.Sent:
		batch.State = types.Confirmed
		batch.Transaction = &types.SubmittedBatchReceipt{
			Hash:        crypto.Keccak256Hash(hash.Bytes()),
			BlockNumber: 1,
			GasUsed:     batch.GasLimit,
			Status:      1,
		}
	}
	batch.UpdatedAt = g.b.Now()
	res := *batch

	return &res, nil
}

// GetGatewaySubmittedBatches lists the batches of account
func (g *GatewayAPI) GetGatewaySubmittedBatches(
	ctx context.Context, account ethCommon.Address, page uint64,
) (*types.SubmittedBatches, error) {
	if err := g.b.before(ctx, "gateway_getGatewaySubmittedBatches"); err != nil {
		return nil, err
	}
	g.b.mu.Lock()
	defer g.b.mu.Unlock()

	if _, err := g.b.authenticate(ctx); err != nil {
		return nil, err
	}
	res := &types.SubmittedBatches{Items: []types.SubmittedBatch{}, CurrentPage: page}
	for _, hash := range g.b.order {
		if batch := g.b.submitted[hash]; batch.Account == account {
			res.Items = append(res.Items, *batch)
		}
	}

	return res, nil
}

// GetGatewaySupportedToken returns the registered token
func (g *GatewayAPI) GetGatewaySupportedToken(
	ctx context.Context, token ethCommon.Address,
) (*types.SupportedToken, error) {
	if err := g.b.before(ctx, "gateway_getGatewaySupportedToken"); err != nil {
		return nil, err
	}
	g.b.mu.Lock()
	defer g.b.mu.Unlock()

	for _, t := range g.b.tokens {
		if t.Address == token {
			res := t
			return &res, nil
		}
	}

	return nil, fmt.Errorf("token %s not supported", token.Hex())
}

// GetGatewaySupportedTokens returns every registered token
func (g *GatewayAPI) GetGatewaySupportedTokens(ctx context.Context) ([]types.SupportedToken, error) {
	if err := g.b.before(ctx, "gateway_getGatewaySupportedTokens"); err != nil {
		return nil, err
	}
	g.b.mu.Lock()
	defer g.b.mu.Unlock()

	return append([]types.SupportedToken{}, g.b.tokens...), nil
}

// EstimateGatewayKnownOp prices a known operation
func (g *GatewayAPI) EstimateGatewayKnownOp(
	ctx context.Context, op types.KnownOp, refundToken *ethCommon.Address,
) (*types.EstimatedKnownOp, error) {
	if err := g.b.before(ctx, "gateway_estimateGatewayKnownOp"); err != nil {
		return nil, err
	}
	g.b.mu.Lock()
	defer g.b.mu.Unlock()

	if _, err := g.b.authenticate(ctx); err != nil {
		return nil, err
	}
	if op == "" {
		return nil, errors.New("unknown op")
	}

	return &types.EstimatedKnownOp{
		RefundToken:       refundToken,
		RefundAmount:      big.NewInt(1000), //nolint:mnd
		EstimatedGas:      gasPerCall,
		EstimatedGasPrice: new(big.Int).Set(DefaultGasPrice),
	}, nil
}

func toBytes(data []hexutil.Bytes) [][]byte {
	res := make([][]byte, len(data))
	for i, d := range data {
		res[i] = d
	}

	return res
}
