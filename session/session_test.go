package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/0xPolygon/cdk-gateway/api"
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/subject"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type backendMock struct {
	mock.Mock
}

func (m *backendMock) CreateSessionCode(ctx context.Context, account common.Address) (string, error) {
	args := m.Called(ctx, account)
	return args.String(0), args.Error(1)
}

func (m *backendMock) CreateSession(ctx context.Context, params api.CreateSessionParams) (*types.CreatedSession, error) {
	args := m.Called(ctx, params)
	res, _ := args.Get(0).(*types.CreatedSession)
	return res, args.Error(1)
}

type signerMock struct {
	mock.Mock
}

func (m *signerMock) PersonalSign(ctx context.Context, message []byte) ([]byte, error) {
	args := m.Called(ctx, message)
	sig, _ := args.Get(0).([]byte)
	return sig, args.Error(1)
}

type adopterMock struct {
	mock.Mock
}

func (m *adopterMock) AdoptCanonicalAccount(wallet common.Address, account *types.Account) error {
	return m.Called(wallet, account).Error(0)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var (
	walletA   = common.HexToAddress("0x000000000000000000000000000000000000000A")
	walletB   = common.HexToAddress("0x000000000000000000000000000000000000000B")
	signature = []byte{0x01, 0x02, 0x03}
)

type testEnv struct {
	backend *backendMock
	signer  *signerMock
	adopter *adopterMock
	storage *MemoryStorage
	clock   *fakeClock
	wallet  *subject.Subject[common.Address]
	service *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		backend: &backendMock{},
		signer:  &signerMock{},
		adopter: &adopterMock{},
		storage: NewMemoryStorage(),
		clock:   &fakeClock{now: time.Unix(1_700_000_000, 0)},
		wallet:  subject.NewUnique(common.Address{}),
	}
	env.service = NewService(log.GetDefaultLogger(), env.backend, env.signer, env.adopter, env.storage, env.wallet)
	env.service.now = env.clock.Now
	t.Cleanup(env.service.Destroy)

	env.wallet.Set(walletA)
	env.service.restores.Wait()

	return env
}

func (env *testEnv) expectCreate(wallet common.Address, code, token string, ttl uint64) {
	env.backend.On("CreateSessionCode", mock.Anything, wallet).Return(code, nil).Once()
	env.signer.On("PersonalSign", mock.Anything, []byte("Session code: "+code)).Return(signature, nil).Once()
	env.backend.On("CreateSession", mock.Anything, api.CreateSessionParams{
		Account:   wallet,
		Code:      code,
		Signature: signature,
	}).Return(&types.CreatedSession{
		Token:   token,
		TTL:     ttl,
		Account: &types.Account{Address: wallet, Type: types.KeyOwned},
	}, nil).Once()
	env.adopter.On("AdoptCanonicalAccount", wallet, mock.Anything).Return(nil).Once()
}

func TestVerifySessionWithoutWallet(t *testing.T) {
	env := newTestEnv(t)
	env.wallet.Set(common.Address{})

	require.ErrorIs(t, env.service.VerifySession(context.Background()), types.ErrWalletRequired)
	_, err := env.service.CreateSession(context.Background(), 0)
	require.ErrorIs(t, err, types.ErrWalletRequired)
}

func TestVerifySessionCreatesSession(t *testing.T) {
	env := newTestEnv(t)
	env.expectCreate(walletA, "abc", "token-a", 3600)

	require.NoError(t, env.service.VerifySession(context.Background()))

	session := env.service.Session()
	require.NotNil(t, session)
	require.Equal(t, "token-a", session.Token)
	require.Equal(t, env.clock.Now().Add(time.Hour), session.ExpireAt)
	require.Equal(t, "token-a", env.service.Token())

	stored, err := env.storage.GetSession(context.Background(), walletA)
	require.NoError(t, err)
	require.Equal(t, session, stored)

	env.backend.AssertExpectations(t)
	env.signer.AssertExpectations(t)
	env.adopter.AssertExpectations(t)
}

func TestVerifySessionRefreshesStoredSession(t *testing.T) {
	env := newTestEnv(t)
	stored := &types.Session{Token: "stored", TTL: 600, ExpireAt: env.clock.Now().Add(time.Minute)}
	require.NoError(t, env.storage.SetSession(context.Background(), walletA, stored))

	env.clock.Advance(30 * time.Second)
	require.NoError(t, env.service.VerifySession(context.Background()))

	session := env.service.Session()
	require.Equal(t, "stored", session.Token)
	require.Equal(t, env.clock.Now().Add(10*time.Minute), session.ExpireAt)
	env.backend.AssertNotCalled(t, "CreateSessionCode", mock.Anything, mock.Anything)
}

func TestVerifySessionReplacesExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	// inside the safety skew counts as expired
	stored := &types.Session{Token: "old", TTL: 600, ExpireAt: env.clock.Now().Add(3 * time.Second)}
	require.NoError(t, env.storage.SetSession(context.Background(), walletA, stored))
	env.expectCreate(walletA, "xyz", "new", 60)

	require.NoError(t, env.service.VerifySession(context.Background()))
	require.Equal(t, "new", env.service.Token())
	env.backend.AssertExpectations(t)
}

func TestCreateSessionFailures(t *testing.T) {
	remote := errors.New("boom")

	t.Run("session code", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.On("CreateSessionCode", mock.Anything, walletA).
			Return("", errors.Join(types.ErrRemoteSyncFailure, remote)).Once()

		err := env.service.VerifySession(context.Background())
		require.ErrorIs(t, err, types.ErrSessionInvalid)
		require.ErrorIs(t, err, types.ErrRemoteSyncFailure)
		require.Nil(t, env.service.Session())
	})

	t.Run("sign", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.On("CreateSessionCode", mock.Anything, walletA).Return("abc", nil).Once()
		env.signer.On("PersonalSign", mock.Anything, mock.Anything).Return(nil, remote).Once()

		_, err := env.service.CreateSession(context.Background(), 0)
		require.ErrorIs(t, err, types.ErrSessionInvalid)
		require.ErrorIs(t, err, remote)
		require.Nil(t, env.service.Session())
		env.backend.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("verify", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.On("CreateSessionCode", mock.Anything, walletA).Return("abc", nil).Once()
		env.signer.On("PersonalSign", mock.Anything, mock.Anything).Return(signature, nil).Once()
		env.backend.On("CreateSession", mock.Anything, mock.Anything).Return(nil, remote).Once()

		_, err := env.service.CreateSession(context.Background(), 0)
		require.ErrorIs(t, err, types.ErrSessionInvalid)
		require.Nil(t, env.service.Session())

		stored, err := env.storage.GetSession(context.Background(), walletA)
		require.NoError(t, err)
		require.Nil(t, stored)
	})
}

func TestCreateSessionPassesTTL(t *testing.T) {
	env := newTestEnv(t)
	env.backend.On("CreateSessionCode", mock.Anything, walletA).Return("abc", nil).Once()
	env.signer.On("PersonalSign", mock.Anything, mock.Anything).Return(signature, nil).Once()
	env.backend.On("CreateSession", mock.Anything, mock.MatchedBy(func(p api.CreateSessionParams) bool {
		return p.TTL == 120
	})).Return(&types.CreatedSession{Token: "t", TTL: 120, Account: &types.Account{Address: walletA}}, nil).Once()
	env.adopter.On("AdoptCanonicalAccount", walletA, mock.Anything).Return(nil).Once()

	session, err := env.service.CreateSession(context.Background(), 120)
	require.NoError(t, err)
	require.Equal(t, uint64(120), session.TTL)
	env.backend.AssertExpectations(t)
}

func TestVerifySessionSingleFlight(t *testing.T) {
	env := newTestEnv(t)
	release := make(chan struct{})
	env.backend.On("CreateSessionCode", mock.Anything, walletA).
		Run(func(mock.Arguments) { <-release }).
		Return("abc", nil).Once()
	env.signer.On("PersonalSign", mock.Anything, mock.Anything).Return(signature, nil).Once()
	env.backend.On("CreateSession", mock.Anything, mock.Anything).
		Return(&types.CreatedSession{Token: "shared", TTL: 3600, Account: &types.Account{Address: walletA}}, nil).Once()
	env.adopter.On("AdoptCanonicalAccount", walletA, mock.Anything).Return(nil).Once()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- env.service.VerifySession(context.Background())
		}()
	}
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, "shared", env.service.Token())
	env.backend.AssertNumberOfCalls(t, "CreateSessionCode", 1)
	env.backend.AssertNumberOfCalls(t, "CreateSession", 1)
}

func TestWalletChangeDuringCreation(t *testing.T) {
	env := newTestEnv(t)
	env.backend.On("CreateSessionCode", mock.Anything, walletA).Return("abc", nil).Once()
	env.signer.On("PersonalSign", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { env.wallet.Set(walletB) }).
		Return(signature, nil).Once()
	env.backend.On("CreateSession", mock.Anything, mock.Anything).
		Return(&types.CreatedSession{Token: "late", TTL: 3600, Account: &types.Account{Address: walletA}}, nil).Once()

	err := env.service.VerifySession(context.Background())
	require.ErrorIs(t, err, types.ErrIdentityChanged)
	require.Nil(t, env.service.Session())
	env.adopter.AssertNotCalled(t, "AdoptCanonicalAccount", mock.Anything, mock.Anything)

	// still usable once walletA reconnects
	stored, err := env.storage.GetSession(context.Background(), walletA)
	require.NoError(t, err)
	require.Equal(t, "late", stored.Token)
}

func TestWalletChangeResetsAndRestores(t *testing.T) {
	env := newTestEnv(t)
	env.expectCreate(walletA, "abc", "token-a", 3600)
	require.NoError(t, env.service.VerifySession(context.Background()))

	env.wallet.Set(walletB)
	env.service.restores.Wait()
	require.Nil(t, env.service.Session())
	require.Empty(t, env.service.Token())

	env.wallet.Set(walletA)
	env.service.restores.Wait()
	require.Equal(t, "token-a", env.service.Token())
}

func TestRefreshSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.RefreshSession(context.Background())
	require.ErrorIs(t, err, types.ErrSessionInvalid)

	env.expectCreate(walletA, "abc", "token-a", 60)
	require.NoError(t, env.service.VerifySession(context.Background()))

	env.clock.Advance(40 * time.Second)
	session, err := env.service.RefreshSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, env.clock.Now().Add(time.Minute), session.ExpireAt)

	stored, err := env.storage.GetSession(context.Background(), walletA)
	require.NoError(t, err)
	require.Equal(t, session.ExpireAt, stored.ExpireAt)
}

// gatedStorage holds the first GetSession of wallet, after reading it, until
// release is closed
type gatedStorage struct {
	*MemoryStorage
	wallet  common.Address
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStorage) GetSession(ctx context.Context, wallet common.Address) (*types.Session, error) {
	session, err := g.MemoryStorage.GetSession(ctx, wallet)
	if wallet != g.wallet {
		return session, err
	}
	gated := false
	g.once.Do(func() { gated = true })
	if gated {
		close(g.entered)
		<-g.release
	}

	return session, err
}

func TestSlowRestoreKeepsNewerStoredSession(t *testing.T) {
	env := newTestEnv(t)
	storage := &gatedStorage{
		MemoryStorage: NewMemoryStorage(),
		wallet:        walletB,
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	expired := &types.Session{Token: "expired", TTL: 60, ExpireAt: env.clock.Now().Add(-time.Minute)}
	require.NoError(t, storage.SetSession(context.Background(), walletB, expired))

	service := NewService(log.GetDefaultLogger(), env.backend, env.signer, env.adopter, storage, env.wallet)
	service.now = env.clock.Now
	env.service.Destroy()
	env.service = service

	// the restore for walletB has read the expired session and is held
	env.wallet.Set(walletB)
	<-storage.entered

	env.expectCreate(walletB, "abc", "fresh", 3600)
	require.NoError(t, service.VerifySession(context.Background()))
	stored, err := storage.GetSession(context.Background(), walletB)
	require.NoError(t, err)
	require.Equal(t, "fresh", stored.Token)

	close(storage.release)
	service.Destroy()

	stored, err = storage.GetSession(context.Background(), walletB)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "fresh", stored.Token)
	require.Equal(t, "fresh", service.Token())
}

func TestVerifySessionOutlivesCancelledCaller(t *testing.T) {
	env := newTestEnv(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	env.backend.On("CreateSessionCode", mock.Anything, walletA).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return("abc", nil).Once()
	env.signer.On("PersonalSign", mock.Anything, mock.Anything).Return(signature, nil).Once()
	env.backend.On("CreateSession", mock.Anything, mock.Anything).
		Return(&types.CreatedSession{Token: "kept", TTL: 3600, Account: &types.Account{Address: walletA}}, nil).Once()
	env.adopter.On("AdoptCanonicalAccount", walletA, mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- env.service.VerifySession(ctx)
	}()
	<-entered
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		return env.service.Token() == "kept"
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, env.service.VerifySession(context.Background()))
	env.backend.AssertNumberOfCalls(t, "CreateSessionCode", 1)
}
