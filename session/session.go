package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/0xPolygon/cdk-gateway/api"
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/subject"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"
)

// Backend is the subset of the gateway backend used to open sessions
type Backend interface {
	CreateSessionCode(ctx context.Context, account common.Address) (string, error)
	CreateSession(ctx context.Context, params api.CreateSessionParams) (*types.CreatedSession, error)
}

// Signer signs the session challenge with the connected wallet
type Signer interface {
	PersonalSign(ctx context.Context, message []byte) ([]byte, error)
}

// AccountAdopter receives the canonical account returned with a new session
type AccountAdopter interface {
	AdoptCanonicalAccount(wallet common.Address, account *types.Account) error
}

// Service keeps the session of the connected wallet
type Service struct {
	logger   *log.Logger
	backend  Backend
	signer   Signer
	accounts AccountAdopter
	storage  Storage
	now      func() time.Time

	wallet *subject.Subject[common.Address]

	mu      sync.RWMutex
	session *types.Session

	// storeMu orders storage writes, a discard re-reads under it
	storeMu sync.Mutex

	group    singleflight.Group
	restores sync.WaitGroup
	disposer subject.Disposer
}

// NewService returns a session service bound to wallet. A nil storage keeps
// sessions in memory.
func NewService(
	logger *log.Logger,
	backend Backend,
	signer Signer,
	accounts AccountAdopter,
	storage Storage,
	wallet *subject.Subject[common.Address],
) *Service {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Service{
		logger:   logger,
		backend:  backend,
		signer:   signer,
		accounts: accounts,
		storage:  storage,
		now:      time.Now,
		wallet:   wallet,
	}

	s.disposer.Add(wallet.Subscribe(s.onWallet))

	return s
}

func (s *Service) onWallet(wallet common.Address) {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if wallet == (common.Address{}) {
		return
	}

	s.restores.Add(1)
	go func() {
		defer s.restores.Done()

		if _, err := s.restore(context.Background(), wallet); err != nil {
			s.logger.Warnf("error restoring session of %s: %v", wallet.Hex(), err)
		}
	}()
}

// Destroy detaches the service from the wallet and waits for pending restores
func (s *Service) Destroy() {
	s.disposer.Dispose()
	s.restores.Wait()
}

// Session returns a copy of the current session, nil when there is none
func (s *Service) Session() *types.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}
	session := *s.session

	return &session
}

// Token returns the current session token, empty when there is no session
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return ""
	}

	return s.session.Token
}

// VerifySession makes sure the connected wallet holds a valid session:
// the stored one is restored, dropped if expired, then refreshed, or a new
// one is created. Concurrent calls for the same wallet share one attempt.
// The shared attempt is not cancelled with ctx, a caller whose ctx ends
// returns early while the attempt goes on for the others.
func (s *Service) VerifySession(ctx context.Context) error {
	wallet := s.wallet.Value()
	if wallet == (common.Address{}) {
		return types.ErrWalletRequired
	}

	_, err, _ := s.shared(ctx, "verify/"+wallet.Hex(), func(ctx context.Context) (interface{}, error) {
		return s.verify(ctx, wallet)
	})

	return err
}

// shared runs fn once per key among concurrent callers. fn gets ctx without
// its cancellation; backend calls stay bounded by the client timeout.
func (s *Service) shared(
	ctx context.Context, key string, fn func(context.Context) (interface{}, error),
) (interface{}, error, bool) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err, res.Shared
	case <-ctx.Done():
		return nil, ctx.Err(), false
	}
}

func (s *Service) verify(ctx context.Context, wallet common.Address) (*types.Session, error) {
	restored, err := s.restore(ctx, wallet)
	if err != nil {
		return nil, invalid("restore", err)
	}
	if restored == nil {
		return s.create(ctx, wallet, 0)
	}

	return s.refresh(ctx, wallet, restored)
}

// restore loads the stored session of wallet into memory, discarding it
// when it is no longer valid
func (s *Service) restore(ctx context.Context, wallet common.Address) (*types.Session, error) {
	s.mu.RLock()
	current := s.session
	s.mu.RUnlock()
	if current.Valid(s.now()) && s.wallet.Value() == wallet {
		session := *current
		return &session, nil
	}

	stored, err := s.storage.GetSession(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if !stored.Valid(s.now()) {
		if stored != nil {
			if err := s.discard(ctx, wallet, stored); err != nil {
				return nil, err
			}
		}
		stored = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wallet.Value() != wallet {
		return nil, types.ErrIdentityChanged
	}
	if s.session.Valid(s.now()) {
		// committed by a concurrent create or refresh
		session := *s.session
		return &session, nil
	}
	s.session = stored

	return stored, nil
}

// discard deletes the stored session of wallet only while it is still the
// expired one that was read. A session stored meanwhile by a create or a
// refresh is kept.
func (s *Service) discard(ctx context.Context, wallet common.Address, expired *types.Session) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	s.mu.RLock()
	current := s.session
	s.mu.RUnlock()
	if current.Valid(s.now()) && s.wallet.Value() == wallet {
		return nil
	}

	stored, err := s.storage.GetSession(ctx, wallet)
	if err != nil {
		return err
	}
	if stored == nil || stored.Valid(s.now()) || stored.Token != expired.Token {
		return nil
	}
	s.logger.Debugf("discarding expired session of %s", wallet.Hex())

	return s.storage.SetSession(ctx, wallet, nil)
}

func (s *Service) store(ctx context.Context, wallet common.Address, session *types.Session) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	return s.storage.SetSession(ctx, wallet, session)
}

// CreateSession opens a new session for the connected wallet. A zero ttl
// lets the backend pick one.
func (s *Service) CreateSession(ctx context.Context, ttl uint64) (*types.Session, error) {
	wallet := s.wallet.Value()
	if wallet == (common.Address{}) {
		return nil, types.ErrWalletRequired
	}

	return s.create(ctx, wallet, ttl)
}

func (s *Service) create(ctx context.Context, wallet common.Address, ttl uint64) (*types.Session, error) {
	v, err, shared := s.shared(ctx, fmt.Sprintf("create/%s/%d", wallet.Hex(), ttl), func(ctx context.Context) (interface{}, error) {
		return s.doCreate(ctx, wallet, ttl)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debugf("joined in-flight session creation for %s", wallet.Hex())
	}
	session := *v.(*types.Session)

	return &session, nil
}

func (s *Service) doCreate(ctx context.Context, wallet common.Address, ttl uint64) (*types.Session, error) {
	code, err := s.backend.CreateSessionCode(ctx, wallet)
	if err != nil {
		return nil, invalid("createSessionCode", err)
	}
	signature, err := s.signer.PersonalSign(ctx, []byte(api.SessionMessage(code)))
	if err != nil {
		return nil, invalid("sign session code", err)
	}
	created, err := s.backend.CreateSession(ctx, api.CreateSessionParams{
		Account:   wallet,
		Code:      code,
		Signature: signature,
		TTL:       ttl,
	})
	if err != nil {
		return nil, invalid("createSession", err)
	}
	if created == nil || created.Token == "" {
		return nil, invalid("createSession", errors.New("no token returned"))
	}

	session := &types.Session{
		Token: created.Token,
		TTL:   created.TTL,
	}
	session.Refresh(s.now())

	// keyed by wallet, so storing is correct even if the wallet moved on
	if err := s.store(ctx, wallet, session); err != nil {
		return nil, invalid("store", err)
	}
	if err := s.commit(wallet, session); err != nil {
		return nil, err
	}
	if err := s.accounts.AdoptCanonicalAccount(wallet, created.Account); err != nil {
		return nil, err
	}
	s.logger.Infof("created session for %s, expires at %s", wallet.Hex(), session.ExpireAt.Format(time.RFC3339))

	return session, nil
}

// RefreshSession extends the current session by its TTL
func (s *Service) RefreshSession(ctx context.Context) (*types.Session, error) {
	wallet := s.wallet.Value()
	current := s.Session()
	if current == nil {
		return nil, fmt.Errorf("%w: no session to refresh", types.ErrSessionInvalid)
	}

	return s.refresh(ctx, wallet, current)
}

func (s *Service) refresh(ctx context.Context, wallet common.Address, session *types.Session) (*types.Session, error) {
	refreshed := *session
	refreshed.Refresh(s.now())
	if err := s.store(ctx, wallet, &refreshed); err != nil {
		return nil, invalid("store", err)
	}
	if err := s.commit(wallet, &refreshed); err != nil {
		return nil, err
	}
	s.logger.Debugf("refreshed session of %s until %s", wallet.Hex(), refreshed.ExpireAt.Format(time.RFC3339))

	return &refreshed, nil
}

func (s *Service) commit(wallet common.Address, session *types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wallet.Value() != wallet {
		s.logger.Warnf("discarding session of %s: wallet changed", wallet.Hex())
		return types.ErrIdentityChanged
	}
	stored := *session
	s.session = &stored

	return nil
}

func invalid(step string, err error) error {
	if errors.Is(err, types.ErrSessionInvalid) {
		return err
	}

	return fmt.Errorf("%w: %s: %w", types.ErrSessionInvalid, step, err)
}
