package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/subject"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
)

// Backend is the subset of the gateway backend used to synchronize accounts
type Backend interface {
	SyncAccount(ctx context.Context) (*types.Account, error)
	SyncAccountMember(ctx context.Context, account common.Address) (*types.AccountMember, error)
	GetAccount(ctx context.Context, account common.Address) (*types.Account, error)
	GetConnectedAccounts(ctx context.Context, page uint64) (*types.Accounts, error)
	GetAccountMembers(ctx context.Context, account common.Address, page uint64) (*types.AccountMembers, error)
}

// AddressDeriver computes the contract account owned by a wallet
type AddressDeriver interface {
	ComputeAccountCreate2Address(owner common.Address) (common.Address, bool)
}

// Service owns the current account and the caller's membership in it
type Service struct {
	logger  *log.Logger
	backend Backend
	deriver AddressDeriver
	now     func() time.Time

	wallet  *subject.Subject[common.Address]
	chainID *subject.Subject[uint64]
	account *subject.Subject[*types.Account]
	member  *subject.Subject[*types.AccountMember]
	address *subject.Subject[common.Address]

	// commitMu serializes every write of account and member
	commitMu sync.Mutex
	disposer subject.Disposer
}

// NewService wires the passive derivation: every change of wallet or chain
// replaces the account with the wallet's key account, and every change of
// the account address drops the membership.
func NewService(
	logger *log.Logger,
	backend Backend,
	deriver AddressDeriver,
	wallet *subject.Subject[common.Address],
	chainID *subject.Subject[uint64],
) *Service {
	s := &Service{
		logger:  logger,
		backend: backend,
		deriver: deriver,
		now:     time.Now,
		wallet:  wallet,
		chainID: chainID,
		account: subject.New[*types.Account](nil),
		member:  subject.New[*types.AccountMember](nil),
	}

	var disposeAddress func()
	s.address, disposeAddress = subject.Project(s.account, addressOf)

	derived := subject.New[*types.Account](nil)
	s.disposer.Add(
		disposeAddress,
		subject.Combine(wallet, chainID, derived, keyAccount),
		derived.Subscribe(func(account *types.Account) {
			s.commitMu.Lock()
			defer s.commitMu.Unlock()

			s.account.Set(account)
		}),
		s.address.Subscribe(func(common.Address) {
			s.member.Set(nil)
		}),
	)

	return s
}

func addressOf(account *types.Account) common.Address {
	if account == nil {
		return common.Address{}
	}

	return account.Address
}

func keyAccount(wallet common.Address, chainID uint64) *types.Account {
	if wallet == (common.Address{}) || chainID == 0 {
		return nil
	}

	return &types.Account{
		Address: wallet,
		Type:    types.KeyOwned,
	}
}

// Destroy detaches the service from its sources
func (s *Service) Destroy() {
	s.disposer.Dispose()
}

// Account returns the current account, nil when no wallet is connected
func (s *Service) Account() *types.Account {
	return s.account.Value()
}

// Member returns the caller's membership in the current contract account
func (s *Service) Member() *types.AccountMember {
	return s.member.Value()
}

// Address returns the current account address
func (s *Service) Address() common.Address {
	return s.address.Value()
}

// AccountSubject is the observable account
func (s *Service) AccountSubject() *subject.Subject[*types.Account] {
	return s.account
}

// MemberSubject is the observable membership
func (s *Service) MemberSubject() *subject.Subject[*types.AccountMember] {
	return s.member
}

// AddressSubject emits only when the account address changes
func (s *Service) AddressSubject() *subject.Subject[common.Address] {
	return s.address
}

// ComputeContractAccount switches to the contract account derived from the
// wallet address, with the wallet as added owner. The same wallet always
// yields the same address.
func (s *Service) ComputeContractAccount() (*types.Account, error) {
	owner := s.wallet.Value()
	if owner == (common.Address{}) {
		return nil, types.ErrWalletRequired
	}
	address, ok := s.deriver.ComputeAccountCreate2Address(owner)
	if !ok {
		return nil, fmt.Errorf("%w: contract accounts cannot be derived on this network", types.ErrUnsupportedNetwork)
	}

	account := &types.Account{
		Address: address,
		Type:    types.ContractManaged,
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.account.Set(account)
	s.member.Set(&types.AccountMember{
		Type:  types.MemberOwner,
		State: types.MemberAdded,
	})
	s.logger.Debugf("computed contract account %s for %s", address.Hex(), owner.Hex())

	return account, nil
}

// JoinContractAccount switches to the contract account at address. The
// membership is left to a later SyncAccount.
func (s *Service) JoinContractAccount(address common.Address) (*types.Account, error) {
	if address == (common.Address{}) {
		return nil, errors.New("contract account address is required")
	}
	account := &types.Account{
		Address: address,
		Type:    types.ContractManaged,
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.account.Set(account)
	s.logger.Debugf("joined contract account %s", address.Hex())

	return account, nil
}

// SyncAccount replaces the local account, and the membership for contract
// accounts, with the backend's records. Nothing changes when the call fails
// or when the account or the chain changed while the call was in flight.
func (s *Service) SyncAccount(ctx context.Context) (*types.Account, error) {
	chainID := s.chainID.Value()
	local := s.account.Value()
	if local == nil {
		return nil, types.ErrWalletRequired
	}

	switch local.Type {
	case types.ContractManaged:
		member, err := s.backend.SyncAccountMember(ctx, local.Address)
		if err != nil {
			return nil, remoteErr("syncAccountMember", err)
		}
		if member == nil || member.Account == nil {
			return nil, fmt.Errorf("%w: syncAccountMember returned no account", types.ErrRemoteSyncFailure)
		}
		now := s.now()
		account := *member.Account
		account.SynchronizedAt = &now
		synced := *member
		synced.Account = nil
		synced.SynchronizedAt = &now

		err = s.commit(local, chainID, func() {
			s.account.Set(&account)
			s.member.Set(&synced)
		})
		if err != nil {
			return nil, err
		}
		s.logger.Infof("synchronized contract account %s (member %s)", account.Address.Hex(), synced.State)

		return &account, nil

	default:
		remote, err := s.backend.SyncAccount(ctx)
		if err != nil {
			return nil, remoteErr("syncAccount", err)
		}
		if remote == nil {
			return nil, fmt.Errorf("%w: syncAccount returned no account", types.ErrRemoteSyncFailure)
		}
		now := s.now()
		account := *remote
		account.SynchronizedAt = &now

		if err := s.commit(local, chainID, func() { s.account.Set(&account) }); err != nil {
			return nil, err
		}
		s.logger.Infof("synchronized key account %s", account.Address.Hex())

		return &account, nil
	}
}

// AdoptCanonicalAccount replaces the key account assumed for wallet with the
// backend's canonical one when their addresses differ. Contract accounts are
// left untouched.
func (s *Service) AdoptCanonicalAccount(wallet common.Address, canonical *types.Account) error {
	if canonical == nil || canonical.Address == wallet {
		return nil
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.wallet.Value() != wallet {
		return types.ErrIdentityChanged
	}
	current := s.account.Value()
	if current == nil || current.Type != types.KeyOwned || current.Address != wallet {
		return nil
	}
	account := *canonical
	account.Type = types.KeyOwned
	s.account.Set(&account)
	s.logger.Infof("adopted canonical account %s for wallet %s", account.Address.Hex(), wallet.Hex())

	return nil
}

// GetAccount returns the backend record of address
func (s *Service) GetAccount(ctx context.Context, address common.Address) (*types.Account, error) {
	account, err := s.backend.GetAccount(ctx, address)
	if err != nil {
		return nil, remoteErr("getAccount", err)
	}

	return account, nil
}

// GetConnectedAccounts returns a page of the accounts the caller belongs to
func (s *Service) GetConnectedAccounts(ctx context.Context, page uint64) (*types.Accounts, error) {
	accounts, err := s.backend.GetConnectedAccounts(ctx, firstPage(page))
	if err != nil {
		return nil, remoteErr("getConnectedAccounts", err)
	}

	return accounts, nil
}

// GetAccountMembers returns a page of the members of address
func (s *Service) GetAccountMembers(
	ctx context.Context, address common.Address, page uint64,
) (*types.AccountMembers, error) {
	members, err := s.backend.GetAccountMembers(ctx, address, firstPage(page))
	if err != nil {
		return nil, remoteErr("getAccountMembers", err)
	}

	return members, nil
}

// commit runs apply only if the account and the chain are still the ones
// the call started with
func (s *Service) commit(expected *types.Account, chainID uint64, apply func()) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	current := s.account.Value()
	if current == nil || current.Address != expected.Address || current.Type != expected.Type {
		s.logger.Warnf("discarding sync result for %s: account changed", expected.Address.Hex())
		return types.ErrIdentityChanged
	}
	if s.chainID.Value() != chainID {
		s.logger.Warnf("discarding sync result for %s: chain changed", expected.Address.Hex())
		return types.ErrIdentityChanged
	}
	apply()

	return nil
}

func remoteErr(method string, err error) error {
	if errors.Is(err, types.ErrRemoteSyncFailure) {
		return err
	}

	return fmt.Errorf("%w: %s: %w", types.ErrRemoteSyncFailure, method, err)
}

func firstPage(page uint64) uint64 {
	if page == 0 {
		return 1
	}

	return page
}
