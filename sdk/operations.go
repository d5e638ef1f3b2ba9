package sdk

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xPolygon/cdk-gateway/api"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/0xPolygon/cdk-gateway/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

var errNoSender = errors.New("connected wallet cannot send transactions")

// TransactionSender is implemented by wallets able to sign and broadcast transactions
type TransactionSender interface {
	SendTransaction(ctx context.Context, client wallet.EthClienter, req types.TransactionRequest) (common.Hash, error)
}

// PersonalSignMessage signs message with the connected wallet
func (s *Sdk) PersonalSignMessage(ctx context.Context, message []byte) ([]byte, error) {
	if err := s.Require(ctx, Requirements{Wallet: true}); err != nil {
		return nil, err
	}

	return s.wallet.PersonalSign(ctx, message)
}

// SignTypedData signs EIP-712 typed data with the connected wallet
func (s *Sdk) SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error) {
	if err := s.Require(ctx, DefaultRequirements()); err != nil {
		return nil, err
	}

	return s.wallet.SignTypedData(ctx, typedData)
}

// CreateSession opens a new session for the connected wallet. A zero ttl
// lets the backend choose.
func (s *Sdk) CreateSession(ctx context.Context, ttl uint64) (*types.Session, error) {
	if err := s.Require(ctx, DefaultRequirements()); err != nil {
		return nil, err
	}

	return s.sessions.CreateSession(ctx, ttl)
}

// ComputeContractAccount switches to the contract account owned by the
// connected wallet, then synchronizes it when sync is set
func (s *Sdk) ComputeContractAccount(ctx context.Context, sync bool) (*types.Account, error) {
	req := DefaultRequirements()
	req.Session = sync
	if err := s.Require(ctx, req); err != nil {
		return nil, err
	}

	account, err := s.accounts.ComputeContractAccount()
	if err != nil || !sync {
		return account, err
	}

	return s.accounts.SyncAccount(ctx)
}

// JoinContractAccount switches to the contract account at address, then
// synchronizes it when sync is set
func (s *Sdk) JoinContractAccount(ctx context.Context, address common.Address, sync bool) (*types.Account, error) {
	req := DefaultRequirements()
	req.Session = sync
	if err := s.Require(ctx, req); err != nil {
		return nil, err
	}

	account, err := s.accounts.JoinContractAccount(address)
	if err != nil || !sync {
		return account, err
	}

	return s.accounts.SyncAccount(ctx)
}

// SyncAccount replaces the current account with the backend's record
func (s *Sdk) SyncAccount(ctx context.Context) (*types.Account, error) {
	if err := s.Require(ctx, DefaultRequirements().withSession()); err != nil {
		return nil, err
	}

	return s.accounts.SyncAccount(ctx)
}

// targetAccount resolves a zero address to the current account, which needs a wallet
func (s *Sdk) targetAccount(ctx context.Context, address common.Address) (common.Address, error) {
	req := DefaultRequirements()
	req.Wallet = address == (common.Address{})
	if err := s.Require(ctx, req); err != nil {
		return common.Address{}, err
	}
	if address == (common.Address{}) {
		address = s.accounts.Address()
	}

	return address, nil
}

// GetAccount returns the backend record of address, the current account if zero
func (s *Sdk) GetAccount(ctx context.Context, address common.Address) (*types.Account, error) {
	address, err := s.targetAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	return s.accounts.GetAccount(ctx, address)
}

// GetAccountMembers returns a page of the members of address, the current account if zero
func (s *Sdk) GetAccountMembers(ctx context.Context, address common.Address, page uint64) (*types.AccountMembers, error) {
	address, err := s.targetAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	return s.accounts.GetAccountMembers(ctx, address, page)
}

// GetConnectedAccounts returns a page of the accounts the wallet belongs to
func (s *Sdk) GetConnectedAccounts(ctx context.Context, page uint64) (*types.Accounts, error) {
	if err := s.Require(ctx, DefaultRequirements().withSession()); err != nil {
		return nil, err
	}

	return s.accounts.GetConnectedAccounts(ctx, page)
}

// BatchGatewayTransactionRequest appends transactions to the gateway batch
func (s *Sdk) BatchGatewayTransactionRequest(
	ctx context.Context, txs ...types.TransactionRequest,
) (types.GatewayBatch, error) {
	if err := s.Require(ctx, DefaultRequirements().withContractAccount()); err != nil {
		return types.GatewayBatch{}, err
	}
	requests := make([]types.PendingBatchRequest, 0, len(txs))
	for _, tx := range txs {
		if tx.Value != nil && tx.Value.Sign() != 0 {
			return types.GatewayBatch{}, fmt.Errorf("gateway batch call to %s cannot carry value", tx.To.Hex())
		}
		requests = append(requests, types.PendingBatchRequest{To: tx.To, Data: tx.Data})
	}

	return s.builder.Append(requests...), nil
}

// EstimateGatewayBatch prices the gateway batch, refunding in refundToken
// when set
func (s *Sdk) EstimateGatewayBatch(ctx context.Context, refundToken *common.Address) (types.GatewayBatch, error) {
	if err := s.Require(ctx, DefaultRequirements().withSession().withContractAccount()); err != nil {
		return types.GatewayBatch{}, err
	}

	return s.builder.Estimate(ctx, s.accounts.Address(), refundToken)
}

// SubmitGatewayBatch hands the estimated batch to the gateway. A non empty
// customProjectMetadata replaces the project metadata of this request.
func (s *Sdk) SubmitGatewayBatch(ctx context.Context, customProjectMetadata string) (*types.SubmittedBatch, error) {
	if err := s.Require(ctx, DefaultRequirements().withSession().withContractAccount()); err != nil {
		return nil, err
	}
	if customProjectMetadata != "" {
		ctx = api.WithProjectMetadata(ctx, customProjectMetadata)
	}

	return s.builder.Submit(ctx, s.accounts.Address())
}

// EncodeGatewayBatch encodes the gateway batch as a transaction sent by the
// owner, or by any forwarder when delegate is set
func (s *Sdk) EncodeGatewayBatch(ctx context.Context, delegate bool) (types.TransactionRequest, error) {
	if err := s.Require(ctx, DefaultRequirements().withSession().withContractAccount()); err != nil {
		return types.TransactionRequest{}, err
	}

	return s.builder.Encode(ctx, s.accounts.Address(), s.wallet.Address(), delegate)
}

// ClearGatewayBatch discards the gateway batch
func (s *Sdk) ClearGatewayBatch() types.GatewayBatch {
	return s.builder.Clear()
}

// GetGatewaySubmittedBatch returns the relay record of hash
func (s *Sdk) GetGatewaySubmittedBatch(ctx context.Context, hash common.Hash) (*types.SubmittedBatch, error) {
	if err := s.Require(ctx, DefaultRequirements().withSession()); err != nil {
		return nil, err
	}

	return s.tracker.GetSubmittedBatch(ctx, hash)
}

// GetGatewaySubmittedBatches returns a page of the batches of the current account
func (s *Sdk) GetGatewaySubmittedBatches(ctx context.Context, page uint64) (*types.SubmittedBatches, error) {
	if err := s.Require(ctx, DefaultRequirements().withSession().withContractAccount()); err != nil {
		return nil, err
	}

	return s.tracker.GetSubmittedBatches(ctx, s.accounts.Address(), page)
}

// WaitGatewaySubmittedBatch blocks until hash reaches a final state
func (s *Sdk) WaitGatewaySubmittedBatch(ctx context.Context, hash common.Hash) (*types.SubmittedBatch, error) {
	if err := s.Require(ctx, DefaultRequirements().withSession()); err != nil {
		return nil, err
	}

	return s.tracker.WaitSubmittedBatch(ctx, hash)
}

// GetGatewaySupportedToken returns the refund terms of token
func (s *Sdk) GetGatewaySupportedToken(ctx context.Context, token common.Address) (*types.SupportedToken, error) {
	if err := s.Require(ctx, Requirements{Network: true}); err != nil {
		return nil, err
	}

	return s.tracker.GetSupportedToken(ctx, token)
}

// GetGatewaySupportedTokens returns every token accepted as refund
func (s *Sdk) GetGatewaySupportedTokens(ctx context.Context) ([]types.SupportedToken, error) {
	if err := s.Require(ctx, Requirements{Network: true}); err != nil {
		return nil, err
	}

	return s.tracker.GetSupportedTokens(ctx)
}

// EstimateGatewayKnownOp prices op without building a batch
func (s *Sdk) EstimateGatewayKnownOp(
	ctx context.Context, op types.KnownOp, refundToken *common.Address,
) (*types.EstimatedKnownOp, error) {
	if err := s.Require(ctx, DefaultRequirements().withSession()); err != nil {
		return nil, err
	}

	return s.tracker.EstimateKnownOp(ctx, op, refundToken)
}

// EncodeAddAccountOwner encodes the call adding owner to the current account
func (s *Sdk) EncodeAddAccountOwner(ctx context.Context, owner common.Address) (types.TransactionRequest, error) {
	if err := s.Require(ctx, DefaultRequirements().withContractAccount()); err != nil {
		return types.TransactionRequest{}, err
	}
	registry, err := s.accountRegistry()
	if err != nil {
		return types.TransactionRequest{}, err
	}

	return registry.EncodeAddAccountOwner(s.accounts.Address(), owner)
}

// EncodeRemoveAccountOwner encodes the call removing owner from the current account
func (s *Sdk) EncodeRemoveAccountOwner(ctx context.Context, owner common.Address) (types.TransactionRequest, error) {
	if err := s.Require(ctx, DefaultRequirements().withContractAccount()); err != nil {
		return types.TransactionRequest{}, err
	}
	registry, err := s.accountRegistry()
	if err != nil {
		return types.TransactionRequest{}, err
	}

	return registry.EncodeRemoveAccountOwner(s.accounts.Address(), owner)
}

// EncodeExecuteAccountTransaction encodes tx as a call executed by the current account
func (s *Sdk) EncodeExecuteAccountTransaction(
	ctx context.Context, tx types.TransactionRequest,
) (types.TransactionRequest, error) {
	if err := s.Require(ctx, DefaultRequirements().withContractAccount()); err != nil {
		return types.TransactionRequest{}, err
	}
	registry, err := s.accountRegistry()
	if err != nil {
		return types.TransactionRequest{}, err
	}

	return registry.EncodeExecuteAccountTransaction(s.accounts.Address(), tx.To, tx.Value, tx.Data)
}

// BatchAddAccountOwner appends the call adding owner to the gateway batch
func (s *Sdk) BatchAddAccountOwner(ctx context.Context, owner common.Address) (types.GatewayBatch, error) {
	tx, err := s.EncodeAddAccountOwner(ctx, owner)
	if err != nil {
		return types.GatewayBatch{}, err
	}

	return s.BatchGatewayTransactionRequest(ctx, tx)
}

// BatchRemoveAccountOwner appends the call removing owner to the gateway batch
func (s *Sdk) BatchRemoveAccountOwner(ctx context.Context, owner common.Address) (types.GatewayBatch, error) {
	tx, err := s.EncodeRemoveAccountOwner(ctx, owner)
	if err != nil {
		return types.GatewayBatch{}, err
	}

	return s.BatchGatewayTransactionRequest(ctx, tx)
}

// BatchExecuteAccountTransaction appends tx, executed by the current account, to the gateway batch
func (s *Sdk) BatchExecuteAccountTransaction(
	ctx context.Context, tx types.TransactionRequest,
) (types.GatewayBatch, error) {
	encoded, err := s.EncodeExecuteAccountTransaction(ctx, tx)
	if err != nil {
		return types.GatewayBatch{}, err
	}

	return s.BatchGatewayTransactionRequest(ctx, encoded)
}

// SendTransaction signs tx with the connected wallet and broadcasts it on
// the current network
func (s *Sdk) SendTransaction(ctx context.Context, tx types.TransactionRequest) (common.Hash, error) {
	if err := s.Require(ctx, DefaultRequirements()); err != nil {
		return common.Hash{}, err
	}
	sender, ok := s.wallet.Provider().(TransactionSender)
	if !ok {
		return common.Hash{}, errNoSender
	}
	n, err := s.currentNetwork()
	if err != nil {
		return common.Hash{}, err
	}
	client, err := s.chainClient(ctx, n)
	if err != nil {
		return common.Hash{}, err
	}

	return sender.SendTransaction(ctx, client, tx)
}
