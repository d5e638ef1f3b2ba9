package rpc

import (
	"context"

	"github.com/0xPolygon/cdk-gateway/gateway"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
)

// Gatewayer is the client state served over JSON-RPC. *sdk.Sdk implements it.
type Gatewayer interface {
	WalletAddress() common.Address
	NetworkChainID(name string) (uint64, error)
	CurrentProject() *types.Project
	Account() *types.Account
	AccountMember() *types.AccountMember
	Session() *types.Session
	GatewayBatch() types.GatewayBatch
	GatewayBatchState() gateway.State

	SwitchNetwork(name string) error
	SwitchCurrentProject(p *types.Project)

	SyncAccount(ctx context.Context) (*types.Account, error)
	ComputeContractAccount(ctx context.Context, sync bool) (*types.Account, error)
	JoinContractAccount(ctx context.Context, address common.Address, sync bool) (*types.Account, error)
	GetAccount(ctx context.Context, address common.Address) (*types.Account, error)
	GetAccountMembers(ctx context.Context, address common.Address, page uint64) (*types.AccountMembers, error)
	GetConnectedAccounts(ctx context.Context, page uint64) (*types.Accounts, error)

	BatchGatewayTransactionRequest(ctx context.Context, txs ...types.TransactionRequest) (types.GatewayBatch, error)
	BatchAddAccountOwner(ctx context.Context, owner common.Address) (types.GatewayBatch, error)
	BatchRemoveAccountOwner(ctx context.Context, owner common.Address) (types.GatewayBatch, error)
	BatchExecuteAccountTransaction(ctx context.Context, tx types.TransactionRequest) (types.GatewayBatch, error)
	EstimateGatewayBatch(ctx context.Context, refundToken *common.Address) (types.GatewayBatch, error)
	SubmitGatewayBatch(ctx context.Context, customProjectMetadata string) (*types.SubmittedBatch, error)
	EncodeGatewayBatch(ctx context.Context, delegate bool) (types.TransactionRequest, error)
	SendTransaction(ctx context.Context, tx types.TransactionRequest) (common.Hash, error)
	ClearGatewayBatch() types.GatewayBatch

	GetGatewaySubmittedBatch(ctx context.Context, hash common.Hash) (*types.SubmittedBatch, error)
	GetGatewaySubmittedBatches(ctx context.Context, page uint64) (*types.SubmittedBatches, error)
	WaitGatewaySubmittedBatch(ctx context.Context, hash common.Hash) (*types.SubmittedBatch, error)
	GetGatewaySupportedToken(ctx context.Context, token common.Address) (*types.SupportedToken, error)
	GetGatewaySupportedTokens(ctx context.Context) ([]types.SupportedToken, error)
	EstimateGatewayKnownOp(ctx context.Context, op types.KnownOp, refundToken *common.Address) (*types.EstimatedKnownOp, error)
}
