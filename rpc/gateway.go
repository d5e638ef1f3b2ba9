package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-gateway/log"
	rpctypes "github.com/0xPolygon/cdk-gateway/rpc/types"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// ACCOUNTGW is the namespace of the account gateway service
	ACCOUNTGW = "accountgw"
	meterName = "github.com/0xPolygon/cdk-gateway/rpc"
)

// GatewayEndpoints contains implementations for the "accountgw" RPC endpoints
type GatewayEndpoints struct {
	logger       *log.Logger
	meter        metric.Meter
	readTimeout  time.Duration
	writeTimeout time.Duration
	gw           Gatewayer
}

// NewGatewayEndpoints returns GatewayEndpoints
func NewGatewayEndpoints(
	logger *log.Logger,
	writeTimeout time.Duration,
	readTimeout time.Duration,
	gw Gatewayer,
) *GatewayEndpoints {
	meter := otel.Meter(meterName)
	return &GatewayEndpoints{
		logger:       logger,
		meter:        meter,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		gw:           gw,
	}
}

func (b *GatewayEndpoints) count(ctx context.Context, name string) {
	c, merr := b.meter.Int64Counter(name)
	if merr != nil {
		b.logger.Warnf("failed to create %s counter: %s", name, merr)
		return
	}
	c.Add(ctx, 1)
}

func (b *GatewayEndpoints) fail(what string, err error) rpc.Error {
	b.logger.Debugf("failed to %s: %v", what, err)
	return rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to %s, error: %s", what, err))
}

// Status returns the connected wallet, the selected network and project,
// the account and the batch being built.
// curl -X POST http://localhost:5576/ -H "Content-Type: application/json" \
// -d '{"method":"accountgw_status", "params":[], "id":1}'
func (b *GatewayEndpoints) Status() (interface{}, rpc.Error) {
	b.count(context.Background(), "status")

	status := rpctypes.Status{
		Wallet:     b.gw.WalletAddress(),
		Project:    b.gw.CurrentProject(),
		Account:    b.gw.Account(),
		Member:     b.gw.AccountMember(),
		BatchState: b.gw.GatewayBatchState().String(),
		Batch:      b.gw.GatewayBatch(),
	}
	if chainID, err := b.gw.NetworkChainID(""); err == nil {
		status.ChainID = chainID
	}
	if s := b.gw.Session(); s != nil {
		status.Session = &rpctypes.SessionStatus{TTL: s.TTL, ExpireAt: s.ExpireAt}
	}

	return status, nil
}

// SwitchNetwork selects the network called name
func (b *GatewayEndpoints) SwitchNetwork(name string) (interface{}, rpc.Error) {
	b.count(context.Background(), "switch_network")

	if err := b.gw.SwitchNetwork(name); err != nil {
		return nil, b.fail("switch network", err)
	}
	chainID, err := b.gw.NetworkChainID(name)
	if err != nil {
		return nil, b.fail("switch network", err)
	}

	return chainID, nil
}

// SwitchProject selects the project with key, an empty key unselects it
func (b *GatewayEndpoints) SwitchProject(key string, metadata string) (interface{}, rpc.Error) {
	b.count(context.Background(), "switch_project")

	if key == "" {
		b.gw.SwitchCurrentProject(nil)
		return nil, nil
	}
	b.gw.SwitchCurrentProject(&types.Project{Key: key, Metadata: metadata})

	return b.gw.CurrentProject(), nil
}

// SyncAccount refreshes the current account from the backend
func (b *GatewayEndpoints) SyncAccount() (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "sync_account")

	acc, err := b.gw.SyncAccount(ctx)
	if err != nil {
		return nil, b.fail("sync account", err)
	}

	return acc, nil
}

// ComputeContractAccount derives, or creates when sync is set, the contract
// account owned by the wallet
func (b *GatewayEndpoints) ComputeContractAccount(sync bool) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()
	b.count(ctx, "compute_contract_account")

	acc, err := b.gw.ComputeContractAccount(ctx, sync)
	if err != nil {
		return nil, b.fail("compute contract account", err)
	}

	return acc, nil
}

// JoinContractAccount selects the contract account at address
func (b *GatewayEndpoints) JoinContractAccount(address common.Address, sync bool) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()
	b.count(ctx, "join_contract_account")

	acc, err := b.gw.JoinContractAccount(ctx, address, sync)
	if err != nil {
		return nil, b.fail("join contract account", err)
	}

	return acc, nil
}

// GetAccount returns the account at address, the current one when address is nil
func (b *GatewayEndpoints) GetAccount(address *common.Address) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "get_account")

	acc, err := b.gw.GetAccount(ctx, addressOrZero(address))
	if err != nil {
		return nil, b.fail("get account", err)
	}
	if acc == nil {
		return nil, rpc.NewRPCError(rpc.NotFoundErrorCode, "account not found")
	}

	return acc, nil
}

// GetAccountMembers returns a page of the members of the account at address,
// the current one when address is nil
func (b *GatewayEndpoints) GetAccountMembers(address *common.Address, page uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "get_account_members")

	members, err := b.gw.GetAccountMembers(ctx, addressOrZero(address), page)
	if err != nil {
		return nil, b.fail("get account members", err)
	}

	return members, nil
}

// GetConnectedAccounts returns a page of the accounts the wallet is a member of
func (b *GatewayEndpoints) GetConnectedAccounts(page uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "get_connected_accounts")

	accounts, err := b.gw.GetConnectedAccounts(ctx, page)
	if err != nil {
		return nil, b.fail("get connected accounts", err)
	}

	return accounts, nil
}

// BatchTransactions appends txs to the gateway batch
func (b *GatewayEndpoints) BatchTransactions(txs []types.TransactionRequest) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "batch_transactions")

	if len(txs) == 0 {
		return nil, rpc.NewRPCError(rpc.InvalidParamsErrorCode, "no transactions to batch")
	}
	batch, err := b.gw.BatchGatewayTransactionRequest(ctx, txs...)
	if err != nil {
		return nil, b.fail("batch transactions", err)
	}

	return batch, nil
}

// BatchAddAccountOwner appends the call adding owner to the gateway batch
func (b *GatewayEndpoints) BatchAddAccountOwner(owner common.Address) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "batch_add_account_owner")

	batch, err := b.gw.BatchAddAccountOwner(ctx, owner)
	if err != nil {
		return nil, b.fail("batch add account owner", err)
	}

	return batch, nil
}

// BatchRemoveAccountOwner appends the call removing owner to the gateway batch
func (b *GatewayEndpoints) BatchRemoveAccountOwner(owner common.Address) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "batch_remove_account_owner")

	batch, err := b.gw.BatchRemoveAccountOwner(ctx, owner)
	if err != nil {
		return nil, b.fail("batch remove account owner", err)
	}

	return batch, nil
}

// BatchExecuteAccountTransaction appends tx, executed by the current account,
// to the gateway batch
func (b *GatewayEndpoints) BatchExecuteAccountTransaction(tx types.TransactionRequest) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "batch_execute_account_transaction")

	batch, err := b.gw.BatchExecuteAccountTransaction(ctx, tx)
	if err != nil {
		return nil, b.fail("batch account transaction", err)
	}

	return batch, nil
}

// EstimateBatch prices the gateway batch, refunding in refundToken when set
// curl -X POST http://localhost:5576/ -H "Content-Type: application/json" \
// -d '{"method":"accountgw_estimateBatch", "params":[null], "id":1}'
func (b *GatewayEndpoints) EstimateBatch(refundToken *common.Address) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()
	b.count(ctx, "estimate_batch")

	batch, err := b.gw.EstimateGatewayBatch(ctx, refundToken)
	if err != nil {
		return nil, b.fail("estimate batch", err)
	}

	return batch, nil
}

// SubmitBatch submits the estimated gateway batch. A non empty metadata
// replaces the project metadata for this submission only.
func (b *GatewayEndpoints) SubmitBatch(metadata string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()
	b.count(ctx, "submit_batch")

	submitted, err := b.gw.SubmitGatewayBatch(ctx, metadata)
	if err != nil {
		if errors.Is(err, types.ErrStaleEstimate) {
			return nil, rpc.NewRPCError(rpc.DefaultErrorCode, "batch changed since it was estimated, estimate it again")
		}
		return nil, b.fail("submit batch", err)
	}

	return submitted, nil
}

// EncodeBatch encodes the gateway batch as a transaction the wallet sends itself
func (b *GatewayEndpoints) EncodeBatch(delegate bool) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "encode_batch")

	tx, err := b.gw.EncodeGatewayBatch(ctx, delegate)
	if err != nil {
		return nil, b.fail("encode batch", err)
	}

	return tx, nil
}

// SendBatch encodes the gateway batch and broadcasts it with the wallet
func (b *GatewayEndpoints) SendBatch(delegate bool) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()
	b.count(ctx, "send_batch")

	tx, err := b.gw.EncodeGatewayBatch(ctx, delegate)
	if err != nil {
		return nil, b.fail("encode batch", err)
	}
	hash, err := b.gw.SendTransaction(ctx, tx)
	if err != nil {
		return nil, b.fail("send batch", err)
	}
	b.logger.Infof("gateway batch sent by the wallet in tx %s", hash.Hex())

	return rpctypes.SentBatch{Transaction: tx, Hash: hash}, nil
}

// ClearBatch drops the gateway batch
func (b *GatewayEndpoints) ClearBatch() (interface{}, rpc.Error) {
	b.count(context.Background(), "clear_batch")

	return b.gw.ClearGatewayBatch(), nil
}

// GetSubmittedBatch returns the submitted batch with hash
func (b *GatewayEndpoints) GetSubmittedBatch(hash common.Hash) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "get_submitted_batch")

	batch, err := b.gw.GetGatewaySubmittedBatch(ctx, hash)
	if err != nil {
		return nil, b.fail("get submitted batch", err)
	}

	return batch, nil
}

// GetSubmittedBatches returns a page of the batches submitted for the current account
func (b *GatewayEndpoints) GetSubmittedBatches(page uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "get_submitted_batches")

	batches, err := b.gw.GetGatewaySubmittedBatches(ctx, page)
	if err != nil {
		return nil, b.fail("get submitted batches", err)
	}

	return batches, nil
}

// WaitSubmittedBatch polls the submitted batch with hash until it reaches a
// final state or the write timeout elapses
func (b *GatewayEndpoints) WaitSubmittedBatch(hash common.Hash) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()
	b.count(ctx, "wait_submitted_batch")

	batch, err := b.gw.WaitGatewaySubmittedBatch(ctx, hash)
	if err != nil {
		return nil, b.fail("wait submitted batch", err)
	}

	return batch, nil
}

// GetSupportedTokens returns the tokens accepted as refund on the current network
func (b *GatewayEndpoints) GetSupportedTokens() (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "get_supported_tokens")

	tokens, err := b.gw.GetGatewaySupportedTokens(ctx)
	if err != nil {
		return nil, b.fail("get supported tokens", err)
	}

	return tokens, nil
}

// GetSupportedToken returns the refund token at address
func (b *GatewayEndpoints) GetSupportedToken(token common.Address) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "get_supported_token")

	supported, err := b.gw.GetGatewaySupportedToken(ctx, token)
	if err != nil {
		return nil, b.fail("get supported token", err)
	}

	return supported, nil
}

// EstimateKnownOp prices op without building a batch
func (b *GatewayEndpoints) EstimateKnownOp(op string, refundToken *common.Address) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "estimate_known_op")

	if op == "" {
		return nil, rpc.NewRPCError(rpc.InvalidParamsErrorCode, "missing op")
	}
	estimated, err := b.gw.EstimateGatewayKnownOp(ctx, types.KnownOp(op), refundToken)
	if err != nil {
		return nil, b.fail("estimate known op", err)
	}

	return estimated, nil
}

func addressOrZero(address *common.Address) common.Address {
	if address == nil {
		return common.Address{}
	}

	return *address
}
