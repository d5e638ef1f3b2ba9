package client

import (
	"encoding/json"
	"fmt"

	rpctypes "github.com/0xPolygon/cdk-gateway/rpc/types"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
)

type GatewayClientInterface interface {
	Status() (*rpctypes.Status, error)
	SwitchNetwork(name string) (uint64, error)
	SwitchProject(key, metadata string) error
	SyncAccount() (*types.Account, error)
	ComputeContractAccount(sync bool) (*types.Account, error)
	JoinContractAccount(address common.Address, sync bool) (*types.Account, error)
	BatchTransactions(txs []types.TransactionRequest) (*types.GatewayBatch, error)
	EstimateBatch(refundToken *common.Address) (*types.GatewayBatch, error)
	SubmitBatch(metadata string) (*types.SubmittedBatch, error)
	SendBatch(delegate bool) (*rpctypes.SentBatch, error)
	ClearBatch() error
	GetSubmittedBatch(hash common.Hash) (*types.SubmittedBatch, error)
	WaitSubmittedBatch(hash common.Hash) (*types.SubmittedBatch, error)
	GetSupportedTokens() ([]types.SupportedToken, error)
}

func call[T any](url, method string, params ...interface{}) (T, error) {
	var result T
	response, err := rpc.JSONRPCCall(url, method, params...)
	if err != nil {
		return result, err
	}
	if response.Error != nil {
		return result, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	if len(response.Result) == 0 {
		return result, nil
	}

	return result, json.Unmarshal(response.Result, &result)
}

// Status returns the wallet, network, project, account and batch of the daemon
func (c *Client) Status() (*rpctypes.Status, error) {
	return call[*rpctypes.Status](c.url, "accountgw_status")
}

// SwitchNetwork selects the network called name and returns its chain id
func (c *Client) SwitchNetwork(name string) (uint64, error) {
	return call[uint64](c.url, "accountgw_switchNetwork", name)
}

// SwitchProject selects the project with key, an empty key unselects it
func (c *Client) SwitchProject(key, metadata string) error {
	_, err := call[*types.Project](c.url, "accountgw_switchProject", key, metadata)
	return err
}

func (c *Client) SyncAccount() (*types.Account, error) {
	return call[*types.Account](c.url, "accountgw_syncAccount")
}

func (c *Client) ComputeContractAccount(sync bool) (*types.Account, error) {
	return call[*types.Account](c.url, "accountgw_computeContractAccount", sync)
}

func (c *Client) JoinContractAccount(address common.Address, sync bool) (*types.Account, error) {
	return call[*types.Account](c.url, "accountgw_joinContractAccount", address, sync)
}

// BatchTransactions appends txs to the gateway batch of the daemon
func (c *Client) BatchTransactions(txs []types.TransactionRequest) (*types.GatewayBatch, error) {
	return call[*types.GatewayBatch](c.url, "accountgw_batchTransactions", txs)
}

// EstimateBatch prices the gateway batch, refunding in refundToken when set
func (c *Client) EstimateBatch(refundToken *common.Address) (*types.GatewayBatch, error) {
	return call[*types.GatewayBatch](c.url, "accountgw_estimateBatch", refundToken)
}

// SubmitBatch submits the estimated gateway batch
func (c *Client) SubmitBatch(metadata string) (*types.SubmittedBatch, error) {
	return call[*types.SubmittedBatch](c.url, "accountgw_submitBatch", metadata)
}

// SendBatch has the daemon wallet send the gateway batch itself
func (c *Client) SendBatch(delegate bool) (*rpctypes.SentBatch, error) {
	return call[*rpctypes.SentBatch](c.url, "accountgw_sendBatch", delegate)
}

func (c *Client) ClearBatch() error {
	_, err := call[*types.GatewayBatch](c.url, "accountgw_clearBatch")
	return err
}

func (c *Client) GetSubmittedBatch(hash common.Hash) (*types.SubmittedBatch, error) {
	return call[*types.SubmittedBatch](c.url, "accountgw_getSubmittedBatch", hash)
}

// WaitSubmittedBatch blocks until the submitted batch with hash is final or
// the daemon write timeout elapses
func (c *Client) WaitSubmittedBatch(hash common.Hash) (*types.SubmittedBatch, error) {
	return call[*types.SubmittedBatch](c.url, "accountgw_waitSubmittedBatch", hash)
}

func (c *Client) GetSupportedTokens() ([]types.SupportedToken, error) {
	return call[[]types.SupportedToken](c.url, "accountgw_getSupportedTokens")
}
