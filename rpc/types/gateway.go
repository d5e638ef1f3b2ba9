package types

import (
	"time"

	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
)

// SessionStatus describes the current session without exposing its token
type SessionStatus struct {
	TTL      uint64    `json:"ttl"`
	ExpireAt time.Time `json:"expireAt"`
}

// Status is the identity and batch snapshot served by accountgw_status
type Status struct {
	Wallet     common.Address       `json:"wallet"`
	ChainID    uint64               `json:"chainId,omitempty"`
	Project    *types.Project       `json:"project,omitempty"`
	Account    *types.Account       `json:"account,omitempty"`
	Member     *types.AccountMember `json:"member,omitempty"`
	Session    *SessionStatus       `json:"session,omitempty"`
	BatchState string               `json:"batchState"`
	Batch      types.GatewayBatch   `json:"batch"`
}

// SentBatch is the result of encoding the gateway batch and broadcasting it
type SentBatch struct {
	Transaction types.TransactionRequest `json:"transaction"`
	Hash        common.Hash              `json:"hash"`
}
