package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PendingBatchRequest is one call queued in the batch builder
type PendingBatchRequest struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// EstimatedBatch holds the fee terms the gateway signed for a draft
type EstimatedBatch struct {
	RefundToken       *common.Address `json:"refundToken,omitempty"`
	RefundAmount      *big.Int        `json:"refundAmount"`
	RefundTokenPayee  common.Address  `json:"refundTokenPayee"`
	EstimatedGas      uint64          `json:"estimatedGas"`
	EstimatedGasPrice *big.Int        `json:"estimatedGasPrice"`
	Signature         hexutil.Bytes   `json:"signature"`
	CreatedAt         time.Time       `json:"createdAt"`
	ExpiredAt         time.Time       `json:"expiredAt"`
}

// Expired reports whether the gateway no longer honors the estimate at now
func (e *EstimatedBatch) Expired(now time.Time) bool {
	return e == nil || (!e.ExpiredAt.IsZero() && !now.Before(e.ExpiredAt))
}

// GatewayBatch is a snapshot of the batch builder
type GatewayBatch struct {
	Requests   []PendingBatchRequest `json:"requests"`
	Estimation *EstimatedBatch       `json:"estimation,omitempty"`
}

// SubmittedBatchState is the relay state of a submitted batch
type SubmittedBatchState string

const (
	Queued    SubmittedBatchState = "Queued"
	Sent      SubmittedBatchState = "Sent"
	Confirmed SubmittedBatchState = "Confirmed"
	Reverted  SubmittedBatchState = "Reverted"
	Failed    SubmittedBatchState = "Failed"
)

// IsFinal reports whether the state can no longer change
func (s SubmittedBatchState) IsFinal() bool {
	return s == Confirmed || s == Reverted || s == Failed
}

// SubmittedBatchReceipt carries the chain receipt fields once the batch is mined
type SubmittedBatchReceipt struct {
	Hash        common.Hash `json:"hash"`
	BlockNumber uint64      `json:"blockNumber"`
	GasUsed     uint64      `json:"gasUsed"`
	Status      uint64      `json:"status"`
}

// SubmittedBatch is the relayer's record of a submitted batch, identified by Hash
type SubmittedBatch struct {
	Hash         common.Hash            `json:"hash"`
	State        SubmittedBatchState    `json:"state"`
	Sender       common.Address         `json:"sender,omitempty"`
	Account      common.Address         `json:"account"`
	Nonce        uint64                 `json:"nonce"`
	To           []common.Address       `json:"to"`
	Data         []hexutil.Bytes        `json:"data"`
	GasPrice     *big.Int               `json:"gasPrice,omitempty"`
	GasLimit     uint64                 `json:"gasLimit,omitempty"`
	RefundToken  *common.Address        `json:"refundToken,omitempty"`
	RefundAmount *big.Int               `json:"refundAmount,omitempty"`
	Transaction  *SubmittedBatchReceipt `json:"transaction,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// SubmittedBatches is a page of submitted batches
type SubmittedBatches struct {
	Items       []SubmittedBatch `json:"items"`
	CurrentPage uint64           `json:"currentPage"`
	NextPage    uint64           `json:"nextPage,omitempty"`
}

// SupportedToken is a token the gateway accepts as refund
type SupportedToken struct {
	Address      common.Address `json:"address"`
	Symbol       string         `json:"symbol,omitempty"`
	Decimals     uint8          `json:"decimals,omitempty"`
	ExchangeRate *big.Int       `json:"exchangeRate,omitempty"`
}

// KnownOp names an operation the gateway can price without a draft
type KnownOp string

// EstimatedKnownOp holds the fee terms for a known operation
type EstimatedKnownOp struct {
	RefundToken       *common.Address `json:"refundToken,omitempty"`
	RefundAmount      *big.Int        `json:"refundAmount"`
	EstimatedGas      uint64          `json:"estimatedGas"`
	EstimatedGasPrice *big.Int        `json:"estimatedGasPrice"`
}

// TransactionRequest is a transaction ready to be signed and sent.
// From is nil when any sender may submit it.
type TransactionRequest struct {
	From  *common.Address `json:"from,omitempty"`
	To    common.Address  `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Value *big.Int        `json:"value,omitempty"`
}
