package sdk

import (
	"context"

	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
)

// Requirements lists the preconditions of an operation. They are checked in
// field order and the first unmet one fails the call.
type Requirements struct {
	// Network a chain id is resolved
	Network bool
	// Wallet a wallet is connected
	Wallet bool
	// Session a valid session exists, verifying, refreshing or creating one if needed
	Session bool
	// ContractAccount the current account is a contract account
	ContractAccount bool
	// CurrentProject a project is selected
	CurrentProject bool
}

// DefaultRequirements are the preconditions of most operations
func DefaultRequirements() Requirements {
	return Requirements{
		Network: true,
		Wallet:  true,
	}
}

func (r Requirements) withSession() Requirements {
	r.Session = true
	return r
}

func (r Requirements) withContractAccount() Requirements {
	r.ContractAccount = true
	return r
}

// Require checks req against the current state. The session check may open
// or refresh a session.
func (s *Sdk) Require(ctx context.Context, req Requirements) error {
	if req.Network && s.networks.ChainID() == 0 {
		return types.ErrUnknownNetwork
	}
	if req.Wallet && s.wallet.Address() == (common.Address{}) {
		return types.ErrWalletRequired
	}
	if req.Session {
		if err := s.sessions.VerifySession(ctx); err != nil {
			return err
		}
	}
	if req.ContractAccount {
		if account := s.accounts.Account(); account == nil || !account.IsContract() {
			return types.ErrContractAccountRequired
		}
	}
	if req.CurrentProject && s.projects.Current() == nil {
		return types.ErrProjectRequired
	}

	return nil
}
