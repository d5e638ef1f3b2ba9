package api

import (
	"context"

	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
)

// SyncAccount asks the backend for the canonical key account of the caller
func (c *Client) SyncAccount(ctx context.Context) (*types.Account, error) {
	const method = "account_syncAccount"

	var account *types.Account
	if err := c.call(ctx, &account, method); err != nil {
		return nil, err
	}
	if account == nil {
		return nil, nullResult(method)
	}

	return account, nil
}

// SyncAccountMember asks the backend for the contract account and the caller's membership in it
func (c *Client) SyncAccountMember(ctx context.Context, account common.Address) (*types.AccountMember, error) {
	const method = "account_syncAccountMember"

	var member *types.AccountMember
	if err := c.call(ctx, &member, method, account); err != nil {
		return nil, err
	}
	if member == nil || member.Account == nil {
		return nil, nullResult(method)
	}

	return member, nil
}

// GetAccount returns the backend record of account
func (c *Client) GetAccount(ctx context.Context, account common.Address) (*types.Account, error) {
	const method = "account_getAccount"

	var res *types.Account
	if err := c.call(ctx, &res, method, account); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nullResult(method)
	}

	return res, nil
}

// GetConnectedAccounts returns the accounts the caller is a member of
func (c *Client) GetConnectedAccounts(ctx context.Context, page uint64) (*types.Accounts, error) {
	const method = "account_getConnectedAccounts"

	var res *types.Accounts
	if err := c.call(ctx, &res, method, page); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nullResult(method)
	}

	return res, nil
}

// GetAccountMembers returns the members of account
func (c *Client) GetAccountMembers(
	ctx context.Context, account common.Address, page uint64,
) (*types.AccountMembers, error) {
	const method = "account_getAccountMembers"

	var res *types.AccountMembers
	if err := c.call(ctx, &res, method, account, page); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nullResult(method)
	}

	return res, nil
}
