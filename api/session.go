package api

import (
	"context"

	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CreateSessionParams is the signed answer to a session code
type CreateSessionParams struct {
	Account   common.Address `json:"account"`
	Code      string         `json:"code"`
	Signature hexutil.Bytes  `json:"signature"`
	// TTL in seconds, zero lets the backend choose
	TTL uint64 `json:"ttl,omitempty"`
}

// CreateSessionCode requests a one time challenge for account
func (c *Client) CreateSessionCode(ctx context.Context, account common.Address) (string, error) {
	const method = "session_createSessionCode"

	var code string
	if err := c.call(ctx, &code, method, account); err != nil {
		return "", err
	}
	if code == "" {
		return "", nullResult(method)
	}

	return code, nil
}

// CreateSession exchanges a signed code for a session
func (c *Client) CreateSession(ctx context.Context, params CreateSessionParams) (*types.CreatedSession, error) {
	const method = "session_createSession"

	var res *types.CreatedSession
	if err := c.call(ctx, &res, method, params); err != nil {
		return nil, err
	}
	if res == nil || res.Token == "" || res.Account == nil {
		return nil, nullResult(method)
	}

	return res, nil
}

// SessionMessage is the text a wallet signs to prove it owns the account asking for a session
func SessionMessage(code string) string {
	return "Session code: " + code
}
