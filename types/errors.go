package types

import "errors"

var (
	// ErrUnknownNetwork no chain id is currently resolved
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrWalletRequired no signing address is available
	ErrWalletRequired = errors.New("wallet required")
	// ErrContractAccountRequired the current account is missing or not a contract account
	ErrContractAccountRequired = errors.New("contract account required")
	// ErrProjectRequired no project is currently selected
	ErrProjectRequired = errors.New("project required")
	// ErrSessionInvalid the challenge, sign or verify step of a session failed
	ErrSessionInvalid = errors.New("session invalid")
	// ErrRemoteSyncFailure a backend call failed or returned malformed data
	ErrRemoteSyncFailure = errors.New("remote sync failure")
	// ErrStaleEstimate submit without an estimate paired with the current draft
	ErrStaleEstimate = errors.New("stale estimate")
	// ErrUnsupportedNetwork the network name has no registered chain id
	ErrUnsupportedNetwork = errors.New("unsupported network")
	// ErrEmptyBatch the batch builder holds no pending requests
	ErrEmptyBatch = errors.New("empty batch")
	// ErrIdentityChanged the wallet or account changed while a remote call was in flight
	ErrIdentityChanged = errors.New("identity changed during remote call")
)
