package common

const (
	// RPC name to identify the JSON-RPC server component
	RPC = "rpc"
	// SESSION_STORE name to identify the durable session storage component
	SESSION_STORE = "session-store" //nolint:stylecheck
	// GATEWAY name to identify the batch builder and tracker component
	GATEWAY = "gateway"
	// ACCOUNT name to identify the account synchronizer component
	ACCOUNT = "account"
	// SESSION name to identify the session manager component
	SESSION = "session"
	// BACKEND name to identify the gateway backend client component
	BACKEND = "backend"
	// SDK name to identify the facade wiring every service
	SDK = "sdk"
)
