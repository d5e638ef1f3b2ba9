package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// AccountType selects the synchronization protocol of an account
type AccountType string

const (
	// KeyOwned account controlled directly by a signing key
	KeyOwned AccountType = "Key"
	// ContractManaged smart contract account controlled by its owners
	ContractManaged AccountType = "Contract"
)

// AccountState is the deployment state reported by the backend
type AccountState string

const (
	UnknownRemote AccountState = "UnKnown"
	Synced        AccountState = "Deployed"
)

// MemberType is the caller's role in a contract account
type MemberType string

const (
	MemberOwner MemberType = "Owner"
	MemberOther MemberType = "Other"
)

// MemberState is the membership state of the caller in a contract account
type MemberState string

const (
	MemberAdded   MemberState = "Added"
	MemberPending MemberState = "Pending"
	MemberRemoved MemberState = "Removed"
)

// Account is the identity the gateway acts for
type Account struct {
	Address   common.Address `json:"address"`
	Type      AccountType    `json:"type"`
	State     AccountState   `json:"state,omitempty"`
	Store     string         `json:"store,omitempty"`
	CreatedAt *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
	// SynchronizedAt is nil until the backend confirmed the account
	SynchronizedAt *time.Time `json:"synchronizedAt,omitempty"`
}

// IsContract reports whether a is a non nil contract managed account
func (a *Account) IsContract() bool {
	return a != nil && a.Type == ContractManaged
}

// AccountMember is the caller's membership record in a contract account
type AccountMember struct {
	// Account is only populated on backend responses
	Account *Account `json:"account,omitempty"`
	// Member is the member's own account, populated on member listings
	Member         *Account    `json:"member,omitempty"`
	Type           MemberType  `json:"type"`
	State          MemberState `json:"state"`
	Store          string      `json:"store,omitempty"`
	CreatedAt      *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time  `json:"updatedAt,omitempty"`
	SynchronizedAt *time.Time  `json:"synchronizedAt,omitempty"`
}

// Accounts is a page of accounts
type Accounts struct {
	Items       []Account `json:"items"`
	CurrentPage uint64    `json:"currentPage"`
	NextPage    uint64    `json:"nextPage,omitempty"`
}

// AccountMembers is a page of account members
type AccountMembers struct {
	Items       []AccountMember `json:"items"`
	CurrentPage uint64          `json:"currentPage"`
	NextPage    uint64          `json:"nextPage,omitempty"`
}
