package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestSessionValid(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session *Session
		valid   bool
	}{
		{name: "nil", session: nil},
		{name: "no token", session: &Session{ExpireAt: now.Add(time.Hour)}},
		{name: "zero expiry", session: &Session{Token: "t"}},
		{name: "expired", session: &Session{Token: "t", ExpireAt: now.Add(-time.Second)}},
		{name: "inside skew", session: &Session{Token: "t", ExpireAt: now.Add(SessionExpirySkew)}},
		{name: "valid", session: &Session{Token: "t", ExpireAt: now.Add(SessionExpirySkew + time.Second)}, valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.valid, tt.session.Valid(now))
		})
	}
}

func TestSessionRefresh(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{Token: "t", TTL: 60, ExpireAt: now.Add(-time.Minute)}
	require.False(t, s.Valid(now))

	s.Refresh(now)
	require.Equal(t, now.Add(time.Minute), s.ExpireAt)
	require.True(t, s.Valid(now))
}

func TestEstimatedBatchExpired(t *testing.T) {
	now := time.Now()

	var nilEstimate *EstimatedBatch
	require.True(t, nilEstimate.Expired(now))
	require.False(t, (&EstimatedBatch{}).Expired(now))
	require.False(t, (&EstimatedBatch{ExpiredAt: now.Add(time.Minute)}).Expired(now))
	require.True(t, (&EstimatedBatch{ExpiredAt: now}).Expired(now))
}

func TestSubmittedBatchStateIsFinal(t *testing.T) {
	require.False(t, Queued.IsFinal())
	require.False(t, Sent.IsFinal())
	require.True(t, Confirmed.IsFinal())
	require.True(t, Reverted.IsFinal())
	require.True(t, Failed.IsFinal())
}

func TestAccountIsContract(t *testing.T) {
	var nilAccount *Account
	require.False(t, nilAccount.IsContract())
	require.False(t, (&Account{Type: KeyOwned}).IsContract())
	require.True(t, (&Account{Type: ContractManaged}).IsContract())
}

func TestAccountMemberFromBackend(t *testing.T) {
	raw := `{
		"account": {"address": "0x000000000000000000000000000000000000000a", "type": "Contract", "state": "Deployed"},
		"type": "Owner",
		"state": "Added"
	}`

	var member AccountMember
	require.NoError(t, json.Unmarshal([]byte(raw), &member))
	require.Equal(t, MemberOwner, member.Type)
	require.Equal(t, MemberAdded, member.State)
	require.NotNil(t, member.Account)
	require.Equal(t, common.HexToAddress("0xA"), member.Account.Address)
	require.Equal(t, Synced, member.Account.State)
}
