package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum"
	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *KeyProvider {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	return NewKeyProvider(key)
}

func TestPersonalSign(t *testing.T) {
	p := newTestProvider(t)
	message := []byte("Session code: 1234")

	sig, err := p.PersonalSign(context.Background(), message)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	require.GreaterOrEqual(t, sig[64], byte(27))

	signer, err := RecoverPersonalSigner(message, sig)
	require.NoError(t, err)
	require.Equal(t, p.Address(), signer)

	other, err := RecoverPersonalSigner([]byte("Session code: 4321"), sig)
	require.NoError(t, err)
	require.NotEqual(t, p.Address(), other)

	_, err = RecoverPersonalSigner(message, sig[:10])
	require.Error(t, err)
}

func TestSignTypedData(t *testing.T) {
	p := newTestProvider(t)
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"Mail": {
				{Name: "contents", Type: "string"},
			},
		},
		PrimaryType: "Mail",
		Domain: apitypes.TypedDataDomain{
			Name:    "Test",
			Version: "1",
			ChainId: math.NewHexOrDecimal256(1),
		},
		Message: apitypes.TypedDataMessage{
			"contents": "hello",
		},
	}

	sig, err := p.SignTypedData(context.Background(), typedData)
	require.NoError(t, err)

	signer, err := RecoverTypedDataSigner(typedData, sig)
	require.NoError(t, err)
	require.Equal(t, p.Address(), signer)

	typedData.PrimaryType = "Missing"
	_, err = p.SignTypedData(context.Background(), typedData)
	require.Error(t, err)
}

func TestServiceSwitchProvider(t *testing.T) {
	ctx := context.Background()
	s := NewService(log.GetDefaultLogger(), nil)
	require.Equal(t, ethCommon.Address{}, s.Address())

	_, err := s.PersonalSign(ctx, []byte("x"))
	require.ErrorIs(t, err, types.ErrWalletRequired)
	_, err = s.SignTypedData(ctx, apitypes.TypedData{})
	require.ErrorIs(t, err, types.ErrWalletRequired)

	var seen []ethCommon.Address
	s.AddressSubject().Subscribe(func(a ethCommon.Address) { seen = append(seen, a) })

	p := newTestProvider(t)
	s.SwitchProvider(p)
	require.Equal(t, p.Address(), s.Address())
	require.Equal(t, p, s.Provider())

	sig, err := s.PersonalSign(ctx, []byte("x"))
	require.NoError(t, err)
	require.Len(t, sig, 65)

	s.SwitchProvider(nil)
	require.Equal(t, []ethCommon.Address{{}, p.Address(), {}}, seen)
}

type ethClientMock struct {
	mock.Mock
}

func (m *ethClientMock) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	return args.Get(0).(*big.Int), args.Error(1) //nolint:forcetypeassert
}

func (m *ethClientMock) PendingNonceAt(ctx context.Context, account ethCommon.Address) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1) //nolint:forcetypeassert
}

func (m *ethClientMock) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	return args.Get(0).(*big.Int), args.Error(1) //nolint:forcetypeassert
}

func (m *ethClientMock) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	args := m.Called(ctx, call)
	return args.Get(0).(uint64), args.Error(1) //nolint:forcetypeassert
}

func (m *ethClientMock) SendTransaction(ctx context.Context, tx *ethTypes.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func TestSendTransaction(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)
	to := ethCommon.HexToAddress("0xA")
	req := types.TransactionRequest{To: to, Data: []byte{0x01, 0x02}}

	client := &ethClientMock{}
	client.On("ChainID", ctx).Return(big.NewInt(1337), nil)
	client.On("PendingNonceAt", ctx, p.Address()).Return(uint64(7), nil)
	client.On("SuggestGasPrice", ctx).Return(big.NewInt(100), nil)
	client.On("EstimateGas", ctx, mock.Anything).Return(uint64(21000), nil)

	var sent *ethTypes.Transaction
	client.On("SendTransaction", ctx, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*ethTypes.Transaction) //nolint:forcetypeassert
	}).Return(nil)

	hash, err := p.SendTransaction(ctx, client, req)
	require.NoError(t, err)
	require.NotNil(t, sent)
	require.Equal(t, sent.Hash(), hash)
	require.Equal(t, uint64(7), sent.Nonce())
	require.Equal(t, uint64(21000), sent.Gas())
	require.Equal(t, to, *sent.To())
	require.Equal(t, []byte{0x01, 0x02}, sent.Data())

	from, err := ethTypes.Sender(ethTypes.LatestSignerForChainID(big.NewInt(1337)), sent)
	require.NoError(t, err)
	require.Equal(t, p.Address(), from)
	client.AssertExpectations(t)
}

func TestSendTransactionErrors(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	other := ethCommon.HexToAddress("0xB")
	_, err := p.SendTransaction(ctx, &ethClientMock{}, types.TransactionRequest{From: &other})
	require.ErrorContains(t, err, "must be sent by")

	client := &ethClientMock{}
	client.On("ChainID", ctx).Return(big.NewInt(1), nil)
	client.On("PendingNonceAt", ctx, p.Address()).Return(uint64(0), nil)
	client.On("SuggestGasPrice", ctx).Return(big.NewInt(1), nil)
	client.On("EstimateGas", ctx, mock.Anything).Return(uint64(0), errors.New("execution reverted"))

	_, err = p.SendTransaction(ctx, client, types.TransactionRequest{To: other})
	require.ErrorContains(t, err, "execution reverted")
	client.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}
