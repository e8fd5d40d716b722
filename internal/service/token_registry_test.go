package service

import (
	"context"
	"errors"
	"testing"

	"palma-lending/internal/core/ports/mocks"
	"palma-lending/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTokenRegistry_DecimalsCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	meta := mocks.NewMockTokenTransferer(ctrl)
	meta.EXPECT().Decimals(gomock.Any(), weth).Return(uint8(18), nil).Times(1)

	r := NewTokenRegistry(meta, zerolog.Nop())
	for i := 0; i < 3; i++ {
		d, err := r.Decimals(context.Background(), weth)
		require.NoError(t, err)
		assert.Equal(t, uint8(18), d)
	}
}

func TestTokenRegistry_DecimalsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	meta := mocks.NewMockTokenTransferer(ctrl)
	cause := errors.New("rpc timeout")
	gomock.InOrder(
		meta.EXPECT().Decimals(gomock.Any(), usdc).Return(uint8(0), cause),
		meta.EXPECT().Decimals(gomock.Any(), usdc).Return(uint8(6), nil),
	)

	r := NewTokenRegistry(meta, zerolog.Nop())

	_, err := r.Decimals(context.Background(), usdc)
	requireCode(t, err, apperror.CodeTokenMetadataUnavailable)
	assert.ErrorIs(t, err, cause)

	// Failures are not cached.
	d, err := r.Decimals(context.Background(), usdc)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), d)
}

func TestTokenRegistry_AllowFlags(t *testing.T) {
	r := NewTokenRegistry(nil, zerolog.Nop())

	assert.False(t, r.IsAllowed(usdc), "unknown tokens are not allowed")

	r.Register(usdc, "USDC", false)
	assert.False(t, r.IsAllowed(usdc))

	r.SetAllowed(usdc, true)
	assert.True(t, r.IsAllowed(usdc))

	r.SetAllowed(dai, true)
	assert.True(t, r.IsAllowed(dai))
}

func TestTokenRegistry_TokensSortedWithMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	meta := mocks.NewMockTokenTransferer(ctrl)
	meta.EXPECT().Decimals(gomock.Any(), usdt).Return(uint8(6), nil)
	meta.EXPECT().Decimals(gomock.Any(), usdc).Return(uint8(0), errors.New("down"))

	r := NewTokenRegistry(meta, zerolog.Nop())
	r.Register(usdt, "USDT", true)
	r.Register(usdc, "USDC", false)

	tokens := r.Tokens(context.Background())
	require.Len(t, tokens, 2)
	assert.Equal(t, usdc, tokens[0].Asset)
	assert.Equal(t, uint8(0), tokens[0].Decimals)
	assert.Equal(t, usdt, tokens[1].Asset)
	assert.Equal(t, "USDT", tokens[1].Symbol)
	assert.Equal(t, uint8(6), tokens[1].Decimals)
	assert.True(t, tokens[1].Allowed)
}
