package distributor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanoutorg/libfanout-go/bank"
)

func TestPendingTokens_EmptyRegistry(t *testing.T) {
	d, _ := openTestTree(t)

	tokens, amounts, err := d.PendingTokens(1, 100)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.Len(t, amounts, 1)
	assert.Equal(t, tokenP, tokens[0])
	assert.Equal(t, uint64(100), amounts[0])
}

func TestPendingTokens_WithChildren(t *testing.T) {
	d, _ := openTestTree(t)
	setter := makeID(0x02)
	grantChildSetter(t, d, setter)

	tokenA := makeToken(0xA1)
	tokenB := makeToken(0xB1)
	_, err := d.CreateChild(setter, tokenA, 5000, makeID(0x03))
	require.NoError(t, err)
	_, err = d.CreateChild(setter, tokenB, 30000, makeID(0x03))
	require.NoError(t, err)

	tokens, amounts, err := d.PendingTokens(1, 100)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	require.Len(t, amounts, 3)

	// Index 0 is always the unit's own figures.
	assert.Equal(t, tokenP, tokens[0])
	assert.Equal(t, uint64(100), amounts[0])

	// Children follow in registry enumeration order; check by pairing since
	// order is an implementation detail.
	got := map[bank.TokenID]uint64{}
	for i := 1; i < len(tokens); i++ {
		got[tokens[i]] = amounts[i]
	}
	assert.Equal(t, map[bank.TokenID]uint64{tokenA: 50, tokenB: 300}, got)
}

func TestPendingTokens_MatchesSettlement(t *testing.T) {
	d, b := openTestTree(t)
	recipient := makeID(0x10)
	setter := makeID(0x02)
	grantChildSetter(t, d, setter)

	tokenA := makeToken(0xA1)
	c1, err := d.CreateChild(setter, tokenA, 7500, makeID(0x03))
	require.NoError(t, err)

	tokens, amounts, err := d.PendingTokens(1, 101)
	require.NoError(t, err)

	require.NoError(t, b.Deposit(tokenP, d.Treasury(), 1000))
	require.NoError(t, b.Deposit(tokenA, c1.Treasury(), 1000))
	require.NoError(t, d.OnReward(ledgerID, 1, 101, recipient))

	for i := range tokens {
		bal, err := b.Balance(tokens[i], recipient)
		require.NoError(t, err)
		assert.Equal(t, amounts[i], bal, "query and settlement use the same scaling")
	}
}

func TestPendingTokens_PureRead(t *testing.T) {
	d, b := openTestTree(t)
	setter := makeID(0x02)
	grantChildSetter(t, d, setter)

	c1, err := d.CreateChild(setter, makeToken(0xA1), 5000, makeID(0x03))
	require.NoError(t, err)
	require.NoError(t, b.Deposit(tokenP, d.Treasury(), 1000))

	for i := 0; i < 10; i++ {
		_, _, err := d.PendingTokens(1, 100)
		require.NoError(t, err)
	}

	// No settlement side effects and no registry mutation.
	bal, err := b.Balance(tokenP, d.Treasury())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal)

	children, err := d.Children()
	require.NoError(t, err)
	assert.Equal(t, []Handle{c1}, children)
}

func TestChildren_PureRead(t *testing.T) {
	d, _ := openTestTree(t)
	setter := makeID(0x02)
	grantChildSetter(t, d, setter)

	h, err := d.CreateChild(setter, makeToken(0xA1), 5000, makeID(0x03))
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		children, err := d.Children()
		require.NoError(t, err)
		assert.Equal(t, []Handle{h}, children)
	}
}
