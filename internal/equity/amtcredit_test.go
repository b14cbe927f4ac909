package equity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAMTCreditApply(t *testing.T) {
	st := NewAMTCreditState()

	st, err := st.Apply(dec("50000"), decimal.Zero)
	require.NoError(t, err)
	require.True(t, st.Balance.Equal(dec("50000")))

	st, err = st.Apply(decimal.Zero, dec("20000"))
	require.NoError(t, err)
	require.True(t, st.Balance.Equal(dec("30000")))
	require.True(t, st.UsedThisYear.Equal(dec("20000")))
	require.True(t, st.GeneratedThisYear.IsZero())
}

func TestAMTCreditNeverGoesNegative(t *testing.T) {
	st := NewAMTCreditState()
	st, err := st.Apply(dec("100"), decimal.Zero)
	require.NoError(t, err)

	_, err = st.Apply(decimal.Zero, dec("101"))
	require.Error(t, err)
}
