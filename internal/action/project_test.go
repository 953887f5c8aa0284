package action

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projected(t *testing.T, row Row) string {
	t.Helper()
	require.True(t, row.Projected.Valid, "row %q has no projection", row.Label)
	return row.Projected.Decimal.String()
}

func TestProjectBaseSupply(t *testing.T) {
	t.Run("adds to supply", func(t *testing.T) {
		rows := Project(BaseSupply, Balances{BaseSupply: d("100"), SupplyAPR: d("3.1")}, d("10"))
		require.Len(t, rows, 4)
		assert.Equal(t, "110", projected(t, rows[0]))
		assert.Equal(t, "3.1", rows[1].Current.String())
		assert.False(t, rows[2].Projected.Valid)
	})

	t.Run("repays borrow", func(t *testing.T) {
		rows := Project(BaseSupply, Balances{BaseBorrow: d("100")}, d("10"))
		assert.False(t, rows[0].Projected.Valid)
		assert.Equal(t, "90", projected(t, rows[2]))
	})

	t.Run("no amount no projection", func(t *testing.T) {
		rows := Project(BaseSupply, Balances{BaseSupply: d("100")}, decimal.Zero)
		for _, row := range rows {
			assert.False(t, row.Projected.Valid, row.Label)
		}
	})
}

func TestProjectBaseBorrow(t *testing.T) {
	rows := Project(BaseBorrow, Balances{BaseBorrow: d("5"), AvailableToBorrow: d("70")}, d("10"))
	assert.Equal(t, "Borrow Balance", rows[0].Label)
	assert.Equal(t, "15", projected(t, rows[0]))
	assert.Equal(t, "70", rows[3].Current.String())

	rows = Project(BaseBorrow, Balances{BaseSupply: d("50")}, d("20"))
	assert.False(t, rows[0].Projected.Valid)
	assert.Equal(t, "30", projected(t, rows[2]))
}

func TestProjectCollateral(t *testing.T) {
	b := Balances{
		CollateralSupply:     known(d("2")),
		AvailableToBorrowUSD: d("1000"),
		BorrowUSD:            d("500"),
		CollateralPrice:      d("2000"),
	}

	rows := Project(Supply, b, d("0.5"))
	require.Len(t, rows, 3)
	assert.Equal(t, "2.5", projected(t, rows[0]))
	assert.Equal(t, "2000", projected(t, rows[1]))
	assert.Equal(t, unitUSD, rows[1].Unit)
	assert.Equal(t, "500", rows[2].Current.String())

	rows = Project(Withdraw, b, d("0.5"))
	assert.Equal(t, "1.5", projected(t, rows[0]))
	assert.Equal(t, "0", projected(t, rows[1]))
}
