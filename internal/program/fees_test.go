package program

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeScheduleSplit(t *testing.T) {
	tests := []struct {
		percent string
		amount  uint64
		owner   uint64
		fee     uint64
	}{
		{"10", 5000, 4500, 500},
		{"10", 9, 9, 0},
		{"10", 19, 18, 1},
		{"2.5", 1000, 975, 25},
		{"0", 1234, 1234, 0},
		{"100", 1234, 0, 1234},
		{"10", 0, 0, 0},
		{"10", ^uint64(0), ^uint64(0) - 1844674407370955161, 1844674407370955161},
	}
	for _, tt := range tests {
		fees, err := NewFeeSchedule(decimal.RequireFromString(tt.percent))
		require.NoError(t, err)

		gotOwner, gotFee := fees.Split(tt.amount)
		assert.Equal(t, tt.owner, gotOwner, "owner share of %d at %s%%", tt.amount, tt.percent)
		assert.Equal(t, tt.fee, gotFee, "fee share of %d at %s%%", tt.amount, tt.percent)
		assert.Equal(t, tt.amount, gotOwner+gotFee)
	}
}

func TestNewFeeScheduleRejectsOutOfRange(t *testing.T) {
	_, err := NewFeeSchedule(decimal.NewFromInt(-1))
	assert.Error(t, err)
	_, err = NewFeeSchedule(decimal.NewFromInt(101))
	assert.Error(t, err)
}

func TestDefaultFeeScheduleIsFresh(t *testing.T) {
	changed := DefaultFeeSchedule()
	changed.Percent = decimal.NewFromInt(50)

	ownerShare, feeShare := DefaultFeeSchedule().Split(5000)
	assert.Equal(t, uint64(4500), ownerShare)
	assert.Equal(t, uint64(500), feeShare)
}
