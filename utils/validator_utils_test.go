package utils

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Luismorlan/mini_ledger/model"
	"github.com/stretchr/testify/assert"
)

// fixedDrawer always draws the same value.
type fixedDrawer struct {
	v int64
	n int64
}

func (f *fixedDrawer) Int63n(n int64) int64 {
	f.n = n
	return f.v
}

func createTestRegistry() *model.ValidatorRegistry {
	return model.NewValidatorRegistry([]model.Validator{
		{Name: "Validator1", Stake: 100},
		{Name: "Validator2", Stake: 200},
		{Name: "Validator3", Stake: 150},
	})
}

func TestSelectValidatorDraws(t *testing.T) {
	reg := createTestRegistry()
	tests := []struct {
		draw int64
		want string
	}{
		{0, "Validator1"},
		{50, "Validator1"},
		{99, "Validator1"},
		{100, "Validator2"},
		{150, "Validator2"},
		{299, "Validator2"},
		{300, "Validator3"},
		{400, "Validator3"},
		{449, "Validator3"},
	}
	for _, tt := range tests {
		d := &fixedDrawer{v: tt.draw}
		got, err := SelectValidator(reg, d)
		assert.Nil(t, err)
		assert.Equal(t, tt.want, got, "draw %d", tt.draw)
		assert.Equal(t, int64(450), d.n)
	}
}

func TestPickByDrawFallsBackToLast(t *testing.T) {
	assert.Equal(t, "Validator3", PickByDraw(createTestRegistry(), 10_000))
}

func TestSelectValidatorStaysInSet(t *testing.T) {
	reg := createTestRegistry()
	rnd := rand.New(rand.NewSource(42))
	counts := make(map[string]int)
	const trials = 9000
	for i := 0; i < trials; i++ {
		v, err := SelectValidator(reg, rnd)
		assert.Nil(t, err)
		assert.True(t, reg.Has(v))
		counts[v]++
	}
	// Roughly 2000 / 4000 / 3000, checked loosely.
	assert.InDelta(t, 2000, counts["Validator1"], 400)
	assert.InDelta(t, 4000, counts["Validator2"], 400)
	assert.InDelta(t, 3000, counts["Validator3"], 400)
}

func TestSelectValidatorSkipsZeroStake(t *testing.T) {
	reg := model.NewValidatorRegistry([]model.Validator{
		{Name: "Idle", Stake: 0},
		{Name: "Active", Stake: 5},
	})
	for draw := int64(0); draw < 5; draw++ {
		v, err := SelectValidator(reg, &fixedDrawer{v: draw})
		assert.Nil(t, err)
		assert.Equal(t, "Active", v)
	}
}

func TestTotalStakeErrors(t *testing.T) {
	_, err := TotalStake(nil)
	assert.ErrorIs(t, err, ErrEmptyRegistry)

	_, err = TotalStake(model.NewValidatorRegistry(nil))
	assert.ErrorIs(t, err, ErrEmptyRegistry)

	_, err = TotalStake(model.NewValidatorRegistry([]model.Validator{{Name: "A", Stake: 0}}))
	assert.ErrorIs(t, err, ErrZeroStake)

	_, err = TotalStake(model.NewValidatorRegistry([]model.Validator{
		{Name: "A", Stake: math.MaxInt64},
		{Name: "B", Stake: 1},
	}))
	assert.ErrorIs(t, err, ErrStakeOverflow)

	total, err := TotalStake(createTestRegistry())
	assert.Nil(t, err)
	assert.Equal(t, uint64(450), total)
}
