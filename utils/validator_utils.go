package utils

import (
	"errors"
	"math"

	"github.com/Luismorlan/mini_ledger/model"
)

var (
	ErrEmptyRegistry = errors.New("validator set is empty")
	ErrZeroStake     = errors.New("total stake must be positive")
	ErrStakeOverflow = errors.New("total stake overflows")
)

// Drawer is the random source for validator selection. *rand.Rand satisfies it.
type Drawer interface {
	// Int63n returns a uniform value in [0, n).
	Int63n(n int64) int64
}

// TotalStake sums the stake of every validator. It must fit in an int64 to be drawable.
func TotalStake(reg *model.ValidatorRegistry) (uint64, error) {
	if reg == nil || len(reg.Validators) == 0 {
		return 0, ErrEmptyRegistry
	}
	var total uint64
	for _, v := range reg.Validators {
		if v.Stake > math.MaxInt64-total {
			return 0, ErrStakeOverflow
		}
		total += v.Stake
	}
	if total == 0 {
		return 0, ErrZeroStake
	}
	return total, nil
}

func ValidateRegistry(reg *model.ValidatorRegistry) error {
	_, err := TotalStake(reg)
	return err
}

// SelectValidator draws a value in [0, totalStake) and walks the validators in order,
// returning the first one whose cumulative stake exceeds the draw.
func SelectValidator(reg *model.ValidatorRegistry, d Drawer) (string, error) {
	total, err := TotalStake(reg)
	if err != nil {
		return "", err
	}
	draw := uint64(d.Int63n(int64(total)))
	return PickByDraw(reg, draw), nil
}

// PickByDraw maps a draw to its validator. A draw past the total falls back to the last validator.
func PickByDraw(reg *model.ValidatorRegistry, draw uint64) string {
	var cumulative uint64
	for _, v := range reg.Validators {
		cumulative += v.Stake
		if draw < cumulative {
			return v.Name
		}
	}
	return reg.Validators[len(reg.Validators)-1].Name
}
