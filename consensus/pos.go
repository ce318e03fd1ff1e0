package consensus

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Luismorlan/mini_ledger/commands"
	"github.com/Luismorlan/mini_ledger/config"
	"github.com/Luismorlan/mini_ledger/model"
	"github.com/Luismorlan/mini_ledger/utils"
)

// PoS forges: a stake weighted validator is drawn and the block is hashed once in its name.
type PoS struct {
	registry *model.ValidatorRegistry

	// Guards drawer, *rand.Rand is not safe for concurrent use.
	m      sync.Mutex
	drawer utils.Drawer
}

func NewPoS(validators []model.Validator, d utils.Drawer) (*PoS, error) {
	reg := model.NewValidatorRegistry(validators)
	if err := utils.ValidateRegistry(reg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if d == nil {
		d = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PoS{registry: reg, drawer: d}, nil
}

func (p *PoS) Name() string { return config.CONSENSUS_POS }

// Validators returns a copy of the registry in selection order.
func (p *PoS) Validators() []model.Validator {
	return model.NewValidatorRegistry(p.registry.Validators).Validators
}

// Forging is a single hash, ctl is never consulted.
func (p *PoS) Seal(b *model.Block, _ chan commands.Command) (commands.Command, error) {
	p.m.Lock()
	validator, err := utils.SelectValidator(p.registry, p.drawer)
	p.m.Unlock()
	if err != nil {
		return commands.NewDefaultCommand(), fmt.Errorf("%w: block %d: %w", ErrSealingFailed, b.Index, err)
	}
	utils.Forge(b, validator)
	return commands.NewDefaultCommand(), nil
}

func (p *PoS) Verify(b *model.Block) error {
	if b.SealedBy == "" {
		return fmt.Errorf("%w: block %d", ErrMissingValidator, b.Index)
	}
	if !p.registry.Has(b.SealedBy) {
		return fmt.Errorf("%w: block %d, %q", ErrUnknownValidator, b.Index, b.SealedBy)
	}
	if b.Nonce != 0 {
		return fmt.Errorf("%w: block %d, nonce %d", ErrUnexpectedNonce, b.Index, b.Nonce)
	}
	return verifyHash(b)
}
