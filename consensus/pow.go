package consensus

import (
	"fmt"

	"github.com/Luismorlan/mini_ledger/commands"
	"github.com/Luismorlan/mini_ledger/config"
	"github.com/Luismorlan/mini_ledger/model"
	"github.com/Luismorlan/mini_ledger/utils"
)

// PoW mines: it searches nonces until the hex hash starts with difficulty zeros.
type PoW struct {
	difficulty  int
	maxAttempts uint64
	workers     int
}

// NewPoW rejects difficulties no SHA256 hex digest can meet.
func NewPoW(difficulty int, maxAttempts uint64, workers int) (*PoW, error) {
	if difficulty < 0 || difficulty > utils.DIGEST_HEX_LEN {
		return nil, fmt.Errorf("%w: difficulty %d outside [0, %d]", ErrInvalidConfig, difficulty, utils.DIGEST_HEX_LEN)
	}
	if workers < 0 {
		return nil, fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, workers)
	}
	return &PoW{difficulty: difficulty, maxAttempts: maxAttempts, workers: workers}, nil
}

func (p *PoW) Name() string { return config.CONSENSUS_POW }

func (p *PoW) Difficulty() int { return p.difficulty }

func (p *PoW) Seal(b *model.Block, ctl chan commands.Command) (commands.Command, error) {
	c, err := utils.MineParallel(b, p.difficulty, p.maxAttempts, p.workers, ctl)
	if err != nil {
		return c, fmt.Errorf("%w: block %d: %w", ErrSealingFailed, b.Index, err)
	}
	return c, nil
}

func (p *PoW) Verify(b *model.Block) error {
	if b.SealedBy != "" {
		return fmt.Errorf("%w: block %d names %q", ErrUnexpectedValidator, b.Index, b.SealedBy)
	}
	if err := verifyHash(b); err != nil {
		return err
	}
	if !utils.HasLeadingZeros(b.Hash, p.difficulty) {
		return fmt.Errorf("%w: block %d, difficulty %d", ErrInsufficientWork, b.Index, p.difficulty)
	}
	return nil
}
