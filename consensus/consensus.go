// Package consensus seals blocks by mining (PoW) or forging (PoS) and verifies those seals.
package consensus

import (
	"errors"
	"fmt"

	"github.com/Luismorlan/mini_ledger/commands"
	"github.com/Luismorlan/mini_ledger/config"
	"github.com/Luismorlan/mini_ledger/model"
	"github.com/Luismorlan/mini_ledger/utils"
)

// Engine seals new blocks and checks sealed ones. A ledger keeps one engine for its whole lifetime,
// so a block is always verified by the rule that sealed it.
type Engine interface {
	// Name is the config name of the rule, "pow" or "pos".
	Name() string
	// Seal assigns nonce, hash and sealer together, or leaves the block untouched on error.
	// The returned command is whatever interrupted sealing through ctl.
	Seal(b *model.Block, ctl chan commands.Command) (commands.Command, error)
	// Verify re-derives the hash of a sealed block and checks the rule's own constraints.
	Verify(b *model.Block) error
}

var (
	ErrInvalidConfig = errors.New("invalid consensus config")
	ErrSealingFailed = errors.New("sealing failed")

	ErrHashMismatch        = errors.New("block hash mismatch")
	ErrInsufficientWork    = errors.New("block hash does not meet difficulty")
	ErrMissingValidator    = errors.New("forged block has no validator")
	ErrUnknownValidator    = errors.New("block forged by unknown validator")
	ErrUnexpectedValidator = errors.New("mined block names a validator")
	ErrUnexpectedNonce     = errors.New("forged block has non-zero nonce")
)

// New builds the engine selected by the config. A nil drawer seeds a fresh random source.
func New(c config.AppConfig, d utils.Drawer) (Engine, error) {
	switch c.CONSENSUS {
	case config.CONSENSUS_POW:
		return NewPoW(c.DIFFICULTY, c.MAX_ATTEMPTS, c.MINING_WORKERS)
	case config.CONSENSUS_POS:
		return NewPoS(c.Validators(), d)
	default:
		return nil, fmt.Errorf("%w: unknown consensus %q", ErrInvalidConfig, c.CONSENSUS)
	}
}

// verifyHash is shared by both rules: the stored hash must be reproducible from the block alone.
func verifyHash(b *model.Block) error {
	if want := utils.RecomputeHash(b); want != b.Hash {
		return fmt.Errorf("%w: block %d has %s, recomputed %s", ErrHashMismatch, b.Index, utils.ShortenHash(b.Hash, 10), utils.ShortenHash(want, 10))
	}
	return nil
}
