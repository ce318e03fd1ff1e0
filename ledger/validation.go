package ledger

import (
	"errors"
	"fmt"

	"github.com/Luismorlan/mini_ledger/consensus"
	"github.com/Luismorlan/mini_ledger/model"
	"github.com/Luismorlan/mini_ledger/utils"
)

var (
	ErrBrokenLink     = errors.New("previous hash does not match predecessor")
	ErrMerkleMismatch = errors.New("merkle root does not match transactions")
	// Same sentinel the engines return, so callers can match either package.
	ErrHashMismatch = consensus.ErrHashMismatch
)

// IsValid reports whether Validate finds nothing wrong.
func (l *Ledger) IsValid() bool {
	return l.Validate() == nil
}

// Validate walks the chain from genesis and returns the first violation found.
// Every block is re-derived under the ledger's engine: nothing stored is trusted.
func (l *Ledger) Validate() error {
	for i, b := range l.blocks {
		if b.Index != uint64(i) {
			return fmt.Errorf("%w: block at %d has index %d", ErrBadIndex, i, b.Index)
		}
		// Genesis has no predecessor to link to.
		if i > 0 && b.PrevHash != l.blocks[i-1].Hash {
			return fmt.Errorf("%w: block %d", ErrBrokenLink, i)
		}
		if err := l.checkBlock(i, b); err != nil {
			return err
		}
	}
	return nil
}

// checkBlock re-derives the payload commitment and the seal of one block.
func (l *Ledger) checkBlock(i int, b *model.Block) error {
	if b.IsDataBlock() {
		if len(b.Txs) > 0 || b.MerkleRoot != "" {
			return fmt.Errorf("%w: data block %d carries transactions", ErrMerkleMismatch, i)
		}
	} else {
		if root := utils.GetTransactionsRoot(b.Txs, l.mode); root != b.MerkleRoot {
			return fmt.Errorf("%w: block %d", ErrMerkleMismatch, i)
		}
	}
	return l.engine.Verify(b)
}
