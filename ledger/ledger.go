// Package ledger is an append-only chain of sealed blocks bound to one consensus engine.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/Luismorlan/mini_ledger/commands"
	"github.com/Luismorlan/mini_ledger/consensus"
	"github.com/Luismorlan/mini_ledger/model"
	"github.com/Luismorlan/mini_ledger/utils"
	"github.com/jinzhu/copier"
)

var (
	ErrStaleTail   = errors.New("block does not extend the current tail")
	ErrBadIndex    = errors.New("block index does not match its position")
	ErrUnsealed    = errors.New("block is not sealed")
	ErrOutOfRange  = errors.New("block index out of range")
	ErrEmptyData   = errors.New("data payload is empty")
	ErrInvalidMode = errors.New("invalid merkle mode")
	ErrCopyFailed  = errors.New("failed to copy block")
)

// Deep copy used for every block entering or leaving the ledger.
var deepCopy = func(to, from interface{}) error {
	return copier.CopyWithOption(to, from, copier.Option{DeepCopy: true})
}

// Ledger is not safe for concurrent use. FullNode serializes access to it.
type Ledger struct {
	engine consensus.Engine
	mode   model.MerkleMode
	now    func() time.Time
	// Interrupts sealing started by Append and AppendData. nil never interrupts.
	ctl chan commands.Command
	// blocks[0] is the genesis block. Every block is sealed.
	blocks []*model.Block
}

type Option func(*Ledger)

// WithClock replaces time.Now for block timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithControl lets commands sent on ctl interrupt sealing.
func WithControl(ctl chan commands.Command) Option {
	return func(l *Ledger) { l.ctl = ctl }
}

func WithMerkleMode(mode model.MerkleMode) Option {
	return func(l *Ledger) { l.mode = mode }
}

// New creates a ledger holding only the genesis block, sealed by engine.
func New(engine consensus.Engine, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		engine: engine,
		mode:   model.MERKLE_CARRY,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if !utils.IsValidMerkleMode(l.mode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, l.mode)
	}

	genesis := utils.CreateNewBlock(0, model.GENESIS_PREV_HASH, []model.Transaction{utils.CreateGenesisTx()}, l.now().Unix(), l.mode)
	if _, err := engine.Seal(genesis, l.ctl); err != nil {
		return nil, fmt.Errorf("failed to seal genesis block: %w", err)
	}
	l.blocks = []*model.Block{genesis}
	return l, nil
}

// Next builds the unsealed successor of the tail committing txs.
func (l *Ledger) Next(txs []model.Transaction) *model.Block {
	return utils.CreateNewBlock(uint64(len(l.blocks)), l.tail().Hash, txs, l.now().Unix(), l.mode)
}

// NextData builds the unsealed successor of the tail committing a raw string.
func (l *Ledger) NextData(data string) *model.Block {
	return utils.CreateDataBlock(uint64(len(l.blocks)), l.tail().Hash, data, l.now().Unix())
}

// Append seals a block of txs on top of the tail and pushes it.
func (l *Ledger) Append(txs []model.Transaction) error {
	return l.sealAndPush(l.Next(txs))
}

func (l *Ledger) AppendData(data string) error {
	if data == "" {
		return ErrEmptyData
	}
	return l.sealAndPush(l.NextData(data))
}

func (l *Ledger) sealAndPush(b *model.Block) error {
	if _, err := l.engine.Seal(b, l.ctl); err != nil {
		return err
	}
	return l.Push(b)
}

// Push appends a block sealed elsewhere. The block must extend the current tail and pass every
// check Validate applies. The ledger keeps its own copy.
func (l *Ledger) Push(b *model.Block) error {
	if !b.IsSealed() {
		return fmt.Errorf("%w: block %d", ErrUnsealed, b.Index)
	}
	if b.Index != uint64(len(l.blocks)) {
		return fmt.Errorf("%w: got %d, tail is at %d", ErrBadIndex, b.Index, len(l.blocks)-1)
	}
	if b.PrevHash != l.tail().Hash {
		return fmt.Errorf("%w: block %d points at %s", ErrStaleTail, b.Index, utils.ShortenHash(b.PrevHash, 10))
	}
	if err := l.checkBlock(len(l.blocks), b); err != nil {
		return err
	}
	cp, err := snapshot(b)
	if err != nil {
		return err
	}
	l.blocks = append(l.blocks, &cp)
	return nil
}

func (l *Ledger) Len() int {
	return len(l.blocks)
}

// Tail returns a copy of the last block.
func (l *Ledger) Tail() (model.Block, error) {
	return snapshot(l.tail())
}

// Block returns a copy of the block at position i.
func (l *Ledger) Block(i int) (model.Block, error) {
	if i < 0 || i >= len(l.blocks) {
		return model.Block{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(l.blocks))
	}
	return snapshot(l.blocks[i])
}

// Blocks returns a deep copy of the chain, genesis first.
func (l *Ledger) Blocks() ([]model.Block, error) {
	out := make([]model.Block, len(l.blocks))
	for i, b := range l.blocks {
		cp, err := snapshot(b)
		if err != nil {
			return nil, err
		}
		out[i] = cp
	}
	return out, nil
}

func (l *Ledger) Engine() consensus.Engine {
	return l.engine
}

func (l *Ledger) MerkleMode() model.MerkleMode {
	return l.mode
}

func (l *Ledger) tail() *model.Block {
	return l.blocks[len(l.blocks)-1]
}

func snapshot(b *model.Block) (model.Block, error) {
	var cp model.Block
	if err := deepCopy(&cp, b); err != nil {
		return model.Block{}, fmt.Errorf("%w: block %d: %w", ErrCopyFailed, b.Index, err)
	}
	return cp, nil
}
