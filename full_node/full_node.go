package full_node

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Luismorlan/mini_ledger/commands"
	"github.com/Luismorlan/mini_ledger/config"
	"github.com/Luismorlan/mini_ledger/consensus"
	"github.com/Luismorlan/mini_ledger/ledger"
	"github.com/Luismorlan/mini_ledger/logging"
	"github.com/Luismorlan/mini_ledger/model"
	"github.com/Luismorlan/mini_ledger/visualize"
	uuid "github.com/satori/go.uuid"
)

var ErrDuplicateTx = errors.New("existing transaction, will not process")

// A full node should maintain the blockchain, and update the blockchain.
type FullNode struct {
	// The blockchain it needs to maintain.
	ledger *ledger.Ledger
	// Transaction pool it need to maintain. Incoming transaction are added to this pool.
	txPool model.TransactionPool
	// Blockchain config.
	config config.AppConfig
	// A single mutex for changing internal state.
	m sync.RWMutex
	// A unique indentifier of this Fullnode, this doesn't impact consensus, only
	// used for easier implementation.
	uuid string
	log  *slog.Logger
}

// Create a brand new full node with the engine named by the config. The chain starts with
// a sealed genesis block.
func NewFullNode(c config.AppConfig, logger *slog.Logger, opts ...ledger.Option) (*FullNode, error) {
	e, err := consensus.New(c, nil)
	if err != nil {
		return nil, err
	}
	return NewFullNodeWithEngine(c, e, logger, opts...)
}

func NewFullNodeWithEngine(c config.AppConfig, e consensus.Engine, logger *slog.Logger, opts ...ledger.Option) (*FullNode, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	myuuid := uuid.NewV4().String()

	start := time.Now()
	l, err := ledger.New(e, append([]ledger.Option{ledger.WithMerkleMode(c.MerkleMode())}, opts...)...)
	if err != nil {
		return nil, err
	}
	genesis, err := l.Tail()
	if err != nil {
		return nil, err
	}
	logger = logger.With("node", myuuid, "consensus", e.Name())
	logger.Info("genesis sealed", "hash", genesis.Hash, "nonce", genesis.Nonce, "sealed_by", genesis.SealedBy, "took", time.Since(start))

	return &FullNode{
		ledger: l,
		txPool: model.NewTransactionPool(),
		config: c,
		m:      sync.RWMutex{},
		uuid:   myuuid,
		log:    logger,
	}, nil
}

func (f *FullNode) GetUuid() string {
	return f.uuid
}

func (f *FullNode) AddTransactionToPool(tx *model.Transaction) error {
	f.m.Lock()
	defer f.m.Unlock()

	if _, exist := f.txPool.Ids[tx.Id]; exist {
		return fmt.Errorf("%w: %s", ErrDuplicateTx, tx.Id)
	}
	f.txPool.Txs = append(f.txPool.Txs, *tx)
	f.txPool.Ids[tx.Id] = true
	f.log.Debug("transaction queued", "id", tx.Id, "pool_size", len(f.txPool.Txs))
	return nil
}

// Return a copy of the pending transactions, in arrival order.
func (f *FullNode) GetPendingTxs() []model.Transaction {
	f.m.RLock()
	defer f.m.RUnlock()
	txs := make([]model.Transaction, len(f.txPool.Txs))
	copy(txs, f.txPool.Txs)
	return txs
}

// Create a new block with all transactions in the transaction pool. CreateNewBlock
// can take a long time under mining, so the lock is only held while reading the tail.
// ctl is a channel that interrupts the mining process at any time.
func (f *FullNode) CreateNewBlock(ctl chan commands.Command) (*model.Block, commands.Command, error) {
	f.m.RLock()
	block := f.ledger.Next(f.txPool.Txs)
	f.m.RUnlock()
	return f.seal(block, ctl)
}

// Create a new block committing a raw string payload.
func (f *FullNode) CreateDataBlock(data string, ctl chan commands.Command) (*model.Block, commands.Command, error) {
	if data == "" {
		return nil, commands.NewDefaultCommand(), ledger.ErrEmptyData
	}
	f.m.RLock()
	block := f.ledger.NextData(data)
	f.m.RUnlock()
	return f.seal(block, ctl)
}

func (f *FullNode) seal(block *model.Block, ctl chan commands.Command) (*model.Block, commands.Command, error) {
	start := time.Now()
	c, err := f.ledger.Engine().Seal(block, ctl)
	if err != nil {
		return nil, c, err
	}
	f.log.Debug("block sealed", "index", block.Index, "hash", block.Hash, "nonce", block.Nonce, "sealed_by", block.SealedBy, "took", time.Since(start))
	return block, c, nil
}

// Handle a sealed block. The block must extend the current tail and pass validation,
// then its transactions leave the pool.
func (f *FullNode) HandleNewBlock(pendingBlock *model.Block) error {
	// Lock mutex because we are changing the state of blockchain.
	f.m.Lock()
	defer f.m.Unlock()

	if err := f.ledger.Push(pendingBlock); err != nil {
		return err
	}

	included := make(map[string]bool, len(pendingBlock.Txs))
	for _, tx := range pendingBlock.Txs {
		included[tx.Id] = true
	}
	pending := f.txPool.Txs[:0]
	for _, tx := range f.txPool.Txs {
		if included[tx.Id] {
			delete(f.txPool.Ids, tx.Id)
			continue
		}
		pending = append(pending, tx)
	}
	f.txPool.Txs = pending

	f.log.Info("block appended", "index", pendingBlock.Index, "hash", pendingBlock.Hash, "txs", len(pendingBlock.Txs), "height", f.ledger.Len()-1)
	return nil
}

// Mine one block from the pool and append it.
func (f *FullNode) Mine(ctl chan commands.Command) (commands.Command, error) {
	b, c, err := f.CreateNewBlock(ctl)
	if err != nil {
		return c, err
	}
	// Not terminated by command nor mining failure, proceed to handle that block.
	return commands.NewDefaultCommand(), f.HandleNewBlock(b)
}

// Seal one block committing data and append it.
func (f *FullNode) PostData(data string, ctl chan commands.Command) (commands.Command, error) {
	b, c, err := f.CreateDataBlock(data, ctl)
	if err != nil {
		return c, err
	}
	return commands.NewDefaultCommand(), f.HandleNewBlock(b)
}

// Re-verify the whole chain.
func (f *FullNode) Validate() error {
	f.m.RLock()
	defer f.m.RUnlock()
	start := time.Now()
	err := f.ledger.Validate()
	if err != nil {
		f.log.Warn("chain invalid", "err", err)
		return err
	}
	f.log.Info("chain validated", "blocks", f.ledger.Len(), "took", time.Since(start))
	return nil
}

func (f *FullNode) GetHeight() int {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.ledger.Len() - 1
}

func (f *FullNode) GetTail() (model.Block, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.ledger.Tail()
}

// Return a deep copy of the whole chain.
func (f *FullNode) GetChainSnapshot() ([]model.Block, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.ledger.Blocks()
}

// Print the last d+1 blocks.
func (f *FullNode) Show(d int, w io.Writer) error {
	blocks, err := f.GetChainSnapshot()
	if err != nil {
		return err
	}
	return visualize.Summary(blocks, d, w)
}

// Write a graph of the last d+1 blocks under dir and return the written path.
func (f *FullNode) Graph(d int, dir string) (string, error) {
	blocks, err := f.GetChainSnapshot()
	if err != nil {
		return "", err
	}
	path, err := visualize.RenderToFile(blocks, d, f.uuid, dir)
	if err != nil {
		return "", err
	}
	f.log.Info("chain graph written", "path", path)
	return path, nil
}
