package utils

import (
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Luismorlan/mini_ledger/commands"
	"github.com/Luismorlan/mini_ledger/model"
)

// How many nonces are tried between two polls of the control channel.
const CTL_CHECK_INTERVAL = 1024

// Marker folded into the pre-image of a forged block. The identity comes from Block.SealedBy.
const VALIDATOR_MARKER = " (Validated by: "

// Tag written before a raw string payload, so a data block never hashes like a transaction block.
const DATA_MARKER = "data:"

var (
	ErrMiningInterrupted = errors.New("mining interrupted")
	ErrAttemptsExhausted = errors.New("no nonce found within the attempt cap")
)

// Create a block from the provided transactions and the previous hash. The Merkle root is frozen here.
func CreateNewBlock(index uint64, prevHash string, txs []model.Transaction, timestamp int64, mode model.MerkleMode) *model.Block {
	cp := make([]model.Transaction, len(txs))
	copy(cp, txs)
	return &model.Block{
		Index:      index,
		PrevHash:   prevHash,
		MerkleRoot: GetTransactionsRoot(cp, mode),
		Txs:        cp,
		Timestamp:  timestamp,
	}
}

// Create a block committing a raw string payload instead of a transaction batch.
func CreateDataBlock(index uint64, prevHash string, data string, timestamp int64) *model.Block {
	return &model.Block{
		Index:     index,
		PrevHash:  prevHash,
		Data:      data,
		Timestamp: timestamp,
	}
}

// GetBlockCommitment is the payload string folded into the block hash.
func GetBlockCommitment(block *model.Block) string {
	if block.IsDataBlock() {
		return block.Data
	}
	return block.MerkleRoot
}

// GetBlockPreimage is index, previous hash, commitment, timestamp and nonce as text,
// followed by the validator marker when a validator is given. A data payload is
// preceded by DATA_MARKER.
func GetBlockPreimage(block *model.Block, nonce uint64, validator string) []byte {
	var sb strings.Builder
	sb.WriteString(Uint64ToString(block.Index))
	sb.WriteString(block.PrevHash)
	if block.IsDataBlock() {
		sb.WriteString(DATA_MARKER)
	}
	sb.WriteString(GetBlockCommitment(block))
	sb.WriteString(Int64ToString(block.Timestamp))
	sb.WriteString(Uint64ToString(nonce))
	if validator != "" {
		sb.WriteString(VALIDATOR_MARKER)
		sb.WriteString(validator)
		sb.WriteString(")")
	}
	return []byte(sb.String())
}

// ComputeHash hashes the block as if sealed with the given nonce and validator. It does not touch the block.
func ComputeHash(block *model.Block, nonce uint64, validator string) string {
	return SHA256Hex(GetBlockPreimage(block, nonce, validator))
}

// RecomputeHash re-derives the hash of a sealed block from its own fields.
func RecomputeHash(block *model.Block) string {
	return ComputeHash(block, block.Nonce, block.SealedBy)
}

// Mine a block, fill the nonce and hash given the current difficulty setting.
// difficulty - how many leading '0' hex characters
// maxAttempts - 0 means no cap, the caller must keep difficulty <= DIGEST_HEX_LEN
// ctl - any command received interrupts the search, nil never interrupts
func Mine(block *model.Block, difficulty int, maxAttempts uint64, ctl chan commands.Command) (commands.Command, error) {
	for nonce := uint64(0); maxAttempts == 0 || nonce < maxAttempts; nonce++ {
		if nonce%CTL_CHECK_INTERVAL == 0 {
			select {
			case c := <-ctl:
				return c, ErrMiningInterrupted
			default:
			}
		}
		isMatched, digest := MatchDifficulty(block, nonce, difficulty)
		if isMatched {
			// Nonce and hash are assigned together, never one without the other.
			block.Nonce = nonce
			block.Hash = digest
			block.SealedBy = ""
			return commands.NewDefaultCommand(), nil
		}
		if nonce == math.MaxUint64 {
			break
		}
	}
	return commands.NewDefaultCommand(), ErrAttemptsExhausted
}

// MineParallel splits the nonce space across workers, worker w trying w, w+workers, ...
// The smallest satisfying nonce wins, so the result is the same one Mine would find.
func MineParallel(block *model.Block, difficulty int, maxAttempts uint64, workers int, ctl chan commands.Command) (commands.Command, error) {
	if workers <= 1 {
		return Mine(block, difficulty, maxAttempts, ctl)
	}

	var best atomic.Uint64
	best.Store(math.MaxUint64)
	var found atomic.Bool

	var m sync.Mutex
	digests := make(map[uint64]string)

	stop := make(chan struct{})
	finished := make(chan struct{})
	watchDone := make(chan struct{})
	interrupt := commands.NewDefaultCommand()
	interrupted := false

	go func() {
		defer close(watchDone)
		select {
		case c := <-ctl:
			interrupt = c
			interrupted = true
			close(stop)
		case <-finished:
		}
	}()

	step := uint64(workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(start uint64) {
			defer wg.Done()
			for nonce, i := start, uint64(0); ; nonce, i = nonce+step, i+1 {
				if maxAttempts > 0 && nonce >= maxAttempts {
					return
				}
				if found.Load() && nonce > best.Load() {
					return
				}
				if i%CTL_CHECK_INTERVAL == 0 {
					select {
					case <-stop:
						return
					default:
					}
				}
				isMatched, digest := MatchDifficulty(block, nonce, difficulty)
				if isMatched {
					m.Lock()
					digests[nonce] = digest
					m.Unlock()
					for {
						cur := best.Load()
						if nonce >= cur || best.CompareAndSwap(cur, nonce) {
							break
						}
					}
					found.Store(true)
					return
				}
				if nonce > math.MaxUint64-step {
					return
				}
			}
		}(uint64(w))
	}
	wg.Wait()
	close(finished)
	<-watchDone

	if interrupted {
		return interrupt, ErrMiningInterrupted
	}
	if !found.Load() {
		return commands.NewDefaultCommand(), ErrAttemptsExhausted
	}
	nonce := best.Load()
	block.Nonce = nonce
	block.Hash = digests[nonce]
	block.SealedBy = ""
	return commands.NewDefaultCommand(), nil
}

// Forge seals the block in one step on behalf of validator. The nonce is fixed at 0.
func Forge(block *model.Block, validator string) {
	digest := ComputeHash(block, 0, validator)
	block.Nonce = 0
	block.Hash = digest
	block.SealedBy = validator
}

func MatchDifficulty(block *model.Block, nonce uint64, difficulty int) (bool, string) {
	digest := ComputeHash(block, nonce, "")
	return HasLeadingZeros(digest, difficulty), digest
}

// HasLeadingZeros reports whether the first difficulty characters of the hex digest are all '0'.
func HasLeadingZeros(digest string, difficulty int) bool {
	if difficulty < 0 || difficulty > len(digest) {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if digest[i] != '0' {
			return false
		}
	}
	return true
}
