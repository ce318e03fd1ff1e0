package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/Luismorlan/mini_ledger/config"
	"github.com/Luismorlan/mini_ledger/consensus"
	"github.com/Luismorlan/mini_ledger/ledger"
	"github.com/Luismorlan/mini_ledger/model"
	"github.com/Luismorlan/mini_ledger/visualize"
)

// Result of building one chain.
type benchRun struct {
	Name  string
	Took  time.Duration
	Valid bool
	Chain []model.Block
}

// The two transactions appended in block i.
func benchTxs(i int) []model.Transaction {
	return []model.Transaction{
		{Id: strconv.Itoa(i*10 + 1), Sender: "Alice", Receiver: "Bob", Amount: 10},
		{Id: strconv.Itoa(i*10 + 2), Sender: "Bob", Receiver: "Charlie", Amount: 5},
	}
}

// Build a chain of n blocks on top of genesis, timing genesis too.
func buildChain(e consensus.Engine, n int, mode model.MerkleMode) (benchRun, error) {
	start := time.Now()
	l, err := ledger.New(e, ledger.WithMerkleMode(mode))
	if err != nil {
		return benchRun{}, err
	}
	for i := 1; i <= n; i++ {
		if err := l.Append(benchTxs(i)); err != nil {
			return benchRun{}, err
		}
	}
	took := time.Since(start)
	chain, err := l.Blocks()
	if err != nil {
		return benchRun{}, err
	}
	return benchRun{Name: e.Name(), Took: took, Valid: l.IsValid(), Chain: chain}, nil
}

func printRun(w io.Writer, label string, r benchRun, n int) error {
	fmt.Fprintf(w, "%s Chain:\n", label)
	if err := visualize.Summary(r.Chain, -1, w); err != nil {
		return err
	}
	valid := "No"
	if r.Valid {
		valid = "Yes"
	}
	fmt.Fprintf(w, "%s Valid: %s\n", label, valid)
	_, err := fmt.Fprintf(w, "%s Time for %d blocks: %d ms\n\n", label, n, r.Took.Milliseconds())
	return err
}

// RunBench builds a mined and a forged chain for every configured difficulty and compares them.
func RunBench(cfg config.AppConfig, w io.Writer, log *slog.Logger) error {
	n := cfg.BENCH_BLOCKS
	for _, difficulty := range cfg.BENCH_DIFFICULTIES {
		fmt.Fprintf(w, "=== Difficulty: %d ===\n", difficulty)

		pow, err := consensus.NewPoW(difficulty, cfg.MAX_ATTEMPTS, cfg.MINING_WORKERS)
		if err != nil {
			return err
		}
		powRun, err := buildChain(pow, n, cfg.MerkleMode())
		if err != nil {
			return err
		}
		log.Info("chain built", "consensus", powRun.Name, "difficulty", difficulty, "blocks", n, "took", powRun.Took)
		if err := printRun(w, "PoW", powRun, n); err != nil {
			return err
		}

		pos, err := consensus.NewPoS(cfg.Validators(), nil)
		if err != nil {
			return err
		}
		posRun, err := buildChain(pos, n, cfg.MerkleMode())
		if err != nil {
			return err
		}
		log.Info("chain built", "consensus", posRun.Name, "blocks", n, "took", posRun.Took)
		if err := printRun(w, "PoS", posRun, n); err != nil {
			return err
		}

		fmt.Fprintln(w, "Comparison:")
		fmt.Fprintf(w, "  - Speed: PoS is faster by %d ms.\n", (powRun.Took - posRun.Took).Milliseconds())
		fmt.Fprintf(w, "  - Work: PoW tried %d nonces on average, PoS hashed each block once.\n\n", averageNonce(powRun.Chain))
	}
	return nil
}

// Nonces tried per mined block is the winning nonce plus one.
func averageNonce(chain []model.Block) uint64 {
	if len(chain) == 0 {
		return 0
	}
	var sum uint64
	for _, b := range chain {
		sum += b.Nonce + 1
	}
	return sum / uint64(len(chain))
}
