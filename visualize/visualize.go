package visualize

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Luismorlan/mini_ledger/model"
	"github.com/Luismorlan/mini_ledger/utils"
	"github.com/bradleyjkemp/memviz"
)

// How many hash characters are kept when printing.
const SHORT_HASH_LEN = 10

// We re-define the visualize model here so the graph only carries what is worth drawing,
// with every digest already shortened.
type transaction struct {
	id       string
	sender   string
	receiver string
	amount   string
}

type block struct {
	index      uint64
	hash       string
	prevHash   string
	merkleRoot string
	data       string
	sealedBy   string
	nonce      uint64
	txs        []transaction
	next       *block
}

// Blocks from the d-th block before the tail up to the tail. d < 0 keeps the whole chain.
func lastBlocks(blocks []model.Block, d int) []model.Block {
	if d < 0 || d >= len(blocks) {
		return blocks
	}
	return blocks[len(blocks)-1-d:]
}

func blockToblock(b *model.Block) *block {
	n := &block{
		index:      b.Index,
		hash:       shorten(b.Hash),
		prevHash:   shorten(b.PrevHash),
		merkleRoot: shorten(b.MerkleRoot),
		data:       b.Data,
		sealedBy:   b.SealedBy,
		nonce:      b.Nonce,
	}
	for i := 0; i < len(b.Txs); i++ {
		tx := b.Txs[i]
		n.txs = append(n.txs, transaction{
			id:       tx.Id,
			sender:   tx.Sender,
			receiver: tx.Receiver,
			amount:   utils.FormatAmount(tx.Amount),
		})
	}
	return n
}

// Link the blocks into a list, oldest first. Returns nil for an empty chain.
func constructData(blocks []model.Block, d int) *block {
	var head, prev *block
	for _, b := range lastBlocks(blocks, d) {
		n := blockToblock(&b)
		if prev == nil {
			head = n
		} else {
			prev.next = n
		}
		prev = n
	}
	return head
}

// Describe who sealed a block: the validator for a forged block, the nonce for a mined one.
func sealer(b *model.Block) string {
	if b.SealedBy != "" {
		return b.SealedBy
	}
	return fmt.Sprintf("mined, nonce %d", b.Nonce)
}

// Summary prints every block with its digests truncated.
func Summary(blocks []model.Block, d int, w io.Writer) error {
	for _, b := range lastBlocks(blocks, d) {
		_, err := fmt.Fprintf(w, "Block %d:\n  Prev Hash: %s\n  Merkle Root: %s\n  Hash: %s\n  Sealed By: %s\n",
			b.Index,
			shorten(b.PrevHash),
			shorten(b.MerkleRoot),
			shorten(b.Hash),
			sealer(&b))
		if err != nil {
			return err
		}
		if b.IsDataBlock() {
			_, err = fmt.Fprintf(w, "  Data: %s\n\n", b.Data)
		} else {
			_, err = fmt.Fprintf(w, "  Transactions: %d\n\n", len(b.Txs))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func shorten(s string) string {
	return utils.ShortenHash(s, SHORT_HASH_LEN)
}

// Render writes a graphviz dot graph of the last d+1 blocks. Nothing is written for an empty chain.
func Render(blocks []model.Block, d int, w io.Writer) {
	chain := constructData(blocks, d)
	if chain == nil {
		return
	}
	memviz.Map(w, chain)
}

// RenderToFile writes the dot graph for node id under dir and returns its path. When graphviz
// is installed a png is rendered next to it and that path is returned instead.
func RenderToFile(blocks []model.Block, d int, id string, dir string) (string, error) {
	buf := &bytes.Buffer{}
	Render(blocks, d, buf)

	fileName := filepath.Join(dir, "chaindata-"+id+".dot")
	if err := os.WriteFile(fileName, buf.Bytes(), 0644); err != nil {
		return "", err
	}

	dot, err := exec.LookPath("dot")
	if err != nil {
		return fileName, nil
	}
	outputName := filepath.Join(dir, "rendered-chain-"+id+".png")
	if err := exec.Command(dot, "-Tpng", fileName, "-o", outputName).Run(); err != nil {
		return fileName, nil
	}
	return outputName, nil
}
