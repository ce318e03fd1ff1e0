package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Luismorlan/mini_ledger/commands"
	"github.com/Luismorlan/mini_ledger/config"
	"github.com/Luismorlan/mini_ledger/full_node"
	"github.com/Luismorlan/mini_ledger/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cmd := make(chan commands.Command, 4)
	ParseCommand(strings.NewReader("mine\nbogus\n\npost Hello world\nvalidate"), cmd)

	var ops []commands.Operation
	for c := range cmd {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []commands.Operation{commands.MINE, commands.POST, commands.VALIDATE}, ops)
}

func TestHandleCommand(t *testing.T) {
	c := config.Default()
	c.DIFFICULTY = 1
	node, err := full_node.NewFullNode(c, nil)
	require.NoError(t, err)

	cmd := make(chan commands.Command, 8)
	for _, line := range []string{
		"transfer 1 Alice Bob 10",
		"transfer 2 Bob Charlie 5",
		"mine",
		"post Transaction 1",
		"validate",
		"show 5",
	} {
		op, err := commands.CreateCommand(line)
		require.NoError(t, err)
		cmd <- op
	}
	close(cmd)

	out := &bytes.Buffer{}
	HandleCommand(cmd, node, out, logging.Discard())

	assert.Equal(t, 2, node.GetHeight())
	assert.Empty(t, node.GetPendingTxs())
	assert.Contains(t, out.String(), "Chain valid: Yes")
	assert.Contains(t, out.String(), "Block 1:\n")
	assert.Contains(t, out.String(), "  Transactions: 2\n")
	assert.Contains(t, out.String(), "  Data: Transaction 1\n")
}

func TestRelayNeverBlocks(t *testing.T) {
	ctl := make(chan commands.Command, 1)
	stop := commands.Command{Op: commands.STOP}
	assert.True(t, relay(ctl, stop))
	// A second stop before the first is consumed is dropped instead of parked.
	assert.False(t, relay(ctl, stop))
	assert.Len(t, ctl, 1)
}

func TestStaleStopDoesNotCancelNextMining(t *testing.T) {
	c := config.Default()
	c.DIFFICULTY = 1
	node, err := full_node.NewFullNode(c, nil)
	require.NoError(t, err)

	ctl := make(chan commands.Command, 1)
	require.True(t, relay(ctl, commands.Command{Op: commands.STOP}))
	drain(ctl)
	assert.Empty(t, ctl)

	res, err := node.Mine(ctl)
	require.NoError(t, err)
	assert.True(t, res.IsDefault())
	assert.Equal(t, 1, node.GetHeight())
}

func TestRunBench(t *testing.T) {
	c := config.Default()
	c.BENCH_DIFFICULTIES = []int{1}
	c.BENCH_BLOCKS = 2

	out := &bytes.Buffer{}
	require.NoError(t, RunBench(c, out, logging.Discard()))

	s := out.String()
	assert.Contains(t, s, "=== Difficulty: 1 ===")
	assert.Contains(t, s, "PoW Valid: Yes")
	assert.Contains(t, s, "PoS Valid: Yes")
	assert.Contains(t, s, "PoW Time for 2 blocks:")
	assert.Contains(t, s, "Block 2:")
	assert.Contains(t, s, "Comparison:")
}

func TestBenchTxs(t *testing.T) {
	txs := benchTxs(3)
	require.Len(t, txs, 2)
	assert.Equal(t, "31", txs[0].Id)
	assert.Equal(t, "32", txs[1].Id)
	assert.Equal(t, "Charlie", txs[1].Receiver)
}
