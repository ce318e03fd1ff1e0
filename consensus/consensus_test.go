package consensus

import (
	"testing"

	"github.com/Luismorlan/mini_ledger/commands"
	"github.com/Luismorlan/mini_ledger/config"
	"github.com/Luismorlan/mini_ledger/model"
	"github.com/Luismorlan/mini_ledger/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTimestamp    = 1700000000
	nonceDifficulty1 = 30
	hashDifficulty1  = "0c163bd87600203e6f8ac3cb02f462adfe0b8fae9ac3ce23dbabaa98d4f52c21"
	forgedByV1       = "a8ae61ff3d5f9c46ac9ffbafa623094415ab959e688439320d57ca52d0808090"
)

type fixedDrawer struct {
	draws []int64
	next  int
}

func (d *fixedDrawer) Int63n(n int64) int64 {
	v := d.draws[d.next%len(d.draws)]
	d.next++
	return v % n
}

func testValidators() []model.Validator {
	return []model.Validator{
		{Name: "Validator1", Stake: 100},
		{Name: "Validator2", Stake: 200},
		{Name: "Validator3", Stake: 150},
	}
}

func createTestBlock() *model.Block {
	return utils.CreateNewBlock(0, model.GENESIS_PREV_HASH, []model.Transaction{utils.CreateGenesisTx()}, testTimestamp, model.MERKLE_CARRY)
}

func TestNewFromConfig(t *testing.T) {
	c := config.Default()
	e, err := New(c, nil)
	require.NoError(t, err)
	assert.Equal(t, "pow", e.Name())
	assert.Equal(t, 2, e.(*PoW).Difficulty())

	c.CONSENSUS = config.CONSENSUS_POS
	e, err = New(c, &fixedDrawer{draws: []int64{0}})
	require.NoError(t, err)
	assert.Equal(t, "pos", e.Name())

	c.CONSENSUS = "pbft"
	_, err = New(c, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewPoWRejectsBadDifficulty(t *testing.T) {
	_, err := NewPoW(-1, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewPoW(65, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewPoW(0, 0, -2)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewPoW(64, 0, 1)
	assert.NoError(t, err)
}

func TestPoWSealAndVerify(t *testing.T) {
	for _, workers := range []int{1, 4} {
		e, err := NewPoW(1, 0, workers)
		require.NoError(t, err)

		b := createTestBlock()
		_, err = e.Seal(b, nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(nonceDifficulty1), b.Nonce)
		assert.Equal(t, hashDifficulty1, b.Hash)
		assert.Empty(t, b.SealedBy)
		assert.NoError(t, e.Verify(b))
	}
}

func TestPoWVerifyRejects(t *testing.T) {
	e, err := NewPoW(1, 0, 1)
	require.NoError(t, err)
	sealed := createTestBlock()
	_, err = e.Seal(sealed, nil)
	require.NoError(t, err)

	b := *sealed
	b.Nonce++
	assert.ErrorIs(t, e.Verify(&b), ErrHashMismatch)

	b = *sealed
	b.SealedBy = "Validator1"
	assert.ErrorIs(t, e.Verify(&b), ErrUnexpectedValidator)

	// A hash that reproduces but misses the prefix.
	b = *sealed
	b.Nonce = 0
	b.Hash = utils.ComputeHash(&b, 0, "")
	assert.ErrorIs(t, e.Verify(&b), ErrInsufficientWork)

	// The same block checked under a stricter rule.
	strict, err := NewPoW(3, 0, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, strict.Verify(sealed), ErrInsufficientWork)
}

func TestPoWSealFailures(t *testing.T) {
	e, err := NewPoW(64, 10, 1)
	require.NoError(t, err)
	b := createTestBlock()
	_, err = e.Seal(b, nil)
	assert.ErrorIs(t, err, ErrSealingFailed)
	assert.ErrorIs(t, err, utils.ErrAttemptsExhausted)
	assert.False(t, b.IsSealed())

	e, err = NewPoW(64, 0, 2)
	require.NoError(t, err)
	ctl := make(chan commands.Command, 1)
	stop, err := commands.CreateCommand("stop")
	require.NoError(t, err)
	ctl <- stop
	c, err := e.Seal(b, ctl)
	assert.ErrorIs(t, err, utils.ErrMiningInterrupted)
	assert.Equal(t, commands.STOP, c.Op)
	assert.False(t, b.IsSealed())
}

func TestNewPoSRejectsBadRegistry(t *testing.T) {
	_, err := NewPoS(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, utils.ErrEmptyRegistry)

	_, err = NewPoS([]model.Validator{{Name: "a", Stake: 0}}, nil)
	assert.ErrorIs(t, err, utils.ErrZeroStake)
}

func TestPoSSealAndVerify(t *testing.T) {
	e, err := NewPoS(testValidators(), &fixedDrawer{draws: []int64{50, 150, 400}})
	require.NoError(t, err)

	b := createTestBlock()
	_, err = e.Seal(b, nil)
	require.NoError(t, err)
	assert.Equal(t, "Validator1", b.SealedBy)
	assert.Equal(t, uint64(0), b.Nonce)
	assert.Equal(t, forgedByV1, b.Hash)
	assert.NoError(t, e.Verify(b))

	for _, want := range []string{"Validator2", "Validator3"} {
		b := createTestBlock()
		_, err = e.Seal(b, nil)
		require.NoError(t, err)
		assert.Equal(t, want, b.SealedBy)
		assert.NoError(t, e.Verify(b))
	}
}

func TestPoSVerifyRejects(t *testing.T) {
	e, err := NewPoS(testValidators(), &fixedDrawer{draws: []int64{0}})
	require.NoError(t, err)
	sealed := createTestBlock()
	_, err = e.Seal(sealed, nil)
	require.NoError(t, err)

	b := *sealed
	b.SealedBy = ""
	assert.ErrorIs(t, e.Verify(&b), ErrMissingValidator)

	b = *sealed
	b.SealedBy = "Mallory"
	b.Hash = utils.RecomputeHash(&b)
	assert.ErrorIs(t, e.Verify(&b), ErrUnknownValidator)

	b = *sealed
	b.SealedBy = "Validator2"
	assert.ErrorIs(t, e.Verify(&b), ErrHashMismatch)

	b = *sealed
	b.Nonce = 1
	b.Hash = utils.RecomputeHash(&b)
	assert.ErrorIs(t, e.Verify(&b), ErrUnexpectedNonce)

	// A mined block does not pass as forged.
	pow, err := NewPoW(1, 0, 1)
	require.NoError(t, err)
	mined := createTestBlock()
	_, err = pow.Seal(mined, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, e.Verify(mined), ErrMissingValidator)
}

func TestPoSValidatorsIsCopy(t *testing.T) {
	e, err := NewPoS(testValidators(), nil)
	require.NoError(t, err)
	vs := e.Validators()
	vs[0].Name = "changed"
	assert.Equal(t, "Validator1", e.Validators()[0].Name)
}
