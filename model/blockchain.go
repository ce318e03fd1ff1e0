package model

// Sentinel previous hash of the genesis block.
const GENESIS_PREV_HASH = "0"

// How a level with an odd number of nodes is reduced when building a Merkle root.
type MerkleMode string

const (
	// The unpaired node is promoted to the next level unchanged.
	MERKLE_CARRY MerkleMode = "carry"
	// The unpaired node is hashed together with itself.
	MERKLE_SELF_PAIR MerkleMode = "self_pair"
)

type Block struct {
	// Position in the chain, 0 is the genesis block.
	Index uint64
	// Hash of the previous block in the hex format.
	PrevHash string
	// Merkle root over the serialized transactions, empty for a block without transactions.
	MerkleRoot string
	// Raw string payload. Set only on blocks that commit a plain string instead of transactions.
	Data string
	// Transactions for this block, in insertion order.
	Txs []Transaction
	// Unix seconds captured when the block was created.
	Timestamp int64
	// Nonce is the miner's challenge for computing the block. Always 0 for forged blocks.
	Nonce uint64
	// Hash of this entire block in the hex string format.
	Hash string
	// Validator that forged this block. Empty for mined blocks.
	SealedBy string
}

// IsSealed reports whether a consensus engine has assigned the block hash.
func (b *Block) IsSealed() bool {
	return b.Hash != ""
}

// IsDataBlock reports whether the block commits a raw string payload.
func (b *Block) IsDataBlock() bool {
	return b.Data != ""
}
