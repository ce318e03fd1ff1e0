package utils

import "github.com/Luismorlan/mini_ledger/model"

// MerkleLevels builds every level of the tree, leaves first. The last level holds only the root.
// Parents hash the concatenated hex text of their children, not the raw digest bytes.
// An empty leaf set has no levels.
func MerkleLevels(leaves [][]byte, mode model.MerkleMode) [][]string {
	if len(leaves) == 0 {
		return nil
	}

	level := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		level = append(level, SHA256Hex(leaf))
	}
	levels := [][]string{level}

	for len(level) > 1 {
		next := make([]string, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, SHA256Hex([]byte(level[i]+level[i+1])))
				continue
			}
			// Odd node out.
			if mode == model.MERKLE_SELF_PAIR {
				next = append(next, SHA256Hex([]byte(level[i]+level[i])))
			} else {
				next = append(next, level[i])
			}
		}
		levels = append(levels, next)
		level = next
	}
	return levels
}

// MerkleRoot computes the root with the unpaired node carried up unchanged. Empty input gives "".
func MerkleRoot(leaves [][]byte) string {
	return MerkleRootWithMode(leaves, model.MERKLE_CARRY)
}

func MerkleRootWithMode(leaves [][]byte, mode model.MerkleMode) string {
	levels := MerkleLevels(leaves, mode)
	if len(levels) == 0 {
		return ""
	}
	return levels[len(levels)-1][0]
}

// IsValidMerkleMode accepts the known modes. The empty mode means carry.
func IsValidMerkleMode(mode model.MerkleMode) bool {
	switch mode {
	case "", model.MERKLE_CARRY, model.MERKLE_SELF_PAIR:
		return true
	default:
		return false
	}
}
