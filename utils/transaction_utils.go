package utils

import (
	"strconv"

	"github.com/Luismorlan/mini_ledger/model"
)

// FormatAmount renders an amount with six significant digits in its shortest form: 10, 5.5, 1.23457e+06.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'g', 6, 64)
}

// GetTransactionString concatenates id, sender, receiver and amount with no separator.
func GetTransactionString(tx *model.Transaction) string {
	return tx.Id + tx.Sender + tx.Receiver + FormatAmount(tx.Amount)
}

func GetTransactionBytes(tx *model.Transaction) []byte {
	return []byte(GetTransactionString(tx))
}

// GetTransactionLeaves serializes transactions in order, one Merkle leaf each.
func GetTransactionLeaves(txs []model.Transaction) [][]byte {
	leaves := make([][]byte, 0, len(txs))
	for i := 0; i < len(txs); i++ {
		leaves = append(leaves, GetTransactionBytes(&txs[i]))
	}
	return leaves
}

// GetTransactionsRoot commits a transaction batch. An empty batch gives "".
func GetTransactionsRoot(txs []model.Transaction, mode model.MerkleMode) string {
	return MerkleRootWithMode(GetTransactionLeaves(txs), mode)
}

// Placeholder transaction carried by every genesis block.
func CreateGenesisTx() model.Transaction {
	return model.Transaction{
		Id:       "0",
		Sender:   "Genesis",
		Receiver: "Genesis",
		Amount:   0,
	}
}
