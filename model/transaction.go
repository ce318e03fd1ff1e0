package model

type Transaction struct {
	// Caller supplied identifier. Uniqueness is not enforced by the chain.
	Id string
	// Who pays.
	Sender string
	// Who receives.
	Receiver string
	// How much value to transfer.
	Amount float64
}

// TransactionPool keeps pending transactions in arrival order until a block picks them up.
type TransactionPool struct {
	// Pending transactions, in the order they were added.
	Txs []Transaction
	// Set of ids currently in the pool.
	Ids map[string]bool
}

// NewTransactionPool creates a new transaction pool with no transaction at all.
func NewTransactionPool() TransactionPool {
	return TransactionPool{
		Ids: make(map[string]bool),
	}
}
