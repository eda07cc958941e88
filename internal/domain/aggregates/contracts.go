package aggregates

// TxOwnership says who opens the transaction around an aggregate write.
type TxOwnership string

const (
	// TxOwnedByAggregate: every write method opens and commits its own transaction.
	TxOwnedByAggregate TxOwnership = "aggregate"
	// TxJoinsCaller: write methods run inside a transaction handed in by the caller.
	TxJoinsCaller TxOwnership = "caller"
)

// Contract documents the write boundary of an aggregate.
type Contract struct {
	Name        string
	TxOwnership TxOwnership
	// Tables lists every table a single write may change.
	Tables []string
	Notes  string
}

// Aggregate is implemented by every aggregate so callers can inspect its contract.
type Aggregate interface {
	Contract() Contract
}

func (c Contract) OwnsTx() bool {
	return c.TxOwnership == TxOwnedByAggregate
}

// Touches reports whether a write of this aggregate may change table.
func (c Contract) Touches(table string) bool {
	for _, t := range c.Tables {
		if t == table {
			return true
		}
	}
	return false
}
