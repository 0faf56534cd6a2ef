package ledger

import (
	"sort"

	"github.com/noah-isme/backend-bangunan/internal/pricing"
)

// Entry annotates a transaction with the running balance around it.
type Entry struct {
	Transaction
	RunningBefore pricing.Money `json:"runningBalanceBefore"`
	RunningAfter  pricing.Money `json:"runningBalanceAfter"`
}

// Recompute folds a client's transaction history into a chronologically
// ordered sequence of entries carrying balance-before/after pairs. Storage
// insertion order is not trusted; CreatedAt is authoritative. The fold is
// pure: recomputing the same history always yields the same sequence, and
// display ordering (usually newest-first) is the caller's concern.
func Recompute(txs []Transaction) []Entry {
	if len(txs) == 0 {
		return nil
	}
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var balance pricing.Money
	if ordered[0].BalanceBefore != nil {
		balance = *ordered[0].BalanceBefore
	}

	entries := make([]Entry, 0, len(ordered))
	for _, t := range ordered {
		before := balance
		balance += Effect(t)
		entries = append(entries, Entry{
			Transaction:   t,
			RunningBefore: before,
			RunningAfter:  balance,
		})
	}
	return entries
}

// CurrentBalance returns the balance after the latest transaction, or zero
// for an empty history.
func CurrentBalance(txs []Transaction) pricing.Money {
	entries := Recompute(txs)
	if len(entries) == 0 {
		return 0
	}
	return entries[len(entries)-1].RunningAfter
}
