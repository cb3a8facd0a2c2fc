// Package ledger computes group balances and settlement plans from expense
// data. It has no storage dependencies: services load expenses, hand them
// to these functions and persist the results.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Share is one participant's portion of an expense.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// Expense is the subset of an expense needed to derive balances.
type Expense struct {
	PayerID string
	Amount  decimal.Decimal
	Shares  []Share
}

// Net maps a user ID to paid minus owed. Positive means the group owes the
// user; negative means the user owes the group.
type Net map[string]decimal.Decimal

// Debt states that Debtor owes Creditor Amount.
type Debt struct {
	DebtorID   string          `json:"debtor_id"`
	CreditorID string          `json:"creditor_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Transfer is a payment from Payer to Payee that moves both toward zero.
type Transfer struct {
	PayerID string          `json:"payer_id"`
	PayeeID string          `json:"payee_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// position is a user's outstanding magnitude during a sweep.
type position struct {
	userID    string
	remaining decimal.Decimal
}

// NetBalances credits each payer with the expense amount and debits each
// participant by their share.
func NetBalances(expenses []Expense) Net {
	net := make(Net)
	for _, e := range expenses {
		net[e.PayerID] = net[e.PayerID].Add(e.Amount)
		for _, s := range e.Shares {
			net[s.UserID] = net[s.UserID].Sub(s.Amount)
		}
	}
	return net
}

// Total sums all balances. It is zero when shares cover every expense.
func (n Net) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range n {
		total = total.Add(v)
	}
	return total
}

// Get returns the user's balance, zero when absent.
func (n Net) Get(userID string) decimal.Decimal {
	return n[userID]
}

// partition splits non-zero balances into debtors and creditors, both
// carrying positive remaining amounts and ordered by user ID.
func (n Net) partition() (debtors, creditors []position) {
	ids := make([]string, 0, len(n))
	for id := range n {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		switch v := n[id]; v.Sign() {
		case -1:
			debtors = append(debtors, position{userID: id, remaining: v.Neg()})
		case 1:
			creditors = append(creditors, position{userID: id, remaining: v})
		}
	}
	return debtors, creditors
}

// PairwiseBalances materializes who owes whom. Creditors are filled in
// user-ID order from debtors in user-ID order; the result reproduces every
// user's net balance but is not minimal in row count.
func PairwiseBalances(net Net) []Debt {
	debtors, creditors := net.partition()

	var debts []Debt
	for c := range creditors {
		for d := range debtors {
			if !creditors[c].remaining.IsPositive() {
				break
			}
			if !debtors[d].remaining.IsPositive() {
				continue
			}
			amount := decimal.Min(debtors[d].remaining, creditors[c].remaining)
			debts = append(debts, Debt{
				DebtorID:   debtors[d].userID,
				CreditorID: creditors[c].userID,
				Amount:     amount,
			})
			debtors[d].remaining = debtors[d].remaining.Sub(amount)
			creditors[c].remaining = creditors[c].remaining.Sub(amount)
		}
	}
	return debts
}

// MinimalSettlements matches the largest debtor with the largest creditor
// until one side runs out. For N users with a non-zero balance it emits at
// most N-1 transfers. Equal amounts are ordered by user ID.
func MinimalSettlements(net Net) []Transfer {
	debtors, creditors := net.partition()
	byAmountDesc(debtors)
	byAmountDesc(creditors)

	transfers := []Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].remaining, creditors[j].remaining)
		transfers = append(transfers, Transfer{
			PayerID: debtors[i].userID,
			PayeeID: creditors[j].userID,
			Amount:  amount,
		})

		debtors[i].remaining = debtors[i].remaining.Sub(amount)
		creditors[j].remaining = creditors[j].remaining.Sub(amount)

		if debtors[i].remaining.IsZero() {
			i++
		}
		if creditors[j].remaining.IsZero() {
			j++
		}
	}
	return transfers
}

// byAmountDesc sorts in place; input is already in user-ID order and the
// stable sort keeps that order among equal amounts.
func byAmountDesc(ps []position) {
	sort.SliceStable(ps, func(a, b int) bool {
		return ps[a].remaining.GreaterThan(ps[b].remaining)
	})
}
