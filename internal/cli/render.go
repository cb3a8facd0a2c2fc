package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"splitease/internal/ledger"
	"splitease/internal/models"
	"splitease/internal/money"
)

const wordWrap = 100

// printMarkdown renders md for the terminal, or writes it untouched when
// plain is set.
func printMarkdown(w io.Writer, md string, plain bool) error {
	if plain {
		_, err := io.WriteString(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func nameOf(names map[string]string, userID string) string {
	if n, ok := names[userID]; ok && n != "" {
		return n
	}
	return userID
}

func balancesMarkdown(group *models.Group, names map[string]string, rows []models.Balance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Balances for %s (%s)\n\n", group.Name, group.Currency)

	if len(rows) == 0 {
		b.WriteString("_All settled._\n")
		return b.String()
	}

	b.WriteString("| Debtor | Creditor | Amount |\n|---|---|---:|\n")
	net := make(ledger.Net)
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			nameOf(names, r.DebtorID), nameOf(names, r.CreditorID), money.Format(r.Amount, group.Currency))
		net[r.CreditorID] = net[r.CreditorID].Add(r.Amount)
		net[r.DebtorID] = net[r.DebtorID].Sub(r.Amount)
	}

	ids := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		ids = append(ids, m.UserID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return nameOf(names, ids[i]) < nameOf(names, ids[j])
	})

	b.WriteString("\n## Net positions\n\n| Member | Net |\n|---|---:|\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "| %s | %s |\n", nameOf(names, id), money.Format(net.Get(id), group.Currency))
	}
	return b.String()
}

func transfersMarkdown(title string, group *models.Group, names map[string]string, transfers []ledger.Transfer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s for %s\n\n", title, group.Name)

	if len(transfers) == 0 {
		b.WriteString("_Nothing to settle._\n")
		return b.String()
	}

	total := decimal.Zero
	for i, t := range transfers {
		fmt.Fprintf(&b, "%d. %s pays %s %s\n", i+1,
			nameOf(names, t.PayerID), nameOf(names, t.PayeeID), money.Format(t.Amount, group.Currency))
		total = total.Add(t.Amount)
	}
	fmt.Fprintf(&b, "\n%d transfer(s), %s in total.\n", len(transfers), money.Format(total, group.Currency))
	return b.String()
}

func settlementTransfers(settlements []models.Settlement) []ledger.Transfer {
	out := make([]ledger.Transfer, 0, len(settlements))
	for _, s := range settlements {
		out = append(out, ledger.Transfer{PayerID: s.PayerID, PayeeID: s.PayeeID, Amount: s.Amount})
	}
	return out
}
