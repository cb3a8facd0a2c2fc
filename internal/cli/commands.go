package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"splitease/internal/models"
)

// recomputeCmd rebuilds a group's Balance rows.
type recomputeCmd struct {
	app   *App
	group string
}

func (*recomputeCmd) Name() string     { return "recompute" }
func (*recomputeCmd) Synopsis() string { return "rebuild a group's balances from its expenses" }
func (*recomputeCmd) Usage() string {
	return `ledgerctl recompute -group <id>

  Deletes the group's balance rows and derives them again from its expenses.
`
}

func (c *recomputeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.group, "group", "", "group ID")
}

func (c *recomputeCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	groupID, err := requireID("group", c.group)
	if err != nil {
		c.app.errorf("%v", err)
		return subcommands.ExitUsageError
	}

	svc, err := c.app.balanceService()
	if err != nil {
		c.app.errorf("Error opening database: %v", err)
		return subcommands.ExitFailure
	}

	rows, err := svc.RecomputeBalances(groupID)
	if err != nil {
		c.app.errorf("Error recomputing balances: %v", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.app.stdout(), "Recomputed %d balance row(s) for group %s\n", len(rows), groupID)
	return subcommands.ExitSuccess
}

// balancesCmd prints the persisted balance rows. It never writes.
type balancesCmd struct {
	app   *App
	group string
	plain bool
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "show who owes whom in a group" }
func (*balancesCmd) Usage() string {
	return `ledgerctl balances -group <id> [-plain]

  Prints the group's stored balance rows and each member's net position.
  Run recompute first if expenses changed outside the API.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.group, "group", "", "group ID")
	f.BoolVar(&c.plain, "plain", false, "print raw markdown")
}

func (c *balancesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	groupID, err := requireID("group", c.group)
	if err != nil {
		c.app.errorf("%v", err)
		return subcommands.ExitUsageError
	}

	group, names, err := c.app.group(groupID)
	if err != nil {
		c.app.errorf("Error loading group: %v", err)
		return subcommands.ExitFailure
	}

	var rows []models.Balance
	if err := c.app.db.Where("group_id = ?", groupID).
		Order("debtor_id ASC, creditor_id ASC").Find(&rows).Error; err != nil {
		c.app.errorf("Error loading balances: %v", err)
		return subcommands.ExitFailure
	}

	if err := printMarkdown(c.app.stdout(), balancesMarkdown(group, names, rows), c.plain); err != nil {
		c.app.errorf("Error rendering: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// previewCmd computes a settlement plan without saving it.
type previewCmd struct {
	app   *App
	group string
	plain bool
}

func (*previewCmd) Name() string     { return "preview" }
func (*previewCmd) Synopsis() string { return "show the fewest transfers that settle a group" }
func (*previewCmd) Usage() string {
	return `ledgerctl preview -group <id> [-plain]

  Computes the settlement plan from the group's expenses and refreshes the
  stored balances. No settlements are written.
`
}

func (c *previewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.group, "group", "", "group ID")
	f.BoolVar(&c.plain, "plain", false, "print raw markdown")
}

func (c *previewCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	groupID, err := requireID("group", c.group)
	if err != nil {
		c.app.errorf("%v", err)
		return subcommands.ExitUsageError
	}

	group, names, err := c.app.group(groupID)
	if err != nil {
		c.app.errorf("Error loading group: %v", err)
		return subcommands.ExitFailure
	}

	balances, err := c.app.balanceService()
	if err != nil {
		c.app.errorf("Error opening database: %v", err)
		return subcommands.ExitFailure
	}
	if _, err := balances.RecomputeBalances(groupID); err != nil {
		c.app.errorf("Error recomputing balances: %v", err)
		return subcommands.ExitFailure
	}

	svc, err := c.app.settlementService()
	if err != nil {
		c.app.errorf("Error opening database: %v", err)
		return subcommands.ExitFailure
	}

	transfers, err := svc.PlanSettlements(groupID)
	if err != nil {
		c.app.errorf("Error planning settlements: %v", err)
		return subcommands.ExitFailure
	}

	if err := printMarkdown(c.app.stdout(), transfersMarkdown("Settlement plan", group, names, transfers), c.plain); err != nil {
		c.app.errorf("Error rendering: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// settleCmd confirms a fresh plan on behalf of a member.
type settleCmd struct {
	app   *App
	group string
	as    string
	plain bool
}

func (*settleCmd) Name() string     { return "settle" }
func (*settleCmd) Synopsis() string { return "confirm a settlement plan on behalf of a member" }
func (*settleCmd) Usage() string {
	return `ledgerctl settle -group <id> -as <user id> [-plain]

  Replaces the group's pending settlements with a freshly computed plan.
  Completed settlements are kept.
`
}

func (c *settleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.group, "group", "", "group ID")
	f.StringVar(&c.as, "as", "", "ID of the member confirming the plan")
	f.BoolVar(&c.plain, "plain", false, "print raw markdown")
}

func (c *settleCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	groupID, err := requireID("group", c.group)
	if err != nil {
		c.app.errorf("%v", err)
		return subcommands.ExitUsageError
	}
	userID, err := requireID("as", c.as)
	if err != nil {
		c.app.errorf("%v", err)
		return subcommands.ExitUsageError
	}

	svc, err := c.app.settlementService()
	if err != nil {
		c.app.errorf("Error opening database: %v", err)
		return subcommands.ExitFailure
	}

	settlements, err := svc.ConfirmSettlements(groupID, userID)
	if err != nil {
		c.app.errorf("Error confirming settlements: %v", err)
		return subcommands.ExitFailure
	}

	group, names, err := c.app.group(groupID)
	if err != nil {
		c.app.errorf("Error loading group: %v", err)
		return subcommands.ExitFailure
	}

	md := transfersMarkdown("Confirmed settlements", group, names, settlementTransfers(settlements))
	if err := printMarkdown(c.app.stdout(), md, c.plain); err != nil {
		c.app.errorf("Error rendering: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
