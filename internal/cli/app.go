// Package cli implements the ledgerctl operator commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"gorm.io/gorm"

	"splitease/internal/models"
	"splitease/internal/services"
	"splitease/internal/uuid"
)

// App carries what every command needs. The database is opened on first use
// so that help and flag errors never touch it.
type App struct {
	Open func() (*gorm.DB, error)
	Out  io.Writer
	Err  io.Writer

	db *gorm.DB
}

// Register adds the ledgerctl commands to c.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&recomputeCmd{app: app}, "balances")
	c.Register(&balancesCmd{app: app}, "balances")
	c.Register(&previewCmd{app: app}, "settlements")
	c.Register(&settleCmd{app: app}, "settlements")
}

func (a *App) database() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := a.Open()
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *App) stdout() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) errorf(format string, args ...interface{}) {
	w := a.Err
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (a *App) balanceService() (services.BalanceServicer, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	return services.NewBalanceService(db), nil
}

func (a *App) settlementService() (services.SettlementServicer, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	return services.NewSettlementService(db, services.NewActivityService(db)), nil
}

// group loads the group and a user ID to display-name lookup for its members.
func (a *App) group(groupID string) (*models.Group, map[string]string, error) {
	db, err := a.database()
	if err != nil {
		return nil, nil, err
	}

	var group models.Group
	if err := db.Preload("Members.User").Where("id = ?", groupID).First(&group).Error; err != nil {
		return nil, nil, fmt.Errorf("group %s: %w", groupID, err)
	}

	names := make(map[string]string, len(group.Members))
	for _, m := range group.Members {
		if m.User != nil {
			names[m.UserID] = m.User.Name
		}
	}
	return &group, names, nil
}

// requireID validates a flag holding a UUID.
func requireID(flagName, value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("-%s is required", flagName)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return "", fmt.Errorf("-%s: %q is not a valid id", flagName, value)
	}
	return id, nil
}
