package models

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Group{},
		&GroupMember{},
		&Category{},
		&Expense{},
		&ExpenseParticipant{},
		&Balance{},
		&Settlement{},
		&Activity{},
	}
}
