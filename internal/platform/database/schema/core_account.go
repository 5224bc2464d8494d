package schema

// CoreAccountTable represents the 'core.account' table
type CoreAccountTable struct {
	Table       string
	ID          string
	Name        string
	Email       string
	Balance     string
	TotalPoints string
	CreatedAt   string
	UpdatedAt   string
}

// CoreAccount is the schema definition for core.account
var CoreAccount = CoreAccountTable{
	Table:       "core.account",
	ID:          "id",
	Name:        "name",
	Email:       "email",
	Balance:     "balance",
	TotalPoints: "totalpoints",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t CoreAccountTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Email, t.Balance, t.TotalPoints,
		t.CreatedAt, t.UpdatedAt,
	}
}
