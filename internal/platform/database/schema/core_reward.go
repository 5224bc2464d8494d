package schema

// CoreRewardTable represents the 'core.reward' table
type CoreRewardTable struct {
	Table        string
	ID           string
	Number       string
	Name         string
	Description  string
	Price        string
	Availability string
	Active       string
	Claimers     string
	Handed       string
	CreatedAt    string
	UpdatedAt    string
}

// CoreReward is the schema definition for core.reward
var CoreReward = CoreRewardTable{
	Table:        "core.reward",
	ID:           "id",
	Number:       "number",
	Name:         "name",
	Description:  "description",
	Price:        "price",
	Availability: "availability",
	Active:       "active",
	Claimers:     "claimers",
	Handed:       "handed",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t CoreRewardTable) Columns() []string {
	return []string{
		t.ID, t.Number, t.Name, t.Description, t.Price, t.Availability,
		t.Active, t.Claimers, t.Handed, t.CreatedAt, t.UpdatedAt,
	}
}
