package schema

// CoreMissionTable represents the 'core.mission' table
type CoreMissionTable struct {
	Table          string
	ID             string
	Number         string
	Name           string
	Description    string
	Points         string
	ExpirationDate string
	CreatedBy      string
	Active         string
	Participants   string
	Completers     string
	CreatedAt      string
	UpdatedAt      string
}

// CoreMission is the schema definition for core.mission
var CoreMission = CoreMissionTable{
	Table:          "core.mission",
	ID:             "id",
	Number:         "number",
	Name:           "name",
	Description:    "description",
	Points:         "points",
	ExpirationDate: "expirationdate",
	CreatedBy:      "createdby",
	Active:         "active",
	Participants:   "participants",
	Completers:     "completers",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

// Columns returns all standard column names
func (t CoreMissionTable) Columns() []string {
	return []string{
		t.ID, t.Number, t.Name, t.Description, t.Points, t.ExpirationDate,
		t.CreatedBy, t.Active, t.Participants, t.Completers,
		t.CreatedAt, t.UpdatedAt,
	}
}
