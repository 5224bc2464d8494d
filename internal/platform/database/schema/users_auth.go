package schema

// UserAuthTable represents the 'users.auth' table
type UserAuthTable struct {
	Table        string
	Registration string
	UUID         string
	Password     string
	Roles        string
	Active       string
	CreatedAt    string
	UpdatedAt    string
}

// UserAuth is the schema definition for users.auth
var UserAuth = UserAuthTable{
	Table:        "users.auth",
	Registration: "registration",
	UUID:         "uuid",
	Password:     "passwordhash",
	Roles:        "roles",
	Active:       "active",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t UserAuthTable) Columns() []string {
	return []string{
		t.Registration, t.UUID, t.Password, t.Roles, t.Active,
		t.CreatedAt, t.UpdatedAt,
	}
}
