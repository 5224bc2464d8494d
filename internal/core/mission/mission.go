// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package mission

import "time"

// Participation is one user's entry in a mission's participant or completer
// list. CreatedBy records the actor that performed the transition, which may
// differ from UserID when an admin acts on a user's behalf.
type Participation struct {
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// Mission is a point-earning task published by an admin.
//
// A user id appears in at most one of Participants and Completers at a
// time. Active=false is a soft delete: the mission stays queryable for
// history but is no longer actionable.
type Mission struct {
	ID             string          `json:"id"`
	Number         int64           `json:"number"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Points         int             `json:"points"`
	ExpirationDate time.Time       `json:"expiration_date"`
	CreatedBy      string          `json:"created_by"`
	Active         bool            `json:"active"`
	Participants   []Participation `json:"participants"`
	Completers     []Participation `json:"completers"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsExpired reports whether the mission's expiration date has passed.
func (mission *Mission) IsExpired() bool {
	return !mission.ExpirationDate.After(time.Now())
}
