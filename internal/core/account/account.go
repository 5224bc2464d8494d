// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package account

import "time"

// User is the public profile and point ledger of a participant.
//
// Balance is the spendable point total. TotalPoints is the lifetime earned
// total: it grows with every mission award and is never reduced by spending
// or refunds.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Balance     int       `json:"balance"`
	TotalPoints int       `json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
