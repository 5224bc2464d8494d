// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package reward

import "time"

// Claim is one user's entry in a reward's claimer or handed list. CreatedBy
// records the actor that performed the operation, which may differ from
// UserID when an admin acts on a user's behalf.
type Claim struct {
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// Reward is a redeemable item with a finite availability pool.
//
// Availability plus the number of outstanding claimers is conserved across
// claim and cancel operations. A user appears at most once in Claimers at a
// time but may appear repeatedly in Handed (repeat redemption of a
// multi-available reward).
type Reward struct {
	ID           string    `json:"id"`
	Number       int64     `json:"number"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        int       `json:"price"`
	Availability int       `json:"availability"`
	Active       bool      `json:"active"`
	Claimers     []Claim   `json:"claimers"`
	Handed       []Claim   `json:"handed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HandedCount returns how many times the reward was handed to the user.
func (reward *Reward) HandedCount(userID string) int {
	count := 0
	for _, entry := range reward.Handed {
		if entry.UserID == userID {
			count++
		}
	}
	return count
}
