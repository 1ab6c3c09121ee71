// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import "time"

// User is a catalog user the service can recommend to. Demographics are
// carried from the seeded dataset and are not interpreted by the core.
type User struct {
	ID         int       `json:"id"`
	Age        int       `json:"age,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	Occupation string    `json:"occupation,omitempty"`
	ZipCode    string    `json:"zip_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Item is a recommendable catalog item.
type Item struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate string    `json:"release_date,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Interaction is one historical user-item event from the training data.
// Scorers use interactions for candidate exclusion and preference
// profiles; the auto engine selector counts them per user.
type Interaction struct {
	UserID    int       `json:"user_id"`
	ItemID    int       `json:"item_id"`
	EventType string    `json:"event_type"`
	Rating    *int      `json:"rating,omitempty"`
	Weight    float64   `json:"weight,omitempty"`
	Platform  string    `json:"platform"`
	Timestamp time.Time `json:"ts"`
}

// ScoredItem is one ranked entry in a served recommendation list.
type ScoredItem struct {
	ItemID int      `json:"item_id"`
	Title  string   `json:"title,omitempty"`
	Genres []string `json:"genres,omitempty"`
	Score  float64  `json:"score"`
}
