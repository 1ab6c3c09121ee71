// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import "time"

// PaCReport is the result of a Precision at Curation evaluation.
//
// Two aggregations are reported because they answer different questions:
// PaCMean averages the per-impression ratios, weighting every impression
// equally regardless of its list length; PaCMicro pools hits over slots,
// weighting every served slot equally. They are not equivalent.
//
// When no impressions match the query both metrics are nil ("undefined"
// rather than zero or NaN) and the raw counts are zero; this
// distinguishes "no data in range" from "data present but zero hits".
type PaCReport struct {
	// Start and End bound the impressions that were evaluated.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// K is the truncation depth applied to each impression's list.
	K int `json:"k"`

	// WindowHours is the attribution window length.
	WindowHours int `json:"window_hours"`

	// Impressions is the number of impressions evaluated.
	Impressions int `json:"impressions"`

	// TotalHits is the pooled count of distinct recommended items
	// engaged within their attribution windows.
	TotalHits int `json:"total_hits"`

	// TotalRecommended is the pooled count of evaluated slots,
	// sum over impressions of min(k, len(item_ids)).
	TotalRecommended int `json:"total_recommended"`

	// PaCMean is the mean of per-impression hit ratios. Nil when
	// Impressions is zero.
	PaCMean *float64 `json:"pac_mean"`

	// PaCMicro is TotalHits / TotalRecommended. Nil when
	// TotalRecommended is zero.
	PaCMicro *float64 `json:"pac_micro"`
}
