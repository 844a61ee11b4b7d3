// Package model holds the records the application persists.
package model

import "time"

// AccessEvent is one access decision rendered by the host.
type AccessEvent struct {
	OccurredAt time.Time
	Port       string
	Identifier string
	Verdict    string
	ID         int64
	CheckMode  bool
}

// AccessSummary counts journal entries per verdict.
type AccessSummary struct {
	Since       time.Time
	ByVerdict   map[string]int
	Total       int
	Identifiers int
}
