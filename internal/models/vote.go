package models

import (
	"fmt"
	"time"
)

// TargetKind names the table a vote points at.
type TargetKind string

const (
	TargetQuestion TargetKind = "question"
	TargetAnswer   TargetKind = "answer"
)

// Direction is the value a voter contributes to a rating.
type Direction int

const (
	Up   Direction = 1
	Down Direction = -1
)

// ParseDirection accepts "up" and "down".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return 0, fmt.Errorf("unknown vote direction %q", s)
	}
}

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Vote records the last direction a user voted for a question or an answer.
// One row per (voter, target): the unique index is what the vote ledger relies on.
type Vote struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	VoterID    uint       `gorm:"not null;uniqueIndex:idx_votes_voter_target,priority:1" json:"voter_id"`
	TargetKind TargetKind `gorm:"size:16;not null;uniqueIndex:idx_votes_voter_target,priority:2;index:idx_votes_target,priority:1" json:"target_kind"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_votes_voter_target,priority:3;index:idx_votes_target,priority:2" json:"target_id"`
	Value      Direction  `gorm:"not null" json:"value"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// VoteTarget identifies a votable row.
type VoteTarget struct {
	Kind TargetKind
	ID   uint
}

// Votable is implemented by every model that accumulates a rating from votes.
type Votable interface {
	VoteTarget() VoteTarget
	TableName() string
}
