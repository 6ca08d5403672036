package models

import (
	"slices"
	"strings"
	"time"
)

type Track string

const (
	TrackSoftware Track = "Software"
	TrackHardware Track = "Hardware"
)

// ParseTrack accepts a track name in any letter case.
func ParseTrack(s string) (Track, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "software":
		return TrackSoftware, true
	case "hardware":
		return TrackHardware, true
	}
	return "", false
}

// TeamStatus is derived on read and never stored.
type TeamStatus string

const (
	TeamStatusReady      TeamStatus = "ready"
	TeamStatusCheckedIn  TeamStatus = "checked_in"
	TeamStatusIncomplete TeamStatus = "incomplete"
)

// MinReadyTeamSize is the member count below which a team shows as incomplete.
const MinReadyTeamSize = 2

type Project struct {
	Name    string `json:"name" db:"project_name"`
	Details string `json:"details" db:"project_details"`
}

func (p Project) IsEmpty() bool {
	return p.Name == "" && p.Details == ""
}

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Track     Track     `json:"track" db:"track"`
	LeaderID  int       `json:"leader_id" db:"leader_id"`
	MemberIDs []int     `json:"member_ids" db:"-"` // join order
	JudgeID   *int      `json:"judge_id" db:"judge_id"`
	Project   Project   `json:"project" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Populated by the roster service on read.
	Members []Person   `json:"members,omitempty" db:"-"`
	Judge   *Judge     `json:"judge,omitempty" db:"-"`
	Status  TeamStatus `json:"status,omitempty" db:"-"`
}

func (t *Team) HasMember(personID int) bool {
	return slices.Contains(t.MemberIDs, personID)
}

func (t *Team) IsLeader(personID int) bool {
	return t.LeaderID == personID
}

func (t *Team) Size() int {
	return len(t.MemberIDs)
}

// Clone returns a deep copy without the hydrated fields.
func (t Team) Clone() Team {
	c := t
	c.MemberIDs = slices.Clone(t.MemberIDs)
	if t.JudgeID != nil {
		id := *t.JudgeID
		c.JudgeID = &id
	}
	c.Members = nil
	c.Judge = nil
	c.Status = ""
	return c
}

type TeamFilter struct {
	Track *Track
	Query string
}
