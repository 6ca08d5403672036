package models

import (
	"fmt"
	"strings"
	"time"
)

type ArrivalState string

const (
	ArrivalNotArrived ArrivalState = "not_arrived"
	ArrivalArrived    ArrivalState = "arrived"
	ArrivalCheckedIn  ArrivalState = "checked_in"
)

func (s ArrivalState) Valid() bool {
	switch s {
	case ArrivalNotArrived, ArrivalArrived, ArrivalCheckedIn:
		return true
	}
	return false
}

// ParseArrivalState accepts canonical state names as well as the labels used by
// the two-state deployments ("Pending", "Checked In"). Pending maps to NotArrived.
func ParseArrivalState(s string) (ArrivalState, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "not_arrived", "pending":
		return ArrivalNotArrived, nil
	case "arrived":
		return ArrivalArrived, nil
	case "checked_in", "checkedin":
		return ArrivalCheckedIn, nil
	}
	return "", fmt.Errorf("unknown arrival state %q", s)
}

type ArrivalMode string

const (
	ArrivalModeThreeState ArrivalMode = "three_state"
	ArrivalModeTwoState   ArrivalMode = "two_state"
)

type ArrivalRecord struct {
	PersonID  int          `json:"person_id" db:"person_id"`
	State     ArrivalState `json:"state" db:"state"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// ArrivalStateFilter selects records by state. NeedsCheckIn is an alias for Arrived.
type ArrivalStateFilter string

const (
	ArrivalFilterAll          ArrivalStateFilter = ""
	ArrivalFilterNotArrived   ArrivalStateFilter = ArrivalStateFilter(ArrivalNotArrived)
	ArrivalFilterArrived      ArrivalStateFilter = ArrivalStateFilter(ArrivalArrived)
	ArrivalFilterCheckedIn    ArrivalStateFilter = ArrivalStateFilter(ArrivalCheckedIn)
	ArrivalFilterNeedsCheckIn ArrivalStateFilter = "needs_check_in"
)

// ParseArrivalStateFilter accepts "all", "needs_check_in" and anything ParseArrivalState accepts.
func ParseArrivalStateFilter(s string) (ArrivalStateFilter, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "", "all":
		return ArrivalFilterAll, nil
	case "needs_check_in", "needs check in", "needs-check-in":
		return ArrivalFilterNeedsCheckIn, nil
	}
	state, err := ParseArrivalState(s)
	if err != nil {
		return "", err
	}
	return ArrivalStateFilter(state), nil
}

func (f ArrivalStateFilter) Accepts(state ArrivalState) bool {
	switch f {
	case ArrivalFilterAll:
		return true
	case ArrivalFilterNeedsCheckIn:
		return state == ArrivalArrived
	}
	return ArrivalState(f) == state
}

type ArrivalFilter struct {
	Query string
	State ArrivalStateFilter
}

// ArrivalView joins a record with the person and team it belongs to.
type ArrivalView struct {
	PersonID  int          `json:"person_id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	TeamID    *int         `json:"team_id,omitempty"`
	TeamName  string       `json:"team,omitempty"`
	Track     Track        `json:"track,omitempty"`
	State     ArrivalState `json:"state"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type ArrivalStats struct {
	TotalPeople  int `json:"total_people"`
	NotArrived   int `json:"not_arrived"`
	Arrived      int `json:"arrived"`
	CheckedIn    int `json:"checked_in"`
	NeedsCheckIn int `json:"needs_check_in"`
}
