package models

import "time"

const (
	RoomTeams    = "teams"
	RoomArrivals = "arrivals"
)

const (
	EventTeamCreated       = "team.created"
	EventTeamMemberAdded   = "team.member_added"
	EventTeamMemberRemoved = "team.member_removed"
	EventTeamMemberLeft    = "team.member_left"
	EventTeamDisbanded     = "team.disbanded"
	EventTeamJudgeSet      = "team.judge_set"
	EventTeamProjectSet    = "team.project_set"
	EventTeamLeaderChanged = "team.leader_changed"
	EventArrivalChanged    = "arrival.changed"
	EventJudgeDeleted      = "judge.deleted"
)

// LiveEvent is pushed to dashboard WebSocket rooms after a mutation commits.
type LiveEvent struct {
	Type    string    `json:"type"`
	Room    string    `json:"room_id"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}
