package services

import (
	"time"

	"github.com/Dosada05/hackathon-ops/models"
)

// EventPublisher receives live events after the mutation that produced them commits.
type EventPublisher interface {
	Publish(event models.LiveEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(models.LiveEvent) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

type teamEvent struct {
	TeamID    int    `json:"team_id"`
	PersonID  int    `json:"person_id,omitempty"`
	LeaderID  int    `json:"leader_id,omitempty"`
	JudgeID   *int   `json:"judge_id,omitempty"`
	MemberIDs []int  `json:"member_ids,omitempty"`
	Name      string `json:"name,omitempty"`
}

type arrivalEvent struct {
	PersonID int                 `json:"person_id"`
	From     models.ArrivalState `json:"from"`
	To       models.ArrivalState `json:"to"`
}

type judgeEvent struct {
	JudgeID        int   `json:"judge_id"`
	UnassignedFrom []int `json:"unassigned_from"`
}

func newEvent(room, eventType string, payload any, at time.Time) models.LiveEvent {
	return models.LiveEvent{Type: eventType, Room: room, Payload: payload, At: at}
}
