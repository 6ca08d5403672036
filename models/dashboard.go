package models

type DashboardOverview struct {
	TeamsTotal      int          `json:"teams_total"`
	PeopleTotal     int          `json:"people_total"`
	AvailableTotal  int          `json:"available_total"`
	JudgesTotal     int          `json:"judges_total"`
	UnjudgedTeams   int          `json:"unjudged_teams"`
	IncompleteTeams int          `json:"incomplete_teams"`
	Arrivals        ArrivalStats `json:"arrivals"`
}
