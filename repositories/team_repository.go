package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/hackathon-ops/models"
)

type postgresTeamRepository struct {
	exec SQLExecutor
}

const teamColumns = `id, name, track, leader_id, judge_id, project_name, project_details, created_at`

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, track, leader_id, project_name, project_details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query,
		team.Name,
		team.Track,
		team.LeaderID,
		team.Project.Name,
		team.Project.Details,
	).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		if mapped := translatePQError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create team: %w", err)
	}

	if err := r.AddMember(ctx, team.ID, team.LeaderID); err != nil {
		return err
	}
	team.MemberIDs = []int{team.LeaderID}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	return r.getOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
}

func (r *postgresTeamRepository) Lock(ctx context.Context, id int) (*models.Team, error) {
	return r.getOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresTeamRepository) getOne(ctx context.Context, query string, id int) (*models.Team, error) {
	team, err := scanTeam(r.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}

	rows, err := r.exec.QueryContext(ctx, `SELECT person_id FROM team_members WHERE team_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", id, err)
	}
	defer rows.Close()

	team.MemberIDs = make([]int, 0)
	for rows.Next() {
		var personID int
		if err := rows.Scan(&personID); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		team.MemberIDs = append(team.MemberIDs, personID)
	}
	return team, rows.Err()
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	rows, err := r.exec.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	index := make(map[int]int)
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		team.MemberIDs = make([]int, 0)
		index[team.ID] = len(teams)
		teams = append(teams, *team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memberRows, err := r.exec.QueryContext(ctx, `SELECT team_id, person_id FROM team_members ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var teamID, personID int
		if err := memberRows.Scan(&teamID, &personID); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		if i, ok := index[teamID]; ok {
			teams[i].MemberIDs = append(teams[i].MemberIDs, personID)
		}
	}
	return teams, memberRows.Err()
}

func (r *postgresTeamRepository) TeamIDForPerson(ctx context.Context, personID int) (int, error) {
	var teamID int
	err := r.exec.QueryRowContext(ctx, `SELECT team_id FROM team_members WHERE person_id = $1`, personID).Scan(&teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrMembershipNotFound
		}
		return 0, fmt.Errorf("failed to find team for person %d: %w", personID, err)
	}
	return teamID, nil
}

func (r *postgresTeamRepository) AddMember(ctx context.Context, teamID, personID int) error {
	_, err := r.exec.ExecContext(ctx, `INSERT INTO team_members (team_id, person_id) VALUES ($1, $2)`, teamID, personID)
	if err != nil {
		if mapped := translatePQError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to add person %d to team %d: %w", personID, teamID, err)
	}
	return nil
}

func (r *postgresTeamRepository) RemoveMember(ctx context.Context, teamID, personID int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1 AND person_id = $2`, teamID, personID)
	if err != nil {
		return fmt.Errorf("failed to remove person %d from team %d: %w", personID, teamID, err)
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

// Delete removes the team; membership rows go with it through ON DELETE CASCADE.
func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) SetJudge(ctx context.Context, teamID int, judgeID *int) error {
	result, err := r.exec.ExecContext(ctx, `UPDATE teams SET judge_id = $1 WHERE id = $2`, judgeID, teamID)
	if err != nil {
		if mapped := translatePQError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to set judge for team %d: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) ClearJudge(ctx context.Context, judgeID int) ([]int, error) {
	rows, err := r.exec.QueryContext(ctx, `UPDATE teams SET judge_id = NULL WHERE judge_id = $1 RETURNING id`, judgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear judge %d from teams: %w", judgeID, err)
	}
	defer rows.Close()

	teamIDs := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan team id: %w", err)
		}
		teamIDs = append(teamIDs, id)
	}
	return teamIDs, rows.Err()
}

func (r *postgresTeamRepository) SetProject(ctx context.Context, teamID int, project models.Project) error {
	query := `UPDATE teams SET project_name = $1, project_details = $2 WHERE id = $3`
	result, err := r.exec.ExecContext(ctx, query, project.Name, project.Details, teamID)
	if err != nil {
		return fmt.Errorf("failed to set project for team %d: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) SetLeader(ctx context.Context, teamID, leaderID int) error {
	result, err := r.exec.ExecContext(ctx, `UPDATE teams SET leader_id = $1 WHERE id = $2`, leaderID, teamID)
	if err != nil {
		if mapped := translatePQError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to set leader for team %d: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func scanTeam(row interface {
	Scan(dest ...interface{}) error
}) (*models.Team, error) {
	team := &models.Team{}
	var judgeID sql.NullInt64
	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.Track,
		&team.LeaderID,
		&judgeID,
		&team.Project.Name,
		&team.Project.Details,
		&team.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if judgeID.Valid {
		id := int(judgeID.Int64)
		team.JudgeID = &id
	}
	return team, nil
}
