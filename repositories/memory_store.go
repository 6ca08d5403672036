package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/hackathon-ops/models"
)

// memoryStore keeps everything in process. Each transaction works on a copy of
// the state and the copy replaces the live state only if the transaction succeeds.
type memoryStore struct {
	mu    sync.RWMutex
	state memoryState
	now   func() time.Time
}

type memoryState struct {
	people   map[int]models.Person
	judges   map[int]models.Judge
	teams    map[int]models.Team
	members  map[int]int // person id -> team id
	arrivals map[int]models.ArrivalRecord

	nextPersonID int
	nextJudgeID  int
	nextTeamID   int
}

func NewMemoryStore() Store {
	return &memoryStore{state: newMemoryState(), now: time.Now}
}

func newMemoryState() memoryState {
	return memoryState{
		people:   map[int]models.Person{},
		judges:   map[int]models.Judge{},
		teams:    map[int]models.Team{},
		members:  map[int]int{},
		arrivals: map[int]models.ArrivalRecord{},
	}
}

func (s memoryState) clone() memoryState {
	c := memoryState{
		people:       make(map[int]models.Person, len(s.people)),
		judges:       make(map[int]models.Judge, len(s.judges)),
		teams:        make(map[int]models.Team, len(s.teams)),
		members:      make(map[int]int, len(s.members)),
		arrivals:     make(map[int]models.ArrivalRecord, len(s.arrivals)),
		nextPersonID: s.nextPersonID,
		nextJudgeID:  s.nextJudgeID,
		nextTeamID:   s.nextTeamID,
	}
	for id, p := range s.people {
		c.people[id] = p
	}
	for id, j := range s.judges {
		c.judges[id] = j
	}
	for id, t := range s.teams {
		c.teams[id] = t.Clone()
	}
	for personID, teamID := range s.members {
		c.members[personID] = teamID
	}
	for id, a := range s.arrivals {
		c.arrivals[id] = a
	}
	return c
}

// verify mirrors the deferred leader-membership constraint of the SQL schema.
func (s memoryState) verify() error {
	for _, t := range s.teams {
		if !t.HasMember(t.LeaderID) {
			return ErrLeaderNotMember
		}
	}
	return nil
}

func (s *memoryStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{state: s.state.clone(), now: s.now}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.state.verify(); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

func (s *memoryStore) View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(ctx, &memoryTx{state: s.state, now: s.now, readOnly: true})
}

func (s *memoryStore) Close() error {
	return nil
}

type memoryTx struct {
	state    memoryState
	now      func() time.Time
	readOnly bool
}

func (t *memoryTx) People() PersonRepository    { return (*memoryPeople)(t) }
func (t *memoryTx) Judges() JudgeRepository     { return (*memoryJudges)(t) }
func (t *memoryTx) Teams() TeamRepository       { return (*memoryTeams)(t) }
func (t *memoryTx) Arrivals() ArrivalRepository { return (*memoryArrivals)(t) }

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

type memoryPeople memoryTx

func (r *memoryPeople) Create(ctx context.Context, person *models.Person) error {
	if r.readOnly {
		return ErrReadOnly
	}
	for _, p := range r.state.people {
		if strings.EqualFold(p.Email, person.Email) {
			return ErrPersonEmailConflict
		}
	}
	r.state.nextPersonID++
	person.ID = r.state.nextPersonID
	person.CreatedAt = r.now()
	r.state.people[person.ID] = *person
	return nil
}

func (r *memoryPeople) GetByID(ctx context.Context, id int) (*models.Person, error) {
	p, ok := r.state.people[id]
	if !ok {
		return nil, ErrPersonNotFound
	}
	return &p, nil
}

func (r *memoryPeople) GetByEmail(ctx context.Context, email string) (*models.Person, error) {
	for _, id := range sortedKeys(r.state.people) {
		p := r.state.people[id]
		if strings.EqualFold(p.Email, email) {
			return &p, nil
		}
	}
	return nil, ErrPersonNotFound
}

func (r *memoryPeople) List(ctx context.Context) ([]models.Person, error) {
	people := make([]models.Person, 0, len(r.state.people))
	for _, id := range sortedKeys(r.state.people) {
		people = append(people, r.state.people[id])
	}
	return people, nil
}

type memoryJudges memoryTx

func (r *memoryJudges) Create(ctx context.Context, judge *models.Judge) error {
	if r.readOnly {
		return ErrReadOnly
	}
	for _, j := range r.state.judges {
		if strings.EqualFold(j.Email, judge.Email) {
			return ErrJudgeEmailConflict
		}
	}
	r.state.nextJudgeID++
	judge.ID = r.state.nextJudgeID
	judge.CreatedAt = r.now()
	r.state.judges[judge.ID] = *judge
	return nil
}

func (r *memoryJudges) GetByID(ctx context.Context, id int) (*models.Judge, error) {
	j, ok := r.state.judges[id]
	if !ok {
		return nil, ErrJudgeNotFound
	}
	return &j, nil
}

func (r *memoryJudges) List(ctx context.Context) ([]models.Judge, error) {
	judges := make([]models.Judge, 0, len(r.state.judges))
	for _, id := range sortedKeys(r.state.judges) {
		judges = append(judges, r.state.judges[id])
	}
	return judges, nil
}

// Delete also nulls references, like ON DELETE SET NULL.
func (r *memoryJudges) Delete(ctx context.Context, id int) error {
	if r.readOnly {
		return ErrReadOnly
	}
	if _, ok := r.state.judges[id]; !ok {
		return ErrJudgeNotFound
	}
	delete(r.state.judges, id)
	for teamID, t := range r.state.teams {
		if t.JudgeID != nil && *t.JudgeID == id {
			t.JudgeID = nil
			r.state.teams[teamID] = t
		}
	}
	return nil
}

type memoryTeams memoryTx

func (r *memoryTeams) Create(ctx context.Context, team *models.Team) error {
	if r.readOnly {
		return ErrReadOnly
	}
	if _, ok := r.state.people[team.LeaderID]; !ok {
		return ErrPersonNotFound
	}
	if _, ok := r.state.members[team.LeaderID]; ok {
		return ErrMemberConflict
	}
	r.state.nextTeamID++
	team.ID = r.state.nextTeamID
	team.CreatedAt = r.now()
	team.MemberIDs = []int{team.LeaderID}
	r.state.teams[team.ID] = team.Clone()
	r.state.members[team.LeaderID] = team.ID
	return nil
}

func (r *memoryTeams) GetByID(ctx context.Context, id int) (*models.Team, error) {
	t, ok := r.state.teams[id]
	if !ok {
		return nil, ErrTeamNotFound
	}
	c := t.Clone()
	return &c, nil
}

func (r *memoryTeams) Lock(ctx context.Context, id int) (*models.Team, error) {
	// Transactions are already serialized by the store mutex.
	return r.GetByID(ctx, id)
}

func (r *memoryTeams) List(ctx context.Context) ([]models.Team, error) {
	teams := make([]models.Team, 0, len(r.state.teams))
	for _, id := range sortedKeys(r.state.teams) {
		teams = append(teams, r.state.teams[id].Clone())
	}
	return teams, nil
}

func (r *memoryTeams) TeamIDForPerson(ctx context.Context, personID int) (int, error) {
	teamID, ok := r.state.members[personID]
	if !ok {
		return 0, ErrMembershipNotFound
	}
	return teamID, nil
}

func (r *memoryTeams) AddMember(ctx context.Context, teamID, personID int) error {
	if r.readOnly {
		return ErrReadOnly
	}
	t, ok := r.state.teams[teamID]
	if !ok {
		return ErrTeamNotFound
	}
	if _, ok := r.state.people[personID]; !ok {
		return ErrPersonNotFound
	}
	if _, ok := r.state.members[personID]; ok {
		return ErrMemberConflict
	}
	t.MemberIDs = append(t.MemberIDs, personID)
	r.state.teams[teamID] = t
	r.state.members[personID] = teamID
	return nil
}

func (r *memoryTeams) RemoveMember(ctx context.Context, teamID, personID int) error {
	if r.readOnly {
		return ErrReadOnly
	}
	if current, ok := r.state.members[personID]; !ok || current != teamID {
		return ErrMembershipNotFound
	}
	t := r.state.teams[teamID]
	kept := t.MemberIDs[:0]
	for _, id := range t.MemberIDs {
		if id != personID {
			kept = append(kept, id)
		}
	}
	t.MemberIDs = kept
	r.state.teams[teamID] = t
	delete(r.state.members, personID)
	return nil
}

func (r *memoryTeams) Delete(ctx context.Context, id int) error {
	if r.readOnly {
		return ErrReadOnly
	}
	t, ok := r.state.teams[id]
	if !ok {
		return ErrTeamNotFound
	}
	for _, personID := range t.MemberIDs {
		delete(r.state.members, personID)
	}
	delete(r.state.teams, id)
	return nil
}

func (r *memoryTeams) SetJudge(ctx context.Context, teamID int, judgeID *int) error {
	if r.readOnly {
		return ErrReadOnly
	}
	t, ok := r.state.teams[teamID]
	if !ok {
		return ErrTeamNotFound
	}
	if judgeID != nil {
		if _, ok := r.state.judges[*judgeID]; !ok {
			return ErrTeamJudgeInvalid
		}
		id := *judgeID
		t.JudgeID = &id
	} else {
		t.JudgeID = nil
	}
	r.state.teams[teamID] = t
	return nil
}

func (r *memoryTeams) ClearJudge(ctx context.Context, judgeID int) ([]int, error) {
	if r.readOnly {
		return nil, ErrReadOnly
	}
	cleared := make([]int, 0)
	for _, id := range sortedKeys(r.state.teams) {
		t := r.state.teams[id]
		if t.JudgeID != nil && *t.JudgeID == judgeID {
			t.JudgeID = nil
			r.state.teams[id] = t
			cleared = append(cleared, id)
		}
	}
	return cleared, nil
}

func (r *memoryTeams) SetProject(ctx context.Context, teamID int, project models.Project) error {
	if r.readOnly {
		return ErrReadOnly
	}
	t, ok := r.state.teams[teamID]
	if !ok {
		return ErrTeamNotFound
	}
	t.Project = project
	r.state.teams[teamID] = t
	return nil
}

func (r *memoryTeams) SetLeader(ctx context.Context, teamID, leaderID int) error {
	if r.readOnly {
		return ErrReadOnly
	}
	t, ok := r.state.teams[teamID]
	if !ok {
		return ErrTeamNotFound
	}
	t.LeaderID = leaderID
	r.state.teams[teamID] = t
	return nil
}

type memoryArrivals memoryTx

func (r *memoryArrivals) Create(ctx context.Context, record *models.ArrivalRecord) error {
	if r.readOnly {
		return ErrReadOnly
	}
	if _, ok := r.state.people[record.PersonID]; !ok {
		return ErrPersonNotFound
	}
	if _, ok := r.state.arrivals[record.PersonID]; ok {
		return ErrArrivalConflict
	}
	r.state.arrivals[record.PersonID] = *record
	return nil
}

func (r *memoryArrivals) Get(ctx context.Context, personID int) (*models.ArrivalRecord, error) {
	rec, ok := r.state.arrivals[personID]
	if !ok {
		return nil, ErrArrivalNotFound
	}
	return &rec, nil
}

func (r *memoryArrivals) GetForUpdate(ctx context.Context, personID int) (*models.ArrivalRecord, error) {
	return r.Get(ctx, personID)
}

func (r *memoryArrivals) List(ctx context.Context) ([]models.ArrivalRecord, error) {
	records := make([]models.ArrivalRecord, 0, len(r.state.arrivals))
	for _, id := range sortedKeys(r.state.arrivals) {
		records = append(records, r.state.arrivals[id])
	}
	return records, nil
}

func (r *memoryArrivals) UpdateState(ctx context.Context, personID int, state models.ArrivalState, at time.Time) error {
	if r.readOnly {
		return ErrReadOnly
	}
	rec, ok := r.state.arrivals[personID]
	if !ok {
		return ErrArrivalNotFound
	}
	rec.State = state
	rec.UpdatedAt = at
	r.state.arrivals[personID] = rec
	return nil
}
