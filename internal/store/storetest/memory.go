// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/sirdesai22/hackollab/internal/store"
)

type pair struct{ project, user uuid.UUID }

// Memory is a goroutine-safe in-memory Store. Set Err to make every call
// fail with it.
type Memory struct {
	mu            sync.Mutex
	clock         time.Time
	users         map[uuid.UUID]*models.User
	skills        map[uuid.UUID][]models.UserSkill
	projects      map[uuid.UUID]*models.Project
	hackathons    map[uuid.UUID]*models.Hackathon
	invites       map[uuid.UUID]*models.Invite
	interests     map[pair]time.Time
	collaborators map[pair]time.Time
	outbox        []models.Outbox

	Err error
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		clock:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:         map[uuid.UUID]*models.User{},
		skills:        map[uuid.UUID][]models.UserSkill{},
		projects:      map[uuid.UUID]*models.Project{},
		hackathons:    map[uuid.UUID]*models.Hackathon{},
		invites:       map[uuid.UUID]*models.Invite{},
		interests:     map[pair]time.Time{},
		collaborators: map[pair]time.Time{},
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic.
func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *Memory) enqueue(events []models.Outbox, id uuid.UUID) {
	for _, e := range events {
		if e.EntityID == uuid.Nil {
			e.EntityID = id
		}
		e.ID = int64(len(m.outbox) + 1)
		e.CreatedAt = m.tick()
		m.outbox = append(m.outbox, e)
	}
}

// Outbox returns a copy of every event enqueued so far.
func (m *Memory) Outbox() []models.Outbox {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.outbox)
}

// Collaborators returns the user ids attached to a project.
func (m *Memory) Collaborators(projectID uuid.UUID) []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uuid.UUID
	for k := range m.collaborators {
		if k.project == projectID {
			out = append(out, k.user)
		}
	}
	return out
}

// InterestCount returns how many users declared interest in a project.
func (m *Memory) InterestCount(projectID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.interests {
		if k.project == projectID {
			n++
		}
	}
	return n
}

func (m *Memory) Ping(context.Context) error {
	return m.Err
}

// ---------------- users ----------------

func (m *Memory) findExternal(ext store.ExternalID) *models.User {
	for _, u := range m.users {
		if ext.Provider == "firebase" && u.FirebaseUID != nil && *u.FirebaseUID == ext.Subject {
			return u
		}
		if ext.Provider == "clerk" && u.ClerkID != nil && *u.ClerkID == ext.Subject {
			return u
		}
	}
	return nil
}

func (m *Memory) emailTaken(email string, except uuid.UUID) bool {
	for _, u := range m.users {
		if u.ID != except && email != "" && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func link(u *models.User, ext store.ExternalID) {
	subject := ext.Subject
	if ext.Provider == "firebase" {
		u.FirebaseUID = &subject
	} else {
		u.ClerkID = &subject
	}
}

func (m *Memory) ensure(ext store.ExternalID, p store.UserProfile) (*models.User, bool, error) {
	if ext.Provider != "firebase" && ext.Provider != "clerk" {
		return nil, false, store.ErrNotFound
	}
	if u := m.findExternal(ext); u != nil {
		return u, false, nil
	}
	email := strings.TrimSpace(p.Email)
	if m.emailTaken(email, uuid.Nil) {
		return nil, false, store.ErrDuplicate
	}
	now := m.tick()
	u := &models.User{
		ID:           uuid.New(),
		Name:         p.Name,
		Email:        email,
		Bio:          p.Bio,
		GithubURL:    p.GithubURL,
		PortfolioURL: p.PortfolioURL,
		Availability: p.Availability,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	link(u, ext)
	m.users[u.ID] = u
	return u, true, nil
}

func (m *Memory) userCopy(u *models.User) *models.User {
	c := *u
	c.Skills = slices.Clone(m.skills[u.ID])
	if c.Skills == nil {
		c.Skills = []models.UserSkill{}
	}
	return &c
}

func (m *Memory) EnsureUser(_ context.Context, ext store.ExternalID, p store.UserProfile, events ...models.Outbox) (*models.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, false, m.Err
	}
	u, created, err := m.ensure(ext, p)
	if err != nil {
		return nil, false, err
	}
	if created {
		m.enqueue(events, u.ID)
	}
	return m.userCopy(u), created, nil
}

func (m *Memory) apply(u *models.User, p store.UserProfile) error {
	if e := strings.TrimSpace(p.Email); e != "" && m.emailTaken(e, u.ID) {
		return store.ErrDuplicate
	}
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&u.Name, p.Name)
	set(&u.Email, p.Email)
	set(&u.Bio, p.Bio)
	set(&u.GithubURL, p.GithubURL)
	set(&u.PortfolioURL, p.PortfolioURL)
	set(&u.Availability, p.Availability)
	u.UpdatedAt = m.tick()
	return nil
}

func (m *Memory) UpsertUser(_ context.Context, ext store.ExternalID, p store.UserProfile, events ...models.Outbox) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, _, err := m.ensure(ext, p)
	if err != nil {
		return nil, err
	}
	if err := m.apply(u, p); err != nil {
		return nil, err
	}
	m.enqueue(events, u.ID)
	return m.userCopy(u), nil
}

func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.userCopy(u), nil
}

func (m *Memory) GetUserByExternalID(_ context.Context, subject string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if (u.FirebaseUID != nil && *u.FirebaseUID == subject) || (u.ClerkID != nil && *u.ClerkID == subject) {
			return m.userCopy(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *m.userCopy(u))
	}
	slices.SortFunc(out, func(a, b models.User) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateUser(_ context.Context, id uuid.UUID, p store.UserProfile, skills []store.SkillLevel, events ...models.Outbox) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := m.apply(u, p); err != nil {
		return nil, err
	}
	if skills != nil {
		var list []models.UserSkill
		seen := map[string]bool{}
		for _, s := range skills {
			name := strings.TrimSpace(s.Name)
			if name == "" || seen[strings.ToLower(name)] {
				continue
			}
			seen[strings.ToLower(name)] = true
			sk := models.Skill{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)), Name: name}
			list = append(list, models.UserSkill{UserID: id, SkillID: sk.ID, Level: s.Level, Skill: sk})
		}
		m.skills[id] = list
	}
	m.enqueue(events, id)
	return m.userCopy(u), nil
}

// ---------------- projects ----------------

func (m *Memory) projectCopy(p *models.Project, withMembers bool) models.Project {
	c := *p
	if u, ok := m.users[p.CreatorID]; ok {
		c.Creator = m.userCopy(u)
	}
	c.InterestedUsers = nil
	c.Collaborators = nil
	if withMembers {
		for k := range m.interests {
			if k.project == p.ID {
				if u, ok := m.users[k.user]; ok {
					c.InterestedUsers = append(c.InterestedUsers, *m.userCopy(u))
				}
			}
		}
		for k := range m.collaborators {
			if k.project == p.ID {
				if u, ok := m.users[k.user]; ok {
					c.Collaborators = append(c.Collaborators, *m.userCopy(u))
				}
			}
		}
	}
	return c
}

func (m *Memory) CreateProject(_ context.Context, p *models.Project, events ...models.Outbox) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[p.CreatorID]; !ok {
		return store.ErrNotFound
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := m.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	c := *p
	m.projects[p.ID] = &c
	m.enqueue(events, p.ID)
	return nil
}

func (m *Memory) GetProject(_ context.Context, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := m.projectCopy(p, true)
	return &c, nil
}

func anyOf(have []string, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

func (m *Memory) ListProjects(_ context.Context, f store.ProjectFilter) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Project
	for _, p := range m.projects {
		if f.Visibility != "" && p.Visibility != f.Visibility {
			continue
		}
		if f.Difficulty != "" && p.Difficulty != f.Difficulty {
			continue
		}
		if len(f.Tech) > 0 && !anyOf(p.TechStack, f.Tech) {
			continue
		}
		if len(f.Tags) > 0 && !anyOf(p.Tags, f.Tags) {
			continue
		}
		out = append(out, m.projectCopy(p, false))
	}
	slices.SortFunc(out, func(a, b models.Project) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *Memory) ListProjectsByCreator(_ context.Context, creatorID uuid.UUID) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Project
	for _, p := range m.projects {
		if p.CreatorID == creatorID {
			out = append(out, m.projectCopy(p, true))
		}
	}
	slices.SortFunc(out, func(a, b models.Project) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateProjectInviteStatus(_ context.Context, id uuid.UUID, status string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.InviteStatus = status
	p.UpdatedAt = m.tick()
	c := m.projectCopy(p, true)
	return &c, nil
}

func (m *Memory) AddInterest(_ context.Context, userID, projectID uuid.UUID, events ...models.Outbox) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.projects[projectID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := m.users[userID]; !ok {
		return store.ErrNotFound
	}
	k := pair{projectID, userID}
	if _, ok := m.interests[k]; ok {
		return store.ErrDuplicate
	}
	m.interests[k] = m.tick()
	m.enqueue(events, projectID)
	return nil
}

func (m *Memory) ListInterestedProjects(_ context.Context, userID uuid.UUID) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	type row struct {
		p  models.Project
		at time.Time
	}
	var rows []row
	for k, at := range m.interests {
		if k.user != userID {
			continue
		}
		if p, ok := m.projects[k.project]; ok {
			rows = append(rows, row{m.projectCopy(p, false), at})
		}
	}
	slices.SortFunc(rows, func(a, b row) int { return b.at.Compare(a.at) })
	out := make([]models.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.p)
	}
	return out, nil
}

// ---------------- hackathons ----------------

func (m *Memory) CreateHackathon(_ context.Context, h *models.Hackathon, events ...models.Outbox) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	now := m.tick()
	h.CreatedAt, h.UpdatedAt = now, now
	c := *h
	c.Rounds = slices.Clone(h.Rounds)
	m.hackathons[h.ID] = &c
	m.enqueue(events, h.ID)
	return nil
}

func (m *Memory) GetHackathon(_ context.Context, id uuid.UUID) (*models.Hackathon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	h, ok := m.hackathons[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *h
	return &c, nil
}

func (m *Memory) ListHackathons(context.Context) ([]models.Hackathon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.Hackathon, 0, len(m.hackathons))
	for _, h := range m.hackathons {
		out = append(out, *h)
	}
	slices.SortFunc(out, func(a, b models.Hackathon) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// ---------------- invites ----------------

func (m *Memory) inviteCopy(inv *models.Invite) *models.Invite {
	c := *inv
	if u, ok := m.users[inv.SenderID]; ok {
		c.Sender = m.userCopy(u)
	}
	if u, ok := m.users[inv.ReceiverID]; ok {
		c.Receiver = m.userCopy(u)
	}
	if p, ok := m.projects[inv.ProjectID]; ok {
		pc := m.projectCopy(p, false)
		c.Project = &pc
	}
	return &c
}

func (m *Memory) CreateInvites(_ context.Context, invites []*models.Invite, events ...models.Outbox) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, inv := range invites {
		if _, ok := m.projects[inv.ProjectID]; !ok {
			return store.ErrNotFound
		}
		if _, ok := m.users[inv.ReceiverID]; !ok {
			return store.ErrNotFound
		}
		if _, ok := m.users[inv.SenderID]; !ok {
			return store.ErrNotFound
		}
	}
	for _, inv := range invites {
		if inv.ID == uuid.Nil {
			inv.ID = uuid.New()
		}
		if inv.Status == "" {
			inv.Status = models.InvitePending
		}
		now := m.tick()
		inv.CreatedAt, inv.UpdatedAt = now, now
		c := *inv
		m.invites[inv.ID] = &c
	}
	m.enqueue(events, uuid.Nil)
	return nil
}

func (m *Memory) GetInvite(_ context.Context, id uuid.UUID) (*models.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	inv, ok := m.invites[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.inviteCopy(inv), nil
}

func (m *Memory) RespondToInvite(_ context.Context, id uuid.UUID, status models.InviteStatus, events ...models.Outbox) (*models.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	inv, ok := m.invites[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if inv.Status != models.InvitePending {
		return nil, store.ErrInviteNotPending
	}
	now := m.tick()
	inv.Status = status
	inv.RespondedAt = &now
	inv.UpdatedAt = now
	if status == models.InviteAccepted {
		k := pair{inv.ProjectID, inv.ReceiverID}
		if _, ok := m.collaborators[k]; !ok {
			m.collaborators[k] = now
		}
	}
	m.enqueue(events, id)
	return m.inviteCopy(inv), nil
}

func (m *Memory) ListInvites(_ context.Context, f store.InviteFilter) ([]models.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Invite
	for _, inv := range m.invites {
		if f.SenderID != nil && inv.SenderID != *f.SenderID {
			continue
		}
		if f.ReceiverID != nil && inv.ReceiverID != *f.ReceiverID {
			continue
		}
		if f.ProjectID != nil && inv.ProjectID != *f.ProjectID {
			continue
		}
		out = append(out, *m.inviteCopy(inv))
	}
	slices.SortFunc(out, func(a, b models.Invite) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}
