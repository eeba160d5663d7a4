package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/apperr"
	"github.com/sirdesai22/hackollab/internal/auth"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/sirdesai22/hackollab/internal/store"
)

type Projects struct {
	store store.Store
	users *Users
}

func NewProjects(st store.Store, users *Users) *Projects {
	return &Projects{store: st, users: users}
}

type ProjectInput struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Tags              StringList `json:"tags"`
	TechStack         StringList `json:"techStack"`
	MaxTeamSize       int        `json:"maxTeamSize"`
	Status            string     `json:"status"`
	Difficulty        string     `json:"difficulty"`
	Visibility        string     `json:"visibility"`
	CollaborationType string     `json:"collaborationType"`
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func (s *Projects) Create(ctx context.Context, p *auth.Principal, in ProjectInput) (*models.Project, error) {
	collab := strings.TrimSpace(in.CollaborationType)
	if collab == "" {
		return nil, apperr.Validation("collaborationType is required")
	}
	size, err := teamSize(in.MaxTeamSize)
	if err != nil {
		return nil, err
	}
	creator, err := s.users.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:                uuid.New(),
		CreatorID:         creator.ID,
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Tags:              normalizeSet(in.Tags),
		TechStack:         normalizeSet(in.TechStack),
		MaxTeamSize:       size,
		Status:            orDefault(in.Status, models.DefaultProjectStatus),
		Difficulty:        strings.TrimSpace(in.Difficulty),
		Visibility:        orDefault(in.Visibility, models.VisibilityOpenToAll),
		CollaborationType: collab,
		InviteStatus:      models.DefaultInviteStatus,
	}
	if err := s.store.CreateProject(ctx, project, indexEvent(entityProject, project.ID)); err != nil {
		return nil, storeErr(err, "User not found")
	}
	project.Creator = creator
	return project, nil
}

// ListFilter is the raw query of the public project listing.
type ListFilter struct {
	Tech       string
	Tags       string
	Difficulty string
}

// List returns publicly visible projects matching any of the given
// technologies and any of the given tags, newest first.
func (s *Projects) List(ctx context.Context, f ListFilter) ([]models.Project, error) {
	projects, err := s.store.ListProjects(ctx, store.ProjectFilter{
		Tech:       SplitList(f.Tech),
		Tags:       SplitList(f.Tags),
		Difficulty: strings.TrimSpace(f.Difficulty),
		Visibility: models.VisibilityOpenToAll,
	})
	if err != nil {
		return nil, storeErr(err, "")
	}
	return projects, nil
}

func (s *Projects) Get(ctx context.Context, id string) (*models.Project, error) {
	pid, err := parseID(id, "Project not found")
	if err != nil {
		return nil, err
	}
	p, err := s.store.GetProject(ctx, pid)
	if err != nil {
		return nil, storeErr(err, "Project not found")
	}
	return p, nil
}

// Mine lists the projects created by the user with the given external id.
func (s *Projects) Mine(ctx context.Context, externalID string) ([]models.Project, error) {
	u, err := s.users.ByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	projects, err := s.store.ListProjectsByCreator(ctx, u.ID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return projects, nil
}

// UpdateInviteStatus sets the project-level invite status. Only the owner
// may change it; the value itself is free-form.
func (s *Projects) UpdateInviteStatus(ctx context.Context, p *auth.Principal, id, status string) (*models.Project, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, apperr.Validation("inviteStatus is required")
	}
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	caller, err := s.users.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if project.CreatorID != caller.ID {
		return nil, apperr.Forbidden("Only the project owner can update the project")
	}
	updated, err := s.store.UpdateProjectInviteStatus(ctx, project.ID, status)
	if err != nil {
		return nil, storeErr(err, "Project not found")
	}
	return updated, nil
}
