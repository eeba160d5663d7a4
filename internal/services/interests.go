package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sirdesai22/hackollab/internal/apperr"
	"github.com/sirdesai22/hackollab/internal/auth"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/sirdesai22/hackollab/internal/notify"
	"github.com/sirdesai22/hackollab/internal/store"
)

type Interests struct {
	store store.Store
	users *Users
}

func NewInterests(st store.Store, users *Users) *Interests {
	return &Interests{store: st, users: users}
}

type InterestResult struct {
	Message   string    `json:"message"`
	UserID    uuid.UUID `json:"userId"`
	ProjectID uuid.UUID `json:"projectId"`
}

// Declare records that the caller is interested in a project and queues an
// email to its owner. userID must be the caller's own id; it is checked
// before the project is looked up.
func (s *Interests) Declare(ctx context.Context, p *auth.Principal, userID, projectID string) (*InterestResult, error) {
	caller, err := s.users.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) != caller.ID.String() {
		return nil, apperr.Forbidden("You can only express interest on your own behalf")
	}
	return s.declare(ctx, caller, projectID)
}

// DeclareForCaller is Declare with the user taken from the principal.
func (s *Interests) DeclareForCaller(ctx context.Context, p *auth.Principal, projectID string) (*InterestResult, error) {
	caller, err := s.users.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.declare(ctx, caller, projectID)
}

func (s *Interests) declare(ctx context.Context, caller *models.User, projectID string) (*InterestResult, error) {
	pid, err := parseID(projectID, "Project not found")
	if err != nil {
		return nil, err
	}
	project, err := s.store.GetProject(ctx, pid)
	if err != nil {
		return nil, storeErr(err, "Project not found")
	}

	events := emailEvents(entityProject, project.ID, notify.InterestShown(caller, project))
	err = s.store.AddInterest(ctx, caller.ID, project.ID, events...)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict("You have already expressed interest in this project")
	case err != nil:
		return nil, storeErr(err, "Project not found")
	}
	if len(events) == 0 {
		log.Ctx(ctx).Warn().Str("project_id", project.ID.String()).Msg("project owner has no email, interest notification skipped")
	}
	return &InterestResult{
		Message:   "Interest expressed successfully",
		UserID:    caller.ID,
		ProjectID: project.ID,
	}, nil
}

// ListForUser returns the projects a user is interested in, newest interest
// first.
func (s *Interests) ListForUser(ctx context.Context, userID string) ([]models.Project, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	projects, err := s.store.ListInterestedProjects(ctx, u.ID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return projects, nil
}
