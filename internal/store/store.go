// Package store persists users, projects, hackathons, invites and interests.
// Every state-changing call accepts outbox events that commit in the same
// transaction as the change they describe.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("duplicate record")
	ErrInviteNotPending = errors.New("invite already responded to")
)

// ExternalID identifies a user at an identity provider.
type ExternalID struct {
	Provider string
	Subject  string
}

// UserProfile holds the editable user attributes. Empty fields are left
// unchanged on update.
type UserProfile struct {
	Name         string
	Email        string
	Bio          string
	GithubURL    string
	PortfolioURL string
	Availability string
}

type SkillLevel struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type ProjectFilter struct {
	Tech       []string
	Tags       []string
	Difficulty string
	Visibility string
}

// InviteFilter selects invites; nil fields are ignored.
type InviteFilter struct {
	SenderID   *uuid.UUID
	ReceiverID *uuid.UUID
	ProjectID  *uuid.UUID
}

type Store interface {
	Ping(ctx context.Context) error

	// EnsureUser returns the user linked to ext, creating it from profile
	// when absent. An existing user with the same email is linked instead.
	EnsureUser(ctx context.Context, ext ExternalID, profile UserProfile, events ...models.Outbox) (*models.User, bool, error)
	// UpsertUser is EnsureUser followed by a profile update.
	UpsertUser(ctx context.Context, ext ExternalID, profile UserProfile, events ...models.Outbox) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByExternalID(ctx context.Context, subject string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// UpdateUser applies profile and, when skills is non-nil, replaces the
	// user's skills.
	UpdateUser(ctx context.Context, id uuid.UUID, profile UserProfile, skills []SkillLevel, events ...models.Outbox) (*models.User, error)

	CreateProject(ctx context.Context, p *models.Project, events ...models.Outbox) error
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, error)
	ListProjectsByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Project, error)
	UpdateProjectInviteStatus(ctx context.Context, id uuid.UUID, status string) (*models.Project, error)

	// AddInterest returns ErrDuplicate when the pair already exists.
	AddInterest(ctx context.Context, userID, projectID uuid.UUID, events ...models.Outbox) error
	ListInterestedProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)

	CreateHackathon(ctx context.Context, h *models.Hackathon, events ...models.Outbox) error
	GetHackathon(ctx context.Context, id uuid.UUID) (*models.Hackathon, error)
	ListHackathons(ctx context.Context) ([]models.Hackathon, error)

	// CreateInvites persists all invites or none.
	CreateInvites(ctx context.Context, invites []*models.Invite, events ...models.Outbox) error
	GetInvite(ctx context.Context, id uuid.UUID) (*models.Invite, error)
	// RespondToInvite moves a pending invite to status and, on acceptance,
	// attaches the receiver as a collaborator, all in one transaction.
	RespondToInvite(ctx context.Context, id uuid.UUID, status models.InviteStatus, events ...models.Outbox) (*models.Invite, error)
	ListInvites(ctx context.Context, f InviteFilter) ([]models.Invite, error)
}
