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
	"github.com/sirdesai22/hackollab/internal/store"
)

type Users struct {
	store store.Store
}

func NewUsers(st store.Store) *Users {
	return &Users{store: st}
}

// Resolve returns the internal user behind p, creating it on first use.
func (s *Users) Resolve(ctx context.Context, p *auth.Principal) (*models.User, error) {
	if p == nil {
		return nil, apperr.Unauthenticated("Unauthorized")
	}
	ext := store.ExternalID{Provider: p.Provider, Subject: p.Subject}
	profile := store.UserProfile{Name: p.Name, Email: p.Email}
	u, created, err := s.store.EnsureUser(ctx, ext, profile, indexEvent(entityUser, uuid.Nil))
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("Email is already linked to another account")
	}
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	if created {
		log.Ctx(ctx).Info().Str("user_id", u.ID.String()).Str("provider", p.Provider).Msg("user created from principal")
	}
	return u, nil
}

type UpsertUserInput struct {
	ClerkID      string `json:"clerkId"`
	FirebaseUID  string `json:"firebaseUid"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Bio          string `json:"bio"`
	GithubURL    string `json:"githubUrl"`
	PortfolioURL string `json:"portfolioUrl"`
	Availability string `json:"availability"`
}

func (in UpsertUserInput) profile() store.UserProfile {
	return store.UserProfile{
		Name:         in.Name,
		Email:        in.Email,
		Bio:          in.Bio,
		GithubURL:    in.GithubURL,
		PortfolioURL: in.PortfolioURL,
		Availability: in.Availability,
	}
}

// Upsert creates or updates the caller's own user. The body must carry the
// caller's external id for the provider that authenticated the request, and
// no id for the other provider; accounts are never linked by email.
func (s *Users) Upsert(ctx context.Context, p *auth.Principal, in UpsertUserInput) (*models.User, error) {
	if p == nil {
		return nil, apperr.Unauthenticated("Unauthorized")
	}
	in.ClerkID = strings.TrimSpace(in.ClerkID)
	in.FirebaseUID = strings.TrimSpace(in.FirebaseUID)
	in.Email = strings.TrimSpace(in.Email)
	if in.ClerkID == "" && in.FirebaseUID == "" {
		return nil, apperr.Validation("clerkId or firebaseUid is required")
	}
	if in.Email == "" {
		return nil, apperr.Validation("email is required")
	}

	own, other := in.ClerkID, in.FirebaseUID
	if p.Provider == auth.ProviderFirebase {
		own, other = in.FirebaseUID, in.ClerkID
	}
	if own != p.Subject || other != "" {
		log.Ctx(ctx).Warn().Str("provider", p.Provider).Str("subject", p.Subject).Msg("upsert for a different identity rejected")
		return nil, apperr.Forbidden("You can only update your own account")
	}

	ext := store.ExternalID{Provider: p.Provider, Subject: p.Subject}
	u, err := s.store.UpsertUser(ctx, ext, in.profile(), indexEvent(entityUser, uuid.Nil))
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("Email is already linked to another account")
	}
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return u, nil
}

func (s *Users) Get(ctx context.Context, id string) (*models.User, error) {
	uid, err := parseID(id, "User not found")
	if err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return u, nil
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return users, nil
}

type UpdateProfileInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Bio          string `json:"bio"`
	GithubURL    string `json:"githubUrl"`
	PortfolioURL string `json:"portfolioUrl"`
	Availability string `json:"availability"`
	// Skills replaces the caller's skills when present.
	Skills *[]store.SkillLevel `json:"skills"`
}

// UpdateMe edits the caller's profile and reindexes the user.
func (s *Users) UpdateMe(ctx context.Context, p *auth.Principal, in UpdateProfileInput) (*models.User, error) {
	me, err := s.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	var skills []store.SkillLevel
	if in.Skills != nil {
		skills = make([]store.SkillLevel, 0, len(*in.Skills))
		for _, sk := range *in.Skills {
			if strings.TrimSpace(sk.Name) == "" {
				return nil, apperr.Validation("skill name is required")
			}
			skills = append(skills, sk)
		}
	}
	profile := store.UserProfile{
		Name:         in.Name,
		Email:        in.Email,
		Bio:          in.Bio,
		GithubURL:    in.GithubURL,
		PortfolioURL: in.PortfolioURL,
		Availability: in.Availability,
	}
	u, err := s.store.UpdateUser(ctx, me.ID, profile, skills, indexEvent(entityUser, me.ID))
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("Email is already in use")
	}
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return u, nil
}

// ByExternalID looks a user up by firebaseUid or clerkId.
func (s *Users) ByExternalID(ctx context.Context, subject string) (*models.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apperr.NotFound("User not found")
	}
	u, err := s.store.GetUserByExternalID(ctx, subject)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return u, nil
}
