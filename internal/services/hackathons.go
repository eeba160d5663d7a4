package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/auth"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/sirdesai22/hackollab/internal/store"
)

type Hackathons struct {
	store store.Store
	users *Users
}

func NewHackathons(st store.Store, users *Users) *Hackathons {
	return &Hackathons{store: st, users: users}
}

type HackathonInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	HackathonDate   *Date      `json:"hackathonDate"`
	Deadline        *Date      `json:"deadline"`
	Location        string     `json:"location"`
	Organizer       string     `json:"organizer"`
	EventMode       string     `json:"eventMode"`
	HackathonLink   string     `json:"hackathonLink"`
	RegistrationFee string     `json:"registrationFee"`
	Rounds          StringList `json:"rounds"`
	Tags            StringList `json:"tags"`
	TechStack       StringList `json:"techStack"`
	RolesNeeded     StringList `json:"rolesNeeded"`
	MaxTeamSize     int        `json:"maxTeamSize"`
	Visibility      string     `json:"visibility"`
}

// rounds keeps order and repeats, dropping blank entries.
func rounds(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func (s *Hackathons) Create(ctx context.Context, p *auth.Principal, in HackathonInput) (*models.Hackathon, error) {
	size, err := teamSize(in.MaxTeamSize)
	if err != nil {
		return nil, err
	}
	creator, err := s.users.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	h := &models.Hackathon{
		ID:              uuid.New(),
		CreatorID:       creator.ID,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		HackathonDate:   in.HackathonDate.Ptr(),
		Deadline:        in.Deadline.Ptr(),
		Location:        in.Location,
		Organizer:       in.Organizer,
		EventMode:       in.EventMode,
		HackathonLink:   in.HackathonLink,
		RegistrationFee: in.RegistrationFee,
		Rounds:          rounds(in.Rounds),
		Tags:            normalizeSet(in.Tags),
		TechStack:       normalizeSet(in.TechStack),
		RolesNeeded:     normalizeSet(in.RolesNeeded),
		MaxTeamSize:     size,
		Visibility:      orDefault(in.Visibility, models.DefaultHackathonVisibility),
	}
	if err := s.store.CreateHackathon(ctx, h, indexEvent(entityHackathon, h.ID)); err != nil {
		return nil, storeErr(err, "Hackathon not found")
	}
	return h, nil
}

func (s *Hackathons) List(ctx context.Context) ([]models.Hackathon, error) {
	out, err := s.store.ListHackathons(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return out, nil
}

func (s *Hackathons) Get(ctx context.Context, id string) (*models.Hackathon, error) {
	hid, err := parseID(id, "Hackathon not found")
	if err != nil {
		return nil, err
	}
	h, err := s.store.GetHackathon(ctx, hid)
	if err != nil {
		return nil, storeErr(err, "Hackathon not found")
	}
	return h, nil
}
