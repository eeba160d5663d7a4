package elastic

import (
	"encoding/json"
	"time"

	"github.com/sirdesai22/hackollab/internal/models"
)

type UserDoc struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio"`
	Skills       []string  `json:"skills"`
	Availability string    `json:"availability"`
	GithubURL    string    `json:"github_url"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func BuildUserDoc(u models.User) ([]byte, error) {
	skills := make([]string, 0, len(u.Skills))
	for _, s := range u.Skills {
		if s.Skill.Name != "" {
			skills = append(skills, s.Skill.Name)
		}
	}
	return json.Marshal(UserDoc{
		Name: u.Name, Email: u.Email, Bio: u.Bio, Skills: skills,
		Availability: u.Availability, GithubURL: u.GithubURL, UpdatedAt: u.UpdatedAt,
	})
}

type HackathonDoc struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	Organizer     string     `json:"organizer"`
	EventMode     string     `json:"event_mode"`
	Tags          []string   `json:"tags"`
	TechStack     []string   `json:"tech_stack"`
	HackathonDate *time.Time `json:"hackathon_date,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func BuildHackathonDoc(h models.Hackathon) ([]byte, error) {
	return json.Marshal(HackathonDoc{
		Title: h.Title, Description: h.Description, Location: h.Location,
		Organizer: h.Organizer, EventMode: h.EventMode,
		Tags: nonNil(h.Tags), TechStack: nonNil(h.TechStack),
		HackathonDate: h.HackathonDate, Deadline: h.Deadline, UpdatedAt: h.UpdatedAt,
	})
}

type ProjectDoc struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator_id"`
	Tags        []string  `json:"tags"`
	TechStack   []string  `json:"tech_stack"`
	Difficulty  string    `json:"difficulty"`
	Visibility  string    `json:"visibility"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func BuildProjectDoc(p models.Project) ([]byte, error) {
	return json.Marshal(ProjectDoc{
		Title: p.Title, Description: p.Description, CreatorID: p.CreatorID.String(),
		Tags: nonNil(p.Tags), TechStack: nonNil(p.TechStack),
		Difficulty: p.Difficulty, Visibility: p.Visibility, Status: p.Status,
		UpdatedAt: p.UpdatedAt,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
