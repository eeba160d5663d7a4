package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ---------------- USERS ----------------
type User struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	FirebaseUID  *string     `gorm:"uniqueIndex" json:"firebaseUid,omitempty"`
	ClerkID      *string     `gorm:"uniqueIndex" json:"clerkId,omitempty"`
	Name         string      `json:"name"`
	Email        string      `gorm:"uniqueIndex:idx_users_email,where:email <> ''" json:"email"`
	Bio          string      `json:"bio"`
	GithubURL    string      `json:"githubUrl"`
	PortfolioURL string      `json:"portfolioUrl"`
	Availability string      `json:"availability"`
	Skills       []UserSkill `gorm:"constraint:OnDelete:CASCADE" json:"skills"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// UserSummary is the minimal identity attached to listings.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	GithubURL string    `json:"githubUrl,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, GithubURL: u.GithubURL}
}

// ---------------- SKILLS ----------------
type Skill struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`
}

type UserSkill struct {
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	SkillID uuid.UUID `gorm:"type:uuid;primaryKey" json:"skillId"`
	Level   string    `json:"level"`
	Skill   Skill     `gorm:"constraint:OnDelete:CASCADE" json:"skill"`
}

// ---------------- PROJECTS ----------------
const (
	VisibilityOpenToAll        = "Open to All"
	DefaultProjectStatus       = "Open"
	DefaultInviteStatus        = "Pending"
	DefaultHackathonVisibility = "Public"
	DefaultMaxTeamSize         = 1
)

type Project struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID         uuid.UUID                   `gorm:"type:uuid;index;not null" json:"creatorId"`
	Creator           *User                       `gorm:"foreignKey:CreatorID" json:"-"`
	Title             string                      `gorm:"not null" json:"title"`
	Description       string                      `json:"description"`
	Tags              datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	TechStack         datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"techStack"`
	MaxTeamSize       int                         `gorm:"not null;default:1" json:"maxTeamSize"`
	Status            string                      `gorm:"default:Open" json:"status"`
	Difficulty        string                      `gorm:"index" json:"difficulty"`
	Visibility        string                      `gorm:"index;default:'Open to All'" json:"visibility"`
	CollaborationType string                      `gorm:"not null" json:"collaborationType"`
	InviteStatus      string                      `gorm:"default:Pending" json:"inviteStatus"`
	InterestedUsers   []User                      `gorm:"many2many:project_interests" json:"-"`
	Collaborators     []User                      `gorm:"many2many:project_collaborators" json:"-"`
	CreatedAt         time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time                   `json:"updatedAt"`
}

// ProjectInterest is the join row behind Project.InterestedUsers. The
// composite primary key keeps a user to one interest per project.
type ProjectInterest struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

type ProjectCollaborator struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// ---------------- HACKATHONS ----------------
type Hackathon struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID       uuid.UUID                   `gorm:"type:uuid;index;not null" json:"creatorId"`
	Title           string                      `gorm:"not null" json:"title"`
	Description     string                      `json:"description"`
	HackathonDate   *time.Time                  `json:"hackathonDate"`
	Deadline        *time.Time                  `json:"deadline"`
	Location        string                      `json:"location"`
	Organizer       string                      `json:"organizer"`
	EventMode       string                      `json:"eventMode"`
	HackathonLink   string                      `json:"hackathonLink"`
	RegistrationFee string                      `json:"registrationFee"`
	Rounds          datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"rounds"`
	Tags            datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	TechStack       datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"techStack"`
	RolesNeeded     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"rolesNeeded"`
	MaxTeamSize     int                         `gorm:"not null;default:1" json:"maxTeamSize"`
	Visibility      string                      `gorm:"default:Public" json:"visibility"`
	CreatedAt       time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// ---------------- INVITES ----------------
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// Terminal reports whether no further transition is allowed.
func (s InviteStatus) Terminal() bool {
	return s == InviteAccepted || s == InviteDeclined
}

type Invite struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID    uuid.UUID    `gorm:"type:uuid;index;not null" json:"senderId"`
	ReceiverID  uuid.UUID    `gorm:"type:uuid;index;not null" json:"receiverId"`
	ProjectID   uuid.UUID    `gorm:"type:uuid;index;not null" json:"projectId"`
	Role        string       `gorm:"not null" json:"role"`
	Status      InviteStatus `gorm:"type:text;not null;default:pending" json:"status"`
	RespondedAt *time.Time   `json:"respondedAt,omitempty"`
	Sender      *User        `gorm:"foreignKey:SenderID" json:"-"`
	Receiver    *User        `gorm:"foreignKey:ReceiverID" json:"-"`
	Project     *Project     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ---------------- OUTBOX (notifications and index sync) ----------------
const (
	KindEmail = "email"
	KindIndex = "index"
)

type Outbox struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	Kind          string    `gorm:"index;not null;default:index"`
	EntityType    string    `gorm:"index;not null"`
	EntityID      uuid.UUID `gorm:"type:uuid;not null"`
	Op            string    `gorm:"not null"` // UPSERT | DELETE | invite_sent | ...
	Payload       datatypes.JSON
	Attempts      int       `gorm:"not null;default:0"`
	NextAttemptAt time.Time `gorm:"index"`
	LastError     string
	CreatedAt     time.Time
	Processed     bool `gorm:"default:false"`
}
