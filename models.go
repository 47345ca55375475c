package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is the default role assigned at registration
	RoleUser UserRole = "user"
	// RolePremium marks paying accounts
	RolePremium UserRole = "premium"
	// RoleModerator can manage community content
	RoleModerator UserRole = "moderator"
	// RoleAdmin can manage every account
	RoleAdmin UserRole = "admin"
)

// ExperienceLevel describes how seasoned a gardener is
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceExpert       ExperienceLevel = "expert"
)

// ProfileVisibility controls who can see a profile
type ProfileVisibility string

const (
	VisibilityPublic  ProfileVisibility = "public"
	VisibilityPrivate ProfileVisibility = "private"
	VisibilityFriends ProfileVisibility = "friends"
)

// Location is where the user gardens
type Location struct {
	Zone    string `json:"zone"`
	Climate string `json:"climate"`
}

// Garden describes the user's plot
type Garden struct {
	Size        string `json:"size"`
	SoilType    string `json:"soilType"`
	SunExposure string `json:"sunExposure"`
}

// Profile is the user-facing profile document
type Profile struct {
	Name            string          `json:"name"`
	Location        Location        `json:"location"`
	Garden          Garden          `json:"garden"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	PreferredPlants []string        `json:"preferredPlants"`
}

// Notifications holds per-channel notification switches
type Notifications struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// Privacy holds privacy preferences
type Privacy struct {
	ProfileVisibility ProfileVisibility `json:"profileVisibility"`
}

// Settings is the mutable user settings document
type Settings struct {
	Notifications Notifications `json:"notifications"`
	Privacy       Privacy       `json:"privacy"`
}

// User is the user model. The password hash never serializes to JSON;
// store implementations additionally clear it before a record crosses
// the store boundary.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            string    `bun:"id,pk" json:"id,omitempty"`
	Username      string    `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string    `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string    `bun:"password_hash" json:"-"`
	Role          UserRole  `bun:"user_role,notnull" json:"role,omitempty"`
	Profile       Profile   `bun:"profile,type:jsonb" json:"profile"`
	Settings      Settings  `bun:"settings,type:jsonb" json:"settings"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
}

// Sanitized returns a copy of the user with the password hash removed.
// Every value a store hands out goes through this.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}

	out := *u
	out.PasswordHash = ""

	if u.Profile.PreferredPlants != nil {
		out.Profile.PreferredPlants = make([]string, len(u.Profile.PreferredPlants))
		copy(out.Profile.PreferredPlants, u.Profile.PreferredPlants)
	}

	return &out
}

// DefaultProfile builds the profile document assigned at registration
func DefaultProfile(name string) Profile {
	return Profile{
		Name:            name,
		ExperienceLevel: ExperienceBeginner,
		PreferredPlants: []string{},
	}
}

// DefaultSettings builds the settings document assigned at registration
func DefaultSettings() Settings {
	return Settings{
		Notifications: Notifications{
			Email: true,
			Push:  true,
		},
		Privacy: Privacy{
			ProfileVisibility: VisibilityPublic,
		},
	}
}
