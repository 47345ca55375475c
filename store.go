package auth

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CreateUser carries the fields registration collects
type CreateUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LocationUpdate is a partial location; nil fields are left untouched
type LocationUpdate struct {
	Zone    *string `json:"zone"`
	Climate *string `json:"climate"`
}

// GardenUpdate is a partial garden description
type GardenUpdate struct {
	Size        *string `json:"size"`
	SoilType    *string `json:"soilType"`
	SunExposure *string `json:"sunExposure"`
}

// ProfileUpdate is a partial profile; only present fields are merged
type ProfileUpdate struct {
	Name            *string          `json:"name"`
	Location        *LocationUpdate  `json:"location"`
	Garden          *GardenUpdate    `json:"garden"`
	ExperienceLevel *ExperienceLevel `json:"experienceLevel"`
	PreferredPlants []string         `json:"preferredPlants"`
}

// NotificationsUpdate is a partial notifications section
type NotificationsUpdate struct {
	Email *bool `json:"email"`
	Push  *bool `json:"push"`
}

// PrivacyUpdate is a partial privacy section
type PrivacyUpdate struct {
	ProfileVisibility *ProfileVisibility `json:"profileVisibility"`
}

// SettingsUpdate is a partial settings document
type SettingsUpdate struct {
	Notifications *NotificationsUpdate `json:"notifications"`
	Privacy       *PrivacyUpdate       `json:"privacy"`
}

// UserUpdate is the generic update payload. It can only express the
// profile and settings sections, so the update path is structurally
// unable to change a user's id, credentials, or role.
type UserUpdate struct {
	Profile  *ProfileUpdate  `json:"profile"`
	Settings *SettingsUpdate `json:"settings"`
}

func (p *ProfileUpdate) apply(profile *Profile) {
	if p == nil {
		return
	}
	if p.Name != nil {
		profile.Name = *p.Name
	}
	if p.Location != nil {
		if p.Location.Zone != nil {
			profile.Location.Zone = *p.Location.Zone
		}
		if p.Location.Climate != nil {
			profile.Location.Climate = *p.Location.Climate
		}
	}
	if p.Garden != nil {
		if p.Garden.Size != nil {
			profile.Garden.Size = *p.Garden.Size
		}
		if p.Garden.SoilType != nil {
			profile.Garden.SoilType = *p.Garden.SoilType
		}
		if p.Garden.SunExposure != nil {
			profile.Garden.SunExposure = *p.Garden.SunExposure
		}
	}
	if p.ExperienceLevel != nil {
		profile.ExperienceLevel = *p.ExperienceLevel
	}
	if p.PreferredPlants != nil {
		profile.PreferredPlants = make([]string, len(p.PreferredPlants))
		copy(profile.PreferredPlants, p.PreferredPlants)
	}
}

func (s *SettingsUpdate) apply(settings *Settings) {
	if s == nil {
		return
	}
	if s.Notifications != nil {
		if s.Notifications.Email != nil {
			settings.Notifications.Email = *s.Notifications.Email
		}
		if s.Notifications.Push != nil {
			settings.Notifications.Push = *s.Notifications.Push
		}
	}
	if s.Privacy != nil && s.Privacy.ProfileVisibility != nil {
		settings.Privacy.ProfileVisibility = *s.Privacy.ProfileVisibility
	}
}

// UserStore is the abstract user collection the guards and controllers
// are written against. Every User an implementation returns must be
// sanitized; the password hash never crosses this boundary.
type UserStore interface {
	// Initialize resets the store to the well-known seed user and
	// returns the resulting records
	Initialize(ctx context.Context) ([]*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// CreateUser assigns an id, hashes the password, populates default
	// profile/settings, and rejects duplicate usernames atomically
	CreateUser(ctx context.Context, input CreateUser) (*User, error)
	// VerifyPassword compares a candidate password against the stored
	// hash for the given (sanitized) user
	VerifyPassword(ctx context.Context, user *User, password string) error
	GetAllUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, id string, update UserUpdate) (*User, error)
}

// MemoryStore is a process-wide, in-memory UserStore. Suitable for a
// single-process deployment; swap in a persistent implementation behind
// the same interface for anything else.
type MemoryStore struct {
	mu    sync.RWMutex
	users []*User
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed credentials for bootstrap, demos, and the test baseline.
const (
	SeedUsername = "trav"
	SeedPassword = "hamster"
)

// Initialize replaces the entire store contents with the seed user
func (s *MemoryStore) Initialize(ctx context.Context) ([]*User, error) {
	hash, err := HashPassword(SeedPassword)
	if err != nil {
		return nil, err
	}

	seed := seedUser(hash)

	s.mu.Lock()
	s.users = []*User{seed}
	s.mu.Unlock()

	return []*User{seed.Sanitized()}, nil
}

// FindByUsername returns the sanitized user with the given username
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u.Sanitized(), nil
		}
	}

	return nil, ErrUserNotFound
}

// FindByID returns the sanitized user with the given id
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.findByID(id); u != nil {
		return u.Sanitized(), nil
	}

	return nil, ErrUserNotFound
}

// CreateUser registers a new user. The duplicate-username check happens
// under the write lock so concurrent registrations of the same username
// cannot both succeed.
func (s *MemoryStore) CreateUser(ctx context.Context, input CreateUser) (*User, error) {
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == input.Username {
			return nil, ErrDuplicateUsername
		}
	}

	user := &User{
		ID:           strconv.Itoa(len(s.users) + 1),
		Username:     input.Username,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         RoleUser,
		Profile:      DefaultProfile(input.Name),
		Settings:     DefaultSettings(),
		CreatedAt:    time.Now(),
	}

	s.users = append(s.users, user)

	return user.Sanitized(), nil
}

// VerifyPassword re-reads the internal record for the user's id and
// compares the candidate against the stored hash. It never consults the
// (sanitized) record the caller holds.
func (s *MemoryStore) VerifyPassword(ctx context.Context, user *User, password string) error {
	if user == nil {
		return ErrUserNotFound
	}

	s.mu.RLock()
	record := s.findByID(user.ID)
	s.mu.RUnlock()

	if record == nil {
		return ErrUserNotFound
	}

	return ComparePasswordAndHash(password, record.PasswordHash)
}

// GetAllUsers returns every user, sanitized, in creation order
func (s *MemoryStore) GetAllUsers(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Sanitized())
	}

	return out, nil
}

// UpdateUser deep-merges the provided sections into the stored record.
// Identity and credentials are untouchable through this path: the update
// payload has no way to carry them.
func (s *MemoryStore) UpdateUser(ctx context.Context, id string, update UserUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.findByID(id)
	if record == nil {
		return nil, ErrUserNotFound
	}

	update.Profile.apply(&record.Profile)
	update.Settings.apply(&record.Settings)

	return record.Sanitized(), nil
}

// findByID returns the internal record; callers must hold the lock
func (s *MemoryStore) findByID(id string) *User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

var _ UserStore = (*MemoryStore)(nil)
