package auth

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// BunStore is a UserStore backed by a SQL database through Bun. It
// honors the same sanitization contract as MemoryStore: password hashes
// never leave the store.
type BunStore struct {
	db     *bun.DB
	logger Logger
}

// NewBunStore wraps an existing Bun handle
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{
		db:     db,
		logger: defLogger{},
	}
}

// WithLogger sets the store logger
func (s *BunStore) WithLogger(logger Logger) *BunStore {
	s.logger = logger
	return s
}

// OpenSQLite opens a SQLite database at the given DSN and returns a
// store over it. Use ":memory:" or "file::memory:?cache=shared" for an
// ephemeral database.
func OpenSQLite(dsn string) (*BunStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	return NewBunStore(db), nil
}

// Initialize creates the users table if needed and resets its contents
// to the seed user
func (s *BunStore) Initialize(ctx context.Context) ([]*User, error) {
	if _, err := s.db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, err
	}

	hash, err := HashPassword(SeedPassword)
	if err != nil {
		return nil, err
	}

	seed := seedUser(hash)

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*User)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewInsert().Model(seed).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user store reset to seed account %s", seed.Username)

	return []*User{seed.Sanitized()}, nil
}

// FindByUsername returns the sanitized user with the given username
func (s *BunStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	user := new(User)
	err := s.db.NewSelect().
		Model(user).
		Where("username = ?", username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user.Sanitized(), nil
}

// FindByID returns the sanitized user with the given id
func (s *BunStore) FindByID(ctx context.Context, id string) (*User, error) {
	user, err := s.findByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// CreateUser registers a new user. The duplicate check and the insert
// run in one transaction, so concurrent registrations of the same
// username cannot both succeed; the unique index backs this up.
func (s *BunStore) CreateUser(ctx context.Context, input CreateUser) (*User, error) {
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     input.Username,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         RoleUser,
		Profile:      DefaultProfile(input.Name),
		Settings:     DefaultSettings(),
		CreatedAt:    time.Now(),
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*User)(nil)).
			Where("username = ?", input.Username).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateUsername
		}

		count, err := tx.NewSelect().
			Model((*User)(nil)).
			Count(ctx)
		if err != nil {
			return err
		}
		user.ID = strconv.Itoa(count + 1)

		_, err = tx.NewInsert().Model(user).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user.Sanitized(), nil
}

// VerifyPassword re-reads the stored hash for the user's id and compares
// the candidate against it
func (s *BunStore) VerifyPassword(ctx context.Context, user *User, password string) error {
	if user == nil {
		return ErrUserNotFound
	}

	record, err := s.findByID(ctx, s.db, user.ID)
	if err != nil {
		return err
	}

	return ComparePasswordAndHash(password, record.PasswordHash)
}

// GetAllUsers returns every user, sanitized, in creation order
func (s *BunStore) GetAllUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.db.NewSelect().
		Model(&users).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}

	return out, nil
}

// UpdateUser deep-merges the provided sections into the stored record.
// Only the profile and settings columns are written back.
func (s *BunStore) UpdateUser(ctx context.Context, id string, update UserUpdate) (*User, error) {
	var record *User

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		record, err = s.findByID(ctx, tx, id)
		if err != nil {
			return err
		}

		update.Profile.apply(&record.Profile)
		update.Settings.apply(&record.Settings)

		_, err = tx.NewUpdate().
			Model(record).
			Column("profile", "settings").
			WherePK().
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return record.Sanitized(), nil
}

func (s *BunStore) findByID(ctx context.Context, db bun.IDB, id string) (*User, error) {
	user := new(User)
	err := db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// seedUser builds the well-known bootstrap account
func seedUser(hash string) *User {
	return &User{
		ID:           "1",
		Username:     SeedUsername,
		Email:        "trav@example.com",
		PasswordHash: hash,
		Role:         RoleUser,
		Profile: Profile{
			Name: "Trav",
			Location: Location{
				Zone:    "7b",
				Climate: "temperate",
			},
			Garden: Garden{
				Size:        "medium",
				SoilType:    "loam",
				SunExposure: "partial",
			},
			ExperienceLevel: ExperienceIntermediate,
			PreferredPlants: []string{"tomato", "basil", "lettuce"},
		},
		Settings:  DefaultSettings(),
		CreatedAt: time.Now(),
	}
}

var _ UserStore = (*BunStore)(nil)
