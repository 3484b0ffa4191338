package store

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"assetdesk.com/internal/domain"
	"assetdesk.com/internal/model"
)

// UserStore is the credential store: durable persistence of user records with
// uniqueness enforcement on username and email. Emails are stored lowercased
// so the unique index doubles as the case-insensitive match.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create persists a new user. The transient Password field is hashed before
// the insert; if no explicit permission set was supplied the role defaults
// are assigned.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Username = strings.TrimSpace(user.Username)

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? OR username = ?", user.Email, user.Username).
		Count(&count).Error; err != nil {
		return domain.NewInternalError("failed to check existing users", err)
	}
	if count > 0 {
		return domain.NewDuplicateIdentityError("Username or Email already exists")
	}

	if user.Password == "" {
		return domain.NewValidationError(domain.FieldError{Field: "password", Message: "password is required"})
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewInternalError("failed to hash password", err)
	}
	user.PasswordHash = string(hashed)
	user.Password = ""

	if user.Permissions == nil {
		user.Permissions = model.DefaultPermissions(user.Role)
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// Races past the pre-check still hit the unique indexes.
		if isDuplicateErr(err) {
			return domain.NewDuplicateIdentityError("Username or Email already exists")
		}
		return domain.NewInternalError("failed to create user", err)
	}
	return nil
}

// FindByEmail looks a user up by email, case-insensitively.
// Returns (nil, nil) when no such user exists.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch user", err)
	}
	return &user, nil
}

// FindByID returns (nil, nil) when no such user exists.
func (s *UserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch user", err)
	}
	return &user, nil
}

// Save persists field changes on an existing user. The password is re-hashed
// only when the transient Password field was set since load, so administrative
// edits never re-hash an already-hashed value.
func (s *UserStore) Save(ctx context.Context, user *model.User) error {
	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.NewInternalError("failed to hash password", err)
		}
		user.PasswordHash = string(hashed)
		user.Password = ""
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return domain.NewInternalError("failed to save user", err)
	}
	return nil
}

// SaveLoginState writes only the lockout and last-login columns. Concurrent
// login attempts race on these; last write wins, which the lockout policy
// tolerates.
func (s *UserStore) SaveLoginState(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Model(user).
		Select("login_attempts", "lock_until", "last_login").
		Updates(map[string]interface{}{
			"login_attempts": user.LoginAttempts,
			"lock_until":     user.LockUntil,
			"last_login":     user.LastLogin,
		}).Error
	if err != nil {
		return domain.NewInternalError("failed to update login state", err)
	}
	return nil
}

// List returns a page of users ordered by id, plus the total count.
func (s *UserStore) List(ctx context.Context, page, pageSize int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, domain.NewInternalError("failed to count users", err)
	}

	offset := (page - 1) * pageSize
	if err := s.db.WithContext(ctx).
		Order("id ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, domain.NewInternalError("failed to fetch users", err)
	}
	return users, total, nil
}

// Count returns the total number of user records.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, domain.NewInternalError("failed to count users", err)
	}
	return count, nil
}

// ImportPreHashed bulk-inserts seed records whose PasswordHash is already a
// bcrypt digest. This is the only path accepting pre-hashed passwords; the
// normal Create/Save contract always hashes the plaintext field itself.
func (s *UserStore) ImportPreHashed(ctx context.Context, users []model.User) error {
	for i := range users {
		u := &users[i]
		if !looksLikeBcrypt(u.PasswordHash) {
			return domain.NewValidationError(domain.FieldError{
				Field:   "password_hash",
				Message: "import requires a bcrypt digest for " + u.Username,
			})
		}
		u.Password = ""
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		if u.Permissions == nil {
			u.Permissions = model.DefaultPermissions(u.Role)
		}
	}
	if err := s.db.WithContext(ctx).Create(&users).Error; err != nil {
		if isDuplicateErr(err) {
			return domain.NewDuplicateIdentityError("Username or Email already exists")
		}
		return domain.NewInternalError("failed to import users", err)
	}
	return nil
}

func looksLikeBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

// isDuplicateErr recognizes unique-constraint violations. Not every dialect
// translates them to gorm.ErrDuplicatedKey, so the raw driver messages for
// sqlite and postgres are matched as a fallback.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
