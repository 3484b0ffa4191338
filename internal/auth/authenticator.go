package auth

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"assetdesk.com/internal/domain"
	"assetdesk.com/internal/model"
	"assetdesk.com/internal/store"
)

// Authenticator verifies credentials against the credential store and lockout
// tracker and issues session tokens.
type Authenticator struct {
	store   *store.UserStore
	lockout *LockoutTracker
	tokens  *TokenService
}

func NewAuthenticator(s *store.UserStore, lockout *LockoutTracker, tokens *TokenService) *Authenticator {
	return &Authenticator{
		store:   s,
		lockout: lockout,
		tokens:  tokens,
	}
}

// Registration is the self-service or admin-issued signup input.
type Registration struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Login checks credentials and returns a signed token plus the sanitized user
// projection. Unknown email and wrong password produce the same error.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, model.Profile, error) {
	user, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		return "", model.Profile{}, err
	}
	if user == nil {
		return "", model.Profile{}, domain.NewInvalidCredentialsError()
	}

	if user.IsLocked() {
		return "", model.Profile{}, domain.NewAccountLockedError()
	}
	if !user.IsActive {
		return "", model.Profile{}, domain.NewAccountDeactivatedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.lockout.RegisterFailure(ctx, user)
		return "", model.Profile{}, domain.NewInvalidCredentialsError()
	}

	if err := a.lockout.RegisterSuccess(ctx, user); err != nil {
		// The password was right but we could not clear the lock state;
		// issuing a token now could leave a stale lock behind.
		return "", model.Profile{}, err
	}

	token, _, err := a.tokens.Issue(user)
	if err != nil {
		return "", model.Profile{}, err
	}
	return token, user.ToProfile(), nil
}

// Register creates the account and logs it straight in.
func (a *Authenticator) Register(ctx context.Context, reg Registration) (string, model.Profile, error) {
	if err := validateRegistration(&reg); err != nil {
		return "", model.Profile{}, err
	}

	user := &model.User{
		Username: reg.Username,
		Email:    reg.Email,
		Password: reg.Password,
		Role:     reg.Role,
		IsActive: true,
	}
	if err := a.store.Create(ctx, user); err != nil {
		return "", model.Profile{}, err
	}

	log.Printf("Auth: registered user %s (%s)", user.Username, user.Role)

	token, _, err := a.tokens.Issue(user)
	if err != nil {
		return "", model.Profile{}, err
	}
	return token, user.ToProfile(), nil
}

func validateRegistration(reg *Registration) error {
	var fields []domain.FieldError

	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)

	if reg.Username == "" {
		fields = append(fields, domain.FieldError{Field: "username", Message: "username is required"})
	}
	if reg.Email == "" || !strings.Contains(reg.Email, "@") {
		fields = append(fields, domain.FieldError{Field: "email", Message: "a valid email is required"})
	}
	if len(reg.Password) < 6 {
		fields = append(fields, domain.FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	if reg.Role == "" {
		reg.Role = model.RoleEmployee
	} else if !model.ValidRole(reg.Role) {
		fields = append(fields, domain.FieldError{Field: "role", Message: "unknown role"})
	}

	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}
