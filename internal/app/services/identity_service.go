package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/auth"
	"github.com/yigit/registrar/internal/pkg/validation"
)

// studentNumberAttempts bounds retries after a student number collision.
const studentNumberAttempts = 5

// Identity is the resolved principal behind an email or session.
type Identity struct {
	ID   uuid.UUID   `json:"id"`
	Role models.Role `json:"role"`
}

// Session is a signed-in identity with its bearer token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Identity  Identity  `json:"identity"`
}

// CreateUserInput carries the fields of a new account.
type CreateUserInput struct {
	Email     string      `validate:"required,max=255"`
	Password  string      `validate:"required"`
	FirstName string      `validate:"notblank,max=100"`
	LastName  string      `validate:"notblank,max=100"`
	Role      models.Role `validate:"required"`
}

type studentProfileInput struct {
	EnrollmentYear int `validate:"gte=1900,lte=2200"`
}

// IdentityService defines the interface for credential and account operations
type IdentityService interface {
	Verify(ctx context.Context, email, password string) (bool, error)
	ResolveUser(ctx context.Context, email string) (*Identity, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	ParseSession(token string) (*Identity, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	CreateStudentProfile(ctx context.Context, userID uuid.UUID, enrollmentYear int, major models.Major) (*models.StudentProfile, error)
	GetStudentProfile(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// identityServiceImpl implements IdentityService
type identityServiceImpl struct {
	userStore     UserStore
	studentStore  StudentProfileStore
	hasher        PasswordHasher
	tokens        TokenIssuer
	storeTimeout  time.Duration
	now           func() time.Time
	studentNumber func() string
	logger        zerolog.Logger
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(
	userStore UserStore,
	studentStore StudentProfileStore,
	hasher PasswordHasher,
	tokens TokenIssuer,
	opts Options,
) IdentityService {
	opts.setDefaults()
	return &identityServiceImpl{
		userStore:     userStore,
		studentStore:  studentStore,
		hasher:        hasher,
		tokens:        tokens,
		storeTimeout:  opts.StoreTimeout,
		now:           opts.Now,
		studentNumber: randomStudentNumber,
		logger:        opts.Logger.With().Str("service", "identity").Logger(),
	}
}

// randomStudentNumber returns an 8-digit number without a leading zero.
func randomStudentNumber() string {
	return strconv.Itoa(10_000_000 + rand.IntN(90_000_000))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Verify reports whether password matches the account of email. Unknown
// emails verify as false without an error.
func (s *identityServiceImpl) Verify(ctx context.Context, email, password string) (bool, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.userStore.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error retrieving user: %w", err)
	}
	return s.hasher.Compare(user.PasswordHash, password), nil
}

// ResolveUser returns the identity and role behind email.
func (s *identityServiceImpl) ResolveUser(ctx context.Context, email string) (*Identity, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.userStore.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("error resolving user: %w", err)
	}
	return &Identity{ID: user.ID, Role: user.Role}, nil
}

// Login checks credentials and issues a session token.
func (s *identityServiceImpl) Login(ctx context.Context, email, password string) (*Session, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	email = normalizeEmail(email)
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Debug().Str("email", email).Msg("Login failed: unknown email")
			return nil, apperrors.ErrAuthentication
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		s.logger.Debug().Str("email", email).Msg("Login failed: password mismatch")
		return nil, apperrors.ErrAuthentication
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Role.String())
	if err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to issue session token")
		return nil, fmt.Errorf("error issuing session: %w", err)
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("User signed in")
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  Identity{ID: user.ID, Role: user.Role},
	}, nil
}

// ParseSession validates a session token and returns its identity.
func (s *identityServiceImpl) ParseSession(token string) (*Identity, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", apperrors.ErrTokenInvalid)
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}
	return &Identity{ID: id, Role: role}, nil
}

// CreateUser provisions an account with a hashed password.
func (s *identityServiceImpl) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(string(input.Role))
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		CreatedAt:    s.now(),
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.userStore.Create(ctx, user); err != nil {
		logFailure(s.logger, err).Str("email", user.Email).Msg("Failed to create user")
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info().Str("userID", user.ID.String()).Str("role", role.String()).Msg("User created")
	return user, nil
}

// CreateStudentProfile attaches a student record with a fresh 8-digit student number.
func (s *identityServiceImpl) CreateStudentProfile(ctx context.Context, userID uuid.UUID, enrollmentYear int, major models.Major) (*models.StudentProfile, error) {
	if err := validation.Struct(studentProfileInput{EnrollmentYear: enrollmentYear}); err != nil {
		return nil, err
	}
	parsedMajor, err := models.ParseMajor(string(major))
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	if user.Role != models.RoleStudent {
		return nil, apperrors.NewValidationError(fmt.Sprintf("user %s does not have the student role", userID))
	}

	profile := &models.StudentProfile{
		UserID:         userID,
		EnrollmentYear: enrollmentYear,
		Major:          parsedMajor,
	}
	for attempt := 1; ; attempt++ {
		profile.StudentNumber = s.studentNumber()
		err = s.studentStore.Create(ctx, profile)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrStudentNumberExists) || attempt == studentNumberAttempts {
			logFailure(s.logger, err).Str("userID", userID.String()).Msg("Failed to create student profile")
			return nil, fmt.Errorf("error creating student profile: %w", err)
		}
		s.logger.Debug().Int("attempt", attempt).Msg("Student number collision, retrying")
	}

	s.logger.Info().Str("userID", userID.String()).Str("studentNumber", profile.StudentNumber).Msg("Student profile created")
	return profile, nil
}

// GetStudentProfile retrieves the student record of a user.
func (s *identityServiceImpl) GetStudentProfile(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	profile, err := s.studentStore.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student profile: %w", err)
	}
	return profile, nil
}

// DeleteUser removes an account. Its profile and registrations go with it.
func (s *identityServiceImpl) DeleteUser(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.userStore.Delete(ctx, id); err != nil {
		logFailure(s.logger, err).Str("userID", id.String()).Msg("Failed to delete user")
		return fmt.Errorf("error deleting user: %w", err)
	}
	s.logger.Info().Str("userID", id.String()).Msg("User deleted")
	return nil
}
