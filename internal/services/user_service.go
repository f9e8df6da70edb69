package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/repository"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const resetTokenTTL = time.Hour

var validate = validator.New()

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput is the sign-in payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordInput is the payload of the reset form.
type ResetPasswordInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// ValidateStruct runs the validator tags of a payload and reports the
// first failing field.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			fe := errs[0]
			return apperr.Wrap(apperr.KindValidation, err, "%s is invalid (%s)", strings.ToLower(fe.Field()), fe.Tag())
		}
		return apperr.Wrap(apperr.KindValidation, err, "invalid request")
	}
	return nil
}

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo   repository.UserStore
	mailer Mailer
	appURL string
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo repository.UserStore, mailer Mailer, appURL string) *UserService {
	return &UserService{
		repo:   repo,
		mailer: mailer,
		appURL: strings.TrimRight(appURL, "/"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates a member account with a bcrypt-hashed password.
func (s *UserService) RegisterUser(ctx context.Context, input RegisterInput) (*models.User, error) {
	logrus.Info("Registering new user")

	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateStruct(input); err != nil {
		logrus.WithError(err).Warn("Invalid registration payload")
		return nil, err
	}

	if existing, _ := s.repo.GetByEmail(ctx, input.Email); existing != nil {
		logrus.WithField("email", input.Email).Warn("Email already in use")
		return nil, apperr.Validation("email already registered")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to hash password")
	}

	user := &models.User{
		Name:           input.Name,
		Email:          input.Email,
		HashedPassword: string(hashedPwd),
		Role:           models.RoleMember,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userID": created.ID.Hex(),
		"role":   created.Role,
	}).Info("User registered successfully")
	return created, nil
}

// AuthenticateUser verifies the email and password and returns the user if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, input LoginInput) (*models.User, error) {
	input.Email = normalizeEmail(input.Email)
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if apperr.Is(err, apperr.KindNotFound) {
		logrus.WithField("email", input.Email).Warn("User not found")
		return nil, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)); err != nil {
		logrus.WithField("email", input.Email).Warn("Invalid credentials")
		return nil, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// Admins lists every account holding the admin role.
func (s *UserService) Admins(ctx context.Context) ([]models.User, error) {
	return s.repo.ListByRole(ctx, models.RoleAdmin)
}

// SetRole changes the role of the account with the given email.
func (s *UserService) SetRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, apperr.Validation("unknown role %q", role)
	}
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"userID": user.ID.Hex(), "role": role}).Info("User role changed")
	return user, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset stores a hashed one-hour token and mails the raw one.
// Unknown emails are not reported to the caller.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperr.Validation("email is required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if apperr.Is(err, apperr.KindNotFound) {
		logrus.WithField("email", email).Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	resetToken := uuid.NewString()
	user.ResetPasswordToken = hashResetToken(resetToken)
	user.ResetPasswordExpires = time.Now().UTC().Add(resetTokenTTL)
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	if s.mailer != nil {
		resetLink := fmt.Sprintf("%s/auth/reset-password?token=%s", s.appURL, resetToken)
		body := fmt.Sprintf("Hello %s,\n\nClick the link below to reset your password. It expires in one hour.\n\n%s", user.Name, resetLink)
		if err := s.mailer.Send(user.Email, "Reset Your Password", body); err != nil {
			logrus.WithError(err).WithField("userID", user.ID.Hex()).Error("Failed to send password reset email")
		}
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset requested")
	return nil
}

// ResetPassword swaps the password for the holder of a valid reset token.
func (s *UserService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if err := ValidateStruct(input); err != nil {
		return err
	}

	user, err := s.repo.GetByResetToken(ctx, hashResetToken(input.Token), time.Now().UTC())
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Validation("invalid or expired reset token")
	}
	if err != nil {
		return err
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "failed to hash password")
	}
	user.HashedPassword = string(hashedPwd)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = time.Time{}
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset completed")
	return nil
}
