package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/repository"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repository.UserStore = (*Users)(nil)

type Users struct {
	mu    sync.Mutex
	users []models.User
}

func NewUsers() *Users { return &Users{} }

func (s *Users) Create(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, apperr.Validation("user with this email already exists")
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	s.users = append(s.users, *user)
	out := *user
	return &out, nil
}

func (s *Users) find(match func(u *models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if match(&s.users[i]) {
			out := s.users[i]
			return &out, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (s *Users) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.ID == id })
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Email == email })
}

func (s *Users) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error) {
	return s.find(func(u *models.User) bool {
		return hashedToken != "" && u.ResetPasswordToken == hashedToken && u.ResetPasswordExpires.After(now)
	})
}

func (s *Users) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == user.ID {
			user.UpdatedAt = time.Now().UTC()
			user.CreatedAt = s.users[i].CreatedAt
			user.Email = s.users[i].Email
			s.users[i] = *user
			return nil
		}
	}
	return apperr.NotFound("user not found")
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User{}, s.users...), nil
}

func (s *Users) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.User{}
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}
