package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/nnamdiindu/cara-store/internal/domain"
	"github.com/nnamdiindu/cara-store/internal/repos"
)

var (
	ErrBadCreds     = errors.New("invalid email or password")
	ErrUnknownEmail = errors.New("email is not registered")
	ErrEmailTaken   = repos.ErrEmailTaken
)

type AuthService struct {
	Users *repos.UserRepo
}

// Register creates an account and binds the session, so a new user is
// logged in immediately.
func (s *AuthService) Register(sid, name, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	id, err := s.Users.Create(name, email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(sid, id); err != nil {
		return nil, err
	}
	return s.Users.ByID(id)
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, ErrUnknownEmail
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
