package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/repositories"
	"github.com/Dosada05/hackathon-ops/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.Person, error)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	store repositories.Store
}

func NewAuthService(store repositories.Store) AuthService {
	return &authService{store: store}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Person, error) {
	var person *models.Person
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		person, err = tx.People().GetByEmail(ctx, utils.NormalizeEmail(input.Email))
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrPersonNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find person by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	person.PasswordHash = ""
	return person, nil
}
