package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/lowcard/uno-tracker/models"
	"github.com/lowcard/uno-tracker/repositories"
)

type AuthService interface {
	// Register creates the authentication identity and its player record in
	// one transaction, so every user can be scored from the moment they log in.
	Register(ctx context.Context, input RegisterInput) (*models.User, *models.Player, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	db         *sql.DB
	userRepo   repositories.UserRepository
	playerRepo repositories.PlayerRepository
}

func NewAuthService(db *sql.DB, userRepo repositories.UserRepository, playerRepo repositories.PlayerRepository) AuthService {
	return &authService{
		db:         db,
		userRepo:   userRepo,
		playerRepo: playerRepo,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, *models.Player, error) {
	if len(input.Password) < 8 {
		return nil, nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidationFailed)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hashedPassword),
	}
	player := &models.Player{}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			if errors.Is(err, repositories.ErrUserEmailConflict) {
				return ErrAuthEmailTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		player.UserID = user.ID
		player.Name = user.Name
		player.Email = user.Email
		if err := s.playerRepo.Create(ctx, tx, player); err != nil {
			return fmt.Errorf("failed to create player for user %s: %w", user.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	user.PasswordHash = ""
	return user, player, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}
