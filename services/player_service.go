package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/lowcard/uno-tracker/models"
	"github.com/lowcard/uno-tracker/repositories"
	"github.com/lowcard/uno-tracker/storage"
)

type PlayerService interface {
	GetByID(ctx context.Context, id string) (*models.Player, error)
	// GetByUserID resolves the acting player from the authenticated user id.
	GetByUserID(ctx context.Context, userID string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	UpdateName(ctx context.Context, playerID string, name string) (*models.Player, error)
	UploadAvatar(ctx context.Context, playerID string, contentType string, reader io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
	}
}

func (s *playerService) GetByID(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return player, nil
}

func (s *playerService) GetByUserID(ctx context.Context, userID string) (*models.Player, error) {
	player, err := s.playerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player for user %s: %w", userID, err)
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if players == nil {
		return []*models.Player{}, nil
	}
	return players, nil
}

func (s *playerService) UpdateName(ctx context.Context, playerID string, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}

	if err := s.playerRepo.UpdateName(ctx, playerID, name); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to rename player %s: %w", playerID, err)
	}
	return s.GetByID(ctx, playerID)
}

var avatarExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

func (s *playerService) UploadAvatar(ctx context.Context, playerID string, contentType string, reader io.Reader) (*models.Player, error) {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, ErrAvatarUnsupportedType
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", playerID, uuid.NewString(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %s: %w", playerID, err)
	}

	if err := s.playerRepo.UpdateAvatarURL(ctx, playerID, result.Location); err != nil {
		return nil, fmt.Errorf("failed to store avatar url for player %s: %w", playerID, err)
	}

	// best effort: orphaned objects are harmless, a failed delete is not
	// worth failing the upload over
	if oldKey := avatarKeyFromURL(player.AvatarURL); oldKey != "" {
		_ = s.uploader.Delete(ctx, oldKey)
	}

	return s.GetByID(ctx, playerID)
}

// avatarKeyFromURL recovers the object key from a previously stored avatar
// URL. Returns "" for URLs that do not point into the avatars prefix.
func avatarKeyFromURL(avatarURL *string) string {
	if avatarURL == nil {
		return ""
	}
	u, err := url.Parse(*avatarURL)
	if err != nil {
		return ""
	}
	key := strings.TrimPrefix(u.Path, "/")
	if !strings.HasPrefix(key, "avatars/") {
		return ""
	}
	return key
}
