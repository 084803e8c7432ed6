package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cryptvault/api/internal/core/domain"
	"cryptvault/api/internal/infrastructure/crypto"
)

// EncryptInput is one encrypt-and-store request.
type EncryptInput struct {
	Title     string
	Message   string
	Key       string // Base64; empty asks the engine to generate one
	Algorithm string
}

// EncryptedMessage is the stored message plus the one-time reveal of the key
// material. Listing endpoints never return Key or IV.
type EncryptedMessage struct {
	domain.Message
	Key string    `json:"key"`
	IV  crypto.IV `json:"iv"`
}

type MessageService struct {
	repo   domain.MessageRepository
	users  domain.UserRepository
	engine domain.CipherEngine
	logger *slog.Logger
	now    func() time.Time
}

func NewMessageService(repo domain.MessageRepository, users domain.UserRepository, engine domain.CipherEngine, logger *slog.Logger) *MessageService {
	return &MessageService{
		repo:   repo,
		users:  users,
		engine: engine,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Encrypt runs the engine and persists the full tuple for ownerID.
func (s *MessageService) Encrypt(ctx context.Context, ownerID uuid.UUID, in EncryptInput) (*EncryptedMessage, error) {
	alg, err := crypto.ParseAlgorithm(in.Algorithm)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Encrypt([]byte(in.Message), in.Key, alg)
	if err != nil {
		s.logger.Info("encryption rejected",
			slog.String("algorithm", alg.String()),
			slog.String("kind", crypto.KindOf(err).String()))
		return nil, err
	}

	msg := &domain.Message{
		Title:      in.Title,
		Ciphertext: result.Ciphertext,
		Algorithm:  alg.String(),
		Key:        result.Key,
		OwnerID:    ownerID,
		CreatedAt:  s.now(),
	}
	if iv, ok := result.IV.Get(); ok {
		msg.IV = sql.NullString{String: iv, Valid: true}
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	s.logger.Info("message encrypted",
		slog.Int64("message_id", msg.ID),
		slog.String("algorithm", msg.Algorithm))

	return &EncryptedMessage{Message: *msg, Key: result.Key, IV: result.IV}, nil
}

// Decrypt opens a stored message with the caller-supplied key. Ownership is
// checked before the engine is ever called.
func (s *MessageService) Decrypt(ctx context.Context, ownerID uuid.UUID, messageID int64, keyText string) (string, error) {
	msg, err := s.owned(ctx, ownerID, messageID)
	if err != nil {
		return "", err
	}

	alg, err := crypto.ParseAlgorithm(msg.Algorithm)
	if err != nil {
		return "", err
	}

	plaintext, err := s.engine.Decrypt(msg.Ciphertext, keyText, msg.InitializationVector(), alg)
	if err != nil {
		s.logger.Info("decryption rejected",
			slog.Int64("message_id", msg.ID),
			slog.String("algorithm", msg.Algorithm),
			slog.String("kind", crypto.KindOf(err).String()))
		return "", err
	}
	return string(plaintext), nil
}

// List returns one page of the owner's messages, newest first, optionally
// filtered by a case-insensitive title search.
func (s *MessageService) List(ctx context.Context, ownerID uuid.UUID, search string, page domain.Page) (*domain.MessagePage, error) {
	page = page.Normalize()

	items, total, err := s.repo.ListByOwner(ctx, ownerID, search, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if items == nil {
		items = []domain.Message{}
	}

	return &domain.MessagePage{
		Items:      items,
		Page:       page.Number,
		Size:       page.Size,
		TotalItems: total,
		TotalPages: (total + page.Size - 1) / page.Size,
	}, nil
}

func (s *MessageService) Delete(ctx context.Context, ownerID uuid.UUID, messageID int64) error {
	if _, err := s.owned(ctx, ownerID, messageID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, messageID)
}

func (s *MessageService) Stats(ctx context.Context, ownerID uuid.UUID) (*domain.UserStats, error) {
	user, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	return &domain.UserStats{TotalMessages: total, User: user}, nil
}

func (s *MessageService) owned(ctx context.Context, ownerID uuid.UUID, messageID int64) (*domain.Message, error) {
	msg, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.OwnerID != ownerID {
		s.logger.Warn("cross-owner access attempt",
			slog.Int64("message_id", messageID),
			slog.String("user_id", ownerID.String()))
		return nil, domain.ErrForbidden
	}
	return msg, nil
}
