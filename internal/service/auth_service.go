package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	mqcontracts "neighborly/contracts/mq"
	"neighborly/internal/model"
	"neighborly/internal/repository"
	"neighborly/internal/util"
	"neighborly/pkg/mq"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthService struct {
	users     *repository.UserRepository
	publisher *mq.Publisher
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(users *repository.UserRepository, publisher *mq.Publisher, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		publisher: publisher,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Register creates a new account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	existing, err := s.users.ResolveByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	// 注册事件尽力而为，失败不影响注册
	if s.publisher != nil {
		payload := mqcontracts.UserRegisteredPayload{UserID: user.ID, Email: user.Email}
		if err := s.publisher.PublishWithContext(ctx, "user.registered", payload); err != nil {
			s.logger.Warn("Failed to publish user.registered", zap.Error(err))
		}
	}

	token, err := util.GenerateJWT(user.ID, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User registered", zap.Int("user_id", user.ID))
	return user, token, nil
}

// Login verifies credentials and returns a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.ResolveByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", err
	}
	if user == nil || !util.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user.ID, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
