// Package services реализует регистрацию и вход пользователей, вход
// администратора, заявки и вход владельцев групп.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/nexus/internal/config"
	"github.com/magabrotheeeer/nexus/internal/lib/jwt"
	"github.com/magabrotheeeer/nexus/internal/lib/password"
	"github.com/magabrotheeeer/nexus/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByAuthID(ctx context.Context, authID string) (*models.User, error)
	CountGroupsByOwner(ctx context.Context, ownerUID string) (int, error)
}

// ApplicationRepository интерфейс репозитория заявок владельцев
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, app models.OwnerApplication) (string, error)
	GetApplication(ctx context.Context, id string) (*models.OwnerApplication, error)
	GetApplicationByEmail(ctx context.Context, email string) (*models.OwnerApplication, error)
}

// Publisher публикует события в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service реализует бизнес-логику аутентификации
type Service struct {
	users     UserRepository
	apps      ApplicationRepository
	jwtMaker  jwt.Maker
	publisher Publisher
	admin     config.Admin
	log       *slog.Logger
}

// NewService создаёт сервис аутентификации.
func NewService(users UserRepository, apps ApplicationRepository, jwtMaker jwt.Maker,
	publisher Publisher, admin config.Admin, log *slog.Logger) *Service {
	return &Service{
		users:     users,
		apps:      apps,
		jwtMaker:  jwtMaker,
		publisher: publisher,
		admin:     admin,
		log:       log,
	}
}

func (s *Service) session(principal models.Principal) (*models.Session, error) {
	token, err := s.jwtMaker.GenerateToken(principal)
	if err != nil {
		return nil, err
	}
	return &models.Session{Token: token, Principal: principal}, nil
}

// Register создаёт пользователя и сразу выдаёт bearer-токен.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	const op = "services.auth.Register"
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		AuthID:       "usr_" + uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hashed,
	}
	if _, err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	session, err := s.session(models.Principal{Kind: models.KindEndUser, ID: user.AuthID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// Login проверяет пароль пользователя и выдаёт bearer-токен.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	session, err := s.session(models.Principal{Kind: models.KindEndUser, ID: user.AuthID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// AdminLogin сверяет учётные данные с конфигом и выдаёт сессию администратора.
func (s *Service) AdminLogin(_ context.Context, req models.AdminLoginRequest) (*models.Session, error) {
	const op = "services.auth.AdminLogin"
	if s.admin.AdminUsername == "" || req.Username != s.admin.AdminUsername {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	if err := password.CompareHash(s.admin.AdminPasswordHash, req.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	session, err := s.session(models.Principal{Kind: models.KindAdmin, ID: req.Username})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// ApplyOwner сохраняет заявку на роль владельца в статусе PENDING.
func (s *Service) ApplyOwner(ctx context.Context, req models.OwnerApplyRequest) (*models.OwnerApplication, error) {
	const op = "services.auth.ApplyOwner"
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := models.OwnerApplication{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		PasswordHash: hashed,
		Status:       models.ApplicationPending,
	}
	id, err := s.apps.CreateApplication(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.ID = id

	notice := models.ApplicationDecision{
		ApplicationID: id,
		Email:         app.Email,
		Name:          app.Name,
		Status:        models.ApplicationPending,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingOwnerApplication, notice); err != nil {
		s.log.Warn("failed to publish owner application", slog.String("op", op), sl.Err(err))
	}
	return &app, nil
}

// GetApplication возвращает заявку по ID.
func (s *Service) GetApplication(ctx context.Context, id string) (*models.OwnerApplication, error) {
	const op = "services.auth.GetApplication"
	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	app, err := s.apps.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return app, nil
}

// OwnerLogin выдаёт сессию владельца только по одобренной заявке.
func (s *Service) OwnerLogin(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	const op = "services.auth.OwnerLogin"
	app, err := s.apps.GetApplicationByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(app.PasswordHash, req.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	if app.Status != models.ApplicationApproved {
		return nil, fmt.Errorf("%s: application is %s: %w", op, app.Status, models.ErrForbidden)
	}
	session, err := s.session(models.Principal{Kind: models.KindOwner, ID: app.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// Profile возвращает профиль пользователя с числом его групп.
func (s *Service) Profile(ctx context.Context, principal *models.Principal) (*models.Profile, error) {
	const op = "services.auth.Profile"
	if !principal.Is(models.KindEndUser) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	user, err := s.users.GetUserByAuthID(ctx, principal.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	owned, err := s.users.CountGroupsByOwner(ctx, user.UUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Profile{
		UUID:             user.UUID,
		Email:            user.Email,
		Username:         user.Username,
		HasPaymentMethod: user.HasPaymentMethod(),
		TrialEndDate:     user.TrialEndDate,
		OwnedGroups:      owned,
	}, nil
}

// ValidateToken проверяет токен сессии и возвращает principal.
func (s *Service) ValidateToken(_ context.Context, token string) (*models.Principal, error) {
	const op = "services.auth.ValidateToken"
	principal, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrUnauthorized, err)
	}
	return principal, nil
}
