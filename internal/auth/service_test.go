package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/internal/users"
	pkgAuth "github.com/fornodoro/backend/pkg/auth"
	"github.com/fornodoro/backend/pkg/auth/session"
	"github.com/fornodoro/backend/pkg/config"
	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/security"
)

func TestServiceLoginIssuesTokenPair(t *testing.T) {
	password := "margherita-4ever"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "carla@example.com",
		PasswordHash: mustHashPassword(t, password),
		Name:         "Carla",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, _ := buildTestService(t, user, cfg)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Carla@Example.com ",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %s in claims, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role claim, got %s", claims.Role)
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "carla@example.com",
		PasswordHash: mustHashPassword(t, "right-password"),
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}

	svc, _ := buildTestService(t, user, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	assertUnauthorized(t, err)
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	password := "still-remembers-it"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "former@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleCustomer,
		IsActive:     false,
	}

	svc, _ := buildTestService(t, user, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	assertUnauthorized(t, err)
}

func TestServiceRegisterCreatesCustomer(t *testing.T) {
	repo := &stubUserRepo{}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc := newTestService(t, repo, sessionMgr, testJWTConfig())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Bruno Alves",
		Email:    "Bruno@Example.com",
		Password: "quatro-queijos",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if repo.created == nil {
		t.Fatalf("expected user to be created")
	}
	if repo.created.Email != "bruno@example.com" {
		t.Fatalf("expected normalized email, got %q", repo.created.Email)
	}
	if repo.created.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", repo.created.Role)
	}
	ok, err := security.VerifyPassword("quatro-queijos", repo.created.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected token pair after register")
	}
}

func TestServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	existing := &models.User{
		ID:    uuid.New(),
		Email: "bruno@example.com",
	}
	svc, _ := buildTestService(t, existing, testJWTConfig())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Bruno Alves",
		Email:    "bruno@example.com",
		Password: "quatro-queijos",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestServiceRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestService(t, &stubUserRepo{}, &stubSessionManager{}, testJWTConfig())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Bruno Alves",
		Email:    "bruno@example.com",
		Password: "curta",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Email:    "carla@example.com",
		Role:     enums.UserRoleCustomer,
		IsActive: true,
	}
	cfg := testJWTConfig()
	sessionMgr := &stubSessionManager{
		refreshToken:   "old-refresh",
		rotatedID:      "rotated-access-id",
		rotatedRefresh: "new-refresh",
	}
	svc := newTestService(t, &stubUserRepo{user: user}, sessionMgr, cfg)

	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    "old-access-id",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "old-refresh",
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if sessionMgr.rotatedFrom != "old-access-id" {
		t.Fatalf("expected rotation from old access id, got %q", sessionMgr.rotatedFrom)
	}
	if resp.RefreshToken != "new-refresh" {
		t.Fatalf("expected rotated refresh token, got %q", resp.RefreshToken)
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ID != "rotated-access-id" {
		t.Fatalf("expected new jti in rotated token, got %q", claims.ID)
	}
}

func TestServiceRefreshRejectsInvalidRefreshToken(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Email:    "carla@example.com",
		Role:     enums.UserRoleCustomer,
		IsActive: true,
	}
	cfg := testJWTConfig()
	sessionMgr := &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestService(t, &stubUserRepo{user: user}, sessionMgr, cfg)

	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    "old-access-id",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "stolen",
	})
	assertUnauthorized(t, err)
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Email:    "carla@example.com",
		Role:     enums.UserRoleCustomer,
		IsActive: true,
	}
	cfg := testJWTConfig()
	sessionMgr := &stubSessionManager{}
	svc := newTestService(t, &stubUserRepo{user: user}, sessionMgr, cfg)

	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    "session-to-close",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if err := svc.Logout(context.Background(), accessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessionMgr.revoked) != 1 || sessionMgr.revoked[0] != "session-to-close" {
		t.Fatalf("expected session to be revoked, got %v", sessionMgr.revoked)
	}
}

func buildTestService(t *testing.T, user *models.User, jwtCfg config.JWTConfig) (Service, *stubSessionManager) {
	t.Helper()
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	return newTestService(t, &stubUserRepo{user: user}, sessionMgr, jwtCfg), sessionMgr
}

func newTestService(t *testing.T, repo *stubUserRepo, sessionMgr *stubSessionManager, jwtCfg config.JWTConfig) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessionMgr,
		JWTConfig:      jwtCfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "fornodoro",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected unauthorized error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

type stubUserRepo struct {
	user    *models.User
	created *models.User
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.ID = uuid.New()
	s.created = user
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	refreshToken   string
	rotatedID      string
	rotatedRefresh string
	rotatedFrom    string
	rotateErr      error
	revoked        []string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	s.rotatedFrom = oldAccessID
	return s.rotatedID, s.rotatedRefresh, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}
