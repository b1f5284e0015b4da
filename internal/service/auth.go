package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

// AuthService authenticates admin users and issues JWT access tokens.
type AuthService struct {
	store     port.FundStore
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(store port.FundStore, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// Login checks an admin's credentials against the store and returns a signed
// access token. Unknown usernames and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if req.Username == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "نام کاربری و رمز عبور را وارد کنید."}
	}

	admin, err := s.store.GetAdminByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	if admin == nil {
		return nil, &domain.ErrUnauthorized{Message: "نام کاربری یا رمز عبور نادرست است."}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: failed password attempt", zap.String("username", req.Username))
		return nil, &domain.ErrUnauthorized{Message: "نام کاربری یا رمز عبور نادرست است."}
	}

	token, err := s.signAccessToken(admin)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("admin logged in", zap.String("username", admin.Username))

	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		Name:        admin.Name,
		Role:        admin.Role,
	}, nil
}

// JWTClaims are the custom claims in admin access tokens.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
	Role string `json:"role"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// ValidateAccessToken parses and verifies an access token. Used by the auth
// middleware.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "توکن نامعتبر یا منقضی شده است."}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "توکن نامعتبر است."}
	}
	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "نوع توکن نامعتبر است."}
	}

	return claims, nil
}

func (s *AuthService) signAccessToken(admin *domain.AdminUser) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:  admin.Username,
		Name: admin.Name,
		Role: admin.Role,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "fund-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
