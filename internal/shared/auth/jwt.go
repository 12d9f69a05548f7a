package auth

import (
	"errors"
	"fmt"
	"time"

	"ridematch/internal/shared/config"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType различает access и refresh токены
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var (
	// ErrInvalidToken — любая ошибка разбора или проверки подписи/срока
	ErrInvalidToken = errors.New("invalid token")

	// ErrWrongTokenType — refresh токен предъявлен как access или наоборот
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims — JWT claims. Subject = username.
type Claims struct {
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair — результат логина и refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// JWTService работает с JWT токенами (HS256)
type JWTService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTService создает новый сервис для работы с JWT
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL(),
		refreshTTL: cfg.RefreshTTL(),
		now:        time.Now,
	}
}

// GenerateAccessToken — короткоживущий токен для запросов
func (s *JWTService) GenerateAccessToken(username string) (string, error) {
	return s.generate(username, TokenAccess, s.accessTTL)
}

// GenerateRefreshToken — долгоживущий токен для /auth/refresh
func (s *JWTService) GenerateRefreshToken(username string) (string, error) {
	return s.generate(username, TokenRefresh, s.refreshTTL)
}

// GeneratePair выпускает access + refresh
func (s *JWTService) GeneratePair(username string) (TokenPair, error) {
	access, err := s.GenerateAccessToken(username)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.GenerateRefreshToken(username)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (s *JWTService) generate(username string, typ TokenType, ttl time.Duration) (string, error) {
	now := s.now()

	claims := &Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken проверяет подпись, срок и тип токена
func (s *JWTService) ValidateToken(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongTokenType, claims.Type, want)
	}

	return claims, nil
}

// Refresh проверяет refresh токен и выпускает новую пару
func (s *JWTService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := s.ValidateToken(refreshToken, TokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return s.GeneratePair(claims.Subject)
}
