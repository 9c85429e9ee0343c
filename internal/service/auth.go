package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrUsernameTaken      = errors.New("a user with this username already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

const tokenTTL = 24 * time.Hour

const denylistKeyPrefix = "auth:denylist:"

// AuthService issues and validates JWT tokens. The redis client backs
// the logout denylist; it may be nil, in which case logout is a
// client-side token drop.
type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret string
}

func NewAuthService(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		jwtSecret: jwtSecret,
	}
}

// RegisterInput carries the signup payload.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Email == "" {
		return nil, newValidationError("email", "this field is required")
	}
	if in.Username == "" {
		return nil, newValidationError("username", "this field is required")
	}
	if in.Password == "" {
		return nil, newValidationError("password", "this field is required")
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}
	if err := s.db.WithContext(ctx).Where("username = ?", in.Username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashedPassword),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &user, nil
}

// Login checks the password for the email and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(user.ID)
}

// Logout revokes the given token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return err
	}
	if s.redis == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, denylistKeyPrefix+claims.TokenID, "1", ttl).Err()
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers pages through all users ordered by id.
func (s *AuthService) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Order("id")
	if limit > 0 {
		query = query.Limit(limit)
		if page > 1 {
			query = query.Offset((page - 1) * limit)
		}
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

func (s *AuthService) generateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": float64(userID),
		"jti":     uuid.New().String(),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a token and checks the denylist.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*middleware.TokenClaims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if _, err := s.redis.Get(ctx, denylistKeyPrefix+claims.TokenID).Result(); err == nil {
			return nil, ErrTokenRevoked
		} else if !errors.Is(err, redis.Nil) {
			return nil, err
		}
	}

	return claims, nil
}

func (s *AuthService) parseToken(tokenString string) (*middleware.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	tokenID, _ := claims["jti"].(string)
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &middleware.TokenClaims{
		UserID:    uint(userID),
		TokenID:   tokenID,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
