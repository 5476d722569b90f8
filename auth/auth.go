package auth

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 7 * 24 * time.Hour

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is the public account record, never carrying the password hash.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// StoredUser is the persisted account record.
type StoredUser struct {
	User
	PasswordHash string
}

// AuthResponse is the collaborator contract for login and register.
type AuthResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UserRepository abstracts the account store. The concrete backing (memory,
// Postgres) is an injection decision, not part of the auth logic.
type UserRepository interface {
	Create(user *StoredUser) error
	FindByEmail(email string) (*StoredUser, error)
}

// Service implements the authentication collaborator.
type Service struct {
	repo      UserRepository
	jwtSecret []byte
}

// NewService creates an auth service over the given user repository.
func NewService(repo UserRepository, jwtSecret string) *Service {
	return &Service{repo: repo, jwtSecret: []byte(jwtSecret)}
}

// Login authenticates by email and password.
func (s *Service) Login(email, password string) AuthResponse {
	stored, err := s.repo.FindByEmail(strings.ToLower(email))
	if err != nil {
		log.Printf("⚠️  Login lookup failed: %v", err)
		return AuthResponse{Success: false, Error: "Terjadi kesalahan sistem"}
	}
	if stored == nil {
		return AuthResponse{Success: false, Error: "Email tidak ditemukan"}
	}

	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) != nil {
		return AuthResponse{Success: false, Error: "Password salah"}
	}

	token, err := s.GenerateToken(&stored.User)
	if err != nil {
		log.Printf("⚠️  Token generation failed: %v", err)
		return AuthResponse{Success: false, Error: "Terjadi kesalahan sistem"}
	}

	user := stored.User
	return AuthResponse{Success: true, User: &user, Token: token, Message: "Login berhasil"}
}

// Register creates a new account after validating the input.
func (s *Service) Register(name, email, password, phone string) AuthResponse {
	if len(name) < 2 {
		return AuthResponse{Success: false, Error: "Nama harus minimal 2 karakter"}
	}
	if !emailPattern.MatchString(email) {
		return AuthResponse{Success: false, Error: "Format email tidak valid"}
	}
	if len(password) < 6 {
		return AuthResponse{Success: false, Error: "Password harus minimal 6 karakter"}
	}

	email = strings.ToLower(email)
	existing, err := s.repo.FindByEmail(email)
	if err != nil {
		log.Printf("⚠️  Register lookup failed: %v", err)
		return AuthResponse{Success: false, Error: "Terjadi kesalahan sistem"}
	}
	if existing != nil {
		return AuthResponse{Success: false, Error: "Email sudah terdaftar"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{Success: false, Error: "Terjadi kesalahan sistem"}
	}

	stored := &StoredUser{
		User: User{
			Name:      name,
			Email:     email,
			Phone:     phone,
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(stored); err != nil {
		log.Printf("⚠️  User creation failed: %v", err)
		return AuthResponse{Success: false, Error: "Terjadi kesalahan sistem"}
	}

	token, err := s.GenerateToken(&stored.User)
	if err != nil {
		log.Printf("⚠️  Token generation failed: %v", err)
		return AuthResponse{Success: false, Error: "Terjadi kesalahan sistem"}
	}

	user := stored.User
	return AuthResponse{Success: true, User: &user, Token: token, Message: "Registrasi berhasil"}
}

// GenerateToken signs a 7-day HS256 token for the user.
func (s *Service) GenerateToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"exp":    time.Now().Add(tokenLifetime).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// VerifyToken parses and validates a token, returning its claims.
func (s *Service) VerifyToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
