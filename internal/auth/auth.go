package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials - неверный пароль администратора.
var ErrInvalidCredentials = errors.New("неверный пароль")

// ErrInvalidToken - токен не прошёл проверку.
var ErrInvalidToken = errors.New("недействительный токен")

// Authenticator проверяет общий пароль администратора и выдаёт access токены.
// Без пароля защита выключена и админские эндпоинты открыты.
type Authenticator struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
}

// New готовит проверку пароля. password может быть открытым текстом
// или готовым bcrypt-хешем. Пустой secret заменяется случайным:
// токены тогда живут до перезапуска процесса.
func New(password string, secret []byte, ttl time.Duration) (*Authenticator, error) {
	a := &Authenticator{ttl: ttl}
	if a.ttl <= 0 {
		a.ttl = 12 * time.Hour
	}
	if password == "" {
		return a, nil
	}

	if isBcryptHash(password) {
		a.passwordHash = []byte(password)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("ошибка при хешировании пароля: %w", err)
		}
		a.passwordHash = hash
	}

	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("ошибка генерации секрета jwt: %w", err)
		}
	}
	a.secret = secret
	return a, nil
}

func isBcryptHash(s string) bool {
	if !strings.HasPrefix(s, "$2") {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// Enabled - включена ли проверка.
func (a *Authenticator) Enabled() bool { return len(a.passwordHash) > 0 }

// Login сверяет пароль и возвращает access токен.
func (a *Authenticator) Login(password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.generateToken()
}

func (a *Authenticator) generateToken() (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(a.ttl)
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify проверяет подпись и срок действия токена.
func (a *Authenticator) Verify(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["role"] != "admin" {
		return ErrInvalidToken
	}
	return nil
}
