package utils

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"learnhub/backend/config"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Identity is the caller as described by a verified token.
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func GenerateJWTToken(userID, role string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func ExtractIdentityFromToken(c *fiber.Ctx, cfg *config.Config) (Identity, error) {
	tokenString := strings.TrimSpace(c.Get("Authorization"))
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	if tokenString == "" {
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	claims, err := parseHS256(tokenString, cfg.JWTSecret)
	if err != nil {
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	role, _ := claims["role"].(string)
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
	default:
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid role in token")
	}

	return Identity{UserID: userID, Role: role}, nil
}

// VerifyWebhookSignature checks the HS256 token the conferencing service puts
// in X-Webhook-Signature. With no WEBHOOK_SECRET configured every request is
// accepted.
func VerifyWebhookSignature(c *fiber.Ctx, cfg *config.Config) error {
	if cfg.WebhookSecret == "" {
		return nil
	}
	signature := strings.TrimSpace(c.Get("X-Webhook-Signature"))
	if signature == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing webhook signature")
	}
	if _, err := parseHS256(signature, cfg.WebhookSecret); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid webhook signature")
	}
	return nil
}

func parseHS256(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	return claims, nil
}
