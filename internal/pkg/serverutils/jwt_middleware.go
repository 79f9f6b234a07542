package serverutils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const StudentIDLocal = "student_id"

var (
	secretMu  sync.RWMutex
	jwtSecret []byte
)

// ConfigureJWT sets the HMAC secret. Without it JWT_SECRET is read per request.
func ConfigureJWT(secret string) {
	secretMu.Lock()
	jwtSecret = []byte(secret)
	secretMu.Unlock()
}

func secret() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	if len(jwtSecret) > 0 {
		return jwtSecret
	}
	return []byte(os.Getenv("JWT_SECRET"))
}

var errInvalidToken = errors.New("invalid token")

// ParseToken verifies an HS256 token and returns its student id.
func ParseToken(tokenStr string) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret(), nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidToken
	}
	studentID, ok := parseStudentID(claims[StudentIDLocal])
	if !ok {
		return 0, errInvalidToken
	}
	return studentID, nil
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}
	return authHeader[7:]
}

func JwtMiddleware(ctx *fiber.Ctx) error {
	tokenStr := BearerToken(ctx)
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	studentID, err := ParseToken(tokenStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	ctx.Locals(StudentIDLocal, studentID)
	return ctx.Next()
}

func parseStudentID(v interface{}) (int64, bool) {
	switch id := v.(type) {
	case float64:
		return int64(id), id > 0 && id == float64(int64(id))
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		return n, err == nil && n > 0
	default:
		return 0, false
	}
}

// StudentID returns the id stored by JwtMiddleware.
func StudentID(ctx *fiber.Ctx) (int64, error) {
	id, ok := ctx.Locals(StudentIDLocal).(int64)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Missing student")
	}
	return id, nil
}

// SignToken issues an HS256 token for studentID. Used by tooling and tests.
func SignToken(studentID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		StudentIDLocal: studentID,
	})
	return token.SignedString(secret())
}
