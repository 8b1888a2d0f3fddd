package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/praxislab/praxis-api/internal/utils"
)

var errNoSubject = errors.New("token carries no usable subject")

// principal is the authenticated identity attached to request locals.
type principal struct {
	UserID uint
	Role   string
}

// JWTProtected validates HMAC bearer tokens and attaches the principal to
// the request. Tokens without a numeric subject are rejected outright:
// every operation downstream keys on the student or staff row id.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		p, err := principalFromClaims(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		c.Locals("user_id", p.UserID)
		c.Locals("user_role", p.Role)

		return c.Next()
	}
}

// principalFromClaims resolves the subject and role. The subject may live
// under "sub", "user_id", or "id" depending on the token issuer; a role
// claim outside the platform set collapses to student.
func principalFromClaims(claims jwt.MapClaims) (principal, error) {
	p := principal{Role: RoleStudent}

	found := false
	for _, key := range []string{"sub", "user_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		id, err := subjectID(value)
		if err != nil {
			continue
		}
		p.UserID = id
		found = true
		break
	}
	if !found {
		return principal{}, errNoSubject
	}

	for _, key := range []string{"role", "roles"} {
		if role := platformRole(claims[key]); role != "" {
			p.Role = role
			break
		}
	}

	return p, nil
}

func subjectID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, errNoSubject
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, errNoSubject
		}
		return uint(v), nil
	default:
		return 0, errNoSubject
	}
}

// platformRole accepts a bare string or an issuer-style string array and
// returns the first recognized platform role.
func platformRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return knownRole(v)
	case []interface{}:
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				continue
			}
			if role := knownRole(str); role != "" {
				return role
			}
		}
	}
	return ""
}

// knownRole maps a raw claim value onto the platform role set. Legacy
// tokens issued before the tutor rename carry "teacher".
func knownRole(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case RoleStudent:
		return RoleStudent
	case RoleTutor, "teacher":
		return RoleTutor
	case RoleAdmin:
		return RoleAdmin
	}
	return ""
}
