package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"travelwizards/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "session"

var errInvalidToken = errors.New("invalid session token")

// IssueToken signs a session for the login collaborator and dev tooling.
func IssueToken(secret []byte, s domain.Session, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("jwt secret not configured")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    int64(s.UserID),
		"company_id": int64(s.CompanyID),
		"role":       s.Role,
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// ParseToken verifies an HS256 token and returns the session it carries.
func ParseToken(secret []byte, raw string) (domain.Session, error) {
	if len(secret) == 0 {
		return domain.Session{}, fmt.Errorf("jwt secret not configured")
	}
	tok, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Session{}, errInvalidToken
	}
	s := domain.Session{
		UserID:    domain.ID(claimInt(claims["user_id"])),
		CompanyID: domain.ID(claimInt(claims["company_id"])),
	}
	s.Role, _ = claims["role"].(string)
	if s.UserID <= 0 {
		return domain.Session{}, fmt.Errorf("%w: missing user_id", errInvalidToken)
	}
	return s, nil
}

func claimInt(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i
	default:
		return 0
	}
}

// Session resolves the acting user from a bearer token when one is sent.
// Requests without a token pass through; a bad token is rejected.
func Session(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			abortUnauthorized(c, "authorization header must be a bearer token")
			return
		}
		s, err := ParseToken(secret, strings.TrimSpace(raw))
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}
		c.Set(sessionKey, s)
		c.Request = c.Request.WithContext(domain.WithSession(c.Request.Context(), s))
		c.Next()
	}
}

// GetSession returns the session stored by Session.
func GetSession(c *gin.Context) (domain.Session, bool) {
	if v, ok := c.Get(sessionKey); ok {
		s, ok := v.(domain.Session)
		return s, ok
	}
	return domain.Session{}, false
}

// RequireRoles rejects requests without a session, and sessions whose role
// is not listed. No roles means any signed-in user.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := GetSession(c)
		if !ok {
			abortUnauthorized(c, "sign in required")
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, s.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "role not allowed for this operation",
				"code":       "forbidden",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
