package middleware

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"budget/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextUserIDKey gin 上下文中保存当前用户 ID 的键
const ContextUserIDKey = "userID"

// Claims JWT 载荷
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var (
	jwtMu     sync.RWMutex
	jwtSecret []byte
)

// InitJWT 设置签名密钥
func InitJWT(cfg *config.Config) {
	jwtMu.Lock()
	defer jwtMu.Unlock()
	jwtSecret = []byte(cfg.JWT.Secret)
}

func secret() []byte {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	return jwtSecret
}

// GenerateToken 签发 HS256 token
func GenerateToken(userID uint, username string, expire time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
			Issuer:    "budget",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ParseToken 校验签名和有效期
func ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// JWTAuth 校验 Authorization: Bearer <token>，通过后把用户 ID 写入上下文
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c, "Missing or malformed authorization header")
			return
		}

		claims, err := ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}

// GetCurrentUserID 当前用户 ID，未登录时为 0
func GetCurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
