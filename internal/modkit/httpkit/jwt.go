package httpkit

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the token's role claim
const (
	RoleLearner = "learner"
	RoleAdmin   = "admin"
)

// JWTConfig verifies HS256 tokens minted by the identity service
type JWTConfig struct {
	Secret []byte
	Issuer string // empty skips the issuer check
	Leeway time.Duration
	Now    func() time.Time
}

// Claims is the token body: sub is the learner or admin id
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// JWT returns a TokenFunc that validates signature, expiry and issuer and yields (sub, role)
func JWT(cfg JWTConfig) TokenFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}
	parser := jwt.NewParser(opts...)

	return func(token string) (string, string, error) {
		if len(cfg.Secret) == 0 {
			return "", "", errors.New("jwt secret not configured")
		}
		var c Claims
		if _, err := parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
			return cfg.Secret, nil
		}); err != nil {
			return "", "", err
		}
		switch c.Role {
		case RoleLearner, RoleAdmin:
		default:
			return "", "", errors.New("unknown role")
		}
		return c.Subject, c.Role, nil
	}
}

// SignJWT mints a token for sub and role; used by the admin CLI and tests
func SignJWT(cfg JWTConfig, sub, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	if cfg.Now != nil {
		now = cfg.Now()
	}
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(cfg.Secret)
}
