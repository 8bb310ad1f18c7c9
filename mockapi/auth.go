package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/storage/inmem"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "accountToken",
		Claims:        new(Claims),
	}
}

func getAccountClaims(conf *core.Config, acc inmem.Account) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   acc.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: acc.Username,
		Email:    acc.Email,
	}
}

func authenticate(db *inmem.DB, uname, pwd string) (inmem.Account, error) {
	acc, err := db.GetAccount(uname)
	if err != nil {
		return inmem.Account{}, errAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(pwd)); err != nil {
		return inmem.Account{}, errAuthenticationFailed
	}
	return acc, nil
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	return token.SignedString([]byte(conf.SecretKey))
}

// SeedAccount creates a login account with a bcrypt-hashed password.
func SeedAccount(db *inmem.DB, username, email, pwd string) (inmem.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		return inmem.Account{}, err
	}
	return db.CreateAccount(inmem.Account{
		Username:     core.CleanString(username, true /* lower */),
		Email:        email,
		PasswordHash: hash,
	}), nil
}

var errAuthenticationFailed = newHTTPError(http.StatusUnauthorized, "authentication failed")
