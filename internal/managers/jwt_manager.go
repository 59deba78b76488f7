package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"server-notes/internal/goerrors"
	"server-notes/internal/utils"
)

// Purpose tags what a token may be used for. A token only verifies for the purpose it was issued with.
type Purpose string

const (
	PurposeSession       Purpose = "session"
	PurposeVerifyEmail   Purpose = "verify-email"
	PurposeResetPassword Purpose = "reset-password"
)

const (
	issuer       = "server-notes"
	bearerPrefix = "Bearer "
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrUnknownPurpose = errors.New("unknown token purpose")
)

// TokenClaims are the claims carried by every token the server issues.
type TokenClaims struct {
	Purpose Purpose `json:"pur"`
	jwt.RegisteredClaims
}

type JWTMgr interface {
	Issue(subject string, purpose Purpose, ttl time.Duration) (string, error)
	Verify(tokenString string, expected Purpose) (*TokenClaims, error)
	JWTMiddleware() gin.HandlerFunc
}

// JWTManager handles token generation, signing, and validation.
// Session tokens are signed with an Ed25519 key pair, email link tokens with a separate HMAC secret.
type JWTManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	linkSecret []byte
	now        func() time.Time
}

// NewJWTManager creates a new JWTManager with the given session key pair and link secret.
func NewJWTManager(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, linkSecret []byte) *JWTManager {
	return &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
		linkSecret: linkSecret,
		now:        time.Now,
	}
}

// NewJWTManagerFromFile loads the session key pair from path, generating and saving a new one on first start.
func NewJWTManagerFromFile(path string, linkSecret string) (JWTMgr, error) {
	log.Info("Initializing JWT manager")
	if linkSecret == "" {
		return nil, errors.New("link token secret not set")
	}

	privateKey, publicKey, err := loadKeyPair(path)
	if err != nil {
		log.Info("No key pair found, generating a new one")
		privateKey, publicKey, err = generateKeyPair(path)
		if err != nil {
			return nil, err
		}
	}

	return NewJWTManager(privateKey, publicKey, []byte(linkSecret)), nil
}

// WithClock replaces the time source used to stamp and validate tokens.
func (jm *JWTManager) WithClock(now func() time.Time) *JWTManager {
	jm.now = now
	return jm
}

// Issue signs a token for subject, valid for purpose until ttl has passed.
func (jm *JWTManager) Issue(subject string, purpose Purpose, ttl time.Duration) (string, error) {
	method, key, err := jm.signingKey(purpose)
	if err != nil {
		return "", err
	}

	issuedAt := jm.now()
	claims := &TokenClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}

	return jwt.NewWithClaims(method, claims).SignedString(key)
}

// Verify validates the given token for the expected purpose and returns its claims.
// It returns ErrTokenExpired for well-signed tokens past their expiry, together with their claims,
// and ErrInvalidToken otherwise.
func (jm *JWTManager) Verify(tokenString string, expected Purpose) (*TokenClaims, error) {
	method, key, err := jm.verificationKey(expected)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(jm.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && claims.Purpose == expected && claims.Subject != "" {
			return claims, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.Purpose != expected || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// JWTMiddleware verifies the bearer session token of every request and stores its claims in the context.
func (jm *JWTManager) JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			utils.WriteAndLogError(c, goerrors.Unauthorized, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		claims, err := jm.Verify(strings.TrimPrefix(header, bearerPrefix), PurposeSession)
		if err != nil {
			utils.WriteAndLogError(c, goerrors.Unauthorized, http.StatusUnauthorized, err)
			return
		}

		c.Set(utils.ClaimsKey.String(), claims)
		c.Next()
	}
}

func (jm *JWTManager) signingKey(purpose Purpose) (jwt.SigningMethod, interface{}, error) {
	switch purpose {
	case PurposeSession:
		return jwt.SigningMethodEdDSA, jm.privateKey, nil
	case PurposeVerifyEmail, PurposeResetPassword:
		return jwt.SigningMethodHS256, jm.linkSecret, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownPurpose, purpose)
	}
}

func (jm *JWTManager) verificationKey(purpose Purpose) (jwt.SigningMethod, interface{}, error) {
	switch purpose {
	case PurposeSession:
		return jwt.SigningMethodEdDSA, jm.publicKey, nil
	case PurposeVerifyEmail, PurposeResetPassword:
		return jwt.SigningMethodHS256, jm.linkSecret, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownPurpose, purpose)
	}
}

// generateKeyPair generates a new key pair and saves it to a file.
func generateKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	// Save the new key pair to a file for persistence
	if err := saveKeyPair(privateKey, publicKey, path); err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// saveKeyPair saves the key pair to the specified file.
func saveKeyPair(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, path string) error {
	keyPairBytes := make([]byte, 0, len(privateKey)+len(publicKey))
	keyPairBytes = append(keyPairBytes, privateKey...)
	keyPairBytes = append(keyPairBytes, publicKey...)
	return os.WriteFile(path, keyPairBytes, 0600)
}

// loadKeyPair loads the key pair from the specified file.
func loadKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	keyPairBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	// The key pair is the concatenation of private and public keys
	if len(keyPairBytes) != ed25519.PrivateKeySize+ed25519.PublicKeySize {
		return nil, nil, fmt.Errorf("invalid key pair format")
	}

	privateKey := ed25519.PrivateKey(keyPairBytes[:ed25519.PrivateKeySize])
	publicKey := ed25519.PublicKey(keyPairBytes[ed25519.PrivateKeySize:])

	return privateKey, publicKey, nil
}
