package remote

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Ramsey-B/verzoeken/pkg/models"
)

// Claims carried by the tokens this service presents to sibling APIs.
type Claims struct {
	ClientID           string `json:"client_id"`
	UserID             string `json:"user_id"`
	UserRepresentation string `json:"user_representation"`
	jwt.RegisteredClaims
}

// Authenticator signs a short lived HS256 token per request with the credential secret.
type Authenticator struct {
	credential models.APICredential
	now        func() time.Time
}

func NewAuthenticator(credential models.APICredential) *Authenticator {
	return &Authenticator{credential: credential, now: time.Now}
}

// Header returns the Authorization header value.
func (a *Authenticator) Header() (string, error) {
	claims := Claims{
		ClientID:           a.credential.ClientID,
		UserID:             a.credential.UserID,
		UserRepresentation: a.credential.UserRepresentation,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   a.credential.ClientID,
			IssuedAt: jwt.NewNumericDate(a.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.credential.Secret))
	if err != nil {
		return "", err
	}
	return "Bearer " + signed, nil
}
