package webapp

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/grammarlab/grammarlab/core"
	"github.com/grammarlab/grammarlab/core/session"
	"github.com/grammarlab/grammarlab/core/user"
)

// Claims is what a session token carries: the user id (Subject) and the
// registry session id. Roles are deliberately absent; the admin capability is
// queried live so revocations take effect immediately.
type Claims struct {
	jwt.StandardClaims
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
}

type tokenCodec struct {
	issuer     string
	secret     []byte
	expiration time.Duration
}

func newTokenCodec(conf *core.Config) *tokenCodec {
	return &tokenCodec{
		issuer:     conf.AppName,
		secret:     []byte(conf.SecretKey),
		expiration: conf.Server.JWTExpirationDelta,
	}
}

func (tc *tokenCodec) generate(usr user.User, sess session.Session) (string, error) {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    tc.issuer,
			Subject:   usr.ID,
			ExpiresAt: now.Add(tc.expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		SessionID: sess.ID,
		Email:     usr.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(tc.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (tc *tokenCodec) parse(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tc.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
