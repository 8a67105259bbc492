package utils

import (
	"bikerent-server/storage"
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const (
	AccessTokenCookie = "access_token"

	accessTokenMaxAge  = 24 * time.Hour
	refreshTokenMaxAge = 365 * 24 * time.Hour
)

type AccessToken struct {
	ID string `json:"id"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Tokens signs and verifies the access/refresh pair. Refresh tokens are
// single use: each is remembered in the TokenStore until redeemed.
type Tokens struct {
	accessSigner    *jwt.Signer
	refreshSigner   *jwt.Signer
	accessVerifier  *jwt.Verifier
	refreshVerifier *jwt.Verifier
	store           storage.TokenStore
}

func NewTokens(accessSecret, refreshSecret string, store storage.TokenStore) *Tokens {
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(accessSecret))
	accessTokenVerifier.WithDefaultBlocklist()
	// The payment provider redirects the browser back without an
	// Authorization header, so the login cookie is accepted too.
	accessTokenVerifier.Extractors = append(accessTokenVerifier.Extractors, func(ctx iris.Context) string {
		return ctx.GetCookie(AccessTokenCookie)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(refreshSecret))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}

		return tokenInput.RefreshToken
	})

	return &Tokens{
		accessSigner:    jwt.NewSigner(jwt.HS256, []byte(accessSecret), accessTokenMaxAge),
		refreshSigner:   jwt.NewSigner(jwt.HS256, []byte(refreshSecret), refreshTokenMaxAge),
		accessVerifier:  accessTokenVerifier,
		refreshVerifier: refreshTokenVerifier,
		store:           store,
	}
}

// AccessMiddleware rejects requests without a valid access token.
func (t *Tokens) AccessMiddleware() iris.Handler {
	return t.accessVerifier.Verify(func() interface{} {
		return new(AccessToken)
	})
}

func (t *Tokens) RefreshMiddleware() iris.Handler {
	return t.refreshVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})
}

func (t *Tokens) CreateTokenPair(ctx context.Context, userID string) (*TokenPair, error) {
	accessToken, err := t.accessSigner.Sign(AccessToken{ID: userID})
	if err != nil {
		return nil, err
	}

	// A fresh jti keeps two pairs signed within the same second distinct.
	refreshToken, err := t.refreshSigner.Sign(jwt.Claims{Subject: userID, ID: uuid.New().String()})
	if err != nil {
		return nil, err
	}

	if err := t.store.Put(ctx, string(refreshToken), refreshTokenMaxAge+5*time.Minute); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  string(accessToken),
		RefreshToken: string(refreshToken),
	}, nil
}

// RevokeRefreshToken forgets a refresh token so it can no longer be redeemed.
func (t *Tokens) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	_, err := t.store.Consume(ctx, refreshToken)
	return err
}

// RefreshToken exchanges a live refresh token for a new pair. Must run after
// RefreshMiddleware.
func (t *Tokens) RefreshToken(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)

	validToken, err := t.store.Consume(ctx.Request().Context(), tokenStr)
	if err != nil {
		golog.Errorf("refresh token lookup failed: %v", err)
		CreateInternalServerError(ctx)
		return
	}
	if !validToken {
		CreateError(iris.StatusForbidden, "Forbidden", "Refresh token is no longer valid.", ctx)
		return
	}

	tokenPair, err := t.CreateTokenPair(ctx.Request().Context(), token.StandardClaims.Subject)
	if err != nil {
		CreateInternalServerError(ctx)
		return
	}

	SetAccessCookie(ctx, tokenPair.AccessToken)
	ctx.JSON(tokenPair)
}

func SetAccessCookie(ctx iris.Context, accessToken string) {
	ctx.SetCookie(&http.Cookie{
		Name:     AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(accessTokenMaxAge.Seconds()),
	})
}

func ClearAccessCookie(ctx iris.Context) {
	ctx.RemoveCookie(AccessTokenCookie)
}
