package account

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/errkit/auth/jwt"
	apperrors "github.com/kbukum/errkit/errors"
	"github.com/kbukum/errkit/server"
)

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Token is the login response.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// LoginHandler issues tokens for valid credentials.
type LoginHandler struct {
	dir    *Directory
	tokens *jwt.Service[*jwt.UserClaims]
}

// NewLoginHandler creates a LoginHandler.
func NewLoginHandler(dir *Directory, tokens *jwt.Service[*jwt.UserClaims]) *LoginHandler {
	return &LoginHandler{dir: dir, tokens: tokens}
}

// Register mounts POST /login.
func (h *LoginHandler) Register(r gin.IRoutes) {
	r.POST("/login", h.Login)
}

// Login exchanges credentials for an access and refresh token.
func (h *LoginHandler) Login(c *gin.Context) {
	var in LoginInput
	if err := server.BindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}

	user, err := h.dir.Authenticate(in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			err = apperrors.Unauthorized("These credentials do not match our records.")
		}
		server.RespondWithError(c, err)
		return
	}

	tok, err := h.issue(user)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, tok)
}

func (h *LoginHandler) issue(u *User) (*Token, error) {
	access, err := h.tokens.GenerateAccess(claimsFor(u))
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := h.tokens.GenerateRefresh(claimsFor(u))
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(h.tokens.AccessTTL().Seconds()),
	}, nil
}

func claimsFor(u *User) *jwt.UserClaims {
	return &jwt.UserClaims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: u.ID},
		Name:             u.Name,
		Role:             u.Role,
	}
}
