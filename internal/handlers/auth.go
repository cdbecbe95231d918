package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	iauth "github.com/jbeaudin/maplewood/internal/auth"
	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
	"github.com/jbeaudin/maplewood/pkg/metrics"
	"github.com/jbeaudin/maplewood/pkg/response"
)

// AuthConfig carries the credential hashes the two login gates verify against.
// The site gate is a single shared password printed on the invitations; the
// admin gate is a username/password pair for the couple.
type AuthConfig struct {
	SitePasswordHash  string
	AdminUsername     string
	AdminPasswordHash string
}

// AuthHandler issues session tokens for the guest site and the admin back office.
type AuthHandler struct {
	jwt *iauth.JWTService
	cfg AuthConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(jwt *iauth.JWTService, cfg AuthConfig) (*AuthHandler, error) {
	if jwt == nil {
		return nil, errors.New("auth handler: jwt service is required")
	}
	return &AuthHandler{jwt: jwt, cfg: cfg}, nil
}

type siteLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type adminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	Scope string `json:"scope"`
}

// SiteLogin exchanges the shared site password for a guest-scoped token.
func (h *AuthHandler) SiteLogin(c *gin.Context) {
	var req siteLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if h.cfg.SitePasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(h.cfg.SitePasswordHash), []byte(req.Password)) != nil {
		metrics.AuthAttempts.WithLabelValues("site", "failure").Inc()
		response.Error(c, appErrors.ErrInvalidCredentials)
		return
	}

	h.issueToken(c, "site", iauth.ScopeGuest)
}

// AdminLogin exchanges the admin credentials for an admin-scoped token.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.AdminUsername)) == 1
	passwordOK := h.cfg.AdminPasswordHash != "" &&
		bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password)) == nil

	if h.cfg.AdminUsername == "" || !usernameOK || !passwordOK {
		metrics.AuthAttempts.WithLabelValues("admin", "failure").Inc()
		response.Error(c, appErrors.ErrInvalidCredentials)
		return
	}

	h.issueToken(c, "admin", iauth.ScopeAdmin)
}

func (h *AuthHandler) issueToken(c *gin.Context, gate, scope string) {
	token, err := h.jwt.GenerateToken(scope)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(gate, "failure").Inc()
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	metrics.AuthAttempts.WithLabelValues(gate, "success").Inc()
	response.Success(c, http.StatusOK, loginResponse{Token: token, Scope: scope})
}
