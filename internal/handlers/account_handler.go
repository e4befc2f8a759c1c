package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"loginpage/internal/middleware"
	"loginpage/internal/models"
	"loginpage/internal/services"
)

const (
	msgLoginPage    = "Please log in."
	msgLoginOK      = "Login successful"
	msgInvalidLogin = "Invalid login attempt."
	msgVerifyFirst  = "Please verify your email before logging in."
	msgLoginFailed  = "An error occurred during login."
	msgVerifyOK     = "Email verified successfully. You can now log in."
	msgInvalidToken = "Invalid or expired verification token."
	msgVerifyFailed = "An error occurred while verifying email."
	msgRegisterOK   = "Registration successful! Please check your email to verify your account."
	msgLoggedOut    = "Logged out successfully"
)

type SessionOptions struct {
	Name           string
	MaxAge         time.Duration
	RememberMaxAge time.Duration
}

type AccountHandler struct {
	accounts services.AccountService
	store    sessions.Store
	session  SessionOptions
	log      *zap.SugaredLogger
}

func NewAccountHandler(accounts services.AccountService, store sessions.Store, opts SessionOptions, log *zap.SugaredLogger) *AccountHandler {
	return &AccountHandler{accounts: accounts, store: store, session: opts, log: log}
}

// LoginPage
// @Summary      Login placeholder
// @Tags         Account
// @Produce      json
// @Success      200  {object}  models.MessageResponse
// @Router       /account/login [get]
func (h *AccountHandler) LoginPage(c *gin.Context) {
	respondMessage(c, http.StatusOK, msgLoginPage)
}

// Login
// @Summary      Log in
// @Description  Checks credentials of a verified account and starts a cookie session
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  models.MessageResponse
// @Failure      400    {object}  models.MessageResponse
// @Failure      500    {object}  models.MessageResponse
// @Router       /account/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Infow("[account][login] bad request", "err", err)
		respondValidation(c, err)
		return
	}
	h.log.Infow("[account][login] attempt", "email", req.Email)

	user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrEmailNotVerified):
		respondMessage(c, http.StatusBadRequest, msgVerifyFirst)
		return
	case errors.Is(err, services.ErrInvalidLogin):
		respondMessage(c, http.StatusBadRequest, msgInvalidLogin)
		return
	case err != nil:
		h.log.Errorw("[account][login] failed", "email", req.Email, "err", err)
		respondMessage(c, http.StatusInternalServerError, msgLoginFailed)
		return
	}

	if err := h.startSession(c, user, req.RememberMe); err != nil {
		h.log.Errorw("[account][login] save session failed", "id", user.ID, "err", err)
		respondMessage(c, http.StatusInternalServerError, msgLoginFailed)
		return
	}
	h.log.Infow("[account][login] success", "id", user.ID, "remember", req.RememberMe)
	respondMessage(c, http.StatusOK, msgLoginOK)
}

// VerifyEmail
// @Summary      Verify email address
// @Tags         Account
// @Produce      json
// @Param        token  query     string  true  "Verification token"
// @Success      200    {object}  models.MessageResponse
// @Failure      400    {object}  models.MessageResponse
// @Failure      500    {object}  models.MessageResponse
// @Router       /account/verify-email [get]
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if dec, err := url.PathUnescape(token); err == nil {
		token = dec
	}

	user, err := h.accounts.VerifyEmail(c.Request.Context(), token)
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		respondMessage(c, http.StatusBadRequest, msgInvalidToken)
		return
	case err != nil:
		h.log.Errorw("[account][verify] failed", "err", err)
		respondMessage(c, http.StatusInternalServerError, msgVerifyFailed)
		return
	}
	h.log.Infow("[account][verify] verified", "id", user.ID)
	respondMessage(c, http.StatusOK, msgVerifyOK)
}

// Register
// @Summary      Register an account
// @Description  Creates an unverified account and emails a verification link
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        register  body      models.RegisterRequest  true  "Registration data"
// @Success      200       {object}  models.MessageResponse
// @Failure      400       {object}  models.MessageResponse
// @Failure      500       {object}  models.MessageResponse
// @Router       /account/register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Errorw("[account][register] failed", "email", req.Email, "err", err)
		respondMessage(c, http.StatusInternalServerError, err.Error())
		return
	}
	h.log.Infow("[account][register] registered", "id", user.ID, "email", user.Email)
	respondMessage(c, http.StatusOK, msgRegisterOK)
}

// Logout
// @Summary      Log out
// @Tags         Account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.MessageResponse
// @Failure      401  {string}  string  "Bearer token is required!"
// @Router       /account/logout [get]
func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.endSession(c); err != nil {
		h.log.Warnw("[account][logout] clear session failed", "err", err)
	}
	respondMessage(c, http.StatusOK, msgLoggedOut)
}

func (h *AccountHandler) startSession(c *gin.Context, user *models.User, remember bool) error {
	// a decode error still yields a usable new session
	s, _ := h.store.Get(c.Request, h.session.Name)
	if s == nil {
		s = sessions.NewSession(h.store, h.session.Name)
	}
	if s.Options == nil {
		s.Options = &sessions.Options{Path: "/"}
	}
	s.Values[middleware.SessionUserIDKey] = user.ID
	s.Values[middleware.SessionEmailKey] = user.Email
	s.Values[middleware.SessionRememberKey] = remember
	s.Options.MaxAge = int(h.session.MaxAge / time.Second)
	if remember {
		s.Options.MaxAge = int(h.session.RememberMaxAge / time.Second)
	}
	return s.Save(c.Request, c.Writer)
}

func (h *AccountHandler) endSession(c *gin.Context) error {
	s, _ := h.store.Get(c.Request, h.session.Name)
	if s == nil {
		return nil
	}
	if s.Options == nil {
		s.Options = &sessions.Options{Path: "/"}
	}
	s.Values = map[interface{}]interface{}{}
	s.Options.MaxAge = -1
	return s.Save(c.Request, c.Writer)
}
