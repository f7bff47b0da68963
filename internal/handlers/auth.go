package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"guitarworks/api/internal/cookies"
	"guitarworks/api/internal/flash"
	"guitarworks/api/internal/i18n"
	"guitarworks/api/internal/middleware"
	"guitarworks/api/internal/service"
)

type credentialsRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// formResponse carries per-field validation output back to the form.
type formResponse struct {
	UsernameMessages []string `json:"usernameMessages"`
	PasswordMessages []string `json:"passwordMessages"`
	FormMessages     []string `json:"formMessages"`
}

func newFormResponse() formResponse {
	return formResponse{
		UsernameMessages: []string{},
		PasswordMessages: []string{},
		FormMessages:     []string{},
	}
}

type sessionResponse struct {
	UserInfo         service.UserInfo `json:"userInfo"`
	FlashMessageInfo *flash.Info      `json:"flashMessageInfo"`
}

// Session serves the layout data every page needs: who is browsing and any
// pending flash message.
func (h HandlerSet) Session(c *gin.Context) {
	current := middleware.CurrentUserFrom(c)
	c.JSON(http.StatusOK, sessionResponse{
		UserInfo:         current.UserInfo,
		FlashMessageInfo: flash.Read(c.Request),
	})
}

func (h HandlerSet) RegisterPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userInfo": middleware.CurrentUserFrom(c).UserInfo})
}

func (h HandlerSet) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userInfo": middleware.CurrentUserFrom(c).UserInfo})
}

func (h HandlerSet) Mypage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userInfo": middleware.CurrentUserFrom(c).UserInfo})
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	resp := newFormResponse()

	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		resp.FormMessages = append(resp.FormMessages, h.messages.Text(i18n.Unexpected))
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	ctx := c.Request.Context()

	format := h.auth.CheckRegisterForm(req.Username, req.Password)
	if format.Error {
		resp.UsernameMessages = format.UsernameMessages
		resp.PasswordMessages = format.PasswordMessages
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	// Admin accounts come from cmd/seed only.
	if h.cfg.IsAdmin(req.Username) {
		h.log.Warn().Str("username", req.Username).Str("client_ip", c.ClientIP()).Msg("registration of admin username refused")
		resp.UsernameMessages = append(resp.UsernameMessages, h.messages.Text(i18n.UsernameTaken))
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	availability := h.auth.CheckUsernameAvailable(ctx, req.Username)
	if availability.Error {
		resp.UsernameMessages = availability.UsernameMessages
		resp.FormMessages = availability.FormMessages
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	registered := h.auth.Register(ctx, req.Username, req.Password)
	if registered.Error {
		resp.FormMessages = registered.Messages
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	login := h.auth.Login(ctx, registered.UserID)
	if login.Error {
		resp.FormMessages = login.Messages
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	h.setSessionCookie(c, login.SessionID)
	middleware.RedirectWithFlash(c, middleware.HomePath, h.messages.Text(i18n.Registered), flash.Success)
}

func (h HandlerSet) Login(c *gin.Context) {
	resp := newFormResponse()

	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		resp.FormMessages = append(resp.FormMessages, h.messages.Text(i18n.Unexpected))
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	ctx := c.Request.Context()

	format := h.auth.CheckLoginForm(req.Username, req.Password)
	if format.Error {
		resp.UsernameMessages = format.UsernameMessages
		resp.PasswordMessages = format.PasswordMessages
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	credentials := h.auth.ValidateCredentials(ctx, req.Username, req.Password)
	if credentials.Error {
		resp.FormMessages = credentials.Messages
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	login := h.auth.Login(ctx, credentials.UserID)
	if login.Error {
		resp.FormMessages = login.Messages
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	h.setSessionCookie(c, login.SessionID)
	middleware.RedirectWithFlash(c, middleware.MypagePath, h.messages.Text(i18n.LoggedIn), flash.Success)
}

// Logout keeps the cookie when the server could not confirm the session was
// removed, so the visitor can retry.
func (h HandlerSet) Logout(c *gin.Context) {
	result := h.auth.Logout(c.Request.Context(), c.Request)
	if result.Error {
		middleware.RedirectWithFlash(c, middleware.HomePath, result.Message, flash.Alert)
		return
	}

	cookies.ClearSession(c.Writer, h.cfg.Security.CookieSecure)
	middleware.RedirectWithFlash(c, middleware.HomePath, h.messages.Text(i18n.LoggedOut), flash.Success)
}

func (h HandlerSet) setSessionCookie(c *gin.Context, token string) {
	cookies.SetSession(c.Writer, token, h.cfg.Security.CookieMaxAge, h.cfg.Security.CookieSecure)
}
