package v1

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"skillsprint/internal/delivery/http/middleware"
	"skillsprint/internal/delivery/http/response"
	"skillsprint/internal/domain"
	"skillsprint/pkg/apperror"
	"skillsprint/pkg/logger"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

var errNoSessions = apperror.New(http.StatusInternalServerError, "Session unavailable", nil)

// GoogleAuth starts and completes the Google authorization code flow.
type GoogleAuth interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

type AuthHandler struct {
	authUC       domain.AuthUsecase
	google       GoogleAuth
	secureCookie bool
}

func NewAuthHandler(public *gin.RouterGroup, authLimit gin.HandlerFunc, authUC domain.AuthUsecase, google GoogleAuth, secureCookie bool) {
	handler := &AuthHandler{
		authUC:       authUC,
		google:       google,
		secureCookie: secureCookie,
	}

	public.GET("/", handler.Landing)
	public.GET("/get-started", handler.GetStarted)
	public.GET("/login", handler.LoginPage)
	public.GET("/signup", handler.SignUpPage)
	public.POST("/login", authLimit, handler.Login)
	public.POST("/signup", authLimit, handler.SignUp)
	public.GET("/login/google", handler.GoogleStart)
	public.GET("/auth/callback", handler.GoogleCallback)
	public.POST("/logout", handler.Logout)
}

type pageView struct {
	View     string          `json:"view"`
	SignedIn bool            `json:"signed_in"`
	Home     string          `json:"home,omitempty"`
	Role     string          `json:"role,omitempty"`
	From     string          `json:"from,omitempty"`
	Roles    []domain.Role   `json:"roles,omitempty"`
	Profile  *domain.Profile `json:"profile,omitempty"`
}

func (h *AuthHandler) page(c *gin.Context, view string) pageView {
	p := pageView{View: view}
	if sess := middleware.CurrentSession(c); sess != nil {
		snap := sess.Store.Snapshot()
		p.SignedIn = snap.Identity != nil
		if snap.Profile != nil {
			p.Profile = snap.Profile
			p.Home = snap.Profile.Role.HomePath()
		}
	}
	return p
}

// Landing godoc
// @Summary      Landing page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       / [get]
func (h *AuthHandler) Landing(c *gin.Context) {
	response.Success(c, http.StatusOK, "OK", h.page(c, "landing"))
}

// GetStarted godoc
// @Summary      Role selection page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /get-started [get]
func (h *AuthHandler) GetStarted(c *gin.Context) {
	p := h.page(c, "get-started")
	p.Roles = []domain.Role{domain.RoleStudent, domain.RoleRecruiter}
	response.Success(c, http.StatusOK, "OK", p)
}

// LoginPage godoc
// @Summary      Sign-in page
// @Tags         pages
// @Produce      json
// @Param        role  query     string  false  "student or recruiter"
// @Param        from  query     string  false  "View that required sign-in"
// @Success      200   {object}  response.Response
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c *gin.Context) {
	p := h.page(c, "login")
	p.Role = queryRole(c)
	if from := c.Query("from"); strings.HasPrefix(from, "/") && !strings.HasPrefix(from, "//") {
		p.From = from
	}
	response.Success(c, http.StatusOK, "OK", p)
}

// SignUpPage godoc
// @Summary      Sign-up page
// @Tags         pages
// @Produce      json
// @Param        role  query     string  false  "student or recruiter"
// @Success      200   {object}  response.Response
// @Router       /signup [get]
func (h *AuthHandler) SignUpPage(c *gin.Context) {
	p := h.page(c, "signup")
	p.Role = queryRole(c)
	response.Success(c, http.StatusOK, "OK", p)
}

// Login godoc
// @Summary      Email sign-in
// @Description  Signs the session in and returns where to navigate next
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      domain.SignInInput  true  "Credentials"
// @Success      200          {object}  response.Response
// @Failure      401          {object}  response.Response
// @Failure      429          {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.SignInInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	sess := middleware.BeginSession(c)
	if sess == nil {
		c.Error(errNoSessions)
		return
	}
	res, err := h.authUC.SignIn(c.Request.Context(), sess, req, requestMeta(c))
	middleware.FinishSession(c, sess, err == nil)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Signed in", res)
}

// SignUp godoc
// @Summary      Email sign-up
// @Description  Creates the account and its profile for the chosen role
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        account  body      domain.SignUpInput  true  "Account"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req domain.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	sess := middleware.BeginSession(c)
	if sess == nil {
		c.Error(errNoSessions)
		return
	}
	res, err := h.authUC.SignUp(c.Request.Context(), sess, req, requestMeta(c))
	middleware.FinishSession(c, sess, err == nil && !res.ConfirmationRequired)
	if err != nil {
		c.Error(err)
		return
	}
	message := "Account created"
	if res.ConfirmationRequired {
		message = "Please check your email to confirm your account"
	}
	response.Success(c, http.StatusCreated, message, res)
}

// GoogleStart godoc
// @Summary      Start Google sign-in
// @Tags         auth
// @Param        role  query  string  true  "student or recruiter"
// @Success      302
// @Failure      400  {object}  response.Response
// @Router       /login/google [get]
func (h *AuthHandler) GoogleStart(c *gin.Context) {
	if h.google == nil {
		c.Error(apperror.New(http.StatusServiceUnavailable, "Google sign-in is not configured", nil))
		return
	}
	role, err := domain.ParseRole(c.Query("role"))
	if err != nil {
		c.Error(apperror.BadRequest("Role must be student or recruiter"))
		return
	}

	state, err := randomState()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state+"."+string(role), int(oauthStateTTL.Seconds()), "/auth/callback", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GoogleCallback godoc
// @Summary      Complete Google sign-in
// @Tags         auth
// @Param        state  query     string  true  "OAuth state"
// @Param        code   query     string  true  "Authorization code"
// @Success      303    {object}  response.Navigation
// @Failure      400    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /auth/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		c.Error(apperror.New(http.StatusServiceUnavailable, "Google sign-in is not configured", nil))
		return
	}

	cookie, _ := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/auth/callback", "", h.secureCookie, true)

	state, roleStr, ok := strings.Cut(cookie, ".")
	if !ok || state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(c.Query("state"))) != 1 {
		c.Error(apperror.BadRequest("Sign-in request expired. Please try again."))
		return
	}
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		c.Error(apperror.BadRequest("Role must be student or recruiter"))
		return
	}
	if reason := c.Query("error"); reason != "" {
		logger.Log.Info("Google sign-in cancelled", "reason", reason)
		response.Redirect(c, http.StatusSeeOther, "/login?role="+string(role))
		return
	}

	idToken, err := h.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		logger.Log.Warn("Google code exchange failed", "error", err)
		c.Error(apperror.New(http.StatusBadGateway, "Google sign-in failed. Please try again.", err))
		return
	}

	sess := middleware.BeginSession(c)
	if sess == nil {
		c.Error(errNoSessions)
		return
	}
	res, err := h.authUC.SignInWithGoogle(c.Request.Context(), sess, idToken, role, requestMeta(c))
	middleware.FinishSession(c, sess, err == nil)
	if err != nil {
		c.Error(err)
		return
	}
	response.Redirect(c, http.StatusSeeOther, res.Redirect)
}

// Logout godoc
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := middleware.CurrentSession(c); sess != nil {
		userID := ""
		if id := sess.Store.Snapshot().Identity; id != nil {
			userID = id.UID
		}
		if err := h.authUC.SignOut(c.Request.Context(), sess, userID, requestMeta(c)); err != nil {
			c.Error(err)
			return
		}
	}
	middleware.EndSession(c)
	response.Success(c, http.StatusOK, "Signed out", gin.H{"redirect": "/"})
}

func queryRole(c *gin.Context) string {
	role, err := domain.ParseRole(c.Query("role"))
	if err != nil {
		return ""
	}
	return string(role)
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
