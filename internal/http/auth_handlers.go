package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
	"github.com/SezimOrozobekova/velox-backend/internal/log"
	"github.com/SezimOrozobekova/velox-backend/internal/queue"
	"github.com/SezimOrozobekova/velox-backend/internal/security"
)

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register godoc
// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !strings.Contains(email, "@") || len(in.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or weak password"})
		return
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash failed"})
		return
	}

	// inactive until the activation link is visited
	u := &domain.User{Email: email, PasswordHash: hash, Name: strings.TrimSpace(in.Name)}
	if err := h.Store.CreateUser(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	if _, err := h.Store.EnsureDefaultCategories(c.Request.Context(), u.ID); err != nil {
		log.Errorf("seed default categories for %s: %v", u.Email, err)
	}

	// outlives the request: the publish must not die with the handler
	evCtx := context.WithoutCancel(c.Request.Context())
	go func() {
		if err := h.Events.Publish(evCtx, "velox.events", "user.registered",
			queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name},
			c.GetString(ctxReqIDKey)); err != nil {
			log.Errorf("publish user.registered for %s: %v", u.Email, err)
		}
	}()

	resp := gin.H{"id": u.ID}
	if h.DevMode {
		// no mailer wired yet; hand the activation link parts back in dev
		resp["activation_uid_dev"] = security.EncodeUID(u.ID.Hex())
		resp["activation_token_dev"] = security.MakeActivationToken(h.ActivationKey, u)
	}
	c.JSON(http.StatusCreated, resp)
}

// Activate godoc
// @Summary Activate account via signed link
// @Tags auth
// @Produce json
// @Param uid path string true "base64url user id"
// @Param token path string true "activation token"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /activate/{uid}/{token} [get]
func (h *Handler) Activate(c *gin.Context) {
	hexID, err := security.DecodeUID(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link"})
		return
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link"})
		return
	}
	u, err := h.Store.FindUserByID(c.Request.Context(), id)
	if err != nil || u == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link"})
		return
	}
	if !security.CheckActivationToken(h.ActivationKey, c.Param("token"), u) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link"})
		return
	}
	// visiting twice is safe
	if u.Active {
		c.JSON(http.StatusOK, gin.H{"message": "already activated"})
		return
	}
	if err := h.Store.ActivateUser(c.Request.Context(), u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "activation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "activated"})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} loginResp
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := h.Store.FindUserByEmail(c.Request.Context(), email)
	if err != nil || u == nil || !security.CheckPassword(u.PasswordHash, in.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !u.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "account not activated"})
		return
	}

	tok, err := security.MakeAccess(h.JWTSecret, u.ID.Hex(), u.Email, h.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	ref, err := security.NewRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh gen"})
		return
	}
	if err := h.Store.SaveRefresh(c.Request.Context(), u.ID, ref, h.RefreshTTL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh save"})
		return
	}
	c.JSON(http.StatusOK, loginResp{Access: tok, Refresh: ref})
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

func (h *Handler) Refresh(c *gin.Context) {
	var in refreshReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rt, err := h.Store.FindValidRefresh(c.Request.Context(), in.Refresh)
	if err != nil || rt == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh"})
		return
	}
	u, err := h.Store.FindUserByID(c.Request.Context(), rt.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	tok, err := security.MakeAccess(h.JWTSecret, u.ID.Hex(), u.Email, h.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": tok})
}

type logoutReq struct {
	Refresh string `json:"refresh"`
}

func (h *Handler) Logout(c *gin.Context) {
	var in logoutReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Store.RevokeRefresh(c.Request.Context(), in.Refresh); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoke failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	u, err := h.Store.FindUserByID(c.Request.Context(), uid)
	if err != nil || u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id": u.ID, "email": u.Email, "name": u.Name,
		"wake_up_time": u.WakeUpTime, "sleep_time": u.SleepTime,
		"created_at": u.CreatedAt,
	})
}

// UpdateTime godoc
// @Summary Update schedule preferences
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body updateTimeReq true "partial update"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/users/me/time [patch]
func (h *Handler) UpdateTime(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var in updateTimeReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	for _, t := range []*string{in.WakeUpTime, in.SleepTime} {
		if t == nil {
			continue
		}
		if _, err := time.Parse("15:04:05", *t); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "time must be HH:MM:SS"})
			return
		}
	}
	if err := h.Store.UpdateUserProfile(c.Request.Context(), uid, in.Name, in.WakeUpTime, in.SleepTime); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Time updated successfully"})
}

// only these three fields are client-mutable on the account
type updateTimeReq struct {
	Name       *string `json:"name"`
	WakeUpTime *string `json:"wake_up_time"`
	SleepTime  *string `json:"sleep_time"`
}
