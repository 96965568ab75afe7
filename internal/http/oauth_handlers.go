package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
	"github.com/SezimOrozobekova/velox-backend/internal/log"
	"github.com/SezimOrozobekova/velox-backend/internal/oauth"
)

const oauthStateTTL = 10 * time.Minute

// OAuthInit godoc
// @Summary Start the Google OAuth flow
// @Tags google
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/google/oauth/init [get]
func (h *Handler) OAuthInit(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	if h.Google == nil || h.States == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google oauth not configured"})
		return
	}
	state, err := h.Google.NewState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "state gen"})
		return
	}
	if err := h.States.SaveOAuthState(c.Request.Context(), state, uid.Hex(), oauthStateTTL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "state save"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_url": h.Google.AuthURL(state)})
}

// OAuthCallback completes the web flow: verify state, exchange the code
// and replace the stashed user's credential bundle.
func (h *Handler) OAuthCallback(c *gin.Context) {
	if h.Google == nil || h.States == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google oauth not configured"})
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" || !h.Google.VerifyState(state) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	uidHex, err := h.States.TakeOAuthState(c.Request.Context(), state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "state lookup"})
		return
	}
	uid, err := primitive.ObjectIDFromHex(uidHex)
	if uidHex == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or expired state"})
		return
	}

	tok, err := h.Google.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Errorf("google code exchange: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	cred := &domain.GoogleCredential{
		UserID:       uid,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     h.Google.TokenURL,
		ClientID:     h.Google.ClientID(),
		ClientSecret: h.Google.ClientSecret(),
		TokenExpiry:  tok.Expiry.UTC(),
		Scopes:       h.Google.Scopes(),
	}
	if err := h.Store.UpsertCredential(c.Request.Context(), cred); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "credential save"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Google tokens saved successfully"})
}

type mobileExchangeReq struct {
	Code string `json:"code"`
}

// OAuthMobile godoc
// @Summary Exchange a device authorization code for tokens
// @Tags google
// @Accept json
// @Produce json
// @Param payload body mobileExchangeReq true "authorization code"
// @Success 200 {object} oauth.TokenResponse
// @Failure 400 {object} map[string]string
// @Router /api/google/oauth/mobile [post]
func (h *Handler) OAuthMobile(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google oauth not configured"})
		return
	}
	var in mobileExchangeReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if in.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'code'"})
		return
	}

	tokens, err := h.Google.ExchangeMobile(c.Request.Context(), in.Code)
	if err != nil {
		var ue *oauth.UpstreamError
		if errors.As(err, &ue) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ue.Body})
			return
		}
		log.Errorf("mobile code exchange: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

type saveTokensReq struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// SaveTokens godoc
// @Summary Persist tokens the client already obtained
// @Tags google
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body saveTokensReq true "tokens"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/google/tokens [post]
func (h *Handler) SaveTokens(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	if h.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google oauth not configured"})
		return
	}
	var in saveTokensReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if in.AccessToken == "" || in.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tokens are required"})
		return
	}

	cred := &domain.GoogleCredential{
		UserID:       uid,
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
		TokenURI:     h.Google.TokenURL,
		ClientID:     h.Google.ClientID(),
		ClientSecret: h.Google.ClientSecret(),
		TokenExpiry:  time.Now().Add(time.Duration(in.ExpiresIn) * time.Second).UTC(),
		Scopes:       h.Google.Scopes(),
	}
	if err := h.Store.UpsertCredential(c.Request.Context(), cred); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "credential save"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Google tokens saved successfully"})
}
