package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
	"github.com/SezimOrozobekova/velox-backend/internal/nlp"
	"github.com/SezimOrozobekova/velox-backend/internal/oauth"
	"github.com/SezimOrozobekova/velox-backend/internal/queue"
	"github.com/SezimOrozobekova/velox-backend/internal/repo"
)

// Store is the slice of the storage layer the handlers use; *repo.Store
// implements it, tests run against an in-memory fake.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ActivateUser(ctx context.Context, id primitive.ObjectID) error
	UpdateUserProfile(ctx context.Context, id primitive.ObjectID, name, wakeUp, sleep *string) error

	SaveRefresh(ctx context.Context, userID primitive.ObjectID, plain string, ttl time.Duration) error
	FindValidRefresh(ctx context.Context, plain string) (*repo.RefreshToken, error)
	RevokeRefresh(ctx context.Context, plain string) error

	CreateCategory(ctx context.Context, c *domain.Category) error
	ListCategories(ctx context.Context, userID primitive.ObjectID) ([]domain.Category, error)
	FindCategory(ctx context.Context, userID, id primitive.ObjectID) (*domain.Category, error)
	UpdateCategoryName(ctx context.Context, userID, id primitive.ObjectID, name string) (bool, error)
	DeleteCategory(ctx context.Context, userID, id primitive.ObjectID) (bool, error)
	EnsureDefaultCategories(ctx context.Context, userID primitive.ObjectID) (int, error)

	CreateTask(ctx context.Context, t *domain.Task) error
	ListTasks(ctx context.Context, userID primitive.ObjectID, q repo.TaskQuery) ([]domain.Task, error)
	FindTask(ctx context.Context, userID, id primitive.ObjectID) (*domain.Task, error)
	ReplaceTask(ctx context.Context, t *domain.Task) error
	DeleteTask(ctx context.Context, userID, id primitive.ObjectID) (bool, error)

	UpsertCredential(ctx context.Context, c *domain.GoogleCredential) error
	FindCredentialByUser(ctx context.Context, userID primitive.ObjectID) (*domain.GoogleCredential, error)
	UpdateCredentialToken(ctx context.Context, userID primitive.ObjectID, access string, expiry time.Time) error
}

// StateStash keeps OAuth anti-forgery state between init and callback.
type StateStash interface {
	SaveOAuthState(ctx context.Context, state, uid string, ttl time.Duration) error
	TakeOAuthState(ctx context.Context, state string) (string, error)
}

// TaskSyncer mirrors created tasks into the external calendar.
type TaskSyncer interface {
	Sync(ctx context.Context, userID primitive.ObjectID, t *domain.Task) error
}

type Handler struct {
	Store           Store
	JWTSecret       string
	ActivationKey   string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	DevMode         bool
	RateLimitPerMin int
	Events          queue.Publisher
	Google          *oauth.GoogleOAuth
	States          StateStash
	Syncer          TaskSyncer
	Extractor       *nlp.Extractor
}

func NewHandler(store Store, jwtSecret, activationKey string, accessTTLMin, refreshDays int, pub queue.Publisher) *Handler {
	return &Handler{
		Store:         store,
		JWTSecret:     jwtSecret,
		ActivationKey: activationKey,
		AccessTTL:     time.Duration(accessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(refreshDays) * 24 * time.Hour,
		Events:        pub,
	}
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
