package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SezimOrozobekova/velox-backend/internal/calendar"
	"github.com/SezimOrozobekova/velox-backend/internal/config"
	api "github.com/SezimOrozobekova/velox-backend/internal/http"
	"github.com/SezimOrozobekova/velox-backend/internal/log"
	"github.com/SezimOrozobekova/velox-backend/internal/metrics"
	"github.com/SezimOrozobekova/velox-backend/internal/nlp"
	"github.com/SezimOrozobekova/velox-backend/internal/oauth"
	"github.com/SezimOrozobekova/velox-backend/internal/queue"
	"github.com/SezimOrozobekova/velox-backend/internal/repo"
)

func main() {
	seedCategories := flag.Bool("seed-categories", false,
		"backfill default categories for every user and exit")
	flag.Parse()

	cfg := config.Load()

	lg, err := log.Init(cfg.Env == "prod")
	if err != nil {
		panic(err)
	}
	defer lg.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Errorf("mongo connect: %v", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		log.Errorf("ensure indexes: %v", err)
		os.Exit(1)
	}

	if *seedCategories {
		runSeed(store)
		return
	}

	metrics.MustRegister()

	var pub queue.Publisher = queue.NewNoop()
	if cfg.RabbitURL != "" {
		p, err := queue.NewRabbit(cfg.RabbitURL, "velox.events")
		if err != nil {
			log.Errorf("rabbit connect: %v (continuing without events)", err)
		} else {
			pub = p
		}
	}
	defer pub.Close()

	h := api.NewHandler(store, cfg.JWTSecret, cfg.ActivationKey, cfg.AccessTTLMin, cfg.RefreshTTLDays, pub)
	h.DevMode = cfg.Env != "prod"
	h.RateLimitPerMin = cfg.RateLimitPerMin
	h.Syncer = calendar.NewSyncer(store, calendar.NewClient())

	if cfg.GoogleClientID != "" {
		h.Google = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.GoogleRedirectURI, cfg.JWTSecret, strings.Split(cfg.GoogleScopes, ","))
		rds := repo.NewRedis(cfg.RedisAddr)
		defer rds.Close()
		h.States = rds
	}
	if cfg.OpenAIKey != "" {
		h.Extractor = nlp.NewExtractor(nlp.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.OpenAIModel))
	}

	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	log.Infof("velox-backend listening on :%s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Infof("signal: %s, shutting down", s)
	case err := <-srvErr:
		log.Errorf("server error: %v", err)
	}
}

// runSeed is the Go successor of the old create_default_categories
// management command.
func runSeed(store *repo.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ids, err := store.ListUserIDs(ctx)
	if err != nil {
		log.Errorf("list users: %v", err)
		os.Exit(1)
	}
	total := 0
	for _, id := range ids {
		n, err := store.EnsureDefaultCategories(ctx, id)
		if err != nil {
			log.Errorf("seed categories for %s: %v", id.Hex(), err)
			os.Exit(1)
		}
		total += n
	}
	log.Infof("seeded %d categories across %d users", total, len(ids))
}
