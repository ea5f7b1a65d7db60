package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/direct-img/direct-img.link/internal/config"
	"github.com/direct-img/direct-img.link/internal/domain"
	"github.com/direct-img/direct-img.link/internal/fetch"
	"github.com/direct-img/direct-img.link/internal/imagecache"
	redisx "github.com/direct-img/direct-img.link/internal/infra/cache/redis"
	"github.com/direct-img/direct-img.link/internal/infra/notify/ntfy"
	"github.com/direct-img/direct-img.link/internal/infra/search/brave"
	s3storage "github.com/direct-img/direct-img.link/internal/infra/storage/s3"
	"github.com/direct-img/direct-img.link/internal/quota"
	"github.com/direct-img/direct-img.link/internal/transport/web"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	cache  domain.Cache
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	s3Log := log.New(base.Writer(), base.Prefix()+"[s3] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	braveLog := log.New(base.Writer(), base.Prefix()+"[brave] ", base.Flags())
	ntfyLog := log.New(base.Writer(), base.Prefix()+"[ntfy] ", base.Flags())
	fetchLog := log.New(base.Writer(), base.Prefix()+"[fetch] ", base.Flags())
	cacheLog := log.New(base.Writer(), base.Prefix()+"[cache] ", base.Flags())
	quotaLog := log.New(base.Writer(), base.Prefix()+"[quota] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init Redis")
	rc := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, redisLog)
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Println("Redis is initialized")

	base.Println("init S3 storage")
	s3, err := s3storage.New(ctx, s3storage.Config{
		Endpoint:   cfg.S3Endpoint,
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		UseSSL:     cfg.S3UseSSL,
		PathStyle:  cfg.S3PathStyle,
		ExpiryDays: cfg.CacheTTLDays,
	}, s3Log)
	if err != nil {
		return nil, fmt.Errorf("failed init s3: %w", err)
	}
	base.Println("S3 storage is initialized")

	searcher := brave.New(brave.Config{
		APIKey:      cfg.BraveAPIKey,
		ResultCount: cfg.BraveResultCount,
		SafeSearch:  cfg.BraveSafeSearch,
	}, braveLog)
	notifier := ntfy.New(cfg.NtfyURL, ntfyLog)

	cache := imagecache.New(rc, s3, cfg.CacheTTL(), cacheLog)
	tracker := quota.New(rc, cfg.QuotaDailyLimit, cfg.QuotaTTL(), quotaLog)
	fetcher := fetch.New(fetch.Config{
		AttemptTimeout: cfg.FetchAttemptTimeout(),
		MaxBytes:       cfg.FetchMaxBytes,
	}, fetchLog)

	base.Println("init Server")
	server := web.New(serverLog, cfg, web.Deps{
		Cache:         cache,
		Quota:         tracker,
		Search:        searcher,
		Fetch:         fetcher,
		Notify:        notifier,
		CachePinger:   rc,
		StoragePinger: s3,
	})
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{config: cfg, server: server, log: base, cache: rc}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.cache.Close()

	return nil
}
