package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/direct-img/direct-img.link/internal/config"
	"github.com/direct-img/direct-img.link/internal/domain"
	"github.com/direct-img/direct-img.link/internal/fetch"
	"github.com/direct-img/direct-img.link/internal/imagecache"
	"github.com/direct-img/direct-img.link/internal/quota"
	"github.com/direct-img/direct-img.link/internal/transport/web/v1/health"
	"github.com/direct-img/direct-img.link/internal/transport/web/v1/image"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

type Deps struct {
	Cache         *imagecache.Store
	Quota         *quota.Tracker
	Search        domain.ImageSearcher
	Fetch         *fetch.Fetcher
	Notify        domain.Notifier
	CachePinger   health.Pinger
	StoragePinger health.Pinger
}

func New(logger *log.Logger, cfg *config.Config, d Deps) *Server {
	imageLog := log.New(logger.Writer(), logger.Prefix()+"[image] ", logger.Flags())
	healthLog := log.New(logger.Writer(), logger.Prefix()+"[health] ", logger.Flags())

	imageHandler := &image.Handler{
		Log:            imageLog,
		Cache:          d.Cache,
		Quota:          d.Quota,
		Search:         d.Search,
		Fetch:          d.Fetch,
		Notify:         d.Notify,
		GlobalDeadline: cfg.FetchGlobalDeadline(),
	}
	healthHandler := &health.Handler{Log: healthLog, Cache: d.CachePinger, Storage: d.StoragePinger}
	static := http.FileServer(http.Dir(cfg.StaticDir))

	srv := &http.Server{
		Addr:    cfg.AppPort,
		Handler: newRouter(imageHandler, healthHandler, static, logger),
		// WriteTimeout must cover the whole fetch window.
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.FetchGlobalDeadline() + 15*time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
