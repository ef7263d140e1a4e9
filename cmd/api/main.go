package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storycat.app/internal/assets"
	"storycat.app/internal/auth"
	"storycat.app/internal/content"
	"storycat.app/internal/httpapi"
	"storycat.app/internal/obs"
	"storycat.app/internal/project"
	"storycat.app/internal/reports"
	"storycat.app/internal/store/memory"
	"storycat.app/internal/store/pg"
	"storycat.app/internal/stream"
	"storycat.app/internal/timelog"
)

var version = "0.3.0"

// stores bundles every persistence interface the services need.
type stores struct {
	profiles auth.ProfileStore
	items    content.Store
	projects project.Store
	logs     timelog.Store
	reports  reports.Store
}

func main() {
	obs.Init()

	var (
		st    stores
		probe httpapi.ReadyProbe
		pgs   *pg.Store
	)
	if dsn := os.Getenv("STORYCAT_PG_DSN"); dsn != "" {
		var err error
		pgs, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		st = stores{profiles: pgs, items: pgs, projects: pgs, logs: pgs, reports: pgs}
		probe = httpapi.ReadyProbe{DB: pgs.DB()}
	} else {
		// DSN-less development mode keeps everything in process.
		log.Println("STORYCAT_PG_DSN not set, using in-memory store")
		mem := memory.New()
		st = stores{profiles: mem, items: mem, projects: mem, logs: mem, reports: mem}
	}

	authSvc, err := auth.NewService(st.profiles)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	contentSvc, err := content.NewService(st.items)
	if err != nil {
		log.Fatalf("content service: %v", err)
	}
	projectSvc, err := project.NewService(st.projects, st.items)
	if err != nil {
		log.Fatalf("project service: %v", err)
	}
	timelogSvc, err := timelog.NewService(st.logs)
	if err != nil {
		log.Fatalf("timelog service: %v", err)
	}
	reportsSvc, err := reports.NewService(st.reports)
	if err != nil {
		log.Fatalf("reports service: %v", err)
	}

	assetsDir := os.Getenv("STORYCAT_ASSETS_DIR")
	if assetsDir == "" {
		assetsDir = "data/assets"
	}
	bucket, err := assets.NewBucket(assetsDir, "/assets")
	if err != nil {
		log.Fatalf("assets bucket: %v", err)
	}

	api := httpapi.New(httpapi.Config{
		Auth:     authSvc,
		Content:  contentSvc,
		Projects: projectSvc,
		Timelogs: timelogSvc,
		Reports:  reportsSvc,
		Bucket:   bucket,
		Stream:   stream.New(),
		Probe:    probe,
		Version:  version,
	})

	addr := os.Getenv("STORYCAT_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second, // SSE clients hold the connection
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting storycat-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if pgs != nil {
		_ = pgs.Close()
	}
	log.Println("Stopped")
}
