package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taptrack/internal/config"
	"taptrack/internal/observability"
	"taptrack/internal/presence"
	"taptrack/internal/queue"
	"taptrack/internal/roster"
	"taptrack/internal/store"
	"taptrack/internal/tap"
)

// Worker consumes tap events and keeps the presence board and the
// open-sessions gauge current.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var taps queue.Queue
	if cfg.QueueBackend == "memory" {
		taps = queue.NewInMemory(64)
	} else {
		taps = queue.NewRedisQueue(redisClient.Client, "taptrack:taps")
	}

	records := tap.NewRepository(db.Client)
	teachers := roster.NewRepository(db.Client)
	board := presence.NewBoard(redisClient.Client)

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		log.Printf("worker metrics listening on %s", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	defer metricsSrv.Close()

	events, err := taps.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for tap events...")
	for evt := range events {
		if err := handle(ctx, evt, records, teachers, board); err != nil {
			log.Printf("handle %s %s failed: %v", evt.Kind, evt.RecordID, err)
		}
	}
	log.Println("worker exited")
}

func handle(ctx context.Context, evt queue.TapEvent, records *tap.Repository, teachers *roster.Repository, board *presence.Board) error {
	rec, err := records.Get(ctx, evt.RecordID)
	if err != nil {
		return err
	}
	if rec == nil {
		log.Printf("record %s not found, skipping", evt.RecordID)
		return nil
	}

	switch evt.Kind {
	case queue.KindTapIn:
		name := rec.TeacherID
		if t, err := teachers.TeacherByID(ctx, rec.TeacherID); err == nil && t != nil {
			name = t.Name
		}
		if err := board.Set(ctx, rec.ClassroomID, presence.Session{
			TeacherID: rec.TeacherID,
			Teacher:   name,
			Subject:   rec.Subject,
			Since:     rec.TapIn,
		}); err != nil {
			return err
		}
		observability.OpenSessions.Inc()
	case queue.KindTapOut:
		if err := board.Clear(ctx, rec.ClassroomID, rec.TeacherID); err != nil {
			return err
		}
		observability.OpenSessions.Dec()
	default:
		log.Printf("unknown tap event kind %q", evt.Kind)
	}
	return nil
}
