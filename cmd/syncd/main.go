package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/saviobatista/tacan-sync/internal/bridge"
	"github.com/saviobatista/tacan-sync/internal/config"
	"github.com/saviobatista/tacan-sync/internal/db"
	"github.com/saviobatista/tacan-sync/internal/redis"
	"github.com/saviobatista/tacan-sync/internal/simvar"
	"github.com/saviobatista/tacan-sync/internal/stats"
	"github.com/saviobatista/tacan-sync/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	st := stats.New()

	tr, err := newTransport(cfg, st)
	if err != nil {
		log.Printf("Failed to create transport: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := tr.Close(); err != nil {
			log.Printf("Warning: Failed to close transport: %v", err)
		}
	}()

	store := simvar.NewMemStore()
	gateway := simvar.NewGateway(store)
	defer gateway.Close()

	sessionID := uuid.NewString()
	bridgeCfg := bridge.Config{
		Store:        gateway,
		Transport:    tr,
		Stats:        st,
		OwnerID:      cfg.OwnerID,
		SessionID:    sessionID,
		TickInterval: cfg.TickInterval,
		StaleTimeout: cfg.StaleTimeout,
	}

	var dbClient *db.Client
	if cfg.DatabaseURL != "" {
		dbClient, err = db.New(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Failed to connect to database: %v", err)
			os.Exit(1)
		}
		defer dbClient.Close()
		if err := dbClient.CreateSession(sessionID, cfg.OwnerID, time.Now()); err != nil {
			log.Printf("Warning: Failed to create debrief session: %v", err)
		}
		bridgeCfg.Sightings = dbClient
		st.SetPersister(dbClient)
	}

	if cfg.RedisAddr != "" {
		redisClient, err := redis.New(cfg.RedisAddr)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		bridgeCfg.Mirror = redisClient
	}

	b := bridge.New(bridgeCfg)

	// Gateway endpoint for the in-sim plugin.
	mux := http.NewServeMux()
	mux.Handle("/vars", gateway.Handler())
	srv := &http.Server{Addr: cfg.GatewayAddr, Handler: mux}
	go func() {
		log.Printf("Gateway listening on %s", cfg.GatewayAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Gateway server error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Printf("Starting sync cycle: owner=%s session=%s transport=%s tick=%s stale=%s",
		cfg.OwnerID, cfg.Session, cfg.Transport, cfg.TickInterval, cfg.StaleTimeout)
	go b.Run(ctx)
	go st.StartLogging(ctx, time.Minute)
	if dbClient != nil {
		go st.StartPersistence(ctx, 5*time.Minute)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	cancel()
	time.Sleep(time.Second) // Give the cycle time to send its goodbye

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: Gateway shutdown error: %v", err)
	}

	if dbClient != nil {
		if err := dbClient.EndSession(sessionID, time.Now()); err != nil {
			log.Printf("Warning: Failed to end debrief session: %v", err)
		}
	}
}

func newTransport(cfg *config.Config, st *stats.Stats) (transport.Transport, error) {
	switch cfg.Transport {
	case config.TransportUDP:
		return transport.NewUDP(cfg.UDPBind, cfg.UDPPeers, cfg.OwnerID, st)
	case config.TransportNATS:
		return transport.NewNATS(cfg.NATSURL, cfg.Session, cfg.OwnerID, st)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
