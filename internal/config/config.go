package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Transport selection values.
const (
	TransportUDP  = "udp"
	TransportNATS = "nats"
)

// Config holds the application configuration
type Config struct {
	OwnerID string
	Session string

	Transport string
	UDPBind   string
	UDPPeers  []string
	NATSURL   string

	GatewayAddr string

	TickInterval time.Duration
	StaleTimeout time.Duration

	// Optional integrations; empty means disabled.
	DatabaseURL string
	RedisAddr   string
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		OwnerID:     os.Getenv("OWNER_ID"),
		Session:     os.Getenv("SESSION"),
		Transport:   os.Getenv("TRANSPORT"),
		UDPBind:     os.Getenv("UDP_BIND"),
		NATSURL:     os.Getenv("NATS_URL"),
		GatewayAddr: os.Getenv("GATEWAY_ADDR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
	}

	if cfg.OwnerID == "" {
		cfg.OwnerID = uuid.NewString()
	}
	if cfg.Session == "" {
		cfg.Session = "default"
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportUDP
	}
	if cfg.Transport != TransportUDP && cfg.Transport != TransportNATS {
		return nil, fmt.Errorf("TRANSPORT must be %q or %q, got %q", TransportUDP, TransportNATS, cfg.Transport)
	}
	if cfg.UDPBind == "" {
		cfg.UDPBind = ":4590"
	}
	if peers := os.Getenv("UDP_PEERS"); peers != "" {
		for _, peer := range strings.Split(peers, ",") {
			peer = strings.TrimSpace(peer)
			if peer != "" {
				cfg.UDPPeers = append(cfg.UDPPeers, peer)
			}
		}
	}
	if cfg.Transport == TransportNATS && cfg.NATSURL == "" {
		cfg.NATSURL = "nats://nats:4222" // Default to Docker service name
	}
	if cfg.GatewayAddr == "" {
		cfg.GatewayAddr = ":8077"
	}

	var err error
	cfg.TickInterval, err = durationMS("TICK_MS", 250*time.Millisecond)
	if err != nil {
		return nil, err
	}
	cfg.StaleTimeout, err = durationMS("STALE_TIMEOUT_MS", 10*time.Second)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationMS(name string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(name)
	if value == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
