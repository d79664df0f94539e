// Package bootstrap loads configuration, wires the application
// components together and supervises the server loops.
package bootstrap

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	tcphandler "chat-relay/internal/handler/tcp"
	udphandler "chat-relay/internal/handler/udp"
	"chat-relay/internal/hub"
	"chat-relay/internal/service"
	"chat-relay/internal/worker"
)

// Config holds everything read from the environment.
type Config struct {
	Host          string
	TCPPort       string
	UDPPort       string
	LogLevel      string
	AppEnv        string
	ReadTimeout   time.Duration
	SweepInterval time.Duration
	IdleTimeout   time.Duration
}

// LoadConfig reads configuration from a .env file (if present) and the
// environment, applying defaults for anything unset.
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; plain environment variables work too.
	_ = godotenv.Load()

	cfg := &Config{
		Host:          os.Getenv("LISTEN_HOST"),
		TCPPort:       os.Getenv("TCP_PORT"),
		UDPPort:       os.Getenv("UDP_PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		AppEnv:        os.Getenv("APP_ENV"),
		ReadTimeout:   10 * time.Second,
		SweepInterval: 60 * time.Second,
		IdleTimeout:   3 * time.Minute,
	}

	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.TCPPort == "" {
		cfg.TCPPort = "9001"
	}
	if cfg.UDPPort == "" {
		cfg.UDPPort = "10000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	cfg.ReadTimeout = durationEnv("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.SweepInterval = durationEnv("SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.IdleTimeout = durationEnv("IDLE_TIMEOUT", cfg.IdleTimeout)

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// durationEnv parses a duration environment variable, falling back to
// def when unset or malformed.
func durationEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logrus.Warnf("Invalid %s '%s', using default %s", key, raw, def)
		return def
	}
	return d
}

// App owns the wired application components.
type App struct {
	Config  *Config
	Log     *logrus.Logger
	Hub     *hub.Hub
	tcp     *tcphandler.Server
	udp     *udphandler.Server
	sweeper *worker.Sweeper
}

// NewApp loads configuration and wires all components.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel) // validated by LoadConfig
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	log.Info("Configuration loaded")

	h := hub.New(log)

	admissionService, err := service.NewAdmissionService(h, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create AdmissionService: %w", err)
	}
	relayService := service.NewRelayService(h, log)

	return &App{
		Config:  cfg,
		Log:     log,
		Hub:     h,
		tcp:     tcphandler.NewServer(admissionService, cfg.ReadTimeout, log),
		udp:     udphandler.NewServer(relayService, log),
		sweeper: worker.NewSweeper(h, cfg.SweepInterval, cfg.IdleTimeout, log),
	}, nil
}

// Run binds both endpoints and runs the admission loop, relay loop and
// sweeper until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", net.JoinHostPort(a.Config.Host, a.Config.TCPPort))
	if err != nil {
		return fmt.Errorf("failed to bind admission listener: %w", err)
	}

	udpAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(a.Config.Host, a.Config.UDPPort))
	if err != nil {
		listener.Close()
		return fmt.Errorf("failed to resolve relay address: %w", err)
	}
	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		listener.Close()
		return fmt.Errorf("failed to bind relay socket: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.tcp.Serve(ctx, listener) })
	g.Go(func() error { return a.udp.Serve(ctx, udpConn) })
	g.Go(func() error { return a.sweeper.Run(ctx) })
	return g.Wait()
}
