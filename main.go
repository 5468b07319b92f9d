// Command grid-escape starts the Grid Escape game server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from an optional YAML file, the environment (a .env file is
// loaded first) and command line flags, in increasing order of precedence.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/grid-escape/api"
	"github.com/wricardo/grid-escape/appconfig"
	"github.com/wricardo/grid-escape/game/config"
	"github.com/wricardo/grid-escape/game/service"
	"github.com/wricardo/grid-escape/game/session"
	"github.com/wricardo/grid-escape/logging"
	"github.com/wricardo/grid-escape/transport/mcp"
	"github.com/wricardo/grid-escape/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Grid Escape Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "grid-escape",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "settings", Usage: "YAML settings file (optional)"},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Usage: "Directory containing game configurations"},
			&cli.StringFlag{Name: "storage", Usage: "Session storage: memory, file, redis or sqlite"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level (debug, info, warn, error)"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (or use NGROK_AUTHTOKEN env var)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)"},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "Run MCP stdio server, using an external API or an internal one",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Usage:   "REST API to proxy to",
						Value:   "http://localhost:8080",
						Sources: cli.EnvVars("GRID_ESCAPE_API_URL"),
					},
				},
				Action: runStdioMCP,
			},
			{
				Name:  "env",
				Usage: "Describe the environment variables the server reads",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					usage, err := appconfig.Usage()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.Root().Writer, usage)
					return err
				},
			},
		},
	}
}

// loadSettings applies command line overrides on top of file and env values
func loadSettings(cmd *cli.Command) (*appconfig.Config, error) {
	settings, err := appconfig.Load(cmd.String("settings"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		settings.HTTP.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.HTTP.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("config-dir") {
		settings.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("storage") {
		settings.Storage.Driver = cmd.String("storage")
	}
	if cmd.IsSet("log-level") {
		settings.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("debug") {
		settings.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("ngrok") {
		settings.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		settings.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		settings.Ngrok.Domain = cmd.String("ngrok-domain")
	}
	if settings.Ngrok.AuthToken == "" {
		settings.Ngrok.AuthToken = os.Getenv("NGROK_AUTH_TOKEN")
	}

	return settings, settings.Validate()
}

func setup(cmd *cli.Command) (*appconfig.Config, *zap.Logger, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(settings.LogLevel, settings.Debug)
	if err != nil {
		return nil, nil, err
	}
	return settings, logger, nil
}

// services holds the wired game stack
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	close       func() error
}

// initializeServices wires config and session managers, the selected
// session store and the game service.
func initializeServices(ctx context.Context, settings *appconfig.Config, logger *zap.Logger) (*services, error) {
	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, closeStore, err := openPersistence(ctx, settings, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	var sessionManager *session.Manager
	if persistence != nil {
		sessionManager = session.NewManagerWithPersistence(persistence, logger)
		if err := sessionManager.LoadPersistedSessions(ctx); err != nil {
			logger.Warn("failed to load persisted sessions", zap.Error(err))
		}
	} else {
		sessionManager = session.NewManager(logger)
	}

	logger.Info("services initialized",
		zap.String("storage", settings.Storage.Driver),
		zap.String("config_dir", settings.ConfigDir),
		zap.Int("configs", configManager.Count()),
		zap.Int("sessions", sessionManager.Count()))

	return &services{
		game:        service.NewGameService(sessionManager, configManager, logger),
		sessions:    sessionManager,
		persistence: persistence,
		close:       closeStore,
	}, nil
}

// openPersistence builds the session store named by the settings. The
// memory driver has no store.
func openPersistence(ctx context.Context, settings *appconfig.Config, configs service.ConfigManager) (session.SessionPersistence, func() error, error) {
	noop := func() error { return nil }

	switch settings.Storage.Driver {
	case appconfig.StorageMemory:
		return nil, noop, nil

	case appconfig.StorageFile:
		store, err := session.NewFilePersistence(settings.Storage.SessionsDir, configs)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case appconfig.StorageRedis:
		r := settings.Storage.Redis
		client, err := session.NewRedisClient(ctx, r.Addr(), r.Password, r.DB)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisPersistence(client, r.Prefix, r.TTL, configs), client.Close, nil

	case appconfig.StorageSQLite:
		store, err := session.OpenSQLitePersistence(settings.Storage.SQLitePath, configs)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", settings.Storage.Driver)
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, retention time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(retention); removed > 0 {
				logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

// pruneOrphans drops sessions from memory whose stored copy was deleted
// outside the server
func pruneOrphans(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, logger *zap.Logger) int {
	pruned := 0
	for _, s := range manager.List() {
		exists, err := persistence.Exists(ctx, s.ID)
		if err != nil {
			logger.Warn("session store check failed", zap.String("session", s.ID), zap.Error(err))
			continue
		}
		if !exists {
			if err := manager.DeleteFromMemory(s.ID); err == nil {
				pruned++
				logger.Info("pruned session from memory (store entry deleted)", zap.String("session", s.ID))
			}
		}
	}
	return pruned
}

// persistenceSyncRoutine periodically reconciles memory with the store
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphans(ctx, manager, persistence, logger); pruned > 0 {
				logger.Info("store sync pruned orphaned sessions", zap.Int("pruned", pruned))
			}
		}
	}
}

// buildHandler mounts the REST API at the root and the MCP proxy at /mcp
func buildHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})

	return mainRouter
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. With ngrok enabled it also serves through a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	settings, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc, err := initializeServices(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer svc.close()

	var wg sync.WaitGroup
	goRoutine := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	hub := websocket.NewHub(logger)
	goRoutine(func() { hub.Run(ctx) })
	goRoutine(func() {
		sessionCleanupRoutine(ctx, svc.sessions, settings.Sessions.CleanupInterval, settings.Sessions.Retention, logger)
	})
	if svc.persistence != nil {
		goRoutine(func() {
			persistenceSyncRoutine(ctx, svc.sessions, svc.persistence, settings.Sessions.SyncInterval, logger)
		})
	}

	addr := settings.HTTP.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	handler := buildHandler(api.NewServer(svc.game, hub, logger), mcp.NewClient("http://"+listener.Addr().String()))
	httpServer := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("rest_api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if settings.Ngrok.Enabled {
		goRoutine(func() { runNgrok(ctx, settings.Ngrok, handler, logger) })
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}
	if err := svc.sessions.SaveAllSessions(shutdownCtx); err != nil {
		logger.Warn("failed to save sessions on shutdown", zap.Error(err))
	}

	wg.Wait()
	logger.Info("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled
func runNgrok(ctx context.Context, settings appconfig.Ngrok, handler http.Handler, logger *zap.Logger) {
	if settings.AuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if settings.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(settings.AuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	logger.Info("ngrok tunnel established", zap.String("url", tun.URL()))
	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// apiAvailable reports whether a game server answers at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port and
// returns its base URL
func startInternalAPI(ctx context.Context, svc *services, logger *zap.Logger) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(svc.game, hub, logger)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("internal HTTP server error", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	return "http://" + listener.Addr().String(), nil
}

// runStdioMCP runs an MCP stdio server. It reuses an external API when one
// answers at --api-url; otherwise it starts a private internal API.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	settings, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	baseURL := cmd.String("api-url")
	if apiAvailable(ctx, baseURL) {
		logger.Info("external API server found, using it for MCP", zap.String("url", baseURL))
	} else {
		logger.Info("no external API server found, starting internal HTTP server")

		svc, err := initializeServices(ctx, settings, logger)
		if err != nil {
			return err
		}
		defer svc.close()

		baseURL, err = startInternalAPI(ctx, svc, logger)
		if err != nil {
			return err
		}
	}

	logger.Info("MCP stdio server ready", zap.String("api", baseURL))
	return mcp.NewClient(baseURL).ServeStdio()
}
