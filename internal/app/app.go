package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	_ "loginpage/docs"
	"loginpage/internal/config"
	"loginpage/internal/db"
	"loginpage/internal/handlers"
	"loginpage/internal/middleware"
	"loginpage/internal/repositories"
	"loginpage/internal/routes"
	"loginpage/internal/services"
)

// Deps are the services the HTTP layer is built from.
type Deps struct {
	Users    repositories.UserRepository
	Auth     services.AuthService
	Emails   services.EmailService
	Sessions sessions.Store
	Log      *zap.SugaredLogger
	// Options passed to the account service, e.g. services.WithClock in tests.
	AccountOptions []services.AccountOption
}

// OpenUserRepository connects the configured document store. The returned
// close func releases the underlying client.
func OpenUserRepository(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (repositories.UserRepository, func(context.Context) error, error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Warnw("[db] using in-memory user store; data is lost on restart")
		return repositories.NewMemoryUserRepository(), func(context.Context) error { return nil }, nil

	case "postgres":
		conn, err := db.OpenPostgres(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		log.Infow("[db] connected", "driver", "postgres")
		return repositories.NewPostgresUserRepository(conn), func(context.Context) error { return conn.Close() }, nil

	case "mongo":
		client, err := db.OpenMongo(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Database.Name).Collection(cfg.Database.Collection)
		repo := repositories.NewMongoUserRepository(coll)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		log.Infow("[db] connected", "driver", "mongo", "database", cfg.Database.Name, "collection", cfg.Database.Collection)
		return repo, client.Disconnect, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// NewSessionStore builds the cookie session store. Missing keys are generated,
// which invalidates existing sessions on restart.
func NewSessionStore(cfg config.SessionConfig, log *zap.SugaredLogger) *sessions.CookieStore {
	hashKey := []byte(cfg.HashKey)
	if len(hashKey) == 0 {
		log.Warnw("[session] no hash_key configured, generating an ephemeral one")
		hashKey = securecookie.GenerateRandomKey(64)
	}
	blockKey := []byte(cfg.BlockKey)
	if len(blockKey) == 0 {
		blockKey = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	// codecs reject cookies older than this, so it covers remembered sessions too
	store.MaxAge(int(max(cfg.MaxAge, cfg.RememberMaxAge) / time.Second))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   !cfg.Insecure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// NewRouter assembles the gin engine: recovery, CORS, request logs, the bearer
// gate and sliding sessions, then the account routes.
func NewRouter(cfg *config.Config, d Deps) *gin.Engine {
	accountService := services.NewAccountService(d.Users, d.Auth, d.Emails, d.Log, d.AccountOptions...)
	accountHandler := handlers.NewAccountHandler(accountService, d.Sessions, handlers.SessionOptions{
		Name:           cfg.Session.Name,
		MaxAge:         cfg.Session.MaxAge,
		RememberMaxAge: cfg.Session.RememberMaxAge,
	}, d.Log)
	healthHandler := handlers.NewHealthHandler(d.Users, d.Log)

	router := gin.New()
	// redirects are answered before middleware runs and would bypass the gate
	router.RedirectTrailingSlash = false
	router.Use(middleware.Recovery(d.Log))
	router.Use(corsMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RequestLogger(d.Log))
	router.Use(middleware.BearerGate(cfg.BearerToken, d.Log))
	router.Use(middleware.SlidingSession(d.Sessions, cfg.Session.Name, cfg.Session.RememberMaxAge, d.Log))

	return routes.SetupRoutes(router, accountHandler, healthHandler, cfg.Server.Swagger)
}

// Run serves until ctx is canceled, then shuts the listener down gracefully.
func Run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	users, closeStore, err := OpenUserRepository(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			log.Warnw("[db] close failed", "err", err)
		}
	}()

	emails := services.NewEmailService(services.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUser:     cfg.Email.SMTPUser,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromEmail:    cfg.Email.FromEmail,
		FromName:     cfg.Email.FromName,
		AppURL:       cfg.AppURL,
	}, log)

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(cfg, Deps{
		Users:    users,
		Auth:     services.NewAuthService(),
		Emails:   emails,
		Sessions: NewSessionStore(cfg.Session, log),
		Log:      log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("[http] listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("[http] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// corsMiddleware allows credentialed requests from the configured origins.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok && origin != "" {
			h := c.Writer.Header()
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			if req := c.GetHeader("Access-Control-Request-Headers"); req != "" {
				h.Set("Access-Control-Allow-Headers", req)
			} else {
				h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
