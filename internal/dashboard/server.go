package dashboard

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cotflow/config"
	"cotflow/logger"
)

// Server hosts the Gin-powered read API over the published dataset.
type Server struct {
	cfg        config.ServerConfig
	log        *logger.Log
	store      *Store
	appName    string
	appVersion string
	httpServer *http.Server
}

// NewServer constructs the read API server when the feature is enabled.
// When disabled the returned server is nil.
func NewServer(cfg config.ServerConfig, store *Store, appName, appVersion string) (*Server, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	cfg.Address = normalizeAddress(cfg.Address)

	return &Server{
		cfg:        cfg,
		log:        logger.GetLogger(),
		store:      store,
		appName:    appName,
		appVersion: appVersion,
	}, nil
}

// Run starts the HTTP server and blocks until the provided context is
// cancelled or the underlying HTTP server exits with an error.
func (s *Server) Run(ctx context.Context) error {
	if s == nil {
		return nil
	}

	router, err := s.buildRouter()
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:    s.cfg.Address,
		Handler: router,
	}

	s.log.WithComponent("dashboard").WithFields(logger.Fields{
		"address": s.cfg.Address,
	}).Info("read API server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return err
	}
}

// Address reports the network address the server listens on.
func (s *Server) Address() string {
	if s == nil {
		return ""
	}
	return s.cfg.Address
}

func (s *Server) buildRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	router.GET("/", func(c *gin.Context) {
		payload := gin.H{
			"service": s.appName,
			"version": s.appVersion,
		}
		if snap, err := s.store.Snapshot(); err == nil {
			payload["snapshot"] = gin.H{
				"id":           snap.ID,
				"key":          snap.Key,
				"layout":       snap.Layout,
				"record_count": len(snap.Records),
				"ingested_at":  snap.IngestedAt.Format(time.RFC3339Nano),
			}
		}
		c.JSON(http.StatusOK, payload)
	})

	router.GET("/api/assets", func(c *gin.Context) {
		assets, err := s.store.Assets()
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"assets": assets})
	})

	router.GET("/api/assets/:name", func(c *gin.Context) {
		series, err := s.store.Series(c.Param("name"))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"series": series})
	})

	router.GET("/api/assets/:name/summary", func(c *gin.Context) {
		summary, err := s.store.Summary(c.Param("name"))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	return router, nil
}

// statusFor keeps "never ingested" and "no such asset" as distinct 404
// bodies so consumers can tell an absent dataset apart from a miss.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNoDataset), errors.Is(err, ErrAssetNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)

	if addr == "" {
		return "0.0.0.0:8090"
	}

	if strings.Contains(addr, "://") {
		if parsed, err := url.Parse(addr); err == nil {
			if host := parsed.Host; host != "" {
				addr = host
			} else if parsed.Opaque != "" {
				addr = parsed.Opaque
			}
		}
	}

	if strings.HasPrefix(addr, ":") {
		if len(addr) > 1 && addr[1] >= '0' && addr[1] <= '9' {
			return "0.0.0.0" + addr
		}
	}

	host, port, err := net.SplitHostPort(addr)
	if err == nil {
		if host == "" || host == "*" {
			host = "0.0.0.0"
		}
		if port == "" {
			port = "8090"
		}
		return net.JoinHostPort(host, port)
	}

	if ip := net.ParseIP(addr); ip != nil {
		return net.JoinHostPort(addr, "8090")
	}

	if !strings.Contains(addr, ":") {
		return net.JoinHostPort(addr, "8090")
	}

	return addr
}
