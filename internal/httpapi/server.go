// Package httpapi exposes a small gin surface over the Manager, for
// operators and manual testing. It does not implement any payment protocol;
// it only reflects the Manager's existing API over HTTP. The select endpoint
// runs a real selection and locks the chosen outpoints; the others only read.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cosmasken/kaspa402/internal/manager"
)

const (
	readTimeout  = 30 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second
)

// Server wraps an http.Server whose handler is a gin engine bound to a
// Manager.
type Server struct {
	logger *zap.Logger
	mgr    *manager.Manager
	engine *gin.Engine
	hs     *http.Server
}

func NewServer(host string, port int, logger *zap.Logger, mgr *manager.Manager) *Server {
	s := &Server{logger: logger, mgr: mgr}
	s.initGin()
	s.hs = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      s.engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

func (s *Server) initGin() {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(logMiddleware(s.logger), corsMiddleware(), gin.Recovery())

	engine.GET("/wallet/:address/health", s.walletHealthHandler())
	engine.GET("/wallet/:address/utxos", s.utxoListHandler())
	engine.GET("/wallet/:address/consolidation", s.consolidationHandler())
	engine.POST("/wallet/:address/select", s.selectHandler())
	s.engine = engine
}

func (s *Server) Run() {
	go func() {
		if err := s.hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("listen", zap.Error(err))
		}
	}()
	s.logger.Info("listen", zap.String("addr", s.hs.Addr))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.hs.Shutdown(ctx)
}
