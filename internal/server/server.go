package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/agridocs/cloudapi/internal/config"
	"github.com/agridocs/cloudapi/internal/service"
	"github.com/gin-gonic/gin"
	cors "github.com/rs/cors/wrapper/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server serves the document ingestion and retrieval API.
type Server struct {
	cnf *config.Config
	svc *service.DocumentService
}

func New(cnf *config.Config, svc *service.DocumentService) *Server {
	return &Server{
		cnf: cnf,
		svc: svc,
	}
}

// Router builds the gin engine with all middleware and routes. Health
// endpoints stay outside the API-key check; CORS is wide open for the web
// and Power Apps consumers.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger())
	router.Use(Recovery())
	router.Use(cors.AllowAll())

	h := newHandler(s.svc)

	router.GET("/health", h.Health)
	router.GET("/health/full", h.HealthFull)

	api := router.Group("/", APIKeyAuth(s.cnf.APIKey))
	api.POST("/ingest", h.Ingest)
	api.GET("/records", h.Records)
	api.GET("/records/export.csv", h.ExportCSV)
	api.GET("/audit/ingest", h.Audit)

	return router
}

// Start runs the HTTP server until SIGINT or SIGTERM, then drains in-flight
// requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:    ":" + s.cnf.Port,
		Handler: s.Router(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("http server error: %v", err)
		}
	}()

	logrus.Infof("http server listening on %s", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, unix.SIGINT, unix.SIGTERM)
	<-quit

	logrus.Info("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
