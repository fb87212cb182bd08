package httpservice

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/application"
	interfaces "github.com/Bedrock-Technology/uniBTC/internal/interface"
	"github.com/Bedrock-Technology/uniBTC/internal/interface/http/handlers"
	"github.com/Bedrock-Technology/uniBTC/internal/interface/http/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Port uint32
	// Roles grants operator/treasury roles per account, keyed by account.
	Roles map[string][]string
}

func (c Config) Validate() error {
	if c.Port == 0 {
		return fmt.Errorf("missing port")
	}
	return nil
}

func (c Config) address() string {
	return fmt.Sprintf(":%d", c.Port)
}

type service struct {
	config Config
	server *http.Server
}

func NewService(
	config Config, appSvc application.Service, adminSvc application.AdminService,
) (interfaces.Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}

	router := mux.NewRouter()
	router.Use(middleware.PanicRecovery, middleware.Logger, middleware.Auth(config.Roles))
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	v1 := router.PathPrefix("/v1").Subrouter()
	handlers.NewUserHandler(appSvc).Register(v1)
	handlers.NewAdminHandler(adminSvc).Register(v1.PathPrefix("/admin").Subrouter())

	return &service{
		config: config,
		server: &http.Server{
			Addr:         config.address(),
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}, nil
}

func (s *service) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server exited")
		}
	}()
	log.Infof("started listening at %s", s.config.address())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to shut down http server gracefully")
	}
	log.Info("stopped http server")
}
