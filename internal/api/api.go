// Package api exposes a read-only inspection surface over the state
// registry. It never mutates the registry; every handler takes the shared
// mutex for the duration of its lookup.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"pkg.mon.icu/kioku/internal/state"
)

type Config struct {
	Port uint16
}

func NewConfig(port uint16) *Config {
	return &Config{Port: port}
}

type API struct {
	ctx      context.Context
	logger   *zap.SugaredLogger
	registry *state.Registry
	mu       *sync.Mutex
	router   *gin.Engine
	serv     *http.Server
}

func NewAPI(ctx context.Context, logger *zap.SugaredLogger, registry *state.Registry, mu *sync.Mutex, config *Config) *API {
	a := &API{
		ctx:      ctx,
		logger:   logger,
		registry: registry,
		mu:       mu,
		router:   gin.New(),
	}
	a.serv = &http.Server{Addr: fmt.Sprintf(":%d", config.Port), Handler: a.router}
	return a
}

func (a *API) Listen() {
	a.registerGetGuild()
	a.registerGetUser()
	a.registerGetMessage()
	a.registerGetStats()
	go func() {
		if err := a.serv.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				a.logger.Errorf("Server returned with error: %s.", err)
			}
		}
	}()
}

func (a *API) Close() error {
	return a.serv.Close()
}
