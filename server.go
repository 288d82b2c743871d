package main

import (
	"context"
	"net/http"
	"time"

	"ShashkiAI/config"
	"ShashkiAI/game/network"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func hubSettings(cfg config.Config) (network.Settings, error) {
	side, err := cfg.AISide()
	if err != nil {
		return network.Settings{}, err
	}
	return network.Settings{
		Rules:          cfg.Rules,
		Evaluator:      cfg.AI.Evaluator,
		Search:         cfg.AI.Search,
		Depth:          cfg.AI.Depth,
		MaxDepth:       cfg.AI.MaxDepth,
		AISide:         side,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IdleRoomTTL:    time.Duration(cfg.Server.IdleRoomSeconds) * time.Second,
	}, nil
}

func newRouter(hub *network.Hub) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	hub.Routes(r)
	return r
}

// requestLogger logs every request through zerolog instead of gin's own
// writer.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var e *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			e = log.Error()
		case status >= http.StatusBadRequest:
			e = log.Warn()
		default:
			e = log.Debug()
		}
		if len(c.Errors) > 0 {
			e = e.Str("errors", c.Errors.String())
		}
		e.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("took", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("HTTP Request")
	}
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, cfg config.Config) error {
	settings, err := hubSettings(cfg)
	if err != nil {
		return err
	}
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: newRouter(network.NewHub(settings)),
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
