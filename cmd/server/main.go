package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tahcohcat/newsbreeze/config"
	"github.com/tahcohcat/newsbreeze/internal/api"
	"github.com/tahcohcat/newsbreeze/internal/cache"
	"github.com/tahcohcat/newsbreeze/internal/feed"
	"github.com/tahcohcat/newsbreeze/internal/logger"
	"github.com/tahcohcat/newsbreeze/internal/session"
	"github.com/tahcohcat/newsbreeze/internal/summarizer"
	"github.com/tahcohcat/newsbreeze/internal/tts"
	"github.com/tahcohcat/newsbreeze/internal/websocket"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	backend, err := summarizer.NewBackend(cfg)
	if err != nil {
		log.WithError(err).Error("failed to create summarization backend")
		os.Exit(1)
	}
	sum := summarizer.NewService(backend, cfg.Summarizer.MinInput, cfg.Summarizer.MaxLength)

	speaker := buildSpeaker(cfg, log)
	sessions := session.NewStore(cfg.Session.Secret)
	fetcher := feed.NewFetcher(&cfg.Feeds)

	r := mux.NewRouter()
	hub := websocket.RegisterRoutes(r)

	handler := api.NewHandler(cfg, fetcher, sum, speaker, sessions, hub)
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	api.RegisterRoutes(apiRouter, handler)

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("./web/static/"))))
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./web/templates/index.html")
	}).Methods("GET")

	// CORS setup for development
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	log.Info(fmt.Sprintf("📰 NewsBreeze starting on port %s", port))
	log.Info(fmt.Sprintf("📍 Open http://localhost:%s in your browser", port))

	if err := http.ListenAndServe(":"+port, c.Handler(r)); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

// buildSpeaker wires the speech pipeline. A missing backend or bad
// voice configuration blocks only the speech feature, not the app.
func buildSpeaker(cfg *config.Config, log *logger.Log) api.Speaker {
	if !cfg.Tts.Enabled {
		log.Info("speech is disabled in configuration")
		return nil
	}

	registry, err := tts.NewRegistry(&cfg.Tts)
	if err != nil {
		log.WithError(err).Error("voice configuration invalid, speech disabled")
		return nil
	}

	backend, err := tts.NewSynthesizer(context.Background(), &cfg.Tts)
	if err != nil {
		log.WithError(err).Warn("speech backend unavailable, speech disabled")
		return nil
	}

	var clips tts.ClipCache
	if cfg.Cache.Enabled {
		audioCache, err := cache.NewAudioCache(cfg.Cache.Path, time.Duration(cfg.Cache.TTLMin)*time.Minute)
		if err != nil {
			log.WithError(err).Warn("audio cache unavailable, continuing without it")
		} else {
			if err := audioCache.Purge(); err != nil {
				log.WithError(err).Warn("failed to purge expired clips")
			}
			clips = audioCache
		}
	}

	log.Info(fmt.Sprintf("speech ready via %s (%d voices)", backend.Name(), len(registry.List())))
	return tts.NewService(backend, registry, clips, cfg.Tts.MaxChars)
}
