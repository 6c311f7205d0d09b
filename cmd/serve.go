package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riftworks/recap-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored KPI documents and recaps over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, st, err := initPipeline(ctx, false, true)
		if err != nil {
			return err
		}
		defer st.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/kpis/{puuid}/{year}", func(w http.ResponseWriter, req *http.Request) {
			puuid := chi.URLParam(req, "puuid")
			year := chi.URLParam(req, "year")

			body, err := st.GetObject(req.Context(), store.KpiKey(puuid, year))
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "kpis not computed for this player/year"})
				return
			}
			if err != nil {
				zap.L().Error("serve: load kpis", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
		})

		r.Get("/recaps/{puuid}/{year}", func(w http.ResponseWriter, req *http.Request) {
			puuid := chi.URLParam(req, "puuid")
			year := chi.URLParam(req, "year")

			body, err := st.GetObject(req.Context(), store.RecapKey(puuid, year))
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no recap stored for this player/year"})
				return
			}
			if err != nil {
				zap.L().Error("serve: load recap", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
		})

		r.Post("/recaps/{puuid}/{year}", func(w http.ResponseWriter, req *http.Request) {
			puuid := chi.URLParam(req, "puuid")
			year := chi.URLParam(req, "year")

			recap, err := p.Recap(req.Context(), puuid, year)
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "kpis not computed for this player/year"})
				return
			}
			if err != nil {
				zap.L().Error("serve: generate recap",
					zap.String("puuid", puuid),
					zap.String("year", year),
					zap.Error(err),
				)
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": "recap generation failed"})
				return
			}
			writeJSON(w, http.StatusOK, recap)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
