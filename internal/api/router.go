package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(app.Log))

	r.Get("/", app.IndexHandler)
	r.Post("/upload", app.UploadHandler)
	r.Get("/image/{id}", app.ImageDetailsHandler)
	r.Post("/image/{id}/delete", app.DeleteImageHandler)
	r.Post("/part/{id}/update", app.UpdatePartHandler)

	fileServer := http.FileServer(http.Dir(app.Storage.StaticDir()))
	r.Handle("/static/*", http.StripPrefix("/static", fileServer))

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
