// Package site serves the embedded landing page.
package site

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static/*
var staticFS embed.FS

// Register attaches the landing page routes to r.
// Routes:
//
//	GET /          -> index.html
//	GET /static/*  -> page assets
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		page, err := staticFS.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "page not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(FS())))
}

// FS returns an http.FileSystem for the embedded assets.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}
