// Package router provides the HTTP router used by the page server. It wraps
// chi so GET routes also answer HEAD and unknown paths get a plain 404.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router is the HTTP router for counterpage.
type Router struct {
	mux chi.Router
}

// New creates a Router with panic recovery and HEAD-to-GET routing applied.
// Middleware passed in runs outermost, in order, so it also sees the 500
// written for a recovered panic.
func New(mws ...func(http.Handler) http.Handler) *Router {
	mux := chi.NewRouter()
	mux.Use(mws...)
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.GetHead)

	mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	return &Router{mux: mux}
}

// Get registers a handler for GET (and HEAD) requests at the given pattern.
func (r *Router) Get(pattern string, handler http.HandlerFunc) {
	r.mux.Get(pattern, handler)
}

// Handle registers an http.Handler at the given pattern.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
