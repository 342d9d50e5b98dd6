package counterpage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rafbgarcia/counterpage/internal/config"
	"github.com/rafbgarcia/counterpage/internal/conventions"
	"github.com/rafbgarcia/counterpage/internal/metrics"
	"github.com/rafbgarcia/counterpage/renderer"
	"github.com/rafbgarcia/counterpage/router"
	"github.com/rafbgarcia/counterpage/upstream"
)

// App holds everything needed to serve the page, built once at startup.
type App struct {
	cfg      config.Config
	log      *Logger
	client   *upstream.Client
	renderer *renderer.Renderer
	metrics  *metrics.Metrics
	router   *router.Router
}

// NewApp wires the upstream client, renderer, metrics and router from cfg.
// When cfg.TemplatesDir is set, templates are read from disk.
func NewApp(cfg config.Config, log *Logger) (*App, error) {
	m := metrics.New()

	client, err := upstream.New(cfg.APIOrigin,
		upstream.WithHTTPClient(&http.Client{Transport: metrics.NewTransport(http.DefaultTransport, m)}),
		upstream.WithTimeout(cfg.UpstreamTimeout),
	)
	if err != nil {
		return nil, err
	}

	var r *renderer.Renderer
	if cfg.TemplatesDir != "" {
		r, err = renderer.NewFromDir(cfg.TemplatesDir)
	} else {
		r, err = renderer.New()
	}
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		client:   client,
		renderer: r,
		metrics:  m,
	}
	a.router = router.New(RequestLogger(log))
	a.router.Get(conventions.PagePath, a.servePage)
	return a, nil
}

// Handler returns the page server's HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Renderer returns the page renderer, for template reloads in dev mode.
func (a *App) Renderer() *renderer.Renderer {
	return a.renderer
}

// Metrics returns the app's metrics.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// ListenAndServe listens on the configured port and calls Serve.
func (a *App) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", a.cfg.Port, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves the page on ln, plus metrics on cfg.MetricsAddr when set, until
// ctx is canceled. In-flight requests get cfg.ShutdownTimeout to finish.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	servers := []*http.Server{{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          a.log.StdLogger(),
	}}
	listeners := []net.Listener{ln}

	if a.cfg.MetricsAddr != "" {
		mln, err := net.Listen("tcp", a.cfg.MetricsAddr)
		if err != nil {
			ln.Close()
			return fmt.Errorf("listen on metrics addr %s: %w", a.cfg.MetricsAddr, err)
		}
		mux := router.New(RequestLogger(a.log.With("listener", "metrics")))
		mux.Handle("/metrics", a.metrics.Handler())
		servers = append(servers, &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          a.log.StdLogger(),
		})
		listeners = append(listeners, mln)
		a.log.Info("metrics enabled", "addr", mln.Addr().String())
	}

	errCh := make(chan error, len(servers))
	for i, srv := range servers {
		go func(srv *http.Server, ln net.Listener) {
			errCh <- srv.Serve(ln)
		}(srv, listeners[i])
	}

	a.log.Info("serving page",
		"addr", ln.Addr().String(),
		"api_origin", a.cfg.APIOrigin,
		"counter_url", a.client.URL(),
		"hostname", a.cfg.Hostname,
	)

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown requested")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
			serveErr = fmt.Errorf("shutdown: %w", err)
		}
	}
	return serveErr
}
