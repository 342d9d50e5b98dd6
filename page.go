package counterpage

import (
	"context"
	"net/http"

	"github.com/rafbgarcia/counterpage/internal/conventions"
	"github.com/rafbgarcia/counterpage/internal/metrics"
	"github.com/rafbgarcia/counterpage/renderer"
)

// Load fetches the counter and assembles the props for one page render.
// It fails when the counter cannot be fetched or decoded; it never returns
// props with an empty counter.
func (a *App) Load(ctx context.Context) (renderer.Props, error) {
	c, err := a.client.Fetch(ctx)
	if err != nil {
		return renderer.Props{}, err
	}
	return renderer.Props{
		Hostname: a.cfg.Hostname,
		Counter:  c.Value,
	}, nil
}

func (a *App) servePage(w http.ResponseWriter, r *http.Request) {
	c := FromRequest(r, a.log)
	plain := conventions.IsPlainTextClient(r.UserAgent())

	w.Header().Set("Cache-Control", "no-store")

	props, err := a.Load(r.Context())
	if err != nil {
		c.Log.Error("counter unavailable",
			"hostname", a.cfg.Hostname,
			"origin", a.cfg.APIOrigin,
			"err", err,
		)
		a.metrics.PageRendered(metrics.ResultFallback)
		a.writeFallback(w, plain)
		return
	}

	a.metrics.PageRendered(metrics.ResultOK)
	if plain {
		writeText(w, http.StatusOK, renderer.RenderText(props))
		return
	}

	html, err := a.renderer.Render(props)
	if err != nil {
		c.Log.Error("page render failed", "err", err)
		http.Error(w, "Page Template Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, html)
}

// writeFallback answers 502 with a page that still shows the hostname.
func (a *App) writeFallback(w http.ResponseWriter, plain bool) {
	if plain {
		writeText(w, http.StatusBadGateway, renderer.RenderFallbackText(a.cfg.Hostname))
		return
	}
	html, err := a.renderer.RenderFallback(a.cfg.Hostname)
	if err != nil {
		http.Error(w, "Page Template Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusBadGateway, html)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

func writeText(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
