package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/marben/bbrot"
	"github.com/marben/bbrot/tone"
)

const (
	progressInterval = 250 * time.Millisecond
	maxPixels        = 8192 * 8192
)

// webServer serves rendered images on /render and render progress over websocket on /ws.
// origins lists the host patterns allowed to open the websocket besides the server's own host.
func webServer(port int, origins []string, rs *renderScheduler) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newMux(rs, origins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://localhost:%d", port)
	return srv
}

func newMux(rs *renderScheduler, origins []string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /render", renderHandler(rs))
	mux.HandleFunc("/ws", progressHandler(rs, origins))
	return mux
}

// renderRequest is decoded from the query string of /render
type renderRequest struct {
	cfg       bbrot.Config
	precision int
	rotate    float64
}

func parseRenderRequest(q url.Values) (renderRequest, error) {
	req := renderRequest{precision: 64}

	width, err := strconv.Atoi(q.Get("width"))
	if err != nil {
		return req, fmt.Errorf("width: %w", err)
	}
	height, err := strconv.Atoi(q.Get("height"))
	if err != nil {
		return req, fmt.Errorf("height: %w", err)
	}
	if width > 0 && height > 0 && width > maxPixels/height {
		return req, fmt.Errorf("%dx%d is larger than %d pixels", width, height, maxPixels)
	}
	points, err := strconv.ParseUint(q.Get("points"), 10, 64)
	if err != nil {
		return req, fmt.Errorf("points: %w", err)
	}

	var opts []bbrot.ConfigOption
	if v := q.Get("view"); v != "" {
		view, err := bbrot.ViewByName(v)
		if err != nil {
			return req, err
		}
		opts = append(opts, bbrot.WithView(view))
	}
	if v := q.Get("maxiter"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("maxiter: %w", err)
		}
		opts = append(opts, bbrot.WithMaxIterations(n))
	}
	if v := q.Get("precision"); v != "" {
		if req.precision, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("precision: %w", err)
		}
	}
	if v := q.Get("rotate"); v != "" {
		if req.rotate, err = strconv.ParseFloat(v, 64); err != nil {
			return req, fmt.Errorf("rotate: %w", err)
		}
	}

	req.cfg, err = bbrot.NewConfig(width, height, points, opts...)
	return req, err
}

// renderHandler renders the requested configuration and replies with a png
func renderHandler(rs *renderScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseRenderRequest(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		field, err := rs.render(req.cfg, req.precision)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		img, err := tone.Gray(field)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, tone.Rotate(img, req.rotate)); err != nil {
			log.Printf("png.Encode: %v", err)
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, bbrot.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, errBusy):
		return http.StatusConflict
	case errors.Is(err, tone.ErrNoHits):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// progressHandler streams the scheduler status as json until the client goes away
func progressHandler(rs *renderScheduler, origins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: origins,
		})
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		// we never read, CloseRead handles control frames and cancels ctx on close
		ctx := c.CloseRead(r.Context())
		if err := streamProgress(ctx, c, rs); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("progress stream to %s: %v", r.RemoteAddr, err)
			return
		}
		c.Close(websocket.StatusNormalClosure, "")
	}
}

func streamProgress(ctx context.Context, c *websocket.Conn, rs *renderScheduler) error {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		if err := wsjson.Write(ctx, c, rs.status()); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
