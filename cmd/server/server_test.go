package main

import (
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/marben/bbrot"
	"github.com/marben/bbrot/render"
)

func testScheduler() *renderScheduler {
	return newRenderScheduler(render.WithSeed(1), render.WithWorkers(2))
}

func TestRenderHandler(t *testing.T) {
	mux := newMux(testScheduler(), nil)

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"ok", "width=32&height=24&points=2000&maxiter=2000", http.StatusOK},
		{"32 bit rotated", "width=32&height=24&points=2000&precision=32&rotate=90", http.StatusOK},
		{"view", "width=16&height=16&points=500&view=cardioid", http.StatusOK},
		{"missing width", "height=10&points=10", http.StatusBadRequest},
		{"zero height", "width=10&height=0&points=10", http.StatusBadRequest},
		{"too large", "width=100000&height=100000&points=1", http.StatusBadRequest},
		{"pixel count wraps", "width=4294967296&height=4294967296&points=50", http.StatusBadRequest},
		{"bad precision", "width=10&height=10&points=10&precision=16", http.StatusBadRequest},
		{"unknown view", "width=10&height=10&points=10&view=moon", http.StatusBadRequest},
		{"no points", "width=10&height=10&points=0", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/render?"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Content-Type %q", ct)
			}
			if _, err := png.Decode(rec.Body); err != nil {
				t.Errorf("png.Decode: %v", err)
			}
		})
	}
}

func TestRenderHandler_Busy(t *testing.T) {
	rs := testScheduler()
	cfg, err := bbrot.NewConfig(10, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rs.begin(cfg, 64); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	newMux(rs, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/render?width=10&height=10&points=10", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("status %d, want %d", rec.Code, http.StatusConflict)
	}

	st := rs.status()
	if !st.Running || st.Width != 10 || st.Precision != 64 {
		t.Errorf("status %+v", st)
	}

	rs.end()
	if rs.status().Running {
		t.Error("still running after end")
	}
}

func TestProgressFeed(t *testing.T) {
	rs := testScheduler()
	srv := httptest.NewServer(newMux(rs, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("websocket.Dial: %v", err)
	}
	defer c.CloseNow()

	var st status
	if err := wsjson.Read(ctx, c, &st); err != nil {
		t.Fatalf("wsjson.Read: %v", err)
	}
	if st.Running || st.Target != 0 {
		t.Errorf("idle status %+v", st)
	}

	cfg, err := bbrot.NewConfig(16, 16, 300, bbrot.WithMaxIterations(1000))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rs.render(cfg, 32); err != nil {
		t.Fatalf("render: %v", err)
	}

	// the feed keeps ticking, wait for the finished render to show up
	for {
		if err := wsjson.Read(ctx, c, &st); err != nil {
			t.Fatalf("wsjson.Read: %v", err)
		}
		if st.Target == 300 {
			break
		}
	}
	if st.Running || st.Claimed != 300 || st.Finished != 1 || st.Precision != 32 {
		t.Errorf("finished status %+v", st)
	}

	c.Close(websocket.StatusNormalClosure, "")
}

func TestProgressFeed_Origins(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		ok      bool
	}{
		{"no origin header", nil, "", true},
		{"foreign origin rejected", nil, "http://other.example", false},
		{"allowed pattern", []string{"*.example"}, "http://other.example", true},
		{"pattern for another host", []string{"viewer.example"}, "http://other.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(newMux(testScheduler(), tt.origins))
			defer srv.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			opts := &websocket.DialOptions{HTTPHeader: http.Header{}}
			if tt.origin != "" {
				opts.HTTPHeader.Set("Origin", tt.origin)
			}
			c, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", opts)
			if !tt.ok {
				if err == nil {
					c.CloseNow()
					t.Fatal("expected the handshake to fail")
				}
				if resp == nil || resp.StatusCode != http.StatusForbidden {
					t.Errorf("response %v, want 403", resp)
				}
				return
			}
			if err != nil {
				t.Fatalf("websocket.Dial: %v", err)
			}
			c.CloseNow()
		})
	}
}
