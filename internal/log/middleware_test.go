package log

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	testlogr "github.com/go-logr/logr/testing"
)

func TestMiddleware(t *testing.T) {
	logger := testlogr.NewTestLogger(t)

	var fromCtx bool
	h := Middleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromContext(r.Context()).GetSink() != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !fromCtx {
		t.Error("logger is not available from the request context")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("unexpected status: %d", rec.Code)
	}
}

func TestMiddleware_Upgrade(t *testing.T) {
	h := Middleware(testlogr.NewTestLogger(t), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "not a hijacker", http.StatusInternalServerError)
			return
		}
		conn, rw, err := hj.Hijack()
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()
		_, _ = rw.WriteString("HTTP/1.1 101 Switching Protocols\r\nUpgrade: bookshelf-test\r\nConnection: Upgrade\r\n\r\n")
		_ = rw.Flush()
	}))
	ts := httptest.NewServer(h)
	defer ts.Close()

	conn, err := net.Dial("tcp", ts.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/graphql", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "bookshelf-test")
	if err := req.Write(conn); err != nil {
		t.Fatal(err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if v := resp.Header.Get("Upgrade"); v != "bookshelf-test" {
		t.Errorf("unexpected upgrade header: %s", v)
	}
}

func TestMiddleware_Flush(t *testing.T) {
	h := Middleware(testlogr.NewTestLogger(t), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer does not implement http.Flusher")
			return
		}
		_, _ = w.Write([]byte("partial"))
		f.Flush()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))

	if !rec.Flushed {
		t.Error("flush did not reach the underlying writer")
	}
}
