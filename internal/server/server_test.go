package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kuldippatel.dev/dargo/internal/auth"
	"kuldippatel.dev/dargo/internal/config"
	"kuldippatel.dev/dargo/internal/input"
)

const waitFor = 2 * time.Second

type fakeRegistrar struct {
	mu         sync.Mutex
	registered int
	closed     int
	events     []input.Event
}

type fakeSink struct {
	reg *fakeRegistrar
}

func (r *fakeRegistrar) Register(caps input.Capabilities) (input.Sink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered++
	return &fakeSink{reg: r}, nil
}

func (s *fakeSink) Emit(evType, code uint16, value int32) error {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	s.reg.events = append(s.reg.events, input.Event{Type: evType, Code: code, Value: value})
	return nil
}

func (s *fakeSink) Close() error {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	s.reg.closed++
	return nil
}

func (r *fakeRegistrar) counts() (registered, closed, events int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registered, r.closed, len(r.events)
}

func newTestServer(t *testing.T, cfg *config.Config, reg input.Registrar) (*Server, *httptest.Server) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	s := New(zap.NewNop().Sugar(), cfg, reg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func socketURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/socket"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(text)))
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil, &fakeRegistrar{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 0, body.Sessions)
}

func TestAssets(t *testing.T) {
	_, ts := newTestServer(t, nil, &fakeRegistrar{})

	for path, contentType := range map[string]string{
		"/":          "text/html",
		"/index.css": "text/css",
		"/index.js":  "application/javascript",
	} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, resp.Header.Get("Content-Type"), contentType, path)
	}

	resp, err := http.Get(ts.URL + "/missing.js")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	reg := &fakeRegistrar{}
	s, ts := newTestServer(t, nil, reg)

	conn := dial(t, socketURL(ts))
	require.Eventually(t, func() bool { return s.SessionCount() == 1 }, waitFor, 10*time.Millisecond)

	// Ignored: no trackpad yet, undecodable, binary.
	send(t, conn, `{"t":"tu","d":[{"id":1,"x":1,"y":1}]}`)
	send(t, conn, `not json`)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}))

	send(t, conn, `{"t":"d","d":{"width":800,"height":600,"resolution":4}}`)
	require.Eventually(t, func() bool {
		registered, _, _ := reg.counts()
		return registered == 1
	}, waitFor, 10*time.Millisecond)

	_, _, events := reg.counts()
	assert.Zero(t, events)

	send(t, conn, `{"t":"tu","d":[{"id":1,"x":10,"y":20}]}`)
	send(t, conn, `{"t":"te","d":[7]}`)
	send(t, conn, `{"t":"te","d":[1]}`)

	require.Eventually(t, func() bool {
		_, _, events := reg.counts()
		return events > 0
	}, waitFor, 10*time.Millisecond)

	// The socket survives a rejected message.
	send(t, conn, `{"t":"tu","d":[{"id":2,"x":5,"y":5}]}`)
	require.Eventually(t, func() bool {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		for _, ev := range reg.events {
			if ev.Type == input.EvAbs && ev.Code == input.AbsMtPositionX && ev.Value == 5 {
				return true
			}
		}
		return false
	}, waitFor, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		_, closed, _ := reg.counts()
		return closed == 1 && s.SessionCount() == 0
	}, waitFor, 10*time.Millisecond)
}

func TestInvalidDimensionsKeepSocket(t *testing.T) {
	reg := &fakeRegistrar{}
	_, ts := newTestServer(t, nil, reg)

	conn := dial(t, socketURL(ts))
	send(t, conn, `{"t":"d","d":{"width":0,"height":600,"resolution":4}}`)
	send(t, conn, `{"t":"d","d":{"width":10,"height":10,"resolution":0}}`)

	require.Eventually(t, func() bool {
		registered, _, _ := reg.counts()
		return registered == 1
	}, waitFor, 10*time.Millisecond)
}

func TestDeviceFailureClosesSocket(t *testing.T) {
	reg := input.RegistrarFunc(func(input.Capabilities) (input.Sink, error) {
		return nil, errors.New("permission denied")
	})
	_, ts := newTestServer(t, nil, reg)

	conn := dial(t, socketURL(ts))
	send(t, conn, `{"t":"d","d":{"width":800,"height":600,"resolution":4}}`)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	_, _, err := conn.ReadMessage()

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseInternalServerErr, closeErr.Code)
}

func TestSocketAuth(t *testing.T) {
	cfg := config.Default()
	cfg.AuthSecret = "secret"
	_, ts := newTestServer(t, cfg, &fakeRegistrar{})

	_, resp, err := websocket.DefaultDialer.Dial(socketURL(ts), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(socketURL(ts)+"?token=nope", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := auth.Issue("secret", time.Minute)
	require.NoError(t, err)

	dial(t, socketURL(ts)+"?token="+token)

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(socketURL(ts), header)
	require.NoError(t, err)
	conn.Close()

	// The client and health probe stay public.
	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeShutdownClosesSessions(t *testing.T) {
	reg := &fakeRegistrar{}
	s := New(zap.NewNop().Sugar(), config.Default(), reg)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, listener)
	}()

	conn := dial(t, "ws://"+listener.Addr().String()+"/api/socket")
	send(t, conn, `{"t":"d","d":{"width":800,"height":600,"resolution":4}}`)
	require.Eventually(t, func() bool {
		registered, _, _ := reg.counts()
		return registered == 1
	}, waitFor, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("server did not shut down")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)

	require.Eventually(t, func() bool {
		_, closed, _ := reg.counts()
		return closed == 1
	}, waitFor, 10*time.Millisecond)
}
