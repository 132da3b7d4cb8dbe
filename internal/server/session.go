package server

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kuldippatel.dev/dargo/internal/input"
	"kuldippatel.dev/dargo/internal/message"
	"kuldippatel.dev/dargo/internal/trackpad"
)

const (
	readLimit    = 64 * 1024
	closeTimeout = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Session owns one socket and, once the client has sent its dimensions,
// one trackpad.
type Session struct {
	ID string

	log       *zap.SugaredLogger
	conn      *websocket.Conn
	registrar input.Registrar
	opts      []trackpad.Option
	engine    *trackpad.Engine

	stopOnce sync.Once
}

func (s *Server) handleSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	log := s.log.With("session", id, "remote", c.ClientIP())

	opts := []trackpad.Option{trackpad.WithLogger(log)}
	if s.config.Extended {
		opts = append(opts, trackpad.WithExtendedReporting())
	}

	session := &Session{
		ID:        id,
		log:       log,
		conn:      conn,
		registrar: s.registrar,
		opts:      opts,
	}

	s.addSession(session)
	defer s.removeSession(session)

	log.Info("client connected")
	session.Run()
	log.Info("client disconnected")
}

// Run reads messages until the socket closes or the trackpad fails.
func (s *Session) Run() {
	defer s.cleanup()

	s.conn.SetReadLimit(readLimit)

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			switch {
			case errors.As(err, &closeErr):
				s.log.Debugw("client closed socket", "code", closeErr.Code, "text", closeErr.Text)
			case errors.Is(err, net.ErrClosed):
			default:
				s.log.Warnw("read failed", "error", err)
			}
			return
		}

		if msgType != websocket.TextMessage {
			s.log.Debugw("ignoring non-text frame", "type", msgType)
			continue
		}

		msg, err := message.Decode(data)
		if err != nil {
			s.log.Warnw("ignoring message", "error", err)
			continue
		}

		if err := s.handle(msg); err != nil {
			s.log.Errorw("trackpad failed, closing connection", "error", err)
			s.closeWith(websocket.CloseInternalServerErr, "trackpad unavailable")
			return
		}
	}
}

// handle returns only fatal errors.
func (s *Session) handle(msg message.Message) error {
	if s.engine == nil {
		dims, ok := msg.(message.DimensionsUpdate)
		if !ok {
			s.log.Debugw("ignoring message before dimensions", "tag", msg.Tag())
			return nil
		}

		engine, err := trackpad.New(s.registrar, trackpad.Geometry(dims.DimensionsData), s.opts...)
		if err != nil {
			if trackpad.IsFatal(err) {
				return err
			}
			s.log.Warnw("ignoring dimensions", "error", err)
			return nil
		}

		s.engine = engine
		s.log.Infow("trackpad created", "width", dims.Width, "height", dims.Height, "resolution", dims.Resolution)
		return nil
	}

	if err := s.engine.ProcessMessage(msg); err != nil {
		if trackpad.IsFatal(err) {
			return err
		}
		s.log.Warnw("ignoring message", "tag", msg.Tag(), "error", err)
	}
	return nil
}

func (s *Session) closeWith(code int, reason string) {
	deadline := time.Now().Add(closeTimeout)
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}

// Stop asks the client to go away and unblocks Run.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.closeWith(websocket.CloseGoingAway, "server shutting down")
		s.conn.Close()
	})
}

func (s *Session) cleanup() {
	if s.engine != nil {
		if err := s.engine.Close(); err != nil {
			s.log.Warnw("failed to close trackpad", "error", err)
		}
		s.engine = nil
	}
	s.stopOnce.Do(func() {
		s.conn.Close()
	})
}
