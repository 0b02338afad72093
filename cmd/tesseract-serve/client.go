package main

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tesseract/logger"
	"github.com/lixenwraith/tesseract/sim"
)

// WebSocket settings
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// client owns one connection and one session
// readPump is the only writer of the command state; framePump is the only
// sender on send
type client struct {
	srv     *server
	conn    *websocket.Conn
	session *sim.Session
	send    chan []byte
	done    chan struct{}
	log     *logrus.Entry

	mu      sync.Mutex
	input   sim.Input
	columns int
	fov     float64
	notice  string

	dropped *atomic.Int64
}

func newClient(srv *server, conn *websocket.Conn, session *sim.Session, id uint64) *client {
	return &client{
		srv:     srv,
		conn:    conn,
		session: session,
		send:    make(chan []byte, srv.cfg.Serve.SendBuffer),
		done:    make(chan struct{}),
		log:     logger.Log.WithFields(logrus.Fields{"client": id, "remote": conn.RemoteAddr().String()}),
		columns: srv.cfg.Serve.Columns,
		fov:     srv.cfg.Render.FOV,
		dropped: srv.dropped,
	}
}

// readPump applies client commands until the connection fails
func (c *client) readPump() {
	defer func() {
		close(c.done)
		if err := c.conn.Close(); err != nil {
			c.log.WithError(err).Debug("close after read failed")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd ClientCommand
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("read failed")
			}
			return
		}
		c.apply(cmd)
	}
}

func (c *client) apply(cmd ClientCommand) {
	switch cmd.Type {
	case CommandInput:
		c.mu.Lock()
		c.input = sim.Input{Forward: cmd.Forward, Strafe: cmd.Strafe, Turn: cmd.Turn}
		c.mu.Unlock()

	case CommandRegenerate:
		notice := fmt.Sprintf("seed %d installed", cmd.Seed)
		if err := c.session.Regenerate(cmd.Seed); err != nil {
			notice = err.Error()
		} else {
			c.log.WithField("seed", cmd.Seed).Info("client regenerated world")
		}
		c.mu.Lock()
		c.input = sim.Input{}
		c.notice = notice
		c.mu.Unlock()

	case CommandConfigure:
		c.mu.Lock()
		if cmd.Columns > 0 {
			c.columns = min(cmd.Columns, maxColumns)
		}
		if cmd.FOV > 0 && cmd.FOV < 3.1 {
			c.fov = cmd.FOV
		}
		c.notice = fmt.Sprintf("%d columns, fov %.2f", c.columns, c.fov)
		c.mu.Unlock()

	default:
		c.mu.Lock()
		c.notice = fmt.Sprintf("unknown command %q", cmd.Type)
		c.mu.Unlock()
	}
}

// framePump ticks the session and queues one encoded frame per interval
// A full queue drops the frame instead of stalling the simulation
func (c *client) framePump() {
	interval := c.srv.cfg.Serve.FrameInterval
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		close(c.send)
	}()

	if !c.queue() {
		return
	}
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			in := c.input
			c.mu.Unlock()
			c.session.Tick(in, interval)
			if !c.queue() {
				return
			}
		}
	}
}

// queue encodes one frame; false means the frame could not be cast and the
// client should be dropped
func (c *client) queue() bool {
	c.mu.Lock()
	columns, fov, notice := c.columns, c.fov, c.notice
	c.notice = ""
	c.mu.Unlock()

	f := c.session.Snapshot()
	cols, err := c.srv.caster.Cast(f, columns, fov)
	if err != nil {
		c.log.WithError(err).Error("cast frame failed")
		return false
	}
	data, err := json.Marshal(newFrame(f, cols, c.srv.cfg.March.MaxDistance, notice))
	if err != nil {
		c.log.WithError(err).Error("encode frame failed")
		return true
	}
	select {
	case c.send <- data:
	default:
		c.dropped.Add(1)
	}
	return true
}

// writePump sends queued frames and keeps the connection alive with pings
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.log.WithError(err).Debug("close after write failed")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Debug("write frame failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
