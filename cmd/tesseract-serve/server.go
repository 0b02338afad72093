package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tesseract/config"
	"github.com/lixenwraith/tesseract/logger"
	"github.com/lixenwraith/tesseract/render"
	"github.com/lixenwraith/tesseract/sim"
	"github.com/lixenwraith/tesseract/status"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// server hands every connection its own session over a fresh world
type server struct {
	cfg     *config.Config
	seed    uint64
	metrics *status.Registry
	caster  *render.Caster

	nextID  atomic.Uint64
	clients *atomic.Int64
	dropped *atomic.Int64
}

func newServer(cfg *config.Config, seed uint64, metrics *status.Registry) *server {
	return &server{
		cfg:     cfg,
		seed:    seed,
		metrics: metrics,
		caster:  render.NewCaster(cfg, metrics),
		clients: metrics.Ints.Get(status.KeyClients),
		dropped: metrics.Ints.Get(status.KeyDroppedFrames),
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/schema", s.handleSchema)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return mux
}

// handleWS upgrades and runs one client; ?seed= overrides the server seed
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	seed := s.seed
	if q := r.URL.Query().Get("seed"); q != "" {
		v, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			http.Error(w, "bad seed", http.StatusBadRequest)
			return
		}
		seed = v
	}
	// Shares the server metrics; per-session gauges show the latest tick
	session, err := sim.New(s.cfg, seed, s.metrics)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"seed": seed, "error": err}).Warn("session world generation failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	id := s.nextID.Add(1)
	c := newClient(s, conn, session, id)
	s.clients.Add(1)
	c.log.WithFields(logrus.Fields{"seed": seed, "clients": s.clients.Load()}).Info("client connected")

	go c.writePump()
	go c.framePump()
	c.readPump()

	s.clients.Add(-1)
	c.log.WithField("clients", s.clients.Load()).Info("client disconnected")
}

func (s *server) handleSchema(w http.ResponseWriter, r *http.Request) {
	data, err := schemaJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.Write(data)
}

func (s *server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// ?section=march narrows the output to one key prefix
	if err := json.NewEncoder(w).Encode(s.metrics.SnapshotSection(r.URL.Query().Get("section"))); err != nil {
		logger.Log.WithError(err).Warn("encode metrics failed")
	}
}
