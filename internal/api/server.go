// Package api provides the HTTP API server for remote typing control.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"keyemu/internal/config"
	"keyemu/internal/emulator"
	"keyemu/internal/network"
	"keyemu/internal/protocol"
	"keyemu/internal/textutil"
	"keyemu/internal/timing"
	"keyemu/internal/vk"
)

// Server provides HTTP API for remote typing
type Server struct {
	configMgr *config.Manager
	emu       *emulator.Emulator
	token     string
	wsMgr     *WSManager
	started   time.Time
	paused    atomic.Bool
}

// NewServer creates a new API server driving the given emulator
func NewServer(configMgr *config.Manager, emu *emulator.Emulator) *Server {
	s := &Server{
		configMgr: configMgr,
		emu:       emu,
	}
	s.wsMgr = newWSManager(s)
	return s
}

// SetPaused toggles the injection gate. While paused, all typing requests
// are rejected; status endpoints keep working.
func (s *Server) SetPaused(paused bool) {
	s.paused.Store(paused)
	log.Printf("API: injection paused=%v", paused)
	s.wsMgr.BroadcastStatus(s.statusPayload())
}

// Paused reports whether injection is currently gated off
func (s *Server) Paused() bool {
	return s.paused.Load()
}

// Start starts the API server on the specified port
func (s *Server) Start(port int) error {
	cfg := s.configMgr.Get()
	s.token = cfg.Server.Token
	s.started = time.Now()

	// Start WebSocket Manager
	go s.wsMgr.start()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/type", s.handleType)
	mux.HandleFunc("/api/tap", s.handleTap)
	mux.HandleFunc("/api/press", s.handleKey(s.pressKey))
	mux.HandleFunc("/api/release", s.handleKey(s.releaseKey))
	mux.HandleFunc("/api/validate", s.handleValidate)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	// Use "0.0.0.0:port" and explicitly use tcp4 to avoid IPv6-only binding issues on Windows
	addr := fmt.Sprintf("0.0.0.0:%d", port)

	if ips, err := network.GetLocalIPs(); err == nil {
		for _, ip := range ips {
			log.Printf("API: local IPv4 %s", ip)
		}
	}
	log.Printf("Starting API server on %s", addr)

	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		log.Printf("ERROR: API server failed to listen on %s: %v", addr, err)
		return err
	}

	server := &http.Server{
		Handler: s.authMiddleware(s.recoverMiddleware(mux)),
	}

	// This is blocking
	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Printf("ERROR: API server stopped: %v", err)
		return err
	}
	return nil
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC RECOV: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks API token if configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("API: %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		// Skip auth for health check; the WebSocket handshake authenticates
		// with its first message instead of a header
		if r.URL.Path == "/health" || r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		if s.token != "" {
			if r.Header.Get("Authorization") != "Bearer "+s.token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// typeOptions builds emulator options from a request payload, falling back
// to configured defaults.
func (s *Server) typeOptions(p protocol.TextPayload) (emulator.TypeOptions, error) {
	cfg := s.configMgr.Get()

	opts := emulator.TypeOptions{
		Delay:           time.Duration(cfg.Typing.DefaultDelayMS) * time.Millisecond,
		SkipUnsupported: cfg.Typing.SkipUnsupported || p.SkipUnsupported,
	}
	if p.DelayMS > 0 {
		opts.Delay = time.Duration(p.DelayMS) * time.Millisecond
	}

	wpm := cfg.Typing.DefaultWPM
	if p.WPM > 0 {
		wpm = p.WPM
	}
	if wpm > 0 {
		profile, err := timing.NewProfile(wpm)
		if err != nil {
			return opts, err
		}
		opts.Profile = profile
	}
	return opts, nil
}

// handleType handles POST /api/type
func (s *Server) handleType(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Paused() {
		http.Error(w, "Injection is paused", http.StatusServiceUnavailable)
		return
	}

	var payload protocol.TextPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	opts, err := s.typeOptions(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Printf("API: typing %d chars from %s", len(payload.Text), r.RemoteAddr)

	if err := s.emu.TypeString(r.Context(), payload.Text, opts); err != nil {
		log.Printf("API: type error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"status": "ok"})
}

// handleTap handles POST /api/tap with a chord string like "Ctrl+Shift+A"
func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Paused() {
		http.Error(w, "Injection is paused", http.StatusServiceUnavailable)
		return
	}

	var payload protocol.TapPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	modifiers, key, err := vk.ParseChord(payload.Chord)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Printf("API: tap %q from %s", payload.Chord, r.RemoteAddr)

	if err := s.emu.Tap(key, modifiers...); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"status": "ok", "chord": payload.Chord})
}

func (s *Server) pressKey(code vk.Code) error   { return s.emu.Press(code) }
func (s *Server) releaseKey(code vk.Code) error { return s.emu.Release(code) }

// handleKey builds the handler shared by /api/press and /api/release
func (s *Server) handleKey(op func(vk.Code) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.Paused() {
			http.Error(w, "Injection is paused", http.StatusServiceUnavailable)
			return
		}

		var payload struct {
			Key string `json:"key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		code, ok := vk.FromName(payload.Key)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown key %q", payload.Key), http.StatusBadRequest)
			return
		}

		if err := op(code); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]string{"status": "ok", "key": code.String()})
	}
}

// handleValidate handles POST /api/validate - checks text typeability
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload protocol.TextPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	valid, unsupported := textutil.ValidateText(payload.Text)
	segments := textutil.SplitBySupport(payload.Text)

	chars := make([]string, len(unsupported))
	for i, r := range unsupported {
		chars[i] = string(r)
	}

	delay := time.Duration(s.configMgr.Get().Typing.DefaultDelayMS) * time.Millisecond
	if payload.DelayMS > 0 {
		delay = time.Duration(payload.DelayMS) * time.Millisecond
	}
	estimate, _ := timing.CalculateTypingTime(payload.Text, delay)

	writeJSON(w, map[string]interface{}{
		"valid":       valid,
		"unsupported": chars,
		"segments":    segments,
		"estimate_ms": estimate.Milliseconds(),
	})
}

func (s *Server) statusPayload() protocol.StatusPayload {
	held := s.emu.HeldKeys()
	names := make([]string, len(held))
	for i, code := range held {
		names[i] = code.String()
	}
	return protocol.StatusPayload{
		Platform: runtime.GOOS,
		Paused:   s.Paused(),
		HeldKeys: names,
	}
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := s.statusPayload()
	writeJSON(w, map[string]interface{}{
		"platform":       status.Platform,
		"paused":         status.Paused,
		"held_keys":      status.HeldKeys,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

// handleConfig handles GET (read) and POST (update) for configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		writeJSON(w, s.configMgr.Get())

	case "POST":
		var newCfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			http.Error(w, "Invalid configuration data", http.StatusBadRequest)
			return
		}

		log.Printf("API: receiving configuration update from %s", r.RemoteAddr)

		s.configMgr.Set(&newCfg)
		if err := s.configMgr.Save(); err != nil {
			log.Printf("API: failed to save received config: %v", err)
			http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]string{"status": "ok"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleHealth handles GET /health (for monitoring and LAN discovery)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "service": "keyemu"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
