package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"slowmap/internal/bench"
	"slowmap/internal/events"
	"slowmap/internal/logger"

	"golang.org/x/net/websocket"
)

//go:embed static/*
var staticFiles embed.FS

// Server はAPIサーバー
type Server struct {
	addr string
	bus  *events.Bus

	mu         sync.RWMutex
	running    bool
	config     bench.Config
	lastResult *bench.Result
	wsClients  map[*websocket.Conn]bool

	server *http.Server
}

// NewServer は新しいAPIサーバーを作成する
func NewServer(addr string) *Server {
	return &Server{
		addr:      addr,
		bus:       events.NewBus(),
		wsClients: make(map[*websocket.Conn]bool),
	}
}

// Start はサーバーを開始する
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/run", s.handleRun)
	mux.HandleFunc("/api/result", s.handleResult)

	// WebSocket
	mux.Handle("/ws", websocket.Handler(s.handleWebSocket))

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to get static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	// バックグラウンドでイベント配信
	go s.broadcastLoop(ctx)

	logger.Info("", "API Server starting on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StatusResponse はステータスレスポンス
type StatusResponse struct {
	Running    bool   `json:"running"`
	RunName    string `json:"run_name,omitempty"`
	Count      int    `json:"count,omitempty"`
	Strategies int    `json:"strategies,omitempty"`
	HasResult  bool   `json:"has_result"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := StatusResponse{
		Running:   s.running,
		HasResult: s.lastResult != nil,
	}

	if s.config.Name != "" {
		resp.RunName = s.config.Name
		resp.Count = s.config.Count
		resp.Strategies = len(s.config.Strategies)
	}

	s.writeJSON(w, resp)
}

// PresetInfo はプリセット情報
type PresetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var presets []PresetInfo
	for _, name := range bench.ListPresets() {
		if cfg, ok := bench.GetPreset(name); ok {
			presets = append(presets, PresetInfo{Name: name, Description: cfg.Description})
		}
	}

	s.writeJSON(w, presets)
}

// RunRequest は比較実行開始リクエスト
type RunRequest struct {
	Preset  string `json:"preset"`
	Count   int    `json:"count,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		http.Error(w, "Run already in progress", http.StatusConflict)
		return
	}

	// プリセット取得
	config, ok := bench.GetPreset(req.Preset)
	if !ok {
		config = bench.QuickConfig()
	}

	// オーバーライド
	if req.Count > 0 {
		config.Count = req.Count
	}
	if req.Timeout != "" {
		if d, err := time.ParseDuration(req.Timeout); err == nil {
			config.Timeout = d
		}
	}

	engine := bench.New(config)
	engine.SetEventBus(s.bus)

	s.config = config
	s.running = true
	s.mu.Unlock()

	// バックグラウンドで実行
	go func() {
		result, err := engine.Run(context.Background())

		s.mu.Lock()
		s.running = false
		if err == nil {
			s.lastResult = result
		}
		s.mu.Unlock()

		if err != nil {
			logger.Error("", "Comparison run failed: %v", err)
			s.broadcast(map[string]interface{}{
				"type":  "run_error",
				"error": err.Error(),
			})
			return
		}

		logger.Info("", "Comparison run completed: %d strategies", len(result.Strategies))
		s.broadcast(map[string]interface{}{
			"type":   "comparison_complete",
			"result": result,
		})
	}()

	s.writeJSON(w, map[string]string{"status": "started", "run": config.Name})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	result := s.lastResult
	s.mu.RUnlock()

	if result == nil {
		http.Error(w, "No result available", http.StatusNotFound)
		return
	}

	s.writeJSON(w, result)
}

// WebSocket handling
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	s.mu.Lock()
	s.wsClients[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	// Keep connection alive
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

func (s *Server) broadcast(data interface{}) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

// broadcastLoop はイベントバスの内容をWebSocketクライアントへ転送する
func (s *Server) broadcastLoop(ctx context.Context) {
	ch := s.bus.Subscribe()
	defer s.bus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(map[string]interface{}{
				"type":  "event",
				"event": event,
			})
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("", "Failed to encode JSON: %v", err)
	}
}
