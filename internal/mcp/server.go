// Package mcp exposes the dormitory store as MCP tools, resources and
// prompts over JSON-RPC on a single HTTP POST path.
package mcp

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"dorm2mcp/internal/config"
	"dorm2mcp/internal/model"
	"dorm2mcp/internal/protocol"
)

const serverVersion = "0.1.0"

// Store is the database surface the dispatcher needs. Every call opens
// its own query; the server keeps no entity state in memory.
type Store interface {
	Schema(ctx context.Context) (string, error)
	ListStudents(ctx context.Context) ([]model.Student, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	OccupancySummary(ctx context.Context) ([]model.RoomOccupancy, error)
	MaintenanceList(ctx context.Context) ([]model.MaintenanceRow, error)
	FindStudent(ctx context.Context, searchTerm string) ([]model.StudentMatch, error)
	RoomOccupants(ctx context.Context, floor int, roomNumber string) ([]model.RoomOccupant, error)
	Availability(ctx context.Context) ([]model.RoomAvailability, error)
	MonthlyCheckIns(ctx context.Context) ([]model.MonthlyCheckIns, error)
	UpdateRoomCapacity(ctx context.Context, roomID int64, capacity int) error
	RunReadOnlyQuery(ctx context.Context, sqlText string) (model.QueryResult, error)
}

type Server struct {
	cfg       *config.Config
	store     Store
	logger    *log.Logger
	tools     map[string]toolDefinition
	resources map[string]resourceDefinition
	limiter   *ipRateLimiter

	mu       sync.Mutex
	sessions map[string]struct{}
}

func NewServer(cfg *config.Config, st Store, logger *log.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		logger:   logger,
		limiter:  newIPRateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst),
		sessions: make(map[string]struct{}),
	}
	s.tools = s.buildToolRegistry()
	s.resources = s.buildResourceRegistry()
	return s
}

// Handler returns the JSON-RPC endpoint handler, for mounting on the
// configured MCP path.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleRPC)
}

// Serve blocks while handling HTTP. Cancel ctx to initiate graceful
// shutdown; in-flight requests are allowed to drain.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.MCPPath, s.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				s.limiter.cleanup(10 * time.Minute)
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, nil, rpcCodeInvalidRequest, "only POST is supported")
		return
	}

	if !s.limiter.allow(realIP(r)) {
		writeError(w, http.StatusTooManyRequests, nil, rpcCodeServerError, "rate limit exceeded")
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, nil, rpcCodeParseError, "invalid JSON-RPC request body")
		return
	}

	ctx := r.Context()
	switch req.Method {
	case protocol.RPCMethodInitialize:
		s.handleInitialize(w, req.ID)
	case protocol.RPCMethodNotificationsInitialized:
		w.WriteHeader(http.StatusAccepted)
	case protocol.RPCMethodToolsList:
		if !s.requireSession(w, r, req.ID) {
			return
		}
		s.handleToolsList(w, req.ID)
	case protocol.RPCMethodToolsCall:
		if !s.requireSession(w, r, req.ID) {
			return
		}
		s.handleToolsCall(ctx, w, req.Params, req.ID)
	case protocol.RPCMethodResourcesList:
		if !s.requireSession(w, r, req.ID) {
			return
		}
		s.handleResourcesList(w, req.ID)
	case protocol.RPCMethodResourcesRead:
		if !s.requireSession(w, r, req.ID) {
			return
		}
		s.handleResourcesRead(ctx, w, req.Params, req.ID)
	case protocol.RPCMethodPromptsList:
		if !s.requireSession(w, r, req.ID) {
			return
		}
		s.handlePromptsList(w, req.ID)
	case protocol.RPCMethodPromptsGet:
		if !s.requireSession(w, r, req.ID) {
			return
		}
		s.handlePromptsGet(w, req.Params, req.ID)
	default:
		writeError(w, http.StatusOK, req.ID, rpcCodeMethodNotFound, "method not found: "+req.Method)
	}
}

func (s *Server) handleInitialize(w http.ResponseWriter, id interface{}) {
	sessionID := uuid.NewString()
	s.mu.Lock()
	s.sessions[sessionID] = struct{}{}
	s.mu.Unlock()

	w.Header().Set(protocol.MCPSessionHeader, sessionID)
	writeResult(w, http.StatusOK, id, map[string]interface{}{
		"protocolVersion": protocol.Version,
		"capabilities": map[string]interface{}{
			"tools":     map[string]interface{}{},
			"resources": map[string]interface{}{},
			"prompts":   map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    "dorm2mcp",
			"version": serverVersion,
		},
	})
}

func (s *Server) requireSession(w http.ResponseWriter, r *http.Request, id interface{}) bool {
	sessionID := r.Header.Get(protocol.MCPSessionHeader)
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusBadRequest, id, rpcCodeServerError, "session not initialized; call initialize first")
		return false
	}
	return true
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
