package rpc

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"totemic/core"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB

	sourceRatePerSecond = 10
	sourceRateBurst     = 20
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeRateLimited    = -32020
)

// Server exposes the ledger over JSON-RPC with /healthz and /metrics
// side-channels.
type Server struct {
	node      *core.Node
	log       *slog.Logger
	authToken string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	httpServer *http.Server
}

// NewServer creates a server over the node. An empty authToken disables all
// token-gated methods rather than opening them.
func NewServer(node *core.Node, log *slog.Logger, authToken string) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		node:      node,
		log:       log,
		authToken: strings.TrimSpace(authToken),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("rpc server listening", "addr", addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// RPCRequest is the decoded JSON-RPC envelope.
type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()
	w.Header().Set("Content-Type", "application/json")

	if !s.allowSource(requestSource(r)) {
		writeError(w, http.StatusTooManyRequests, nil, codeRateLimited, "rate limit exceeded", nil)
		return
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	switch req.Method {
	case "merit_register":
		s.withAuth(w, r, req, s.handleMeritRegister)
	case "merit_credit":
		s.withAuth(w, r, req, s.handleMeritCredit)
	case "merit_boostTotem":
		s.handleMeritBoostTotem(w, r, req)
	case "merit_claim":
		s.handleMeritClaim(w, r, req)
	case "merit_settleEmission":
		s.handleMeritSettleEmission(w, r, req)
	case "merit_periodInfo":
		s.handleMeritPeriodInfo(w, r, req)
	case "merit_periodBounds":
		s.handleMeritPeriodBounds(w, r, req)
	case "merit_pendingReward":
		s.handleMeritPendingReward(w, r, req)
	case "merit_points":
		s.handleMeritPoints(w, r, req)
	case "merit_account":
		s.handleMeritAccount(w, r, req)
	case "merit_totems":
		s.handleMeritTotems(w, r, req)
	case "merit_params":
		s.handleMeritParams(w, r, req)
	case "merit_setBoostFee":
		s.withAuth(w, r, req, s.handleMeritSetBoostFee)
	case "merit_setBoostPoints":
		s.withAuth(w, r, req, s.handleMeritSetBoostPoints)
	case "merit_setMythumMultiplier":
		s.withAuth(w, r, req, s.handleMeritSetMythumMultiplier)
	case "merit_setPeriodDuration":
		s.withAuth(w, r, req, s.handleMeritSetPeriodDuration)
	case "merit_setBlacklist":
		s.withAuth(w, r, req, s.handleMeritSetBlacklist)
	case "merit_adjustKarma":
		s.withAuth(w, r, req, s.handleMeritAdjustKarma)
	case "merit_grantRole":
		s.withAuth(w, r, req, s.handleMeritGrantRole)
	case "merit_revokeRole":
		s.withAuth(w, r, req, s.handleMeritRevokeRole)
	case "boost_free":
		s.handleBoostFree(w, r, req)
	case "boost_premium":
		s.handleBoostPremium(w, r, req)
	case "boost_fulfill":
		s.withAuth(w, r, req, s.handleBoostFulfill)
	case "boost_streak":
		s.handleBoostStreak(w, r, req)
	case "boost_pendingRequests":
		s.handleBoostPendingRequests(w, r, req)
	case "boost_pendingReward":
		s.handleBoostPendingReward(w, r, req)
	case "boost_badgeCredits":
		s.handleBoostBadgeCredits(w, r, req)
	case "boost_mintBadge":
		s.handleBoostMintBadge(w, r, req)
	case "boost_params":
		s.handleBoostParams(w, r, req)
	case "bank_balance":
		s.handleBankBalance(w, r, req)
	case "bank_fundTranche":
		s.withAuth(w, r, req, s.handleBankFundTranche)
	case "totems_setToken":
		s.withAuth(w, r, req, s.handleTotemsSetToken)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method), nil)
	}
}

type handlerFunc func(http.ResponseWriter, *http.Request, *RPCRequest)

func (s *Server) withAuth(w http.ResponseWriter, r *http.Request, req *RPCRequest, next handlerFunc) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	next(w, r, req)
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}

func (s *Server) allowSource(source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.limiters[source]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(sourceRatePerSecond), sourceRateBurst)
		s.limiters[source] = limiter
	}
	return limiter.Allow()
}

func requestSource(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}
