package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/WillShirley13/testudo-bonds/core"
	"github.com/WillShirley13/testudo-bonds/core/events"
	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/bonds"
	nativecommon "github.com/WillShirley13/testudo-bonds/native/common"
	"github.com/WillShirley13/testudo-bonds/native/token"
	"github.com/WillShirley13/testudo-bonds/observability"
)

const maxBodyBytes = 64 << 10

// Backend is the node surface the HTTP server drives. *core.Executor
// satisfies it.
type Backend interface {
	Execute(ctx context.Context, tx *types.Transaction) (*core.Receipt, error)
	Commit() (common.Hash, error)
	Config() (*bonds.Config, crypto.Address, error)
	Owner(wallet crypto.Address) (*bonds.OwnerAccount, crypto.Address, error)
	Position(wallet crypto.Address, index uint8) (*bonds.BondPosition, crypto.Address, error)
	PreviewClaim(wallet crypto.Address, index uint8) (*bonds.ClaimPreview, error)
	TokenAccount(addr crypto.Address) (*token.Account, error)
	Head() (types.CommitHeader, common.Hash)
}

// Config captures the dependencies required to construct the server.
type Config struct {
	Backend        Backend
	Quota          nativecommon.Quota
	RateLimit      RateLimit
	Events         *events.Recorder
	Metrics        *observability.BondLedgerMetrics
	MetricsHandler http.Handler
	Logger         *slog.Logger
	Now            func() time.Time
}

// Server exposes the bond ledger over HTTP.
type Server struct {
	backend Backend
	quota   *nativecommon.QuotaTracker
	limiter *clientLimiter
	events  *events.Recorder
	metrics *observability.BondLedgerMetrics
	logger  *slog.Logger
	now     func() time.Time

	router http.Handler
}

// New constructs the router.
func New(cfg Config) *Server {
	srv := &Server{
		backend: cfg.Backend,
		quota:   nativecommon.NewQuotaTracker(cfg.Quota),
		events:  cfg.Events,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
	if srv.logger == nil {
		srv.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if srv.now == nil {
		srv.now = time.Now
	}
	srv.limiter = newClientLimiter(cfg.RateLimit, srv.now)
	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	srv.router = srv.buildRouter(metricsHandler)
	return srv
}

// Handler exposes the configured HTTP router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter(metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics)

	r.With(s.rateLimited).Post("/tx", s.SubmitTransaction)
	r.Get("/head", s.GetHead)
	r.Get("/config", s.GetConfig)
	r.Get("/events", s.GetEvents)
	r.Get("/balances/{address}", s.GetBalance)
	r.Route("/owners/{wallet}", func(or chi.Router) {
		or.Get("/", s.GetOwner)
		or.Get("/bonds/{index}", s.GetPosition)
		or.Get("/bonds/{index}/preview", s.GetPreview)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, msg string) {
	writeJSON(w, status, errorResponse{Error: ErrorBody{Code: code, Message: msg}})
}

// writeLedgerError maps an executor or view error onto a reply.
func writeLedgerError(w http.ResponseWriter, err error) {
	if code, ok := bonds.CodeOf(err); ok {
		writeError(w, http.StatusUnprocessableEntity, int(code), err.Error())
		return
	}
	switch {
	case errors.Is(err, bonds.ErrNotFound):
		writeError(w, http.StatusNotFound, -1, err.Error())
	case errors.Is(err, bonds.ErrInvalidInstruction),
		errors.Is(err, bonds.ErrNotEnoughAccounts),
		errors.Is(err, bonds.ErrUnknownInstruction),
		errors.Is(err, core.ErrMissingSignature),
		errors.Is(err, types.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, -1, err.Error())
	case errors.Is(err, core.ErrStaleCommit),
		errors.Is(err, core.ErrDuplicateTransaction):
		writeError(w, http.StatusConflict, -1, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, -1, err.Error())
	}
}

func walletParam(r *http.Request, name string) (crypto.Address, error) {
	return crypto.ParseAddress(chi.URLParam(r, name))
}

func indexParam(r *http.Request) (uint8, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}
