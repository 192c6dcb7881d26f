// Package httpapi expõe as sessões de realocação por HTTP, para uso sem o
// terminal interativo.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/diillson/ads-budget-realloc-go/internal/application/usecase"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
)

// DefaultSessionTTL é o tempo sem requisições após o qual uma sessão é descartada.
const DefaultSessionTTL = 2 * time.Hour

// GatewayProvider cria o gateway de uma plataforma e informa a conta padrão.
type GatewayProvider interface {
	NewGateway(ctx context.Context, p entity.Platform) (repository.PlatformGateway, error)
	AccountRef(p entity.Platform) string
}

// Server guarda as sessões abertas, indexadas pelo id.
type Server struct {
	uc       *usecase.ReallocationUseCase
	gateways GatewayProvider
	metrics  http.Handler
	console  types.ConsoleInterface
	export   usecase.ExportRequest
	padding  string
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	session  *usecase.Session
	lastUsed time.Time
}

// NewServer cria o servidor. export define o destino padrão das exportações.
func NewServer(uc *usecase.ReallocationUseCase, gateways GatewayProvider, export usecase.ExportRequest) *Server {
	return &Server{
		uc:       uc,
		gateways: gateways,
		export:   export,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// SetDefaultPadding define o padding usado quando o fetch não informa um.
func (s *Server) SetDefaultPadding(padding string) { s.padding = padding }

// SetSessionTTL define o tempo ocioso máximo de uma sessão. Zero desliga a expiração.
func (s *Server) SetSessionTTL(ttl time.Duration) { s.ttl = ttl }

// SetMetricsHandler habilita o endpoint /metrics.
func (s *Server) SetMetricsHandler(h http.Handler) { s.metrics = h }

// SetConsole habilita o log de requisições no console.
func (s *Server) SetConsole(c types.ConsoleInterface) { s.console = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	if s.console != nil {
		r.Use(requestLogger(s.console))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/fetch", s.handleFetch)
			r.Patch("/targets", s.handleTargets)
			r.Post("/recompute", s.handleRecompute)
			r.Post("/stage", s.handleStage)
			r.Post("/stage-all", s.handleStageAll)
			r.Post("/commit", s.handleCommit)
			r.Post("/commit-all", s.handleCommitAll)
			r.Post("/export", s.handleExport)
		})
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return r
}

// ListenAndServe sobe o servidor até o contexto ser cancelado.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-sweep.C:
			s.evictIdle()
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
}

// evictIdle fecha e remove as sessões sem uso há mais que o TTL.
func (s *Server) evictIdle() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*usecase.Session
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			expired = append(expired, e.session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		session.Close()
		if s.console != nil {
			s.console.LogInfo("Session %s expired after %s idle", session.ID, s.ttl)
		}
	}
}

type createSessionRequest struct {
	Platform   string `json:"platform"`
	AccountRef string `json:"account_ref"`
}

type sessionResponse struct {
	ID         string           `json:"id"`
	Platform   entity.Platform  `json:"platform"`
	AccountRef string           `json:"account_ref"`
	CreatedAt  time.Time        `json:"created_at"`
	HasData    bool             `json:"has_data"`
	Summary    *usecase.Summary `json:"summary,omitempty"`
	Rows       []usecase.Row    `json:"rows,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	platform, err := entity.ParsePlatform(req.Platform)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	gateway, err := s.gateways.NewGateway(r.Context(), platform)
	if err != nil {
		writeErr(w, err)
		return
	}

	accountRef := req.AccountRef
	if accountRef == "" {
		accountRef = s.gateways.AccountRef(platform)
	}
	if accountRef == "" {
		writeError(w, http.StatusBadRequest, "account_ref is required")
		return
	}

	s.evictIdle()

	session := usecase.NewSession(gateway, accountRef)
	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session, lastUsed: s.now()}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, s.describe(session))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.describe(session))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	entry, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		writeErr(w, types.ErrSessionNotFound)
		return
	}
	entry.session.Close()
	w.WriteHeader(http.StatusNoContent)
}

type fetchRequest struct {
	TotalMonthlyBudget decimal.Decimal `json:"total_monthly_budget"`
	Padding            string          `json:"padding"`
	DateRange          []string        `json:"date_range"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req fetchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Padding == "" {
		req.Padding = s.padding
	}
	padding, err := entity.ParsePadding(req.Padding)
	if err != nil {
		writeErr(w, &types.InputValidationError{Field: "padding", Reason: err.Error()})
		return
	}

	fetched, err := s.uc.Fetch(r.Context(), session, usecase.FetchRequest{
		TotalMonthlyBudget: req.TotalMonthlyBudget,
		Padding:            padding,
		DateRange:          req.DateRange,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	if !fetched {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"fetched": false,
			"message": "a start and end date are required to fetch",
		})
		return
	}

	writeJSON(w, http.StatusOK, s.describe(session))
}

type targetsRequest struct {
	Targets map[string]decimal.Decimal `json:"targets"`
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req targetsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.uc.ApplyTargetEdits(session, req.Targets); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(session))
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	outcome, err := s.uc.Recompute(session)
	if err != nil {
		var rejected *types.AllocationRejectedError
		if errors.As(err, &rejected) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"outcome": outcome,
				"session": s.describe(session),
			})
			return
		}
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"outcome": outcome,
		"session": s.describe(session),
	})
}

type entityRequest struct {
	EntityID string `json:"entity_id"`
}

func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req entityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.uc.Stage(session, req.EntityID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(session))
}

func (s *Server) handleStageAll(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if err := s.uc.StageAll(session); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(session))
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req entityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := s.uc.Commit(r.Context(), session, req.EntityID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type commitAllRequest struct {
	Confirmation string `json:"confirmation"`
}

func (s *Server) handleCommitAll(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req commitAllRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := s.uc.CommitAll(r.Context(), session, req.Confirmation)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type exportRequest struct {
	ReportName string   `json:"report_name"`
	ReportType []string `json:"report_type"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req exportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	export := s.export
	if req.ReportName != "" {
		export.ReportName = req.ReportName
	}
	if len(req.ReportType) > 0 {
		export.ReportType = req.ReportType
	}

	paths, err := s.uc.Export(r.Context(), session, export)
	if err != nil && len(paths) == 0 {
		writeErr(w, err)
		return
	}

	resp := map[string]interface{}{"files": paths}
	if err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*usecase.Session, bool) {
	s.evictIdle()
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	entry, ok := s.sessions[id]
	if ok {
		entry.lastUsed = s.now()
	}
	s.mu.Unlock()

	if !ok {
		writeErr(w, types.ErrSessionNotFound)
		return nil, false
	}
	return entry.session, true
}

func (s *Server) describe(session *usecase.Session) sessionResponse {
	resp := sessionResponse{
		ID:         session.ID,
		Platform:   session.Platform,
		AccountRef: session.AccountRef,
		CreatedAt:  session.CreatedAt,
	}

	summary, err := s.uc.Summary(session)
	if err != nil {
		return resp
	}
	rows, err := s.uc.Rows(session)
	if err != nil {
		return resp
	}

	resp.HasData = true
	resp.Summary = &summary
	resp.Rows = rows
	return resp
}

// NewServerConsole adapta o console para handlers concorrentes: Status vira
// uma linha de log, sem spinner disputando o terminal.
func NewServerConsole(c types.ConsoleInterface) types.ConsoleInterface {
	return serverConsole{ConsoleInterface: c}
}

type serverConsole struct {
	types.ConsoleInterface
}

func (c serverConsole) Status(message string) types.StatusHandle {
	c.LogInfo("%s", message)
	return silentStatus{}
}

type silentStatus struct{}

func (silentStatus) Update(string) {}
func (silentStatus) Stop()         {}

// requestLogger registra método, rota, status e duração de cada requisição.
func requestLogger(console types.ConsoleInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			msg := "%s %s %d %s (%s)"
			args := []interface{}{r.Method, r.URL.Path, status, time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context())}
			switch {
			case status >= 500:
				console.LogError(msg, args...)
			case status >= 400:
				console.LogWarning(msg, args...)
			default:
				console.LogInfo(msg, args...)
			}
		})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// statusFor mapeia os erros de domínio para códigos HTTP.
func statusFor(err error) int {
	var (
		inputErr    *types.InputValidationError
		gatewayErr  *types.GatewayError
		rejectedErr *types.AllocationRejectedError
	)

	switch {
	case errors.Is(err, types.ErrSessionNotFound), errors.Is(err, types.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.As(err, &inputErr),
		errors.Is(err, types.ErrInvalidWindow),
		errors.Is(err, types.ErrInvalidDate),
		errors.Is(err, types.ErrUnknownPlatform),
		errors.Is(err, types.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrBulkNotConfirmed):
		return http.StatusPreconditionFailed
	case errors.Is(err, types.ErrNoData),
		errors.Is(err, types.ErrNothingToCommit),
		errors.Is(err, types.ErrNotStaged),
		errors.Is(err, types.ErrInvalidTransition):
		return http.StatusConflict
	case errors.As(err, &rejectedErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
