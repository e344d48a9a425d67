// Package webhook is the single HTTP surface of the skill: one POST
// endpoint receiving a dialogue turn and always answering a
// well-formed dialogue body with status 200. Only a malformed request
// body earns a 400 without a body.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/itplan/alice-worktime/internal/alice"
	"github.com/itplan/alice-worktime/internal/auth"
	"github.com/itplan/alice-worktime/internal/resolver"
	"github.com/itplan/alice-worktime/internal/skill"
)

const (
	textAuthPrompt = "Для использования навыка необходимо авторизоваться"
	textApology    = "Во мне что-то сломалось, надеюсь меня скоро починят"
)

type Guard interface {
	Authenticate(turn *alice.IncomingTurn) (auth.Context, error)
}

type Deps struct {
	Service *skill.Service
	Guard   Guard
	Logger  *slog.Logger
}

type handler struct {
	deps Deps
}

func NewHandler(deps Deps) http.Handler {
	h := &handler{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/", h.handleTurn)
	return mux
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var turn alice.IncomingTurn
	if err := json.NewDecoder(r.Body).Decode(&turn); err != nil {
		h.deps.Logger.Error("turn decode failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := turn.Validate(); err != nil {
		h.deps.Logger.Error("turn validation failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	logger := h.deps.Logger.With(
		"turn_id", uuid.NewString(),
		"session_id", turn.Session.SessionID,
	)
	response := h.dispatch(r.Context(), logger, &turn)
	writeJSON(w, http.StatusOK, response)
}

// dispatch runs route -> guard -> step and converts every failure into
// a dialogue body. The deferred recover is the last-resort guarantee
// that no panic ever reaches the platform as an empty response.
func (h *handler) dispatch(ctx context.Context, logger *slog.Logger, turn *alice.IncomingTurn) (response *alice.OutgoingTurn) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("step panicked", "panic", p)
			response = apology(turn)
		}
	}()

	key := h.deps.Service.Table().Route(turn)
	logger = logger.With("route", key.String())
	logger.Info("turn received", "utterance", turn.Utterance())

	authCtx, err := h.deps.Guard.Authenticate(turn)
	if err != nil {
		if h.deps.Service.Table().RequiresAuth(key) {
			logger.Info("authentication failed", "error", err)
			return alice.NewResponse(textAuthPrompt).WithAccountLinking()
		}
		// Public steps run fine without identity; keep whatever the
		// guard could not verify out of the turn.
		authCtx = auth.Context{}
	}

	response, err = h.deps.Service.Execute(ctx, key, &skill.Turn{In: turn, Auth: authCtx})
	if err != nil {
		if errors.Is(err, resolver.ErrContractViolation) {
			logger.Error("resolver contract violation", "error", err)
		} else {
			logger.Error("step failed", "error", err)
		}
		return apology(turn)
	}
	logger.Info("turn answered", "end_session", response.Response.EndSession)
	return response
}

// apology keeps the carried handler alive so the user can retry the
// same step once the upstream recovers.
func apology(turn *alice.IncomingTurn) *alice.OutgoingTurn {
	response := alice.NewResponse(textApology)
	if next := turn.State.Session.NextHandler; next != "" {
		response.WithNextHandler(next)
		if len(turn.State.Session.Data) > 0 {
			response.SessionState.Data = turn.State.Session.Data
		}
	}
	return response
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
