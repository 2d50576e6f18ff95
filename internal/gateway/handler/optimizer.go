package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"workshophub/internal/credential"
	"workshophub/internal/gateway/middleware"
	optimizersvc "workshophub/internal/gateway/service/optimizer"
	"workshophub/internal/optimizer"
)

// OptimizerHandler exposes the per-session optimizer machine.
type OptimizerHandler struct {
	svc      *optimizersvc.Service
	upgrader websocket.Upgrader
}

// NewOptimizerHandler serves the optimizer API. allowedOrigins restricts
// websocket upgrades; empty admits any origin.
func NewOptimizerHandler(svc *optimizersvc.Service, allowedOrigins []string) *OptimizerHandler {
	return &OptimizerHandler{svc: svc, upgrader: newOptimizerWSUpgrader(allowedOrigins)}
}

type optimizerResponse struct {
	optimizer.Snapshot
	CredentialMode optimizersvc.CredentialMode `json:"credentialMode"`
}

type optimizerErrorBody struct {
	Error    string             `json:"error"`
	Code     string             `json:"code"`
	Snapshot optimizer.Snapshot `json:"snapshot"`
}

type selectCredentialRequest struct {
	APIKey string `json:"apiKey"`
}

type submitRequest struct {
	Workflow   string `json:"workflow"`
	PainPoints string `json:"painPoints"`
}

func (h *OptimizerHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context(), middleware.SessionFrom(r.Context()))
	h.respond(w, r, snap, err)
}

func (h *OptimizerHandler) HandleSelectCredential(w http.ResponseWriter, r *http.Request) {
	var in selectCredentialRequest
	if err := decodeOptionalJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	snap, err := h.svc.SelectCredential(r.Context(), middleware.SessionFrom(r.Context()), in.APIKey)
	h.respond(w, r, snap, err)
}

func (h *OptimizerHandler) HandleResetCredential(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.ResetCredential(r.Context(), middleware.SessionFrom(r.Context()))
	h.respond(w, r, snap, err)
}

// HandleSubmit blocks until the submission resolves or fails.
func (h *OptimizerHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in submitRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	snap, err := h.svc.Submit(r.Context(), middleware.SessionFrom(r.Context()), in.Workflow, in.PainPoints)
	h.respond(w, r, snap, err)
}

func (h *OptimizerHandler) respond(w http.ResponseWriter, r *http.Request, snap optimizer.Snapshot, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, optimizerResponse{Snapshot: snap, CredentialMode: h.svc.Mode()})
		return
	}
	status, code := optimizerStatus(err)
	if status == http.StatusInternalServerError {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, status, optimizerErrorBody{Error: optimizerErrorMessage(err), Code: code, Snapshot: snap})
}

// optimizerErrorMessage is the client-facing text for a rejected action.
func optimizerErrorMessage(err error) string {
	var vErr *optimizer.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Reason
	}
	return err.Error()
}

func optimizerStatus(err error) (int, string) {
	var vErr *optimizer.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, optimizer.ErrGated):
		return http.StatusPreconditionFailed, "credential_required"
	case errors.Is(err, optimizer.ErrSubmissionInFlight), errors.Is(err, optimizer.ErrInvalidTransition):
		return http.StatusConflict, "conflict"
	case errors.Is(err, credential.ErrNoProvider):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, optimizersvc.ErrServerManagedKey):
		return http.StatusBadRequest, "invalid_argument"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
