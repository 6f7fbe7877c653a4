package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/openapi-toolproxy/internal/common"
	"github.com/bobmcallan/openapi-toolproxy/internal/dispatch"
)

// Invoker runs a named tool. *dispatch.Dispatcher implements it.
type Invoker interface {
	Invoke(ctx context.Context, name string, req dispatch.Request) (*dispatch.Result, error)
}

// InvokeRequest is the body of POST /invoke.
type InvokeRequest struct {
	ToolName string           `json:"tool_name"`
	Input    dispatch.Request `json:"input"`
}

// InvokeResponse is the success body of POST /invoke.
type InvokeResponse struct {
	Output *dispatch.Result `json:"output"`
}

// InvokeHandler handles tool invocations.
type InvokeHandler struct {
	invoker Invoker
	logger  *common.Logger
}

// NewInvokeHandler creates a new invoke handler.
func NewInvokeHandler(invoker Invoker, logger *common.Logger) *InvokeHandler {
	return &InvokeHandler{invoker: invoker, logger: logger}
}

// ServeHTTP handles POST /invoke.
func (h *InvokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	req, err := decodeInvokeRequest(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, KindBadRequest, err.Error())
		return
	}

	result, err := h.invoker.Invoke(r.Context(), req.ToolName, req.Input)
	if err != nil {
		h.writeInvokeError(w, req.ToolName, err)
		return
	}

	WriteJSON(w, http.StatusOK, InvokeResponse{Output: result})
}

func (h *InvokeHandler) writeInvokeError(w http.ResponseWriter, tool string, err error) {
	var notFound *dispatch.ToolNotFoundError
	var upstream *dispatch.UpstreamError
	switch {
	case errors.As(err, &notFound):
		WriteError(w, http.StatusNotFound, KindToolNotFound, "Tool not found")
	case errors.As(err, &upstream):
		WriteError(w, http.StatusInternalServerError, KindUpstreamError, upstream.Error())
	default:
		h.logger.Error().Str("tool", tool).Str("error", err.Error()).Msg("invoke failed")
		WriteError(w, http.StatusInternalServerError, KindInternalError, err.Error())
	}
}

// decodeInvokeRequest parses the body, keeping numbers exact so large IDs
// survive into paths and query strings.
func decodeInvokeRequest(r *http.Request) (*InvokeRequest, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errors.New("request body too large")
		}
		return nil, errors.New("failed to read request body")
	}

	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var req InvokeRequest
	if err := dec.Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body: " + err.Error())
	}
	req.ToolName = strings.TrimSpace(req.ToolName)
	if req.ToolName == "" {
		return nil, errors.New("tool_name is required")
	}
	return &req, nil
}
