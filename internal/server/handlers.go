package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
	"github.com/agbru/yieldfit/pkg/models"
)

// handleHealth responds to health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}
	s.writeJSONResponse(w, http.StatusOK, response)
}

// handleSolvers returns the registered solvers and the default one.
func (s *Server) handleSolvers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.SolversResponse{
		Solvers: s.service.Solvers(),
		Default: fit.DefaultSolver,
	})
}

// handleFit decodes a models.FitRequest body, runs the fit and returns a
// models.FitResponse. A fit that stops on its iteration budget is still a
// 200 response with converged set to false.
func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, err := s.decodeFitRequest(w, r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	resp, err := s.service.Fit(ctx, req)
	if err != nil {
		s.writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	s.metrics.ObserveFit(resp)
	s.writeJSONResponse(w, http.StatusOK, resp)
}

func (s *Server) decodeFitRequest(w http.ResponseWriter, r *http.Request) (models.FitRequest, error) {
	var req models.FitRequest
	if s.securityConfig.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.securityConfig.MaxBodyBytes)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, RequestError{
				Message:    fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit),
				StatusCode: http.StatusRequestEntityTooLarge,
			}
		}
		return req, RequestError{Message: "Invalid JSON body: " + err.Error(), StatusCode: http.StatusBadRequest}
	}
	return req, nil
}

// handleEvaluate samples the model for the parameters in the query string.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	p, from, to, step, err := parseEvaluateParams(r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	resp, err := s.service.Evaluate(r.Context(), p, from, to, step)
	if err != nil {
		s.writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// parseEvaluateParams reads a1, a2, a3 and b (required) and from, to and
// step (defaults 1, 30 and 1) from the query string.
func parseEvaluateParams(r *http.Request) (p nelsonsiegel.Params, from, to, step float64, err error) {
	q := r.URL.Query()
	values := make([]float64, nelsonsiegel.NumParams)
	for i, name := range nelsonsiegel.ParamNames {
		raw := q.Get(name)
		if raw == "" {
			return p, 0, 0, 0, RequestError{Message: fmt.Sprintf("Missing '%s' parameter", name), StatusCode: http.StatusBadRequest}
		}
		if values[i], err = strconv.ParseFloat(raw, 64); err != nil {
			return p, 0, 0, 0, RequestError{Message: fmt.Sprintf("Invalid '%s' parameter: must be a number", name), StatusCode: http.StatusBadRequest}
		}
	}
	if p, err = nelsonsiegel.FromVector(values); err != nil {
		return p, 0, 0, 0, RequestError{Message: err.Error(), StatusCode: http.StatusBadRequest}
	}
	if !p.IsFinite() {
		return p, 0, 0, 0, RequestError{Message: "Parameters must be finite numbers", StatusCode: http.StatusBadRequest}
	}

	bounds := []struct {
		name string
		dst  *float64
		def  float64
	}{
		{"from", &from, 1},
		{"to", &to, nelsonsiegel.MaxMaturity},
		{"step", &step, 1},
	}
	for _, b := range bounds {
		*b.dst = b.def
		if raw := q.Get(b.name); raw != "" {
			v, perr := strconv.ParseFloat(raw, 64)
			if perr != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return p, 0, 0, 0, RequestError{Message: fmt.Sprintf("Invalid '%s' parameter: must be a finite number", b.name), StatusCode: http.StatusBadRequest}
			}
			*b.dst = v
		}
	}
	return p, from, to, step, nil
}

// statusForError maps the fitting error taxonomy to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNumericInstability):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeRequestError(w http.ResponseWriter, err error) {
	var reqErr RequestError
	if errors.As(err, &reqErr) {
		s.writeErrorResponse(w, reqErr.StatusCode, reqErr.Message)
		return
	}
	s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
}

// writeJSONResponse writes data as JSON with the given status code.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

// writeErrorResponse writes a standardized error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
