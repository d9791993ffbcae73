package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor/transform"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/intmat"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

type determinantRequest struct {
	Matrix intmat.Matrix `json:"matrix"`
}

type determinantResponse struct {
	Size        int   `json:"size"`
	Determinant int64 `json:"determinant"`
}

// selectionRequest is the body of /project, /blowdown and /analyze.
type selectionRequest struct {
	Graph   json.RawMessage `json:"graph"`
	Used    []int           `json:"used"`
	Order   []int           `json:"order"`
	Example json.RawMessage `json:"example,omitempty"`
	Verify  bool            `json:"verify,omitempty"`
}

type projectResponse struct {
	BaseUsed    []int         `json:"base_used"`
	Matrix      intmat.Matrix `json:"matrix"`
	Determinant int64         `json:"determinant"`
}

type blowdownResponse struct {
	analysis.Contraction
	Adjacency [][]int `json:"graph"`
	SelfInt   []int64 `json:"selfint"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.opts.Version})
}

func (s *Server) determinant(w http.ResponseWriter, r *http.Request) {
	var req determinantRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if n := req.Matrix.Size(); n > s.opts.MaxCurves {
		s.respondError(w, r, errors.New(errors.ErrCodeInvalidInput, "matrix has %d rows, limit is %d", n, s.opts.MaxCurves))
		return
	}
	det, err := intmat.DeterminantChecked(req.Matrix)
	if err != nil {
		code := errors.ErrCodeInternal
		if stderrors.Is(err, intmat.ErrNotSquare) {
			code = errors.ErrCodeInvalidInput
		}
		s.respondError(w, r, errors.Wrap(code, err, "determinant"))
		return
	}
	s.respondJSON(w, http.StatusOK, determinantResponse{Size: req.Matrix.Size(), Determinant: det})
}

func (s *Server) project(w http.ResponseWriter, r *http.Request) {
	req, g, err := s.decodeSelection(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.runner.Project(r.Context(), g, req.Used, analysis.Options{})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, projectResponse{
		BaseUsed:    p.BaseUsed,
		Matrix:      p.Matrix,
		Determinant: p.Determinant(),
	})
}

func (s *Server) blowdown(w http.ResponseWriter, r *http.Request) {
	req, g, err := s.decodeSelection(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	res, err := transform.Blowdown(g, divisor.Selection{Used: req.Used, BlowdownOrder: req.Order})
	if err != nil {
		s.respondError(w, r, analysis.Classify(err))
		return
	}
	s.respondJSON(w, http.StatusOK, blowdownResponse{
		Contraction: analysis.Contraction{
			NormalCrossing: res.NormalCrossing,
			RevisedK2:      res.RevisedK2,
			Contracted:     res.Contracted,
			StoppedAt:      res.StoppedAt,
			Surviving:      res.Surviving(),
			Deleted:        res.Deleted,
		},
		Adjacency: res.Graph.Adjacency,
		SelfInt:   res.Graph.SelfInt,
	})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	req, g, err := s.decodeSelection(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts := analysis.Options{Verify: req.Verify, Logger: s.logger}

	var res *analysis.Result
	if len(req.Example) > 0 {
		ex, derr := record.DecodeExample(g, req.Example, 1)
		if derr != nil {
			s.respondError(w, r, errors.Wrap(errors.ErrCodeInvalidRecord, derr, "decode example"))
			return
		}
		res, err = s.runner.Analyze(r.Context(), g, ex, opts)
	} else {
		res, err = s.runner.AnalyzeSelection(r.Context(), g, divisor.Selection{Used: req.Used, BlowdownOrder: req.Order}, opts)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// decodeSelection decodes a selection request and its graph. Malformed
// JSON is INVALID_RECORD, a well-formed but inconsistent graph
// INVALID_GRAPH.
func (s *Server) decodeSelection(w http.ResponseWriter, r *http.Request) (*selectionRequest, *divisor.Graph, error) {
	var req selectionRequest
	if err := s.decode(w, r, &req); err != nil {
		return nil, nil, err
	}
	if len(req.Graph) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "missing graph")
	}
	if n := countCurves(req.Graph); n > s.opts.MaxCurves {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "graph has %d curves, limit is %d", n, s.opts.MaxCurves)
	}
	g, err := record.DecodeGraph(req.Graph)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr) {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "decode graph")
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph")
	}
	return &req, g, nil
}

// countCurves returns the longer of the adjacency and self-intersection
// lists of a raw graph record without decoding their elements. Malformed
// input counts as zero and is left to record.DecodeGraph.
func countCurves(raw json.RawMessage) int {
	var shape struct {
		Graph   []json.RawMessage `json:"graph"`
		SelfInt []json.RawMessage `json:"selfint"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return 0
	}
	return max(len(shape.Graph), len(shape.SelfInt))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.New(errors.ErrCodeInvalidInput, "empty request body")
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	s.respondJSON(w, status, errorResponse{
		Error:     errorBody{Code: code, Message: errors.UserMessage(err)},
		RequestID: chimiddleware.GetReqID(r.Context()),
	})
}
