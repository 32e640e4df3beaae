package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/headline-scorer/internal/scoring"
	"github.com/jonathan/headline-scorer/internal/session"
)

var validate = validator.New()

// AddRequest is the body of POST /api/headlines; blank text is a no-op, not an error
type AddRequest struct {
	Text *string `json:"text" validate:"required"`
}

// ImportRequest is the body of POST /api/headlines/import
type ImportRequest struct {
	Block *string `json:"block" validate:"required"`
}

// EditRequest is the body of PUT /api/headlines/{index}; an empty text is a valid edit
type EditRequest struct {
	Text *string `json:"text" validate:"required"`
}

// ListResponse reports the session's list after an action
type ListResponse struct {
	Headlines []string       `json:"headlines"`
	Added     *bool          `json:"added,omitempty"`
	Imported  *int           `json:"imported,omitempty"`
	Changed   *bool          `json:"changed,omitempty"`
	Result    *ScoreResponse `json:"result,omitempty"`
}

// ScoreResponse is the body of a successful POST /api/score
type ScoreResponse struct {
	Rows    []scoring.Row        `json:"rows"`
	Summary []scoring.SummaryRow `json:"summary"`
}

// ErrorResponse is returned for a failed API action
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func newScoreResponse(result *scoring.Result) *ScoreResponse {
	if result == nil {
		return nil
	}
	return &ScoreResponse{Rows: result.Rows, Summary: result.Summary()}
}

// decodeAndValidate reads a JSON body into dst and runs struct validation
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("validation error: %s - %s", strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return err
	}
	return nil
}

// apiAction runs fn on the caller's session and writes the resulting list.
func (s *Server) apiAction(w http.ResponseWriter, r *http.Request, fn func(st *session.State, resp *ListResponse)) {
	st, err := s.state(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var resp ListResponse
	st.Do(func(st *session.State) {
		fn(st, &resp)
		resp.Headlines = st.Store.Snapshot()
	})
	s.jsonResponse(w, http.StatusOK, resp)
}

func pathIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, fmt.Errorf("invalid headline index %q", r.PathValue("index"))
	}
	return index, nil
}

// handleAPIList returns the list and the last scored result
func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	s.apiAction(w, r, func(st *session.State, resp *ListResponse) {
		resp.Result = newScoreResponse(st.Result)
	})
}

// handleAPIAdd appends one headline
func (s *Server) handleAPIAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.apiAction(w, r, func(st *session.State, resp *ListResponse) {
		added := st.Store.Add(*req.Text)
		resp.Added = &added
	})
}

// handleAPIImport appends pasted lines without deduplication
func (s *Server) handleAPIImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.apiAction(w, r, func(st *session.State, resp *ListResponse) {
		n := st.Store.ImportLines(*req.Block)
		resp.Imported = &n
	})
}

// handleAPIUpload imports a raw text/plain body with file-import semantics
func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", s.maxUploadBytes))
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}

	st, err := s.state(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var (
		resp      ListResponse
		importErr error
	)
	st.Do(func(st *session.State) {
		n, err := st.Store.ImportFile(raw)
		if err != nil {
			importErr = err
			return
		}
		st.Result = nil
		resp.Imported = &n
		resp.Headlines = st.Store.Snapshot()
	})

	if importErr != nil {
		s.jsonResponse(w, HTTPStatus(importErr), ErrorResponse{Error: importErr.Error(), Kind: ErrorKind(importErr)})
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleAPIEdit replaces the entry at {index} verbatim
func (s *Server) handleAPIEdit(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	var req EditRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.apiAction(w, r, func(st *session.State, resp *ListResponse) {
		changed := st.Store.EditAt(index, *req.Text)
		resp.Changed = &changed
	})
}

// handleAPIRemove deletes the entry at {index}
func (s *Server) handleAPIRemove(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.apiAction(w, r, func(st *session.State, resp *ListResponse) {
		changed := st.Store.RemoveAt(index)
		resp.Changed = &changed
	})
}

// handleAPIClear empties the list
func (s *Server) handleAPIClear(w http.ResponseWriter, r *http.Request) {
	s.apiAction(w, r, func(st *session.State, _ *ListResponse) {
		st.Store.ClearAll()
	})
}

// handleAPIScore scores the session's list
func (s *Server) handleAPIScore(w http.ResponseWriter, r *http.Request) {
	st, err := s.state(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var (
		result   *scoring.Result
		scoreErr error
	)
	st.Do(func(st *session.State) {
		result, scoreErr = s.scorer.Score(r.Context(), st.Store.Snapshot())
		if scoreErr != nil {
			st.Result = nil
			return
		}
		st.Result = result
	})

	if scoreErr != nil {
		log.Printf("[score] failed (%s): %v", ErrorKind(scoreErr), scoreErr)
		s.jsonResponse(w, HTTPStatus(scoreErr), ErrorResponse{Error: UserMessage(scoreErr), Kind: ErrorKind(scoreErr)})
		return
	}
	s.jsonResponse(w, http.StatusOK, newScoreResponse(result))
}
