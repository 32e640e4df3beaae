package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonathan/headline-scorer/internal/server/middleware"
	"github.com/jonathan/headline-scorer/internal/session"
)

// editFieldPrefix prefixes the per-entry inputs of the editable list
const editFieldPrefix = "headline_"

// handleIndex renders the page for the caller's session
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st, err := s.state(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var data *pageData
	st.Do(func(st *session.State) {
		data = buildPageData(st, s.scorer.Endpoint())
	})

	if err := s.page.render(w, data); err != nil {
		log.Printf("Error rendering page: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

// formAction parses the form, applies pending headline_<i> edits and then fn
// to the caller's session, and redirects back to the page.
func (s *Server) formAction(w http.ResponseWriter, r *http.Request, fn func(st *session.State, form url.Values)) {
	st, err := s.state(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	st.Do(func(st *session.State) {
		applyEdits(st, r.PostForm)
		fn(st, r.PostForm)
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAdd appends the single-entry field and clears it on success
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, func(st *session.State, form url.Values) {
		text := form.Get("headline")
		if st.Store.Add(text) {
			st.Input = ""
			return
		}
		st.Input = text
	})
}

// handleImport appends every non-blank pasted line
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, func(st *session.State, form url.Values) {
		block := form.Get("block")
		if strings.TrimSpace(block) == "" {
			return
		}
		n := st.Store.ImportLines(block)
		st.AddFlash(session.LevelSuccess, fmt.Sprintf("Imported %d headlines from paste.", n))
	})
}

// handleEdit applies every headline_<i> field to the current list
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, func(*session.State, url.Values) {})
}

// handleRemove applies pending edits, then deletes the entry at {index}
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid headline index", http.StatusBadRequest)
		return
	}

	s.formAction(w, r, func(st *session.State, _ url.Values) {
		st.Store.RemoveAt(index)
	})
}

// handleClear empties the list
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, func(st *session.State, _ url.Values) {
		st.Store.ClearAll()
	})
}

// handleUpload applies pending edits, then imports a text file, skipping
// lines already in the list
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	st, err := s.state(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	raw, problem := s.readUpload(w, r)

	st.Do(func(st *session.State) {
		applyEdits(st, r.PostForm)
		if problem != "" {
			st.AddFlash(session.LevelError, problem)
			return
		}
		n, err := st.Store.ImportFile(raw)
		if err != nil {
			st.AddFlash(session.LevelError, UserMessage(err))
			return
		}
		st.Result = nil
		st.AddFlash(session.LevelSuccess, fmt.Sprintf("Imported %d new headlines from file.", n))
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// readUpload returns the bytes of the multipart "file" field, or a message
// for the user when there is no usable file
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string) {
	tooLarge := fmt.Sprintf("Uploaded file is larger than %d bytes.", s.maxUploadBytes)

	// leave room for the multipart envelope around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+(64<<10))
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge
		}
		return nil, fmt.Sprintf("Could not read upload: %v", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "No file uploaded."
	}
	defer file.Close() //nolint:errcheck

	if header.Size > s.maxUploadBytes {
		return nil, tooLarge
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Sprintf("Could not read uploaded file: %v", err)
	}
	return raw, ""
}

// handleScore scores the session's list and keeps the result for the next render
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, func(st *session.State, _ url.Values) {
		result, err := s.scorer.Score(r.Context(), st.Store.Snapshot())
		if err != nil {
			log.Printf("[score] failed (%s): %v", ErrorKind(err), err)
			st.Result = nil
			st.AddFlash(session.LevelError, UserMessage(err))
			return
		}
		st.Result = result
		st.AddFlash(session.LevelSuccess, "Scored successfully")
	})
}

// handleReset drops the session's state; the next request starts empty
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.GetSessionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.sessions.Reset(sessionID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// applyEdits writes each headline_<i> form value into the list at i.
// Indices that no longer exist are skipped.
func applyEdits(st *session.State, form url.Values) {
	for key, values := range form {
		if !strings.HasPrefix(key, editFieldPrefix) || len(values) == 0 {
			continue
		}
		index, err := strconv.Atoi(strings.TrimPrefix(key, editFieldPrefix))
		if err != nil {
			continue
		}
		st.Store.EditAt(index, values[0])
	}
}
