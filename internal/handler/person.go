// Package handler contains the HTTP request handlers.
//
// Handlers parse the request, call the service, and write the response.
// They hold no business rules: validation lives in the service, storage in
// the repository.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/pessoas/internal/apperror"
	"github.com/sakif/pessoas/internal/model"
	"github.com/sakif/pessoas/internal/service"
)

// DefaultMaxBodyBytes caps a create request body.
const DefaultMaxBodyBytes = 64 << 10

// PersonHandler serves the /pessoas and /contagem-pessoas endpoints.
type PersonHandler struct {
	svc          *service.PersonService
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewPersonHandler creates a new PersonHandler. A non-positive
// maxBodyBytes selects DefaultMaxBodyBytes.
func NewPersonHandler(svc *service.PersonService, maxBodyBytes int64, logger *slog.Logger) *PersonHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &PersonHandler{
		svc:          svc,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes mounts the person endpoints on r.
//
//	POST /pessoas           → create
//	GET  /pessoas/{id}      → get by id
//	GET  /pessoas?t={term}  → search
//	GET  /contagem-pessoas  → count
func (h *PersonHandler) RegisterRoutes(r chi.Router) {
	r.Post("/pessoas", h.HandleCreate)
	r.Get("/pessoas", h.HandleSearch)
	r.Get("/pessoas/{id}", h.HandleGetByID)
	r.Get("/contagem-pessoas", h.HandleCount)
}

// HandleCreate stores a new person.
//
// HTTP: POST /pessoas
// REQUEST BODY: {"nome": "...", "apelido": "...", "nascimento": "YYYY-MM-DD", "stack": [...] | null}
//
// A body that isn't JSON is a 400. A body that is JSON but has the wrong
// shape (a number where a string belongs, a missing field, a bad date) is a
// 422, the same as any other validation failure.
func (h *PersonHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var in model.PersonInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeDecodeError(w, err)
		return
	}

	person, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", "/pessoas/"+person.ID)
	writeJSON(w, http.StatusCreated, person)
}

// HandleGetByID returns a single person.
//
// HTTP: GET /pessoas/{id}
func (h *PersonHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	person, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// HandleSearch returns the people matching the t query parameter. The
// response is always a JSON array, empty when nothing matches or t is blank.
//
// HTTP: GET /pessoas?t={term}
func (h *PersonHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	people, err := h.svc.Search(r.Context(), r.URL.Query().Get("t"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, people)
}

// HandleCount returns the number of stored people as a bare JSON integer.
//
// HTTP: GET /contagem-pessoas
func (h *PersonHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *PersonHandler) writeDecodeError(w http.ResponseWriter, err error) {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooBig    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooBig):
		writeRequestError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		h.logger.Debug("malformed person JSON", slog.String("error", err.Error()))
		writeRequestError(w, http.StatusBadRequest, "request body must be a JSON object")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		writeError(w, apperror.ValidationFailed(field, field+" has the wrong type"))
	default:
		writeRequestError(w, http.StatusBadRequest, "request body could not be decoded")
	}
}
