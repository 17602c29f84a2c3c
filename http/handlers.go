package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"

	"people/db"
	"people/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 64 << 10

type Handler struct {
	repo     db.Repository
	log      *slog.Logger
	validate *validator.Validate
}

func New(repo db.Repository, log *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		log:      log,
		validate: validator.New(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		h.log.DebugContext(r.Context(), "error reading body", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "unreadable body")
		return
	}

	person, err := h.decodeNewPerson(body)
	if err != nil {
		h.log.DebugContext(r.Context(), "rejected person", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := h.repo.Insert(r.Context(), person)
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.storeFailure(r, "insert", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	metrics.PeopleCreated.Inc()
	h.log.DebugContext(r.Context(), "created person", "id", saved.ID)

	w.Header().Set("Location", path.Join(r.URL.Path, saved.ID.String()))
	writeJSON(w, http.StatusCreated, saved)
}

// GetPerson also serves /people/count: httprouter does not allow a static
// segment next to the :id wildcard. The Portuguese routes count on
// /contagem-pessoas only.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	param := ps.ByName("id")
	if param == "count" && strings.HasPrefix(r.URL.Path, "/people/") {
		h.CountPeople(w, r, ps)
		return
	}

	id, err := uuid.Parse(param)
	if err != nil {
		h.log.DebugContext(r.Context(), "get person with invalid uuid", "id", param, "error", err)
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	person, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		h.storeFailure(r, "find", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if person == nil {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}

	writeJSON(w, http.StatusOK, person)
}

func (h *Handler) SearchPeople(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	if _, ok := query["t"]; !ok {
		writeError(w, http.StatusBadRequest, "query parameter t is required")
		return
	}
	term := query.Get("t")

	people, err := h.repo.Search(r.Context(), term)
	if err != nil {
		h.storeFailure(r, "search", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, people)
}

func (h *Handler) CountPeople(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := h.repo.Count(r.Context())
	if err != nil {
		h.storeFailure(r, "count", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(strconv.FormatInt(count, 10))); err != nil {
		h.log.DebugContext(r.Context(), "error writing response", "error", err)
	}
}

func (h *Handler) storeFailure(r *http.Request, operation string, err error) {
	metrics.StoreErrors.WithLabelValues(operation).Inc()
	h.log.ErrorContext(r.Context(), "store call failed", "operation", operation, "error", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
