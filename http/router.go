package handler

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, log *slog.Logger) *httprouter.Router {
	router := httprouter.New()

	handle := func(method, route string, fn httprouter.Handle) {
		router.Handle(method, route, instrument(log, route, fn))
	}

	handle(http.MethodPost, "/people", h.CreatePerson)
	handle(http.MethodGet, "/people", h.SearchPeople)
	handle(http.MethodGet, "/people/:id", h.GetPerson)

	// Portuguese routes used by existing clients
	handle(http.MethodPost, "/pessoas", h.CreatePerson)
	handle(http.MethodGet, "/pessoas", h.SearchPeople)
	handle(http.MethodGet, "/pessoas/:id", h.GetPerson)
	handle(http.MethodGet, "/contagem-pessoas", h.CountPeople)

	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log.ErrorContext(r.Context(), "panic serving request", "path", r.URL.Path, "panic", v)
		w.WriteHeader(http.StatusInternalServerError)
	}

	return router
}
