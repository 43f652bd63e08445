package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"CandyShop/pkg/kit"
)

type Server struct {
	Catalog *Service
	Log     *zap.Logger
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := s.Catalog.List(r.Context(), Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	})
	if err != nil {
		kit.WriteErr(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "product not found")
		return
	}

	p, err := s.Catalog.Get(r.Context(), id)
	if err != nil {
		kit.WriteErr(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}
