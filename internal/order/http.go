package order

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"CandyShop/internal/store"
	"CandyShop/pkg/kit"
)

const maxCreateBody = 1 << 20

type Server struct {
	Processor *Processor
	Query     *Query
	Log       *zap.Logger
}

func (s *Server) Routes(r chi.Router) {
	r.Post("/orders", s.create)
	r.Get("/orders/{userId}", s.listForUser)
}

type createResp struct {
	Message string      `json:"message"`
	Order   store.Order `json:"order"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateRequest(w, r)
	if err != nil {
		kit.WriteErr(w, r, s.Log, ErrInvalidOrder)
		return
	}

	o, err := s.Processor.PlaceOrder(r.Context(), req)
	if err != nil {
		kit.WriteErr(w, r, s.Log, err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, createResp{Message: "order placed", Order: o})
}

func (s *Server) listForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	orders, err := s.Query.OrdersForUser(r.Context(), userID)
	if err != nil {
		kit.WriteErr(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, orders)
}

func decodeCreateRequest(w http.ResponseWriter, r *http.Request) (PlaceRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)

	var req PlaceRequest
	if err := dec.Decode(&req); err != nil {
		return PlaceRequest{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return PlaceRequest{}, errors.New("extra data after json object")
	}

	return req, nil
}
