package checkout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type Handle struct {
	service *Service
}

func NewHandle(service *Service) Handle {
	return Handle{service: service}
}

// Routes returns the checkout routes. Order placement runs behind CreateAccountFilter.
// Placed orders are never listed over HTTP.
func (h Handle) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(CreateAccountFilter).Post("/", h.PlaceOrder)
	return r
}

// PlaceOrder handles POST /
func (h Handle) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	email := r.PostForm.Get("billing_email")
	if email == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Billing email is required"})
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), PlaceOrderParams{
		BillingEmail:  email,
		CreateAccount: r.PostForm.Get(HostCreateAccountField) == "1",
	})
	if err != nil {
		slog.Error("Failed placing order", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed placing order"})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, order)
}
