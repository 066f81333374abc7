package controllers

import (
	"net/http"

	"github.com/printcraft/printcraft-backend/api/middleware"
	"github.com/printcraft/printcraft-backend/api/responses"
	"github.com/printcraft/printcraft-backend/api/validators"
	"github.com/printcraft/printcraft-backend/internal/orders"
	"github.com/printcraft/printcraft-backend/pkg/logger"
)

// ListMyOrders returns the caller's orders, newest first.
func ListMyOrders(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetMyOrder returns one order owned by the caller, with its milestone
// schedule and transaction history.
func GetMyOrder(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetForUser(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
