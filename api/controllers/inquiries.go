package controllers

import (
	"net/http"

	"github.com/printcraft/printcraft-backend/api/middleware"
	"github.com/printcraft/printcraft-backend/api/responses"
	"github.com/printcraft/printcraft-backend/api/validators"
	"github.com/printcraft/printcraft-backend/internal/inquiries"
	"github.com/printcraft/printcraft-backend/pkg/enums"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
	"github.com/printcraft/printcraft-backend/pkg/logger"
)

// CreateInquiry opens a new RFQ group for the authenticated customer.
func CreateInquiry(svc *inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input inquiries.CreateInquiryInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, group)
	}
}

// ListMyInquiries returns the caller's inquiry groups.
func ListMyInquiries(svc *inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groups, err := svc.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

// GetMyInquiry returns one inquiry group owned by the caller.
func GetMyInquiry(svc *inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inquiryID, err := validators.ParseUUIDParam(r, "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.GetForUser(r.Context(), middleware.UserIDFromContext(r.Context()), inquiryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, group)
	}
}

// RespondToQuote accepts or rejects a quoted inquiry group.
func RespondToQuote(svc *inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inquiryID, err := validators.ParseUUIDParam(r, "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input inquiries.RespondInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.Respond(r.Context(), middleware.UserIDFromContext(r.Context()), inquiryID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, group)
	}
}

// AdminListInquiries returns inquiry groups across users with a status filter.
func AdminListInquiries(svc *inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var query inquiries.ListQuery
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseInquiryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			query.Status = &status
		}

		groups, err := svc.ListAdmin(r.Context(), query, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

// AdminQuoteInquiry records the admin's price on an inquiry group.
func AdminQuoteInquiry(svc *inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inquiryID, err := validators.ParseUUIDParam(r, "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input inquiries.QuoteInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.Quote(r.Context(), inquiryID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, group)
	}
}
