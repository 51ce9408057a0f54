package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mercatto/marketplace-api/internal/http/response"
	"github.com/mercatto/marketplace-api/internal/observability"
	"github.com/mercatto/marketplace-api/internal/repository"
	"github.com/mercatto/marketplace-api/internal/service"
)

type ProductHandler struct {
	svc service.ProductServiceInterface
}

func NewProductHandler(svc service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := actorID(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	var body struct {
		Title     string  `json:"title"`
		Price     float64 `json:"price"`
		Published bool    `json:"published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	created, err := h.svc.Create(r.Context(), owner, service.CreateProductInput{
		Title:     body.Title,
		Price:     body.Price,
		Published: body.Published,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductInvalidTitle),
			errors.Is(err, service.ErrProductInvalidPrice):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create product", nil)
			return
		}
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "product.create",
		ActorUserID: formatUserID(owner),
		TargetType:  "product",
		TargetID:    strconv.FormatUint(uint64(created.ID), 10),
		Action:      "create",
		Outcome:     "success",
		Reason:      "product_created",
	}, "title", created.Title)
	response.JSON(w, r, http.StatusCreated, created)
}

// Search is the public catalog query. Filter parameters are best effort so
// criteria parsing never rejects a request; pagination keeps its strict
// validation.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	criteria := service.ParseSearchCriteria(r.URL.Query())

	res, err := h.svc.Search(r.Context(), criteria, pageReq)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "one or more requested products do not exist", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to search products", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, paginatedData(res.Items, res.Page, res.PageSize, res.Total, res.TotalPages))
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}

	product, err := h.svc.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	productID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	var body struct {
		Title     *string  `json:"title"`
		Price     *float64 `json:"price"`
		Published *bool    `json:"published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	updated, err := h.svc.Update(r.Context(), actor, productID, service.UpdateProductInput{
		Title:     body.Title,
		Price:     body.Price,
		Published: body.Published,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		case errors.Is(err, service.ErrProductForbidden):
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "product belongs to another user", nil)
			return
		case errors.Is(err, service.ErrProductInvalidTitle),
			errors.Is(err, service.ErrProductInvalidPrice),
			errors.Is(err, service.ErrProductNoUpdates):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to update product", nil)
			return
		}
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "product.update",
		ActorUserID: formatUserID(actor),
		TargetType:  "product",
		TargetID:    strconv.FormatUint(uint64(productID), 10),
		Action:      "update",
		Outcome:     "success",
		Reason:      "product_updated",
	}, "title", updated.Title)
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	productID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}

	if err := h.svc.DeleteByID(r.Context(), actor, productID); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		case errors.Is(err, service.ErrProductForbidden):
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "product belongs to another user", nil)
			return
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to delete product", nil)
			return
		}
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "product.delete",
		ActorUserID: formatUserID(actor),
		TargetType:  "product",
		TargetID:    strconv.FormatUint(uint64(productID), 10),
		Action:      "delete",
		Outcome:     "success",
		Reason:      "product_deleted",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}
