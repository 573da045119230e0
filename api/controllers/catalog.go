package controllers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/premiumstore/premiumstore-backend/api/responses"
	"github.com/premiumstore/premiumstore-backend/api/validators"
	"github.com/premiumstore/premiumstore-backend/internal/catalog"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
)

type addReviewPayload struct {
	Reviewer string `json:"reviewer" validate:"required,min=2,max=60"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Text     string `json:"text" validate:"required,min=3,max=1000"`
}

type addQuestionPayload struct {
	Question string `json:"question" validate:"required,min=5,max=500"`
}

// CatalogList returns products filtered by the query parameters.
func CatalogList(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		minPrice, err := validators.ParseQueryInt64(r, "min_price", 0)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		maxPrice, err := validators.ParseQueryInt64(r, "max_price", 0)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		inStock, err := validators.ParseQueryBool(r, "in_stock")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 500)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		products := store.FilterBy(catalog.Filter{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			Search:   r.URL.Query().Get("search"),
			Tag:      strings.TrimSpace(r.URL.Query().Get("tag")),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
			InStock:  inStock,
		})
		total := len(products)
		if limit > 0 && limit < len(products) {
			products = products[:limit]
		}
		if products == nil {
			products = []*catalog.Product{}
		}
		responses.WriteSuccess(w, map[string]any{
			"products": products,
			"count":    total,
		})
	}
}

// CatalogDetail returns one product by id.
func CatalogDetail(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product, err := store.FindByID(id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CatalogCategories lists the distinct categories.
func CatalogCategories(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": store.Categories()})
	}
}

// CatalogDeal returns the deal-of-the-day product with its discount
// percentage and the midnight countdown target.
func CatalogDeal(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var deal *catalog.Product
		for _, product := range store.FilterBy(catalog.Filter{Tag: "Deal of the Day"}) {
			deal = product
			break
		}
		if deal == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no deal running today"))
			return
		}

		percent := 0
		if deal.OldPrice != nil && *deal.OldPrice > 0 {
			percent = int(math.Round((1 - float64(deal.Price)/float64(*deal.OldPrice)) * 100))
		}
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)

		responses.WriteSuccess(w, map[string]any{
			"product":          deal,
			"discount_percent": percent,
			"ends_at":          midnight.UTC(),
		})
	}
}

// CatalogAddReview appends a review to a product.
func CatalogAddReview(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload addReviewPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		review := catalog.Review{
			Reviewer: strings.TrimSpace(payload.Reviewer),
			Rating:   payload.Rating,
			Text:     strings.TrimSpace(payload.Text),
			Date:     time.Now().UTC().Format("2006-01-02"),
		}
		if err := store.AddReview(id, review); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

// CatalogAddQuestion appends a Q&A entry to a product. Answers arrive
// later from the seller; the question starts unanswered.
func CatalogAddQuestion(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload addQuestionPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		question := catalog.Question{
			Question: strings.TrimSpace(payload.Question),
			Date:     time.Now().UTC().Format("2006-01-02"),
		}
		if err := store.AddQuestion(id, question); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, question)
	}
}

func productIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer")
	}
	return id, nil
}
