package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/cinema-storefront/api"
	"github.com/metinatakli/cinema-storefront/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	DefaultSort     = "-creation_date"

	promotionSentTemplate = "promotion.tmpl"
)

func (app *Application) ListPromotions(w http.ResponseWriter, r *http.Request) {
	params, err := readPromotionsParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	promotions, err := app.promotions.ListPromotions(r.Context(), app.contextGetAuthToken(r))
	if err != nil {
		app.upstreamErrorResponse(w, r, err)
		return
	}

	page, metadata := domain.PagePromotions(promotions, toPagination(params))

	resp := api.PromotionListResponse{
		Promotions: make([]api.Promotion, len(page)),
		Metadata:   toApiMetadata(metadata),
	}

	for i, p := range page {
		resp.Promotions[i] = toApiPromotion(p)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreatePromotionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	promotion, err := app.promotions.CreatePromotion(r.Context(), app.contextGetAuthToken(r), domain.Promotion{
		Code:               input.Code,
		DiscountPercentage: input.DiscountPercentage,
		Description:        input.Description,
	})
	if err != nil {
		app.upstreamErrorResponse(w, r, err)
		return
	}

	logger.Info("promotion created", "promotion_id", promotion.ID, "code", promotion.Code)

	resp := api.PromotionResponse{
		Promotion: toApiPromotion(*promotion),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	promotionId, err := readIntParam(r, "promotionId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.promotions.DeletePromotion(r.Context(), app.contextGetAuthToken(r), promotionId)
	if err != nil {
		app.upstreamErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendPromotion triggers the backend's email blast for a promotion. A
// promotion goes out at most once.
func (app *Application) SendPromotion(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	promotionId, err := readIntParam(r, "promotionId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token := app.contextGetAuthToken(r)

	promotions, err := app.promotions.ListPromotions(r.Context(), token)
	if err != nil {
		app.upstreamErrorResponse(w, r, err)
		return
	}

	var promotion *domain.Promotion
	for i := range promotions {
		if promotions[i].ID == promotionId {
			promotion = &promotions[i]
			break
		}
	}

	if promotion == nil {
		app.notFoundResponse(w, r)
		return
	}

	err = promotion.MarkSent()
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPromotionSent):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.promotions.SendPromotion(r.Context(), token, promotionId)
	if err != nil {
		app.upstreamErrorResponse(w, r, err)
		return
	}

	logger.Info("promotion sent", "promotion_id", promotion.ID, "code", promotion.Code)

	if app.config.OpsEmail != "" {
		sent := *promotion

		app.background(r, "promotion sent notice", func() error {
			return app.mailer.Send(app.config.OpsEmail, promotionSentTemplate, map[string]any{
				"Code":               sent.Code,
				"DiscountPercentage": sent.DiscountPercentage.String(),
				"Description":        sent.Description,
			})
		})
	}

	resp := api.PromotionResponse{
		Promotion: toApiPromotion(*promotion),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func readPromotionsParams(r *http.Request) (api.GetPromotionsParams, error) {
	var params api.GetPromotionsParams
	var err error

	params.Page, err = readQueryInt(r, "page")
	if err != nil {
		return params, err
	}

	params.PageSize, err = readQueryInt(r, "pageSize")
	if err != nil {
		return params, err
	}

	params.Sort = readQueryString(r, "sort")
	params.Term = readQueryString(r, "term")

	return params, nil
}

func toPagination(params api.GetPromotionsParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		Sort:     DefaultSort,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}
	if params.Sort != nil {
		pagination.Sort = *params.Sort
	}
	if params.Term != nil {
		pagination.Term = *params.Term
	}

	return pagination
}

func toApiMetadata(metadata *domain.Metadata) *api.Metadata {
	if metadata == nil {
		return nil
	}

	return &api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}

func toApiPromotion(p domain.Promotion) api.Promotion {
	promotion := api.Promotion{
		Id:                 p.ID,
		Code:               p.Code,
		DiscountPercentage: p.DiscountPercentage,
		Description:        p.Description,
		Sent:               p.Sent,
	}

	if !p.CreationDate.IsZero() {
		creationDate := p.CreationDate
		promotion.CreationDate = &creationDate
	}

	return promotion
}
