// internal/handlers/listing.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gamevault/gamevault-backend/internal/repository"
	"github.com/gamevault/gamevault-backend/internal/services"
	"github.com/gamevault/gamevault-backend/internal/utils"
)

type ListingHandler struct {
	listingService *services.ListingService
	storageService *services.StorageService
}

func NewListingHandler(listingService *services.ListingService, storageService *services.StorageService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		storageService: storageService,
	}
}

type CreateListingRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Description string   `json:"description" validate:"max=5000"`
	Category    string   `json:"category" validate:"required,max=100"`
	Price       string   `json:"price" validate:"required"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
}

type UpdateStockRequest struct {
	InStock *bool `json:"in_stock" validate:"required"`
}

// GET /listings
func (h *ListingHandler) GetListings(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := repository.ListingFilter{
		Category: params.Category,
		Search:   params.Search,
		Offset:   params.Offset(),
		Limit:    params.Limit,
	}

	if sellerIDStr := c.Query("seller_id"); sellerIDStr != "" {
		if sellerID, err := uuid.Parse(sellerIDStr); err == nil {
			filter.SellerID = &sellerID
		}
	}

	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		if inStock, err := strconv.ParseBool(inStockStr); err == nil && inStock {
			filter.InStockOnly = true
		}
	}

	listings, total, err := h.listingService.Browse(c.Request.Context(), filter)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(listings, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.listingService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid price", nil)
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), sellerID, services.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       price,
		Images:      req.Images,
		Tags:        req.Tags,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, listing)
}

// PUT /listings/:id/stock
func (h *ListingHandler) UpdateStock(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.InStock == nil {
		utils.BadRequestResponse(c, "in_stock is required", nil)
		return
	}

	if err := h.listingService.SetStock(c.Request.Context(), sellerID, id, *req.InStock); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"in_stock": *req.InStock})
}
