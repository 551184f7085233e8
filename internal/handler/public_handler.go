package handler

import (
	"net/http"

	"vastustructural/internal/lifecycle"
	"vastustructural/internal/service"
	"vastustructural/pkg/pagination"
	"vastustructural/pkg/response"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the unauthenticated site: plans, checkout, order tracking and leads.
type PublicHandler struct {
	projectService  service.ProjectService
	feedService     service.FeedService
	checkoutService service.CheckoutService
	leadService     service.LeadService
}

func NewPublicHandler(projectService service.ProjectService, feedService service.FeedService, checkoutService service.CheckoutService, leadService service.LeadService) *PublicHandler {
	return &PublicHandler{
		projectService:  projectService,
		feedService:     feedService,
		checkoutService: checkoutService,
		leadService:     leadService,
	}
}

func (h *PublicHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.GET("/statuses", h.ListStatuses)
		api.GET("/plans", h.ListPlans)
		api.POST("/checkout", h.CreateCheckout)
		api.POST("/checkout/verify", h.VerifyPayment)
		api.GET("/track/:orderId", h.TrackOrder)
		api.GET("/track/:orderId/feed", h.TrackFeed)
		api.POST("/leads", h.CreateLead)
	}
}

// ListStatuses returns the status registry so every portal renders the same labels
// @Summary      Status registry
// @Tags         public
// @Produce      json
// @Success      200  {object}  response.Response{data=[]lifecycle.StatusInfo}
// @Router       /api/statuses [get]
func (h *PublicHandler) ListStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, lifecycle.Registry()))
}

// ListPlans returns the design plans with their GST split
// @Summary      List plans
// @Tags         public
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.PlanResponse}
// @Router       /api/plans [get]
func (h *PublicHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.checkoutService.Plans()))
}

// CreateCheckout opens a payment order for a plan
// @Summary      Start checkout
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CheckoutRequest  true  "Plan and customer details"
// @Success      201      {object}  response.Response{data=service.CheckoutResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/checkout [post]
func (h *PublicHandler) CreateCheckout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	res, err := h.checkoutService.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// VerifyPayment confirms the gateway callback and creates the project
// @Summary      Verify payment
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        payload  body      service.VerifyPaymentRequest  true  "Gateway callback fields"
// @Success      200      {object}  response.Response{data=service.VerifyPaymentResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/checkout/verify [post]
func (h *PublicHandler) VerifyPayment(c *gin.Context) {
	var req service.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	res, err := h.checkoutService.VerifyPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// TrackOrder is the read-only client view of an order
// @Summary      Track order
// @Tags         public
// @Produce      json
// @Param        orderId  path      string  true  "Order ID, e.g. VS4K7QPM"
// @Success      200      {object}  response.Response{data=service.ProjectView}
// @Failure      404      {object}  response.Response
// @Router       /api/track/{orderId} [get]
func (h *PublicHandler) TrackOrder(c *gin.Context) {
	view, err := h.projectService.TrackOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// TrackFeed lists an order's updates newest first
// @Summary      Order feed
// @Tags         public
// @Produce      json
// @Param        orderId  path      string  true   "Order ID"
// @Param        limit    query     int     false  "Entries to return (default 50, max 200)"
// @Success      200      {object}  response.Response{data=[]service.FeedEntry}
// @Failure      404      {object}  response.Response
// @Router       /api/track/{orderId}/feed [get]
func (h *PublicHandler) TrackFeed(c *gin.Context) {
	limit := pagination.Limit(c)
	entries, err := h.feedService.OrderFeed(c.Request.Context(), c.Param("orderId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// CreateLead stores a contact form or chat widget enquiry
// @Summary      Submit lead
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateLeadRequest  true  "Lead"
// @Success      201      {object}  response.Response{data=service.LeadResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/leads [post]
func (h *PublicHandler) CreateLead(c *gin.Context) {
	var req service.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	lead, err := h.leadService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, lead))
}
