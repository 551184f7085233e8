package handler

import (
	"net/http"

	"vastustructural/internal/middleware"
	"vastustructural/internal/service"
	"vastustructural/pkg/pagination"
	"vastustructural/pkg/response"

	"github.com/gin-gonic/gin"
)

// PartnerHandler covers contractor onboarding and the admin views of partners and leads
type PartnerHandler struct {
	contractorService service.ContractorService
	leadService       service.LeadService
	secret            []byte
}

func NewPartnerHandler(contractorService service.ContractorService, leadService service.LeadService, secret []byte) *PartnerHandler {
	return &PartnerHandler{contractorService: contractorService, leadService: leadService, secret: secret}
}

func (h *PartnerHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/partners/register", h.RegisterPartner)

	admin := router.Group("/api/admin")
	admin.Use(middleware.RequireRole(h.secret, adminRoles...))
	{
		admin.GET("/contractors", h.ListContractors)
		admin.GET("/contractors/:id", h.GetContractor)
		admin.PUT("/contractors/:id", h.UpdateContractor)
		admin.POST("/contractors/:id/approve", h.ApproveContractor)
		admin.POST("/contractors/:id/reject", h.RejectContractor)
		admin.GET("/leads", h.ListLeads)
	}
}

// RegisterPartner submits a contractor application
// @Summary      Partner registration
// @Description  Creates a pending contractor with a unique referral code.
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterContractorRequest  true  "Application"
// @Success      201      {object}  response.Response{data=service.ContractorResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/partners/register [post]
func (h *PartnerHandler) RegisterPartner(c *gin.Context) {
	var req service.RegisterContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	contractor, err := h.contractorService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contractor))
}

// ListContractors returns paginated contractors with optional status/search filter
// @Summary      List contractors
// @Tags         partners
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        status  query     string  false  "Filter by status: pending, approved, rejected"
// @Param        search  query     string  false  "Search by name, company, phone, district"
// @Success      200     {object}  response.Response{data=[]service.ContractorResponse}
// @Router       /api/admin/contractors [get]
func (h *PartnerHandler) ListContractors(c *gin.Context) {
	p := pagination.Parse(c)
	contractors, total, err := h.contractorService.List(c.Request.Context(), c.Query("status"), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, contractors, p.Page, p.Limit, total))
}

// GetContractor returns one contractor with its project count
// @Summary      Get contractor
// @Tags         partners
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Contractor ID"
// @Success      200  {object}  response.Response{data=service.ContractorResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/contractors/{id} [get]
func (h *PartnerHandler) GetContractor(c *gin.Context) {
	contractor, err := h.contractorService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contractor))
}

// UpdateContractor edits contact details
// @Summary      Update contractor
// @Tags         partners
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Contractor ID"
// @Param        payload  body      service.UpdateContractorRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.ContractorResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/contractors/{id} [put]
func (h *PartnerHandler) UpdateContractor(c *gin.Context) {
	var req service.UpdateContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	contractor, err := h.contractorService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contractor))
}

// ApproveContractor accepts a pending application
// @Summary      Approve contractor
// @Tags         partners
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Contractor ID"
// @Success      200  {object}  response.Response{data=service.ContractorResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/admin/contractors/{id}/approve [post]
func (h *PartnerHandler) ApproveContractor(c *gin.Context) {
	contractor, err := h.contractorService.Approve(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contractor))
}

// RejectContractor declines a pending application
// @Summary      Reject contractor
// @Tags         partners
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true   "Contractor ID"
// @Param        payload  body      service.RejectContractorRequest  false  "Reason"
// @Success      200      {object}  response.Response{data=service.ContractorResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/contractors/{id}/reject [post]
func (h *PartnerHandler) RejectContractor(c *gin.Context) {
	var req service.RejectContractorRequest
	// The reason is optional, so an empty body is fine
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badPayload(c, err)
			return
		}
	}

	contractor, err := h.contractorService.Reject(c.Request.Context(), c.Param("id"), req.Reason, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contractor))
}

// ListLeads returns paginated enquiries
// @Summary      List leads
// @Tags         partners
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        source  query     string  false  "contact_form, chat_widget or callback"
// @Success      200     {object}  response.Response{data=[]service.LeadResponse}
// @Router       /api/admin/leads [get]
func (h *PartnerHandler) ListLeads(c *gin.Context) {
	p := pagination.Parse(c)
	leads, total, err := h.leadService.List(c.Request.Context(), c.Query("source"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, leads, p.Page, p.Limit, total))
}
