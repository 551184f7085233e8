package handler

import (
	"net/http"

	"vastustructural/internal/middleware"
	"vastustructural/internal/repository"
	"vastustructural/internal/service"
	"vastustructural/pkg/pagination"
	"vastustructural/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	secret       []byte
}

func NewAuditHandler(auditService service.AuditService, secret []byte) *AuditHandler {
	return &AuditHandler{auditService: auditService, secret: secret}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/admin/audit-logs")
	group.Use(middleware.RequireRole(h.secret, adminRoles...))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs lists administrative actions, newest first
// @Summary      Get audit logs
// @Description  Approvals, rejections, payment results and logins
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Param        action     query     string  false  "Filter by action, e.g. APPROVE_CONTRACTOR"
// @Param        entity_id  query     string  false  "Filter by the contractor, order or user the entry is about"
// @Success      200        {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /api/admin/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), repository.AuditFilter{
		Action:   c.Query("action"),
		EntityID: c.Query("entity_id"),
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, logs, p.Page, p.Limit, total))
}
