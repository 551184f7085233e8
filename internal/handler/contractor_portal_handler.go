package handler

import (
	"net/http"

	"vastustructural/internal/middleware"
	"vastustructural/internal/service"
	"vastustructural/pkg/pagination"
	"vastustructural/pkg/response"

	"github.com/gin-gonic/gin"
)

// ContractorPortalHandler serves a logged-in contractor. Every route is scoped to the
// projects assigned to the token subject.
type ContractorPortalHandler struct {
	projectService   service.ProjectService
	lifecycleService service.LifecycleService
	feedService      service.FeedService
	uploads          *UploadStore
	secret           []byte
}

func NewContractorPortalHandler(projectService service.ProjectService, lifecycleService service.LifecycleService, feedService service.FeedService, uploads *UploadStore, secret []byte) *ContractorPortalHandler {
	return &ContractorPortalHandler{
		projectService:   projectService,
		lifecycleService: lifecycleService,
		feedService:      feedService,
		uploads:          uploads,
		secret:           secret,
	}
}

func (h *ContractorPortalHandler) RegisterRoutes(router *gin.RouterGroup) {
	portal := router.Group("/api/contractor")
	portal.Use(middleware.RequireRole(h.secret, contractorRoles...))
	{
		portal.GET("/projects", h.ListProjects)
		portal.GET("/projects/:id", h.GetProject)
		portal.POST("/projects/:id/transition", h.TransitionProject)
		portal.POST("/projects/:id/comments", h.PostComment)
		portal.POST("/projects/:id/deliverables", h.AttachDeliverable)
		portal.GET("/feed", h.GetFeed)
	}
}

// ListProjects returns the projects assigned to the caller
// @Summary      My projects
// @Tags         contractor-portal
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.ProjectView}
// @Router       /api/contractor/projects [get]
func (h *ContractorPortalHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.ListContractorProjects(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, projects))
}

// GetProject returns one assigned project
// @Summary      Get my project
// @Tags         contractor-portal
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.ProjectView}
// @Failure      404  {object}  response.Response
// @Router       /api/contractor/projects/{id} [get]
func (h *ContractorPortalHandler) GetProject(c *gin.Context) {
	h.respondProject(c, http.StatusOK, c.Param("id"))
}

func (h *ContractorPortalHandler) respondProject(c *gin.Context, code int, id string) {
	view, err := h.projectService.GetContractorProject(c.Request.Context(), actorFrom(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(code, response.Success(code, view))
}

// TransitionProject moves an assigned project forward
// @Summary      Advance my project
// @Description  Contractors may only move forward into design_in_progress, review_pending or completed.
// @Tags         contractor-portal
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Project ID"
// @Param        payload  body      service.TransitionRequest  true  "Target status and message"
// @Success      200      {object}  response.Response{data=service.ProjectView}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/contractor/projects/{id}/transition [post]
func (h *ContractorPortalHandler) TransitionProject(c *gin.Context) {
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	id := c.Param("id")
	if _, err := h.lifecycleService.Transition(c.Request.Context(), id, req.Status, req.Message, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	h.respondProject(c, http.StatusOK, id)
}

// PostComment adds a note to an assigned project
// @Summary      Comment on my project
// @Tags         contractor-portal
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Project ID"
// @Param        payload  body      service.CommentRequest  true  "Comment"
// @Success      201      {object}  response.Response{data=service.ProjectView}
// @Failure      403      {object}  response.Response
// @Router       /api/contractor/projects/{id}/comments [post]
func (h *ContractorPortalHandler) PostComment(c *gin.Context) {
	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	id := c.Param("id")
	if _, err := h.lifecycleService.PostComment(c.Request.Context(), id, req.Message, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	h.respondProject(c, http.StatusCreated, id)
}

// AttachDeliverable uploads a drawing to an assigned project
// @Summary      Upload deliverable
// @Tags         contractor-portal
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        id    path      string  true   "Project ID"
// @Param        file  formData  file    false  "Deliverable file"
// @Success      201   {object}  response.Response{data=model.Deliverable}
// @Failure      404   {object}  response.Response
// @Router       /api/contractor/projects/{id}/deliverables [post]
func (h *ContractorPortalHandler) AttachDeliverable(c *gin.Context) {
	id := c.Param("id")
	actor := actorFrom(c)
	if _, err := h.projectService.GetContractorProject(c.Request.Context(), actor.ID, id); err != nil {
		respondError(c, err)
		return
	}

	in, discard, err := h.uploads.readDeliverable(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	deliverable, err := h.lifecycleService.AttachDeliverable(c.Request.Context(), id, in, actor)
	if err != nil {
		discard()
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, deliverable))
}

// GetFeed returns activity on the caller's projects
// @Summary      My activity feed
// @Tags         contractor-portal
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query     int  false  "Entries to return (default 50, max 200)"
// @Success      200    {object}  response.Response{data=[]service.FeedEntry}
// @Router       /api/contractor/feed [get]
func (h *ContractorPortalHandler) GetFeed(c *gin.Context) {
	limit := pagination.Limit(c)
	entries, err := h.feedService.ContractorFeed(c.Request.Context(), actorFrom(c).ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
