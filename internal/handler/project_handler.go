package handler

import (
	"net/http"

	"vastustructural/internal/middleware"
	"vastustructural/internal/model"
	"vastustructural/internal/service"
	"vastustructural/pkg/pagination"
	"vastustructural/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProjectHandler serves the admin portal
type ProjectHandler struct {
	projectService   service.ProjectService
	lifecycleService service.LifecycleService
	feedService      service.FeedService
	uploads          *UploadStore
	secret           []byte
}

func NewProjectHandler(projectService service.ProjectService, lifecycleService service.LifecycleService, feedService service.FeedService, uploads *UploadStore, secret []byte) *ProjectHandler {
	return &ProjectHandler{
		projectService:   projectService,
		lifecycleService: lifecycleService,
		feedService:      feedService,
		uploads:          uploads,
		secret:           secret,
	}
}

func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.RequireRole(h.secret, adminRoles...))
	{
		admin.GET("/projects", h.ListProjects)
		admin.POST("/projects", h.CreateProject)
		admin.GET("/projects/:id", h.GetProject)
		admin.PATCH("/projects/:id", h.UpdateProject)
		admin.POST("/projects/:id/transition", h.TransitionProject)
		admin.POST("/projects/:id/comments", h.PostComment)
		admin.POST("/projects/:id/assign", h.AssignContractor)
		admin.POST("/projects/:id/deliverables", h.AttachDeliverable)
		admin.GET("/clients", h.ListClients)
		admin.GET("/feed", h.GetFeed)
	}
}

// ListProjects returns paginated projects with optional filters
// @Summary      List projects
// @Tags         admin-projects
// @Security     BearerAuth
// @Produce      json
// @Param        page           query     int     false  "Page number (default: 1)"
// @Param        limit          query     int     false  "Items per page (default: 20)"
// @Param        status         query     string  false  "Filter by lifecycle status"
// @Param        contractor_id  query     string  false  "Filter by assigned contractor"
// @Param        search         query     string  false  "Search by order id, name, phone, email"
// @Success      200            {object}  response.Response{data=[]service.ProjectView}
// @Failure      400            {object}  response.Response
// @Router       /api/admin/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	p := pagination.Parse(c)
	projects, total, err := h.projectService.ListProjects(c.Request.Context(), service.ProjectListQuery{
		Status:       c.Query("status"),
		ContractorID: c.Query("contractor_id"),
		Search:       c.Query("search"),
		Page:         p.Page,
		Limit:        p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, projects, p.Page, p.Limit, total))
}

// CreateProject records an order taken outside online checkout
// @Summary      Create project
// @Tags         admin-projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.NewProjectInput  true  "Order details"
// @Success      201      {object}  response.Response{data=service.ProjectView}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/admin/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req service.NewProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	project, err := h.lifecycleService.CreateProject(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondProject(c, http.StatusCreated, project.ID)
}

// GetProject returns one project with its full history
// @Summary      Get project
// @Tags         admin-projects
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.ProjectView}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	h.respondProject(c, http.StatusOK, c.Param("id"))
}

func (h *ProjectHandler) respondProject(c *gin.Context, code int, id string) {
	view, err := h.projectService.GetProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(code, response.Success(code, view))
}

// UpdateProject edits customer and plot fields. Status is changed through /transition only.
// @Summary      Update project fields
// @Tags         admin-projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Project ID"
// @Param        payload  body      model.ProjectPatch  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.ProjectView}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/admin/projects/{id} [patch]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var patch model.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badPayload(c, err)
		return
	}

	view, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// TransitionProject moves a project to any valid status
// @Summary      Change project status
// @Tags         admin-projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Project ID"
// @Param        payload  body      service.TransitionRequest  true  "Target status and message"
// @Success      200      {object}  response.Response{data=service.ProjectView}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/admin/projects/{id}/transition [post]
func (h *ProjectHandler) TransitionProject(c *gin.Context) {
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

// PostComment appends a note without changing status
// @Summary      Comment on project
// @Tags         admin-projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Project ID"
// @Param        payload  body      service.CommentRequest  true  "Comment"
// @Success      201      {object}  response.Response{data=service.ProjectView}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/projects/{id}/comments [post]
func (h *ProjectHandler) PostComment(c *gin.Context) {
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

// AssignContractor hands a project to an approved contractor
// @Summary      Assign contractor
// @Tags         admin-projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Project ID"
// @Param        payload  body      service.AssignContractorRequest  true  "Contractor"
// @Success      200      {object}  response.Response{data=service.ProjectView}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/admin/projects/{id}/assign [post]
func (h *ProjectHandler) AssignContractor(c *gin.Context) {
	var req service.AssignContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	id := c.Param("id")
	if _, err := h.lifecycleService.AssignContractor(c.Request.Context(), id, req.ContractorID, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	h.respondProject(c, http.StatusOK, id)
}

// AttachDeliverable uploads a drawing or links a hosted file
// @Summary      Attach deliverable
// @Tags         admin-projects
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        id    path      string  true   "Project ID"
// @Param        file  formData  file    false  "Deliverable file"
// @Success      201   {object}  response.Response{data=model.Deliverable}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /api/admin/projects/{id}/deliverables [post]
func (h *ProjectHandler) AttachDeliverable(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.projectService.GetProject(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	in, discard, err := h.uploads.readDeliverable(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	deliverable, err := h.lifecycleService.AttachDeliverable(c.Request.Context(), id, in, actorFrom(c))
	if err != nil {
		discard()
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, deliverable))
}

// ListClients groups orders by customer
// @Summary      List clients
// @Tags         admin-projects
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Search by name, phone, email"
// @Success      200     {object}  response.Response{data=[]model.ClientSummary}
// @Router       /api/admin/clients [get]
func (h *ProjectHandler) ListClients(c *gin.Context) {
	clients, err := h.projectService.ListClients(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, clients))
}

// GetFeed returns recent project activity across all projects
// @Summary      Activity feed
// @Tags         admin-projects
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query     int  false  "Entries to return (default 50, max 200)"
// @Success      200    {object}  response.Response{data=[]service.FeedEntry}
// @Router       /api/admin/feed [get]
func (h *ProjectHandler) GetFeed(c *gin.Context) {
	limit := pagination.Limit(c)
	entries, err := h.feedService.AdminFeed(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
