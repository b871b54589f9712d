package handler

import (
	"net/http"

	"backend/internal/apperr"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type MaterialHandler struct {
	materialService service.MaterialService
}

func NewMaterialHandler(materialService service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

// RegisterRoutes binds material endpoints; any authenticated role may use them.
func (h *MaterialHandler) RegisterRoutes(router *gin.RouterGroup) {
	materials := router.Group("/materials", middleware.RequireAuth())
	{
		materials.GET("", h.ListMaterials)
		materials.GET("/export", h.ExportMaterials)
		materials.GET("/:id", h.GetMaterialByID)
		materials.POST("", h.CreateMaterial)
		materials.PUT("/:id", h.UpdateMaterial)
		materials.DELETE("/:id", h.DeleteMaterial)
	}
}

// ListMaterials handles GET /materials
// @Summary      List materials
// @Tags         materials
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Param        search  query     string  false  "Filter by name"
// @Success      200     {object}  response.Response{data=object}
// @Router       /materials [get]
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	params := pagination.Parse(c)
	search := c.Query("search")

	materials, total, err := h.materialService.ListMaterials(c.Request.Context(), params.Page, params.Limit, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch materials"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"materials": materials,
		"meta":      params.NewMeta(total),
	}))
}

// GetMaterialByID handles GET /materials/:id
// @Summary      Get material by ID
// @Tags         materials
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Material ID"
// @Success      200  {object}  response.Response{data=service.MaterialResponse}
// @Failure      404  {object}  response.Response
// @Router       /materials/{id} [get]
func (h *MaterialHandler) GetMaterialByID(c *gin.Context) {
	material, err := h.materialService.GetMaterialByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := apperr.Status(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, material))
}

// CreateMaterial handles POST /materials
// @Summary      Create material
// @Tags         materials
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateMaterialRequest  true  "Create Material Payload"
// @Success      201      {object}  response.Response{data=service.MaterialResponse}
// @Failure      400      {object}  response.Response
// @Router       /materials [post]
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req service.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, _ := middleware.CurrentUserID(c)
	material, err := h.materialService.CreateMaterial(c.Request.Context(), actorID, req)
	if err != nil {
		status := apperr.Status(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, material))
}

// UpdateMaterial handles PUT /materials/:id
// @Summary      Update material
// @Tags         materials
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Material ID"
// @Param        payload  body      service.UpdateMaterialRequest  true  "Update Material Payload"
// @Success      200      {object}  response.Response{data=service.MaterialResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /materials/{id} [put]
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	var req service.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	actorID, _ := middleware.CurrentUserID(c)
	material, err := h.materialService.UpdateMaterial(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		status := apperr.Status(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, material))
}

// DeleteMaterial handles DELETE /materials/:id
// @Summary      Delete material
// @Tags         materials
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Material ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /materials/{id} [delete]
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	actorID, _ := middleware.CurrentUserID(c)

	if err := h.materialService.DeleteMaterial(c.Request.Context(), actorID, c.Param("id")); err != nil {
		status := apperr.Status(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Material deleted successfully"))
}

// ExportMaterials handles GET /materials/export as a CSV download
// @Summary      Export materials as CSV
// @Tags         materials
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string  "CSV file"
// @Router       /materials/export [get]
func (h *MaterialHandler) ExportMaterials(c *gin.Context) {
	rows, err := h.materialService.ExportRows(c.Request.Context())
	if err != nil {
		exportError(c, err)
		return
	}
	writeCSV(c, "materials.csv", rows)
}
