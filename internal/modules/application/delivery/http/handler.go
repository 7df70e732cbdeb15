package handler

import (
	"errors"
	"io"
	"net/http"

	"anoa.com/campusrecruit/internal/modules/application/dto"
	application "anoa.com/campusrecruit/internal/modules/application/service"
	"anoa.com/campusrecruit/pkg/response"
	"anoa.com/campusrecruit/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	service application.Service
}

func NewApplicationHandler(service application.Service) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

func parseUUIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + label})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	jobID, ok := parseUUIDParam(c, "jobId", "job id")
	if !ok {
		return
	}

	// the body is optional
	var input dto.ApplyInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	app, err := h.service.Apply(c.Request.Context(), p, jobID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	apps, err := h.service.ListForStudent(c.Request.Context(), p)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) ListForCompany(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	apps, err := h.service.ListForCompany(c.Request.Context(), p)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) ListCompanyApplications(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	apps, err := h.service.ListCompanyApplications(c.Request.Context(), p)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	jobID, ok := parseUUIDParam(c, "jobId", "job id")
	if !ok {
		return
	}

	apps, err := h.service.ListForJob(c.Request.Context(), p, jobID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := parseUUIDParam(c, "id", "application id")
	if !ok {
		return
	}

	var input dto.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	app, err := h.service.UpdateStatus(c.Request.Context(), p, id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}
