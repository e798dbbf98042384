package handler

import (
	"net/http"

	"github.com/Mrabbi3/ConceptsPro/internal/dto"
	"github.com/Mrabbi3/ConceptsPro/internal/service"
	"github.com/Mrabbi3/ConceptsPro/pkg/response"
	"github.com/gin-gonic/gin"
)

type AnnouncementHandler struct {
	service service.AnnouncementService
}

func NewAnnouncementHandler(service service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	user, err := requireUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	courseID, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateAnnouncementRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	announcement, err := h.service.Create(c.Request.Context(), user, courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, announcement)
}

func (h *AnnouncementHandler) ListByCourse(c *gin.Context) {
	user, err := requireUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	courseID, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	announcements, err := h.service.List(c.Request.Context(), user, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": announcements})
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	user, err := requireUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateAnnouncementRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	announcement, err := h.service.Update(c.Request.Context(), user, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, announcement)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	user, err := requireUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), user, id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "announcement deleted"})
}
