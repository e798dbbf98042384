package handler

import (
	"net/http"

	"github.com/Mrabbi3/ConceptsPro/internal/dto"
	"github.com/Mrabbi3/ConceptsPro/internal/service"
	"github.com/Mrabbi3/ConceptsPro/pkg/response"
	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	service service.AssignmentService
}

func NewAssignmentHandler(service service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

func (h *AssignmentHandler) ListByCourse(c *gin.Context) {
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

	assignments, err := h.service.ListAssignments(c.Request.Context(), user, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

func (h *AssignmentHandler) Create(c *gin.Context) {
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

	var req dto.CreateAssignmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	assignment, err := h.service.CreateAssignment(c.Request.Context(), user, courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

func (h *AssignmentHandler) Get(c *gin.Context) {
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

	assignment, err := h.service.GetAssignment(c.Request.Context(), user, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) Update(c *gin.Context) {
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

	var req dto.UpdateAssignmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	assignment, err := h.service.UpdateAssignment(c.Request.Context(), user, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
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

	if err := h.service.DeleteAssignment(c.Request.Context(), user, id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "assignment deleted"})
}

func (h *AssignmentHandler) Submit(c *gin.Context) {
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

	var req dto.SubmitAssignmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	submission, err := h.service.Submit(c.Request.Context(), user, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
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

	submissions, err := h.service.ListSubmissions(c.Request.Context(), user, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": submissions})
}

func (h *AssignmentHandler) MySubmissions(c *gin.Context) {
	user, err := requireUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	submissions, err := h.service.GetMySubmissions(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": submissions})
}
