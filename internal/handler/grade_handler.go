package handler

import (
	"net/http"

	"github.com/Mrabbi3/ConceptsPro/internal/dto"
	"github.com/Mrabbi3/ConceptsPro/internal/service"
	"github.com/Mrabbi3/ConceptsPro/pkg/response"
	"github.com/gin-gonic/gin"
)

type GradeHandler struct {
	service service.GradeService
}

func NewGradeHandler(service service.GradeService) *GradeHandler {
	return &GradeHandler{service: service}
}

func (h *GradeHandler) Grade(c *gin.Context) {
	user, err := requireUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	submissionID, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.GradeSubmissionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	grade, err := h.service.GradeSubmission(c.Request.Context(), user, submissionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, grade)
}

func (h *GradeHandler) Release(c *gin.Context) {
	user, err := requireUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	submissionID, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	grade, err := h.service.ReleaseGrade(c.Request.Context(), user, submissionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, grade)
}

func (h *GradeHandler) MyGrades(c *gin.Context) {
	user, err := requireUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	grades, err := h.service.GetMyGrades(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": grades})
}

func (h *GradeHandler) CourseGrades(c *gin.Context) {
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

	gradebook, err := h.service.GetCourseGrades(c.Request.Context(), user, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gradebook})
}
