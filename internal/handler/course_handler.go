package handler

import (
	"net/http"

	"github.com/Mrabbi3/ConceptsPro/internal/dto"
	"github.com/Mrabbi3/ConceptsPro/internal/service"
	"github.com/Mrabbi3/ConceptsPro/pkg/response"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	service service.CourseService
}

func NewCourseHandler(service service.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

func (h *CourseHandler) List(c *gin.Context) {
	user, err := requireUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	courses, err := h.service.ListCourses(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": courses})
}

func (h *CourseHandler) Get(c *gin.Context) {
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

	course, err := h.service.GetCourse(c.Request.Context(), user, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Create(c *gin.Context) {
	user, err := requireUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateCourseRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
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

	var req dto.UpdateCourseRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	course, err := h.service.UpdateCourse(c.Request.Context(), user, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Enroll(c *gin.Context) {
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

	enrollment, err := h.service.Enroll(c.Request.Context(), user, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

func (h *CourseHandler) Unenroll(c *gin.Context) {
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

	if err := h.service.Unenroll(c.Request.Context(), user, id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dropped from course"})
}

func (h *CourseHandler) ListStudents(c *gin.Context) {
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

	students, err := h.service.ListStudents(c.Request.Context(), user, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": students})
}
