package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"clubhouse-orders-api/middleware"
	"clubhouse-orders-api/models"
	"clubhouse-orders-api/store"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	Courses *store.Courses
}

// ListCourses returns active courses for guests and the public site.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.Courses.Active()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load courses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// MyCourses returns the caller's assigned courses. Superusers see
// every active course.
func (h *CourseHandler) MyCourses(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var (
		courses []models.Course
		err     error
	)
	if user.Role == models.RoleSuperuser {
		courses, err = h.Courses.Active()
	} else {
		courses, err = h.Courses.ActiveByIDs(user.CourseIDs)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load courses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// AllCourses returns every course, inactive ones included.
func (h *CourseHandler) AllCourses(c *gin.Context) {
	courses, err := h.Courses.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load courses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

type CreateCourseRequest struct {
	Name        string `json:"name" binding:"required"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := models.Course{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Active:      true,
	}
	if req.Active != nil {
		course.Active = *req.Active
	}

	if err := h.Courses.Create(&course); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Course created", "course": course})
}

type UpdateCourseRequest struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data to update"})
		return
	}

	if err := h.Courses.Updates(courseID, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
		return
	}

	course, err := h.Courses.ByID(courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load course"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course updated", "course": course})
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Courses.Delete(courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}

// parseID reads a numeric path parameter, responding 400 itself when
// the value is not a valid ID.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
