package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/response"
)

type courseCatalog interface {
	List() []models.Course
	Get(id string) (*models.Course, error)
}

type galleryLister interface {
	Page(page, perPage int) models.GalleryPage
}

// CatalogHandler serves the course catalog and the photo gallery.
type CatalogHandler struct {
	courses courseCatalog
	gallery galleryLister
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(courses courseCatalog, gallery galleryLister) *CatalogHandler {
	return &CatalogHandler{courses: courses, gallery: gallery}
}

// Courses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/courses [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"ok": true, "courses": h.courses.List()}, nil)
}

// Course godoc
// @Summary Get course detail
// @Tags Catalog
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/courses/{id} [get]
func (h *CatalogHandler) Course(c *gin.Context) {
	course, err := h.courses.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ok": true, "course": course}, nil)
}

// Gallery godoc
// @Summary List gallery images
// @Tags Catalog
// @Produce json
// @Param page query int false "Page"
// @Param perPage query int false "Images per page (max 100)"
// @Success 200 {object} response.Envelope
// @Router /api/gallery [get]
func (h *CatalogHandler) Gallery(c *gin.Context) {
	page := h.gallery.Page(parseQueryInt(c, "page", 1), parseQueryInt(c, "perPage", 12))
	response.JSON(c, http.StatusOK, page, nil)
}
