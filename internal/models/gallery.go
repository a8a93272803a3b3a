package models

// GalleryPage is one page of gallery image URLs.
type GalleryPage struct {
	OK      bool     `json:"ok"`
	Total   int      `json:"total"`
	PerPage int      `json:"perPage"`
	Page    int      `json:"page"`
	Pages   int      `json:"pages"`
	Images  []string `json:"images"`
}
