package service

import (
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
)

const (
	galleryPerPage    = 12
	galleryMaxPerPage = 100
)

// GalleryService lists gallery images from a directory. The listing is cached
// until the directory modification time changes.
type GalleryService struct {
	dir       string
	urlPrefix string
	logger    *zap.Logger

	mu      sync.Mutex
	modTime time.Time
	files   []string
}

// NewGalleryService constructs a GalleryService for dir, publishing files under urlPrefix.
func NewGalleryService(dir, urlPrefix string, logger *zap.Logger) *GalleryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GalleryService{dir: dir, urlPrefix: urlPrefix, logger: logger}
}

// Page returns one page of image URLs. Out of range pages clamp to the last page.
func (s *GalleryService) Page(page, perPage int) models.GalleryPage {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = galleryPerPage
	}
	if perPage > galleryMaxPerPage {
		perPage = galleryMaxPerPage
	}

	files := s.load(false)
	total := len(files)
	pages := 1
	if total > 0 {
		pages = (total + perPage - 1) / perPage
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	images := make([]string, 0, end-start)
	for _, name := range files[start:end] {
		images = append(images, path.Join(s.urlPrefix, name))
	}
	return models.GalleryPage{OK: true, Total: total, PerPage: perPage, Page: page, Pages: pages, Images: images}
}

// Refresh forces the next listing to re-read the directory.
func (s *GalleryService) Refresh() int {
	return len(s.load(true))
}

func (s *GalleryService) load(force bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("gallery directory not found", zap.String("dir", s.dir))
		} else {
			s.logger.Error("gallery stat failed", zap.Error(err))
		}
		s.files, s.modTime = nil, time.Time{}
		return nil
	}
	if !force && len(s.files) > 0 && info.ModTime().Equal(s.modTime) {
		return s.files
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error("gallery read failed", zap.Error(err))
		return nil
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}
	sortGalleryFiles(files)
	s.files, s.modTime = files, info.ModTime()
	return s.files
}

// sortGalleryFiles orders names by the number formed from their digits, then by name.
func sortGalleryFiles(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		ni, nj := embeddedNumber(files[i]), embeddedNumber(files[j])
		if ni != nj {
			return ni < nj
		}
		return files[i] < files[j]
	})
}

func embeddedNumber(name string) int {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
