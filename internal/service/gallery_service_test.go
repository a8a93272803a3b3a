package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGalleryFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644))
	}
}

func TestGalleryPageOrdersByEmbeddedNumber(t *testing.T) {
	dir := t.TempDir()
	writeGalleryFiles(t, dir, "img10.jpg", "img2.jpg", "img1.jpg", "cover.jpg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "thumbs"), 0o755))
	svc := NewGalleryService(dir, "/images/MIITImages", nil)

	page := svc.Page(1, 0)
	assert.True(t, page.OK)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 12, page.PerPage)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, []string{
		"/images/MIITImages/cover.jpg",
		"/images/MIITImages/img1.jpg",
		"/images/MIITImages/img2.jpg",
		"/images/MIITImages/img10.jpg",
	}, page.Images)
}

func TestGalleryPageClampsRange(t *testing.T) {
	dir := t.TempDir()
	writeGalleryFiles(t, dir, "1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg")
	svc := NewGalleryService(dir, "/g", nil)

	page := svc.Page(9, 2)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, []string{"/g/5.jpg"}, page.Images)

	page = svc.Page(-1, 1000)
	assert.Equal(t, 100, page.PerPage)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Images, 5)
}

func TestGalleryMissingDirectory(t *testing.T) {
	svc := NewGalleryService(filepath.Join(t.TempDir(), "absent"), "/g", nil)

	page := svc.Page(1, 12)
	assert.True(t, page.OK)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 1, page.Pages)
	assert.NotNil(t, page.Images)
	assert.Empty(t, page.Images)
}

func TestGalleryRefreshRereadsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeGalleryFiles(t, dir, "1.jpg")
	svc := NewGalleryService(dir, "/g", nil)
	assert.Equal(t, 1, svc.Page(1, 12).Total)

	writeGalleryFiles(t, dir, "2.jpg")
	assert.Equal(t, 2, svc.Refresh())
	assert.Equal(t, 2, svc.Page(1, 12).Total)
}
