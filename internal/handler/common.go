package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/miit-portal/internal/models"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

// okMessage is the body returned by mutations that only report a message.
type okMessage struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// bind decodes JSON, urlencoded or multipart bodies depending on Content-Type.
func bind(c *gin.Context, dst interface{}, message string) error {
	if err := c.ShouldBind(dst); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
	}
	return nil
}

func parseQueryInt(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

// pageParams reads page and limit, accepting pageSize as an alias of limit.
func pageParams(c *gin.Context) (int, int) {
	size := parseQueryInt(c, "limit", 0)
	if size == 0 {
		size = parseQueryInt(c, "pageSize", 20)
	}
	return parseQueryInt(c, "page", 1), size
}

func clientInfo(c *gin.Context) models.ClientInfo {
	return models.ClientInfo{IPAddress: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}
