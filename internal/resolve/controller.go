package resolve

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"field-console-api/internal/fields"
)

type ResolveController struct {
	ResolveService ResolveServiceAPI
}

// GET /api/personal/:userID/fields/effective?type_id=...&last_modified=...
//
// last_modified should be the timestamp of the schema the client already
// holds. Accepted formats:
// - RFC3339 / RFC3339Nano (recommended)
// - unix milliseconds (e.g., 1708451234567)
func (rc *ResolveController) GetEffectiveFields(c *gin.Context) {
	rawUser := c.Param("userID")
	userID, err := strconv.ParseUint(rawUser, 10, 32)
	if err != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid userID is required"})
		return
	}

	rawType := c.Query("type_id")
	typeID, err := strconv.ParseUint(rawType, 10, 32)
	if err != nil || typeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid type_id is required"})
		return
	}

	clientLM, err := parseOptionalTime(c.Query("last_modified"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_modified (use RFC3339 or unix ms)"})
		return
	}

	lastModified, err := rc.ResolveService.LastModified(c.Request.Context(), uint(typeID), uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !lastModified.IsZero() {
		c.Header("Last-Modified", lastModified.UTC().Format(time.RFC3339Nano))
	}

	if clientLM != nil && !lastModified.IsZero() && !lastModified.After(*clientLM) {
		c.JSON(http.StatusOK, gin.H{
			"not_modified": true,
			"updated_at":   lastModified,
		})
		return
	}

	effective, err := rc.ResolveService.EffectiveFields(c.Request.Context(), uint(typeID), uint(userID))
	if err != nil {
		if errors.Is(err, fields.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"not_modified": false,
		"updated_at":   lastModified,
		"fields":       effective,
	})
}

func parseOptionalTime(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return &ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return &ts, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		ts := time.UnixMilli(ms).UTC()
		return &ts, nil
	}
	return nil, errors.New("unsupported time format")
}
