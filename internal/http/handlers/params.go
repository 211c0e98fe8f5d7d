package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/socialfeed-backend/internal/platform/apierr"
)

// queryLimit reads ?limit, defaulting to def and capping at max. A
// non-positive limit yields 0, which callers answer with an empty page.
func queryLimit(c *gin.Context, def, max int) (int, error) {
	return queryBounded(c, "limit", def, max)
}

// queryBounded maps values below 1 to 0.
func queryBounded(c *gin.Context, name string, def, max int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.BadRequest("invalid_"+name, fmt.Errorf("%s must be an integer", name))
	}
	if n < 1 {
		return 0, nil
	}
	if n > max {
		n = max
	}
	return n, nil
}

// queryBefore reads the ?before cursor as RFC3339, defaulting to now.
func queryBefore(c *gin.Context) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("before"))
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, apierr.BadRequest("invalid_before", fmt.Errorf("before must be RFC3339"))
	}
	return t.UTC(), nil
}

func parseUUID(raw, code string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.BadRequest(code, fmt.Errorf("invalid id %q", raw))
	}
	return id, nil
}
