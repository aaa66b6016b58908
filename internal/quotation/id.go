package quotation

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultIDPrefix = "IL"

// NewQuoteID builds "<prefix>-<base36 unix millis>-<6 random chars>", upper-cased.
func NewQuoteID(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	random := strings.ToUpper(uuid.NewString()[:6])
	return prefix + "-" + stamp + "-" + random
}
