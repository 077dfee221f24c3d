package hostel

import (
	"strings"

	"github.com/google/uuid"
)

// IDFunc returns a new record identifier carrying the given prefix.
type IDFunc func(prefix string) string

func newID(prefix string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
