package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns an opaque, human-safe identifier with the given prefix,
// e.g. "task_3f9c2b1a". Prefixes make ids self-describing in logs and
// workflow_guidance examples without leaking any ordering or sequence info.
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
