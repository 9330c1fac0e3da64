package restore

import (
	"fmt"

	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/utils"
	"go.uber.org/zap"
)

// SwallowingRelationship pairs a window with the window it swallowed. It is
// rebuilt on every restore and never persisted.
type SwallowingRelationship struct {
	Swallowing session.WindowInfo
	Swallowed  session.WindowInfo
}

// Relationships maps a swallowing window's address to its relationship.
type Relationships map[string]SwallowingRelationship

// DetectSwallowing pairs swallowing and swallowed windows. References to
// addresses missing from windows are dropped and returned as warnings.
func DetectSwallowing(windows []session.WindowInfo, logger *zap.Logger) (Relationships, []string) {
	if logger == nil {
		logger = zap.NewNop()
	}

	byAddress := session.WindowsByAddress(windows)
	swallowers := utils.Filter(windows, func(w session.WindowInfo) bool {
		return w.Swallowing.Filter(session.IsSwallowingAddress).IsSome()
	})

	rels := make(Relationships)
	var warnings []string
	for _, w := range swallowers {
		target, _ := w.Swallowing.Get()

		swallowed, found := byAddress[target]
		if !found {
			logger.Warn("dropping orphaned swallowing reference",
				zap.String("window", w.Address),
				zap.String("class", w.Class),
				zap.String("swallowing", target))
			warnings = append(warnings, fmt.Sprintf("window %s (%s) swallows unknown window %s", w.Address, w.Class, target))
			continue
		}

		rels[w.Address] = SwallowingRelationship{Swallowing: w, Swallowed: swallowed}
	}

	return rels, warnings
}

// SwallowedBy maps each swallowed address to the address of its swallower.
func (r Relationships) SwallowedBy() map[string]string {
	out := make(map[string]string, len(r))
	for addr, rel := range r {
		out[rel.Swallowed.Address] = addr
	}
	return out
}
