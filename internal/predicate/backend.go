package predicate

import "github.com/querymill/querymill/internal/errors"

// Backend selects a formatting convention for a whole run. It governs the
// default leaf constructor used when a catalog option is a bare tag string;
// the composite join style follows from the leaves it produces.
type Backend string

// Known backends.
const (
	// BackendGeneric wraps bare tags as plain predicates: space-joined
	// output, implicit AND, no parentheses.
	BackendGeneric Backend = "generic"
	// BackendArchive wraps bare tags as keyed tag predicates: explicit
	// AND/OR operators with parenthesized groups, suitable for the
	// archive's work-search query parameter.
	BackendArchive Backend = "archive"
)

// ParseBackend converts a catalog backend name to a Backend.
// "ao3" is accepted as a legacy alias for the archive backend.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "", string(BackendGeneric):
		return BackendGeneric, nil
	case string(BackendArchive), "ao3":
		return BackendArchive, nil
	default:
		return "", errors.Validationf("unknown backend %q (expected generic or archive)", s)
	}
}

// NewLeaf wraps a bare tag string with the backend's default leaf variant.
func (b Backend) NewLeaf(value string) Predicate {
	if b == BackendArchive {
		return Keyed(DefaultKey, value)
	}
	return Plain(value)
}
