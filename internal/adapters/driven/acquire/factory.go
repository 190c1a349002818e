package acquire

import (
	"fmt"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AcquirerFactory = (*Factory)(nil)

// Factory selects the acquirer matching a project's kind.
type Factory struct {
	acquirers map[domain.ProjectKind]driven.Acquirer
}

// NewFactory creates a factory over the given acquirers.
func NewFactory(acquirers ...driven.Acquirer) *Factory {
	m := make(map[domain.ProjectKind]driven.Acquirer, len(acquirers))
	for _, a := range acquirers {
		m[a.Kind()] = a
	}
	return &Factory{acquirers: m}
}

// Create returns the acquirer for the given project kind.
func (f *Factory) Create(kind domain.ProjectKind) (driven.Acquirer, error) {
	a, ok := f.acquirers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no acquirer for project kind %q", domain.ErrInvalidInput, kind)
	}
	return a, nil
}
