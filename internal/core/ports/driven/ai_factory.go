package driven

import (
	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// OracleFactory creates semantic oracles based on configuration
type OracleFactory interface {
	// CreateOracle creates an oracle from settings.
	// Returns nil, nil if settings are not configured.
	CreateOracle(settings *domain.OracleSettings) (SemanticOracle, error)
}
