package tile

import (
	"log/slog"

	"milty-server/internal/shared/errors"
)

type Service struct {
	catalog *Catalog
	logger  *slog.Logger
}

func NewService(catalog *Catalog, logger *slog.Logger) *Service {
	logger.Debug("Initializing tile service", "systems", catalog.Len())

	return &Service{
		catalog: catalog,
		logger:  logger,
	}
}

func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// ListSystems returns the catalog, optionally restricted to one source set
func (s *Service) ListSystems(source string) ([]*System, error) {
	if source == "" {
		return s.catalog.All(), nil
	}

	src := Source(source)
	for _, known := range KnownSources {
		if known == src {
			return s.catalog.BySource(src), nil
		}
	}

	return nil, errors.Validationf("unknown source %q", source)
}

func (s *Service) GetSystem(id string) (*System, error) {
	sys, ok := s.catalog.Get(id)
	if !ok {
		s.logger.Debug("System not found", "component", "tile_service", "system_id", id)
		return nil, errors.NotFoundf("system %s not found", id)
	}
	return sys, nil
}

// Resolve maps request-supplied ids to catalog systems. Unknown ids are a validation error.
func (s *Service) Resolve(ids []string) ([]*System, error) {
	out := make([]*System, 0, len(ids))
	for _, id := range ids {
		sys, ok := s.catalog.Get(id)
		if !ok {
			return nil, errors.Validationf("unknown system %q", id)
		}
		out = append(out, sys)
	}
	return out, nil
}
