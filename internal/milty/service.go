package milty

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"milty-server/internal/shared/config"
	"milty-server/internal/shared/errors"
	"milty-server/internal/tile"
)

// DraftStore persists drafts. GetByID returns nil, nil for an unknown id.
type DraftStore interface {
	Create(ctx context.Context, draft *Draft) error
	GetByID(ctx context.Context, id string) (*Draft, error)
	ListRecent(ctx context.Context, limit int) ([]DraftSummary, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// DraftCache is a best-effort read cache in front of the store. Get returns nil, nil on a miss.
type DraftCache interface {
	Get(ctx context.Context, id string) (*Draft, error)
	Set(ctx context.Context, draft *Draft) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	tiles   *tile.Service
	presets *Presets
	store   DraftStore
	cache   DraftCache
	cfg     config.MiltyConfig
	options BalanceOptions
	logger  *slog.Logger
}

// NewService wires the draft service. store and cache may be nil, in which
// case drafts are generated but not kept.
func NewService(tiles *tile.Service, presets *Presets, store DraftStore, cache DraftCache, cfg config.MiltyConfig, logger *slog.Logger) *Service {
	logger.Debug("Initializing milty service", "presets", len(presets.List()), "persistent", store != nil, "cached", cache != nil)

	return &Service{
		tiles:   tiles,
		presets: presets,
		store:   store,
		cache:   cache,
		cfg:     cfg,
		options: DefaultBalanceOptions(),
		logger:  logger,
	}
}

// Generate runs one full generation: resolve settings, filter the catalog,
// build and balance the slices, verify them, place them on a board and
// keep the result.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Draft, error) {
	logger := s.logger.With("component", "milty_service", "operation", "generate", "preset", req.Preset)
	logger.Debug("Generating draft")

	presetName, settings, weights, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	options := s.options
	if req.Options != nil {
		if err := req.Options.Validate(); err != nil {
			return nil, errors.WrapValidation("invalid balance options", err)
		}
		options = *req.Options
	}

	var warnings []string
	if len(settings.Sources) == 0 {
		settings.Sources = append([]tile.Source(nil), DefaultSources...)
		msg := fmt.Sprintf("no source set enabled; defaulted to %s and %s", tile.SourceBase, tile.SourceProphecyOfKings)
		warnings = append(warnings, msg)
		logger.Warn("Applied default source sets", "sources", settings.Sources)
	}

	placedSystems, err := s.tiles.Resolve(req.Placed)
	if err != nil {
		return nil, err
	}
	placed := mapset.New[string]()
	for _, sys := range placedSystems {
		placed.Put(sys.ID)
	}

	candidates := FilterCandidates(s.tiles.Catalog().All(), settings, placed)
	if len(candidates) == 0 {
		return nil, errors.Validation("no candidate systems left for the enabled source sets")
	}

	seed := rand.Int64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	logger = logger.With("seed", seed, "slice_count", settings.SliceCount, "candidates", len(candidates))

	runCtx := ctx
	if s.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.GenerationTimeout)
		defer cancel()
	}

	set, err := NewGenerator(rng, s.logger).Generate(runCtx, candidates, settings)
	if err != nil {
		return nil, s.generationError(err)
	}

	var report *BalanceReport
	if settings.Balance.Enabled {
		report, err = NewBalancer(weights, options, rng, s.logger).Balance(runCtx, set, candidates, settings)
		if err != nil {
			// The slices are still valid; keep what the balancer reached.
			warnings = append(warnings, "balancing stopped early: "+err.Error())
			logger.Warn("Balancing interrupted", "error", err)
		}
		if !report.Reached {
			warnings = append(warnings, fmt.Sprintf("target ratio %.2f not reached; best ratio %.3f", report.TargetRatio, report.Ratio))
		}
	} else {
		ScoreSet(set, weights)
	}

	if err := CheckInvariants(set, settings); err != nil {
		return nil, errors.WrapInternal("generated slices failed verification", err)
	}

	board := NewDraftBoard(len(set))
	if err := PlaceSliceSet(set, board); err != nil {
		return nil, errors.WrapInternal("failed to place slices", err)
	}

	draft := &Draft{
		ID:        uuid.New().String(),
		Preset:    presetName,
		Seed:      seed,
		Settings:  settings,
		Weights:   weights,
		Slices:    set,
		Balance:   report,
		Board:     board,
		Warnings:  warnings,
		CreatedAt: time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.Create(ctx, draft); err != nil {
			return nil, errors.WrapInternal("failed to save draft", err)
		}
	}
	s.cacheDraft(ctx, draft)

	logger.Info("Draft generated", "draft_id", draft.ID, "ratio", draft.Ratio(), "balanced", draft.Balanced())
	return draft, nil
}

// resolve picks the preset and applies request overrides and server caps
func (s *Service) resolve(req GenerateRequest) (string, Settings, WeightTable, error) {
	name := req.Preset
	if name == "" {
		name = PresetStandard
	}
	preset, ok := s.presets.Get(name)
	if !ok {
		return "", Settings{}, WeightTable{}, errors.Validationf("unknown preset %q", name)
	}

	settings := preset.Settings
	if req.Settings != nil {
		settings = *req.Settings
	}
	weights := preset.Weights
	if req.Weights != nil {
		weights = *req.Weights
	}

	settings.MaxAttempts = capAttempts(settings.MaxAttempts, s.cfg.MaxAttempts)
	settings.MaxSliceAttempts = capAttempts(settings.MaxSliceAttempts, s.cfg.MaxSliceAttempts)
	settings.Balance.MaxAttempts = capAttempts(settings.Balance.MaxAttempts, s.cfg.MaxBalancingAttempts)

	if err := settings.Validate(); err != nil {
		return "", Settings{}, WeightTable{}, errors.WrapValidation("invalid settings", err)
	}
	return name, settings, weights, nil
}

// capAttempts uses the server limit when the request leaves the cap unset or exceeds it
func capAttempts(requested, limit int) int {
	if limit <= 0 {
		return requested
	}
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}

func (s *Service) generationError(err error) error {
	var failure *GenerationFailure
	switch {
	case stderrors.Is(err, ErrPoolTooSmall):
		return errors.WrapValidation("not enough candidate systems for the requested slices", err)
	case stderrors.As(err, &failure):
		return errors.WrapGenerationFailed("no valid slice set found; relax the constraints and retry", err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.WrapGenerationFailed("slice generation timed out; relax the constraints and retry", err)
	default:
		return errors.WrapInternal("slice generation failed", err)
	}
}

func (s *Service) GetDraft(ctx context.Context, id string) (*Draft, error) {
	logger := s.logger.With("component", "milty_service", "operation", "get_draft", "draft_id", id)

	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Validationf("invalid draft id %q", id)
	}

	if s.cache != nil {
		draft, err := s.cache.Get(ctx, id)
		if err != nil {
			logger.Warn("Draft cache read failed", "error", err)
		} else if draft != nil {
			return draft, nil
		}
	}

	if s.store == nil {
		return nil, errors.NotFoundf("draft %s not found", id)
	}
	draft, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load draft", err)
	}
	if draft == nil {
		return nil, errors.NotFoundf("draft %s not found", id)
	}

	s.cacheDraft(ctx, draft)
	return draft, nil
}

func (s *Service) ListDrafts(ctx context.Context) ([]DraftSummary, error) {
	if s.store == nil {
		return []DraftSummary{}, nil
	}
	drafts, err := s.store.ListRecent(ctx, s.cfg.RecentDraftsLimit)
	if err != nil {
		return nil, errors.WrapInternal("failed to list drafts", err)
	}
	return drafts, nil
}

func (s *Service) DeleteDraft(ctx context.Context, id string) error {
	logger := s.logger.With("component", "milty_service", "operation", "delete_draft", "draft_id", id)

	if _, err := uuid.Parse(id); err != nil {
		return errors.Validationf("invalid draft id %q", id)
	}
	if s.store == nil {
		return errors.NotFoundf("draft %s not found", id)
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return errors.WrapInternal("failed to delete draft", err)
	}
	if !deleted {
		return errors.NotFoundf("draft %s not found", id)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil {
			logger.Warn("Draft cache eviction failed", "error", err)
		}
	}

	logger.Info("Draft deleted")
	return nil
}

func (s *Service) Presets() []Preset {
	return s.presets.List()
}

func (s *Service) Defaults() Defaults {
	settings := DefaultSettings()
	if s.cfg.DefaultSliceCount > 0 {
		settings.SliceCount = s.cfg.DefaultSliceCount
	}
	if s.cfg.DefaultTargetRatio > 0 {
		settings.Balance.TargetRatio = s.cfg.DefaultTargetRatio
	}
	settings.Balance.Enabled = s.cfg.IncludeBalanceByDefault
	settings.MaxAttempts = capAttempts(settings.MaxAttempts, s.cfg.MaxAttempts)
	settings.MaxSliceAttempts = capAttempts(settings.MaxSliceAttempts, s.cfg.MaxSliceAttempts)
	settings.Balance.MaxAttempts = capAttempts(settings.Balance.MaxAttempts, s.cfg.MaxBalancingAttempts)

	return Defaults{
		Settings: settings,
		Weights:  DefaultWeights(),
		Options:  s.options,
	}
}

func (s *Service) cacheDraft(ctx context.Context, draft *Draft) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, draft); err != nil {
		s.logger.Warn("Failed to cache draft", "component", "milty_service", "draft_id", draft.ID, "error", err)
	}
}
