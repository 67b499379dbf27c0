package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/wire"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/console"
	"github.com/cory-johannsen/skirmish/internal/game/bestiary"
	"github.com/cory-johannsen/skirmish/internal/game/campaign"
	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/storage/memory"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

// StorageSet provides the roster, campaign signal and history stores.
var StorageSet = wire.NewSet(ProvideStores)

// EngineSet provides the dice roller, history and encounter.
var EngineSet = wire.NewSet(
	ProvideRoller,
	wire.Bind(new(combat.Roller), new(*dice.Roller)),
	ProvideTracerProvider,
	ProvideHistory,
	ProvideEncounter,
)

// ConsoleSet provides the content catalogs, console and its input loop.
var ConsoleSet = wire.NewSet(
	ProvideConditions,
	ProvideBestiary,
	ProvideConsole,
	ProvideService,
)

// PartyStore is the roster seen by the encounter: read for party pulls and
// written when an encounter ends.
type PartyStore interface {
	console.PartySource
	combat.Roster
}

// Stores groups the storage backends selected by storage.driver.
type Stores struct {
	Party   PartyStore
	Signal  combat.CombatSignal
	History combat.HistoryStore
}

// ProvideStores opens the configured storage backend.
//
// With the memory driver the campaign named by encounter.campaign_id is
// created on the fly and the roster is seeded from content.party_file. With
// the postgres driver the campaign must already exist.
//
// Postcondition: Returns stores and a cleanup func, or a non-nil error.
func ProvideStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Stores, func(), error) {
	campaignID := cfg.Encounter.CampaignID
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		campaigns := postgres.NewCampaignRepository(pool.DB())
		camp, err := campaigns.GetByID(ctx, campaignID)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("loading campaign %d: %w", campaignID, err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.String("campaign", camp.Name),
		)
		return &Stores{
			Party:   postgres.NewCharacterRepository(pool.DB()),
			Signal:  campaigns.Signal(campaignID),
			History: postgres.NewEncounterLogRepository(pool.DB()),
		}, pool.Close, nil

	case "memory":
		campaigns := memory.NewCampaignStore()
		err := campaigns.Seed(campaign.Campaign{
			ID:        campaignID,
			Name:      fmt.Sprintf("campaign %d", campaignID),
			CreatedAt: time.Now(),
		})
		if err != nil {
			return nil, nil, err
		}
		chars := memory.NewCharacterStore()
		if path := cfg.Content.PartyFile; path != "" {
			party, err := character.LoadParty(path, campaignID)
			if err != nil {
				return nil, nil, err
			}
			for _, c := range party {
				if _, err := chars.Create(ctx, c); err != nil {
					return nil, nil, fmt.Errorf("seeding %q: %w", c.Name, err)
				}
			}
			logger.Info("party loaded", zap.String("file", path), zap.Int("members", len(party)))
		}
		return &Stores{
			Party:   chars,
			Signal:  campaigns.Signal(campaignID),
			History: memory.NewEncounterLogStore(),
		}, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// ProvideRoller builds the dice roller. A non-zero encounter.seed makes rolls
// reproducible.
func ProvideRoller(cfg config.Config, logger *zap.Logger) *dice.Roller {
	src := dice.NewCryptoSource()
	if seed := cfg.Encounter.Seed; seed != 0 {
		src = dice.NewSeededSource(seed)
		logger.Info("using seeded dice", zap.Uint64("seed", seed))
	}
	return dice.NewLoggedRoller(src, logger)
}

// ProvideTracerProvider builds the tracer provider. The cleanup func flushes
// pending spans.
func ProvideTracerProvider(ctx context.Context, cfg config.Config, logger *zap.Logger) (trace.TracerProvider, func(), error) {
	tp, shutdown, err := observability.NewTracerProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, nil, err
	}
	return tp, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("flushing traces", zap.Error(err))
		}
	}, nil
}

// ProvideHistory builds the encounter history and preloads recent entries.
// A load failure leaves the history empty.
func ProvideHistory(ctx context.Context, cfg config.Config, stores *Stores, logger *zap.Logger) *combat.History {
	h := combat.NewHistory(cfg.Encounter.HistoryLimit, stores.History, logger)
	if err := h.Load(ctx, cfg.Encounter.CampaignID); err != nil {
		logger.Warn("loading encounter history", zap.Error(err))
	}
	return h
}

// ProvideEncounter builds the encounter bound to the configured campaign.
func ProvideEncounter(cfg config.Config, roller combat.Roller, stores *Stores, history *combat.History, tp trace.TracerProvider, logger *zap.Logger) *combat.Encounter {
	return combat.NewEncounter(roller, stores.Party, stores.Signal, history, logger,
		combat.WithCampaign(cfg.Encounter.CampaignID),
		combat.WithTracer(observability.Tracer(tp, "combat")),
	)
}

// ProvideConditions loads the condition catalog. An empty directory setting
// disables it.
func ProvideConditions(cfg config.Config, logger *zap.Logger) (*condition.Registry, error) {
	if cfg.Content.ConditionsDir == "" {
		return nil, nil
	}
	reg, err := condition.LoadDirectory(cfg.Content.ConditionsDir)
	if err != nil {
		return nil, err
	}
	logger.Info("conditions loaded", zap.Int("count", len(reg.All())))
	return reg, nil
}

// ProvideBestiary loads the monster templates. An empty directory setting
// disables them.
func ProvideBestiary(cfg config.Config, logger *zap.Logger) (*bestiary.Bestiary, error) {
	if cfg.Content.BestiaryDir == "" {
		return nil, nil
	}
	b, err := bestiary.LoadDirectory(cfg.Content.BestiaryDir)
	if err != nil {
		return nil, err
	}
	logger.Info("bestiary loaded", zap.Int("count", len(b.IDs())))
	return b, nil
}

// ProvideConsole builds the command console writing to out.
func ProvideConsole(cfg config.Config, enc *combat.Encounter, stores *Stores, roller *dice.Roller, conds *condition.Registry, monsters *bestiary.Bestiary, out io.Writer, logger *zap.Logger) (*console.Console, error) {
	mode, err := combat.ParseRollMode(cfg.Encounter.DefaultRollMode)
	if err != nil {
		return nil, err
	}
	opts := []console.Option{console.WithRollMode(mode), console.WithDice(roller)}
	if conds != nil {
		opts = append(opts, console.WithConditions(conds))
	}
	if monsters != nil {
		opts = append(opts, console.WithBestiary(monsters))
	}
	return console.New(enc, stores.Party, cfg.Encounter.CampaignID, out, logger, opts...), nil
}

// ProvideService wraps the console in a line-reading service.
func ProvideService(c *console.Console, in io.Reader, logger *zap.Logger) *console.Service {
	return console.NewService(c, in, logger)
}
