// This package is used to initialize the application. It has dependencies on most
// other packages. Other packages can depend on it as a quick way to get access to
// all the dependencies.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/petuhovskiy/urn-lights/internal/bgjobs"
	"github.com/petuhovskiy/urn-lights/internal/conf"
	"github.com/petuhovskiy/urn-lights/internal/log"
	"github.com/petuhovskiy/urn-lights/internal/models"
	"github.com/petuhovskiy/urn-lights/internal/recorder"
	"github.com/petuhovskiy/urn-lights/internal/repos"
	"github.com/petuhovskiy/urn-lights/internal/urn"
)

type App struct {
	Config     *conf.App
	DB         *gorm.DB
	Repo       *Repos
	Random     urn.Source
	Saver      recorder.DrawSaver
	Register   *bgjobs.Register
	SetLocker  *bgjobs.SetLocker
	SetFilters []repos.Filter
}

func NewAppFromEnv(ctx context.Context) (*App, error) {
	cfg, err := conf.ParseEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config from env: %w", err)
	}

	setFilters := []repos.Filter{
		repos.FilterByExitnode(cfg.Exitnode),
	}
	log.Info(ctx, "using set filters", zap.Any("filters", setFilters))

	db, err := connectDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	repo, err := createRepos(db, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create repos: %w", err)
	}

	saver, err := createSaver(ctx, cfg, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to create draw saver: %w", err)
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &App{
		Config:     cfg,
		DB:         db,
		Repo:       repo,
		Random:     newLockedSource(seed),
		Saver:      saver,
		Register:   bgjobs.NewRegister(),
		SetLocker:  bgjobs.NewSetLocker(),
		SetFilters: setFilters,
	}, nil
}

// Close flushes buffered draws and releases the saver's resources. Must be
// called after all rules have stopped.
func (a *App) Close(ctx context.Context) error {
	if c, ok := a.Saver.(recorder.Closer); ok {
		return c.Close(ctx)
	}
	return nil
}

var (
	DrawDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "urnlights_draw_seconds",
		Help: "Time spent on each urn operation",
	}, []string{"set", "op"})

	DrawsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "urnlights_draws_total",
		Help: "Urn operations by outcome",
	}, []string{"set", "op", "outcome"})
)

func (a *App) StartPrometheus() {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		err := http.ListenAndServe(a.Config.PrometheusBind, mux)
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(context.TODO(), "prometheus server error", zap.Error(err))
		}
	}()
}

func connectDB(cfg *conf.App) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

type Repos struct {
	ItemSet        *repos.ItemSetRepo
	Item           *repos.ItemRepo
	Draw           *repos.DrawRepo
	Sequence       *repos.SequenceRepo
	SeqExitnodeSet *repos.Sequence
}

func createRepos(db *gorm.DB, cfg *conf.App) (*Repos, error) {
	err := db.AutoMigrate(
		&models.ItemSet{},
		&models.Item{},
		&models.Draw{},
		&models.Sequence{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	if cfg.DebugDB {
		db = db.Debug()
	}

	sequenceRepo := repos.NewSequenceRepo(db)
	seq, err := sequenceRepo.Get("set@" + cfg.Exitnode)
	if err != nil {
		return nil, err
	}

	return &Repos{
		ItemSet:        repos.NewItemSetRepo(db),
		Item:           repos.NewItemRepo(db),
		Draw:           repos.NewDrawRepo(db),
		Sequence:       sequenceRepo,
		SeqExitnodeSet: seq,
	}, nil
}

func createSaver(ctx context.Context, cfg *conf.App, repo *Repos) (recorder.DrawSaver, error) {
	if !cfg.UseCopyRecorder {
		return recorder.NewRepoSaver(repo.Draw), nil
	}
	return recorder.Connect(ctx, cfg.PostgresDSN, cfg.CopyFlushSize)
}

// lockedSource is a urn.Source safe for concurrent rules.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedSource(seed int64) *lockedSource {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) UniformWeight(hi urn.Weight) urn.Weight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return urn.Weight(s.r.Int63n(int64(hi) + 1))
}
