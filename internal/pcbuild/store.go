package pcbuild

import (
	"context"
	"sync"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/shopspring/decimal"
)

type API interface {
	ListBuilds(ctx context.Context) ([]shopapi.PcBuild, error)
	GetBuild(ctx context.Context, id int64) (shopapi.PcBuild, error)
	CreateBuild(ctx context.Context, name string, productIDs []int64) (shopapi.PcBuild, error)
	UpdateBuild(ctx context.Context, id int64, name string, productIDs []int64) (shopapi.PcBuild, error)
	DeleteBuild(ctx context.Context, id int64) error
}

type StoreParams struct {
	API    API
	Logger *logger.Logger
}

// Store mirrors the signed-in user's saved builds.
type Store struct {
	api  API
	logg *logger.Logger

	mu     sync.RWMutex
	builds []shopapi.PcBuild
	err    string
}

func NewStore(params StoreParams) (*Store, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pcbuild api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Store{api: params.API, logg: params.Logger, builds: []shopapi.PcBuild{}}, nil
}

func (s *Store) OnAuthChange(ctx context.Context, authenticated bool) {
	if !authenticated {
		s.mu.Lock()
		s.builds = []shopapi.PcBuild{}
		s.err = ""
		s.mu.Unlock()
		return
	}
	_ = s.Fetch(ctx)
}

func (s *Store) Fetch(ctx context.Context) error {
	builds, err := s.api.ListBuilds(ctx)
	if err != nil {
		s.fail(ctx, "pcbuild.fetch", err)
		return err
	}
	if builds == nil {
		builds = []shopapi.PcBuild{}
	}
	s.mu.Lock()
	s.builds = builds
	s.err = ""
	s.mu.Unlock()
	return nil
}

// Get loads one build with its details; it does not touch the list.
func (s *Store) Get(ctx context.Context, id int64) (shopapi.PcBuild, error) {
	build, err := s.api.GetBuild(ctx, id)
	if err != nil {
		s.fail(ctx, "pcbuild.get", err)
		return shopapi.PcBuild{}, err
	}
	return build, nil
}

func (s *Store) Create(ctx context.Context, name string, productIDs []int64) (shopapi.PcBuild, error) {
	build, err := s.api.CreateBuild(ctx, name, productIDs)
	if err != nil {
		s.fail(ctx, "pcbuild.create", err)
		return shopapi.PcBuild{}, err
	}
	return build, s.Fetch(ctx)
}

func (s *Store) Update(ctx context.Context, id int64, name string, productIDs []int64) (shopapi.PcBuild, error) {
	build, err := s.api.UpdateBuild(ctx, id, name, productIDs)
	if err != nil {
		s.fail(ctx, "pcbuild.update", err)
		return shopapi.PcBuild{}, err
	}
	return build, s.Fetch(ctx)
}

// Delete removes the build upstream, then drops it from the local list
// without a refetch.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteBuild(ctx, id); err != nil {
		s.fail(ctx, "pcbuild.delete", err)
		return err
	}
	s.mu.Lock()
	kept := make([]shopapi.PcBuild, 0, len(s.builds))
	for _, b := range s.builds {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	s.builds = kept
	s.mu.Unlock()
	return nil
}

func (s *Store) Builds() []shopapi.PcBuild {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shopapi.PcBuild(nil), s.builds...)
}

func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// BuildTotal sums the prices of a saved build's products.
func BuildTotal(build shopapi.PcBuild) decimal.Decimal {
	total := decimal.Zero
	for _, d := range build.Details {
		if d.Product != nil {
			total = total.Add(d.Product.Price)
		}
	}
	return total
}

func (s *Store) fail(ctx context.Context, op string, err error) {
	s.mu.Lock()
	s.err = shopapi.MessageOf(err)
	s.mu.Unlock()
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"op": op, "error": err.Error()}), "pcbuild operation failed")
}
