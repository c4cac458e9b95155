package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/nexusapp/nexus/internal/catalog"
	"github.com/nexusapp/nexus/internal/ledger"
	"github.com/nexusapp/nexus/internal/logging"
	"github.com/nexusapp/nexus/internal/observability"
)

// ErrPetNotInRotation is returned when the requested pet is not in the
// current hour's shop.
var ErrPetNotInRotation = errors.New("pet not in current shop rotation")

// InsufficientFundsError carries the price context the frontend shows the
// user.
type InsufficientFundsError struct {
	Required int
	Current  int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient NEX: required %d, current %d", e.Required, e.Current)
}

// RotationResult is the materialized shop catalog for the current hour.
type RotationResult struct {
	Pets         []catalog.Pet
	NextRotation time.Time
}

// PurchaseResult is the outcome of a successful purchase.
type PurchaseResult struct {
	NewBalance int
	Pet        catalog.Pet
}

// ShopService serves the hourly rotation and executes purchases against the
// ledger.
type ShopService struct {
	pools   catalog.Pools
	store   ledger.Store
	loc     *time.Location
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewShopService(pools catalog.Pools, store ledger.Store, loc *time.Location, metrics *observability.Metrics, logger *slog.Logger) *ShopService {
	if loc == nil {
		loc = time.UTC
	}

	return &ShopService{
		pools:     pools,
		store:     store,
		loc:       loc,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// CurrentRotation recomputes the shop for the current hour. Nothing is
// persisted; the same hour always yields the same catalog.
func (s *ShopService) CurrentRotation() RotationResult {
	now := s.now().In(s.loc)

	if s.metrics != nil {
		s.metrics.RotationServes.Inc()
	}

	return RotationResult{
		Pets:         catalog.Rotation(s.pools, now.Hour()),
		NextRotation: catalog.NextRotation(now),
	}
}

// Purchase validates petID against the rotation at call time, debits the
// user's balance and credits the pet. The whole sequence holds a per-user
// lock, so concurrent purchases by one user cannot overspend; independent
// users never contend. On any failure the ledger is left unchanged.
//
// Known limitation: the rotation is re-derived from the wall clock here, so
// a purchase straddling an hour boundary is validated against the new
// hour's catalog, not the one the user was shown.
func (s *ShopService) Purchase(ctx context.Context, userID, petID string) (PurchaseResult, error) {
	logger := logging.FromContext(ctx, s.logger)
	meter := observability.MeterFromContext(ctx)
	meter.SetAttributes(attribute.String("component", "shop_service"))

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now().In(s.loc)
	rotation := catalog.Rotation(s.pools, now.Hour())

	pet, ok := findPet(rotation, petID)
	if !ok {
		s.countPurchase(observability.ResultNotInRotation)
		meter.Count("shop.purchase.failed", 1, sentry.WithAttributes(attribute.String("reason", "not_in_rotation")))
		return PurchaseResult{}, ErrPetNotInRotation
	}

	entry := s.store.GetOrCreate(userID)
	if entry.Balance < pet.Price {
		s.countPurchase(observability.ResultInsufficientFunds)
		meter.Count("shop.purchase.failed", 1, sentry.WithAttributes(attribute.String("reason", "insufficient_funds")))
		return PurchaseResult{}, &InsufficientFundsError{Required: pet.Price, Current: entry.Balance}
	}

	if !s.store.Debit(userID, pet.Price) {
		// The balance check above passed, so a concurrent writer must have
		// drained the balance between the two calls.
		current := s.store.GetOrCreate(userID).Balance
		s.countPurchase(observability.ResultInsufficientFunds)
		meter.Count("shop.purchase.failed", 1, sentry.WithAttributes(attribute.String("reason", "debit_rejected")))
		return PurchaseResult{}, &InsufficientFundsError{Required: pet.Price, Current: current}
	}

	s.store.Credit(userID, pet)
	newBalance := s.store.GetOrCreate(userID).Balance

	s.countPurchase(observability.ResultSuccess)
	if s.metrics != nil {
		s.metrics.NEXSpent.Add(float64(pet.Price))
	}
	meter.Count("shop.purchase.completed", 1, sentry.WithAttributes(attribute.String("rarity", string(pet.Rarity))))
	logger.Info("purchase completed", "user_id", userID, "pet_id", pet.ID, "price", pet.Price, "new_balance", newBalance)

	return PurchaseResult{NewBalance: newBalance, Pet: pet}, nil
}

func (s *ShopService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

func (s *ShopService) countPurchase(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Purchases.WithLabelValues(result).Inc()
}

func findPet(rotation []catalog.Pet, petID string) (catalog.Pet, bool) {
	for _, pet := range rotation {
		if pet.ID == petID {
			return pet, true
		}
	}
	return catalog.Pet{}, false
}
