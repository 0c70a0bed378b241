package mocks

// Hand-written test doubles for the repository and auth ports. Function
// fields keep setup local to each test; unset fields fail loudly instead of
// returning zero values silently.

import (
	"context"
	"errors"
	"time"

	"github.com/mealhow/mealhow-api/internal/core"
	domainauth "github.com/mealhow/mealhow-api/internal/domain/auth"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	"github.com/mealhow/mealhow-api/internal/ports"
)

// Ensure compile-time conformance to the ports.
var (
	_ core.MealPlanRepository     = (*MealPlanRepoDouble)(nil)
	_ core.ShoppingListRepository = (*ShoppingListRepoDouble)(nil)
	_ core.UserRepository         = (*UserRepoDouble)(nil)
	_ core.MealRepository         = (*MealRepoDouble)(nil)
	_ ports.TokenVerifier         = (*VerifierDouble)(nil)
	_ ports.IdentityProvider      = (*IdentityProviderDouble)(nil)
	_ core.MaintenanceRepository  = (*MaintenanceRepoDouble)(nil)
)

var errUnexpectedCall = errors.New("unexpected call on test double")

// MealPlanRepoDouble is a function-field double for core.MealPlanRepository.
type MealPlanRepoDouble struct {
	FindByOwnerAndStatusFunc func(ctx context.Context, userID string, status model.JobStatus) (*model.MealPlan, error)
	FindResolvedFunc         func(ctx context.Context, userID string) (*model.MealPlan, error)
	CurrentFunc              func(ctx context.Context, userID string) (*model.MealPlan, error)
	ListArchivedFunc         func(ctx context.Context, userID string) ([]*model.MealPlan, error)
	ArchiveFunc              func(ctx context.Context, userID, planID string) error
}

func (d *MealPlanRepoDouble) FindByOwnerAndStatus(ctx context.Context, userID string, status model.JobStatus) (*model.MealPlan, error) {
	if d.FindByOwnerAndStatusFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.FindByOwnerAndStatusFunc(ctx, userID, status)
}

func (d *MealPlanRepoDouble) FindResolved(ctx context.Context, userID string) (*model.MealPlan, error) {
	if d.FindResolvedFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.FindResolvedFunc(ctx, userID)
}

func (d *MealPlanRepoDouble) Current(ctx context.Context, userID string) (*model.MealPlan, error) {
	if d.CurrentFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.CurrentFunc(ctx, userID)
}

func (d *MealPlanRepoDouble) ListArchived(ctx context.Context, userID string) ([]*model.MealPlan, error) {
	if d.ListArchivedFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.ListArchivedFunc(ctx, userID)
}

func (d *MealPlanRepoDouble) Archive(ctx context.Context, userID, planID string) error {
	if d.ArchiveFunc == nil {
		return errUnexpectedCall
	}
	return d.ArchiveFunc(ctx, userID, planID)
}

// ShoppingListRepoDouble is a function-field double for core.ShoppingListRepository.
type ShoppingListRepoDouble struct {
	FindByOwnerAndStatusFunc func(ctx context.Context, userID string, status model.JobStatus) (*model.ShoppingList, error)
	FindResolvedByNameFunc   func(ctx context.Context, userID, name string) (*model.ShoppingList, error)
	ListFunc                 func(ctx context.Context, userID string) ([]*model.ShoppingList, error)
	GetByIDFunc              func(ctx context.Context, userID, listID string) (*model.ShoppingList, error)
	SoftDeleteFunc           func(ctx context.Context, userID, listID string) error
	LinkedMealIDsFunc        func(ctx context.Context, userID, listID string) ([]string, error)
}

func (d *ShoppingListRepoDouble) FindByOwnerAndStatus(ctx context.Context, userID string, status model.JobStatus) (*model.ShoppingList, error) {
	if d.FindByOwnerAndStatusFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.FindByOwnerAndStatusFunc(ctx, userID, status)
}

func (d *ShoppingListRepoDouble) FindResolvedByName(ctx context.Context, userID, name string) (*model.ShoppingList, error) {
	if d.FindResolvedByNameFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.FindResolvedByNameFunc(ctx, userID, name)
}

func (d *ShoppingListRepoDouble) List(ctx context.Context, userID string) ([]*model.ShoppingList, error) {
	if d.ListFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.ListFunc(ctx, userID)
}

func (d *ShoppingListRepoDouble) GetByID(ctx context.Context, userID, listID string) (*model.ShoppingList, error) {
	if d.GetByIDFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.GetByIDFunc(ctx, userID, listID)
}

func (d *ShoppingListRepoDouble) SoftDelete(ctx context.Context, userID, listID string) error {
	if d.SoftDeleteFunc == nil {
		return errUnexpectedCall
	}
	return d.SoftDeleteFunc(ctx, userID, listID)
}

func (d *ShoppingListRepoDouble) LinkedMealIDs(ctx context.Context, userID, listID string) ([]string, error) {
	if d.LinkedMealIDsFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.LinkedMealIDsFunc(ctx, userID, listID)
}

// UserRepoDouble is a function-field double for core.UserRepository.
type UserRepoDouble struct {
	CreateFunc             func(ctx context.Context, user *model.User) error
	GetByIDFunc            func(ctx context.Context, id string) (*model.User, error)
	UpdateProfileFunc      func(ctx context.Context, id string, info model.PersonalInfo) (*model.User, error)
	UpdateCaloriesGoalFunc func(ctx context.Context, id string, bmr, caloriesGoal int) error
}

func (d *UserRepoDouble) Create(ctx context.Context, user *model.User) error {
	if d.CreateFunc == nil {
		return errUnexpectedCall
	}
	return d.CreateFunc(ctx, user)
}

func (d *UserRepoDouble) GetByID(ctx context.Context, id string) (*model.User, error) {
	if d.GetByIDFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.GetByIDFunc(ctx, id)
}

func (d *UserRepoDouble) UpdateProfile(ctx context.Context, id string, info model.PersonalInfo) (*model.User, error) {
	if d.UpdateProfileFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.UpdateProfileFunc(ctx, id, info)
}

func (d *UserRepoDouble) UpdateCaloriesGoal(ctx context.Context, id string, bmr, caloriesGoal int) error {
	if d.UpdateCaloriesGoalFunc == nil {
		return errUnexpectedCall
	}
	return d.UpdateCaloriesGoalFunc(ctx, id, bmr, caloriesGoal)
}

// MealRepoDouble is a function-field double for core.MealRepository.
type MealRepoDouble struct {
	GetByIDFunc        func(ctx context.Context, id string) (*model.Meal, error)
	GetByIDsFunc       func(ctx context.Context, ids []string) ([]*model.Meal, error)
	ListFavoritesFunc  func(ctx context.Context, userID string) ([]*model.Meal, error)
	SaveFavoriteFunc   func(ctx context.Context, userID, mealID string) error
	UnmarkFavoriteFunc func(ctx context.Context, userID, mealID string) error
}

func (d *MealRepoDouble) GetByID(ctx context.Context, id string) (*model.Meal, error) {
	if d.GetByIDFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.GetByIDFunc(ctx, id)
}

func (d *MealRepoDouble) GetByIDs(ctx context.Context, ids []string) ([]*model.Meal, error) {
	if d.GetByIDsFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.GetByIDsFunc(ctx, ids)
}

func (d *MealRepoDouble) ListFavorites(ctx context.Context, userID string) ([]*model.Meal, error) {
	if d.ListFavoritesFunc == nil {
		return nil, errUnexpectedCall
	}
	return d.ListFavoritesFunc(ctx, userID)
}

func (d *MealRepoDouble) SaveFavorite(ctx context.Context, userID, mealID string) error {
	if d.SaveFavoriteFunc == nil {
		return errUnexpectedCall
	}
	return d.SaveFavoriteFunc(ctx, userID, mealID)
}

func (d *MealRepoDouble) UnmarkFavorite(ctx context.Context, userID, mealID string) error {
	if d.UnmarkFavoriteFunc == nil {
		return errUnexpectedCall
	}
	return d.UnmarkFavoriteFunc(ctx, userID, mealID)
}

// VerifierDouble is a function-field double for ports.TokenVerifier.
type VerifierDouble struct {
	VerifyFunc func(ctx context.Context, rawToken string) (domainauth.AccessClaims, error)
	Calls      int
}

func (d *VerifierDouble) Verify(ctx context.Context, rawToken string) (domainauth.AccessClaims, error) {
	d.Calls++
	if d.VerifyFunc == nil {
		return domainauth.AccessClaims{}, errUnexpectedCall
	}
	return d.VerifyFunc(ctx, rawToken)
}

// IdentityProviderDouble is a function-field double for ports.IdentityProvider.
type IdentityProviderDouble struct {
	LoginFunc             func(ctx context.Context, email, password string) (ports.LoginResult, error)
	SignupFunc            func(ctx context.Context, in ports.SignupInput) (string, error)
	SendPasswordResetFunc func(ctx context.Context, email string) error
	UpdatePasswordFunc    func(ctx context.Context, userID, newPassword string) error
}

func (d *IdentityProviderDouble) Login(ctx context.Context, email, password string) (ports.LoginResult, error) {
	if d.LoginFunc == nil {
		return ports.LoginResult{}, errUnexpectedCall
	}
	return d.LoginFunc(ctx, email, password)
}

func (d *IdentityProviderDouble) Signup(ctx context.Context, in ports.SignupInput) (string, error) {
	if d.SignupFunc == nil {
		return "", errUnexpectedCall
	}
	return d.SignupFunc(ctx, in)
}

func (d *IdentityProviderDouble) SendPasswordReset(ctx context.Context, email string) error {
	if d.SendPasswordResetFunc == nil {
		return errUnexpectedCall
	}
	return d.SendPasswordResetFunc(ctx, email)
}

func (d *IdentityProviderDouble) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if d.UpdatePasswordFunc == nil {
		return errUnexpectedCall
	}
	return d.UpdatePasswordFunc(ctx, userID, newPassword)
}

// MaintenanceRepoDouble is a function-field double for core.MaintenanceRepository.
type MaintenanceRepoDouble struct {
	FailStaleMealPlansFunc        func(ctx context.Context, maxAge time.Duration) (int64, error)
	FailStaleShoppingListsFunc    func(ctx context.Context, maxAge time.Duration) (int64, error)
	PurgeDeletedShoppingListsFunc func(ctx context.Context, retention time.Duration) (int64, error)
}

func (d *MaintenanceRepoDouble) FailStaleMealPlans(ctx context.Context, maxAge time.Duration) (int64, error) {
	if d.FailStaleMealPlansFunc == nil {
		return 0, errUnexpectedCall
	}
	return d.FailStaleMealPlansFunc(ctx, maxAge)
}

func (d *MaintenanceRepoDouble) FailStaleShoppingLists(ctx context.Context, maxAge time.Duration) (int64, error) {
	if d.FailStaleShoppingListsFunc == nil {
		return 0, errUnexpectedCall
	}
	return d.FailStaleShoppingListsFunc(ctx, maxAge)
}

func (d *MaintenanceRepoDouble) PurgeDeletedShoppingLists(ctx context.Context, retention time.Duration) (int64, error) {
	if d.PurgeDeletedShoppingListsFunc == nil {
		return 0, errUnexpectedCall
	}
	return d.PurgeDeletedShoppingListsFunc(ctx, retention)
}
