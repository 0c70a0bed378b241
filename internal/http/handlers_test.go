package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/mealhow/mealhow-api/internal/domain/auth"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
	"github.com/mealhow/mealhow-api/internal/mocks"
	"github.com/mealhow/mealhow-api/internal/ports"
	"github.com/mealhow/mealhow-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSubject = "auth0|user-1"

// routerDoubles bundles the stores and provider behind a fully wired router.
type routerDoubles struct {
	mealPlans     *mocks.MealPlanRepoDouble
	shoppingLists *mocks.ShoppingListRepoDouble
	users         *mocks.UserRepoDouble
	meals         *mocks.MealRepoDouble
	provider      *mocks.IdentityProviderDouble
	publisher     *mocks.MockPublisher
}

func newTestRouter(t *testing.T, d routerDoubles) http.Handler {
	t.Helper()

	if d.publisher == nil {
		d.publisher = mocks.NewMockPublisher(gomock.NewController(t))
	}
	gen, err := service.NewGenerationService(service.GenerationServiceOptions{
		Publisher:       d.publisher,
		ProjectID:       "mealhow-test",
		PollInterval:    time.Millisecond,
		PollMaxAttempts: 3,
	})
	require.NoError(t, err)

	auth, err := service.NewAuthService(service.AuthServiceOptions{Provider: d.provider})
	require.NoError(t, err)
	users, err := service.NewUserService(service.UserServiceOptions{Repo: d.users})
	require.NoError(t, err)
	meals, err := service.NewMealService(service.MealServiceOptions{Repo: d.meals})
	require.NoError(t, err)
	plans, err := service.NewMealPlanService(service.MealPlanServiceOptions{
		Repo:          d.mealPlans,
		Users:         d.users,
		Generation:    gen,
		MealPlanTopic: "meal-plan-generation",
	})
	require.NoError(t, err)
	lists, err := service.NewShoppingListService(service.ShoppingListServiceOptions{
		Repo:              d.shoppingLists,
		Meals:             d.meals,
		Generation:        gen,
		ShoppingListTopic: "shopping-list-generation",
	})
	require.NoError(t, err)

	verifier := &mocks.VerifierDouble{
		VerifyFunc: func(context.Context, string) (domainauth.AccessClaims, error) {
			return domainauth.AccessClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: testSubject},
			}, nil
		},
	}

	return NewRouter(RouterServices{
		Auth:          auth,
		Users:         users,
		Meals:         meals,
		MealPlans:     plans,
		ShoppingLists: lists,
		Verifier:      verifier,
		HTTP:          testHTTPConfig(),
	})
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	router := newTestRouter(t, routerDoubles{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["healthy"])
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("login returns tokens without credentials in the request gate", func(t *testing.T) {
		provider := &mocks.IdentityProviderDouble{
			LoginFunc: func(_ context.Context, email, password string) (ports.LoginResult, error) {
				assert.Equal(t, "user@example.com", email)
				assert.Equal(t, "hunter22", password)
				return ports.LoginResult{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 86400}, nil
			},
		}
		router := newTestRouter(t, routerDoubles{provider: provider})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
			strings.NewReader(`{"email": "user@example.com", "password": "hunter22"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "tok", body["access_token"])
		assert.Equal(t, "Bearer", body["token_type"])
	})

	t.Run("wrong credentials render the provider message", func(t *testing.T) {
		provider := &mocks.IdentityProviderDouble{
			LoginFunc: func(context.Context, string, string) (ports.LoginResult, error) {
				return ports.LoginResult{}, apperrors.Unauthenticated("Wrong email or password")
			},
		}
		router := newTestRouter(t, routerDoubles{provider: provider})

		rec := doRequest(t, router, http.MethodPost, "/v1/auth/login",
			`{"email": "user@example.com", "password": "nope"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Wrong email or password", decodeErrorBody(t, rec)["message"])
	})

	t.Run("password reset never reveals account existence", func(t *testing.T) {
		provider := &mocks.IdentityProviderDouble{
			SendPasswordResetFunc: func(context.Context, string) error {
				return apperrors.NotFound("User not found")
			},
		}
		router := newTestRouter(t, routerDoubles{provider: provider})

		rec := doRequest(t, router, http.MethodPost, "/v1/auth/password/reset",
			`{"email": "ghost@example.com"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "If the account exists")
	})
}

func TestMealPlanEndpoints(t *testing.T) {
	t.Run("create blocks until the plan resolves", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		publisher := mocks.NewMockPublisher(ctrl)
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		resolved := &model.MealPlan{ID: "plan-1", UserID: testSubject, Status: model.JobStatusActive}
		router := newTestRouter(t, routerDoubles{
			publisher: publisher,
			users: &mocks.UserRepoDouble{
				GetByIDFunc: func(context.Context, string) (*model.User, error) {
					return &model.User{ID: testSubject, BMR: 1700, CaloriesGoal: 2100}, nil
				},
				UpdateCaloriesGoalFunc: func(context.Context, string, int, int) error { return nil },
			},
			mealPlans: &mocks.MealPlanRepoDouble{
				FindByOwnerAndStatusFunc: func(context.Context, string, model.JobStatus) (*model.MealPlan, error) {
					return nil, nil
				},
				FindResolvedFunc: func(context.Context, string) (*model.MealPlan, error) {
					return resolved, nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodPost, "/v1/meal-plans", `{"duration_days": 7}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "plan-1", body["meal_plan_id"])
		assert.Equal(t, "active", body["status"])
	})

	t.Run("create with a pending job is a conflict", func(t *testing.T) {
		router := newTestRouter(t, routerDoubles{
			users: &mocks.UserRepoDouble{
				GetByIDFunc: func(context.Context, string) (*model.User, error) {
					return &model.User{ID: testSubject}, nil
				},
			},
			mealPlans: &mocks.MealPlanRepoDouble{
				FindByOwnerAndStatusFunc: func(context.Context, string, model.JobStatus) (*model.MealPlan, error) {
					return &model.MealPlan{ID: "pending", Status: model.JobStatusInProgress}, nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodPost, "/v1/meal-plans", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "A generation job is already in progress", decodeErrorBody(t, rec)["message"])
	})

	t.Run("create times out as 504 when the worker never resolves", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		publisher := mocks.NewMockPublisher(ctrl)
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		router := newTestRouter(t, routerDoubles{
			publisher: publisher,
			users: &mocks.UserRepoDouble{
				GetByIDFunc: func(context.Context, string) (*model.User, error) {
					return &model.User{ID: testSubject, BMR: 1700, CaloriesGoal: 2100}, nil
				},
				UpdateCaloriesGoalFunc: func(context.Context, string, int, int) error { return nil },
			},
			mealPlans: &mocks.MealPlanRepoDouble{
				FindByOwnerAndStatusFunc: func(context.Context, string, model.JobStatus) (*model.MealPlan, error) {
					return nil, nil
				},
				FindResolvedFunc: func(context.Context, string) (*model.MealPlan, error) {
					return nil, nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodPost, "/v1/meal-plans", "")

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.Equal(t, "Timed out waiting for the result", decodeErrorBody(t, rec)["message"])
	})

	t.Run("current applies the filter expression", func(t *testing.T) {
		details := json.RawMessage(`{"days": [{"meals": [{"full_name": "Oats"}]}]}`)
		router := newTestRouter(t, routerDoubles{
			mealPlans: &mocks.MealPlanRepoDouble{
				CurrentFunc: func(context.Context, string) (*model.MealPlan, error) {
					return &model.MealPlan{ID: "plan-1", Status: model.JobStatusActive, Details: details}, nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodGet,
			"/v1/meal-plans/current?filter=days[0].meals[0].full_name", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "plan-1", body["meal_plan_id"])
		assert.Equal(t, "Oats", body["details"])
	})

	t.Run("current without a plan is 404", func(t *testing.T) {
		router := newTestRouter(t, routerDoubles{
			mealPlans: &mocks.MealPlanRepoDouble{
				CurrentFunc: func(context.Context, string) (*model.MealPlan, error) { return nil, nil },
			},
		})

		rec := doRequest(t, router, http.MethodGet, "/v1/meal-plans/current", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No active meal plan", decodeErrorBody(t, rec)["message"])
	})

	t.Run("invalid filter is 400", func(t *testing.T) {
		router := newTestRouter(t, routerDoubles{
			mealPlans: &mocks.MealPlanRepoDouble{
				CurrentFunc: func(context.Context, string) (*model.MealPlan, error) {
					return &model.MealPlan{ID: "plan-1", Status: model.JobStatusActive}, nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodGet, "/v1/meal-plans/current?filter=days[", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("archive list and archive by id", func(t *testing.T) {
		var archivedID string
		router := newTestRouter(t, routerDoubles{
			mealPlans: &mocks.MealPlanRepoDouble{
				ListArchivedFunc: func(_ context.Context, userID string) ([]*model.MealPlan, error) {
					assert.Equal(t, testSubject, userID)
					return []*model.MealPlan{{ID: "old-1", Status: model.JobStatusArchived}}, nil
				},
				ArchiveFunc: func(_ context.Context, _, planID string) error {
					archivedID = planID
					return nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodGet, "/v1/meal-plans/archive", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"meal_plans"`)

		rec = doRequest(t, router, http.MethodPost, "/v1/meal-plans/plan-1/archive", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "plan-1", archivedID)
	})
}

func TestShoppingListEndpoints(t *testing.T) {
	t.Run("create validates meal ids before dispatch", func(t *testing.T) {
		router := newTestRouter(t, routerDoubles{
			meals: &mocks.MealRepoDouble{
				GetByIDsFunc: func(context.Context, []string) ([]*model.Meal, error) {
					return nil, nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodPost, "/v1/shopping-lists",
			`{"name": "Week 36", "meal_ids": ["missing-meal"]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeErrorBody(t, rec)["message"], "do not exist")
	})

	t.Run("create resolves through the generation bridge", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		publisher := mocks.NewMockPublisher(ctrl)
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		resolved := &model.ShoppingList{ID: "list-1", Name: "Week 36", Status: model.JobStatusActive}
		router := newTestRouter(t, routerDoubles{
			publisher: publisher,
			meals: &mocks.MealRepoDouble{
				GetByIDsFunc: func(_ context.Context, ids []string) ([]*model.Meal, error) {
					return []*model.Meal{{ID: ids[0]}}, nil
				},
			},
			shoppingLists: &mocks.ShoppingListRepoDouble{
				FindByOwnerAndStatusFunc: func(context.Context, string, model.JobStatus) (*model.ShoppingList, error) {
					return nil, nil
				},
				FindResolvedByNameFunc: func(context.Context, string, string) (*model.ShoppingList, error) {
					return resolved, nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodPost, "/v1/shopping-lists",
			`{"name": "Week 36", "meal_ids": ["meal-1"]}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "list-1", body["shopping_list_id"])
	})

	t.Run("get and delete by id", func(t *testing.T) {
		var deletedID string
		router := newTestRouter(t, routerDoubles{
			shoppingLists: &mocks.ShoppingListRepoDouble{
				GetByIDFunc: func(_ context.Context, userID, listID string) (*model.ShoppingList, error) {
					assert.Equal(t, testSubject, userID)
					if listID != "list-1" {
						return nil, apperrors.NotFound("Shopping list not found")
					}
					return &model.ShoppingList{ID: "list-1", Name: "Week 36", TotalItems: 3}, nil
				},
				SoftDeleteFunc: func(_ context.Context, _, listID string) error {
					deletedID = listID
					return nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodGet, "/v1/shopping-lists/list-1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_items":3`)

		rec = doRequest(t, router, http.MethodGet, "/v1/shopping-lists/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Shopping list not found", decodeErrorBody(t, rec)["message"])

		rec = doRequest(t, router, http.MethodDelete, "/v1/shopping-lists/list-1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "list-1", deletedID)
	})

	t.Run("linked meals", func(t *testing.T) {
		router := newTestRouter(t, routerDoubles{
			shoppingLists: &mocks.ShoppingListRepoDouble{
				LinkedMealIDsFunc: func(context.Context, string, string) ([]string, error) {
					return []string{"meal-1"}, nil
				},
			},
			meals: &mocks.MealRepoDouble{
				GetByIDsFunc: func(_ context.Context, ids []string) ([]*model.Meal, error) {
					assert.Equal(t, []string{"meal-1"}, ids)
					return []*model.Meal{{ID: "meal-1", FullName: "Oats"}}, nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodGet, "/v1/shopping-lists/list-1/meals", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"meals"`)
		assert.Contains(t, rec.Body.String(), "Oats")
	})
}

func TestMealEndpoints(t *testing.T) {
	t.Run("favorites route wins over the id route", func(t *testing.T) {
		router := newTestRouter(t, routerDoubles{
			meals: &mocks.MealRepoDouble{
				ListFavoritesFunc: func(context.Context, string) ([]*model.Meal, error) {
					return []*model.Meal{{ID: "meal-1", FullName: "Oats"}}, nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodGet, "/v1/meals/favorites", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"favorites"`)
	})

	t.Run("favorite and unfavorite", func(t *testing.T) {
		var saved, removed string
		router := newTestRouter(t, routerDoubles{
			meals: &mocks.MealRepoDouble{
				SaveFavoriteFunc: func(_ context.Context, userID, mealID string) error {
					assert.Equal(t, testSubject, userID)
					saved = mealID
					return nil
				},
				UnmarkFavoriteFunc: func(_ context.Context, _, mealID string) error {
					removed = mealID
					return nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodPost, "/v1/meals/meal-1/favorite", "")
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "meal-1", saved)

		rec = doRequest(t, router, http.MethodDelete, "/v1/meals/meal-1/favorite", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "meal-1", removed)
	})
}

func TestUserEndpoints(t *testing.T) {
	t.Run("create profile owns the id from the token subject", func(t *testing.T) {
		var created *model.User
		router := newTestRouter(t, routerDoubles{
			users: &mocks.UserRepoDouble{
				CreateFunc: func(_ context.Context, user *model.User) error {
					created = user
					return nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodPost, "/v1/user/profile", `{
			"email": "user@example.com",
			"name": "Sam",
			"personal_info": {
				"age": 30, "biological_sex": "male", "height": 180,
				"current_weight": 85, "weight_goal": 78,
				"measurement_system": "metric",
				"goal": "lose_weight", "activity_level": "moderately_active"
			}
		}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, created)
		assert.Equal(t, testSubject, created.ID)
		assert.Positive(t, created.CaloriesGoal)
	})

	t.Run("invalid json body is 400", func(t *testing.T) {
		router := newTestRouter(t, routerDoubles{})

		rec := doRequest(t, router, http.MethodPost, "/v1/user/profile", `{"email": `)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid JSON body", decodeErrorBody(t, rec)["message"])
	})

	t.Run("update password delegates to the identity provider", func(t *testing.T) {
		var gotUser, gotPassword string
		router := newTestRouter(t, routerDoubles{
			provider: &mocks.IdentityProviderDouble{
				UpdatePasswordFunc: func(_ context.Context, userID, newPassword string) error {
					gotUser, gotPassword = userID, newPassword
					return nil
				},
			},
		})

		rec := doRequest(t, router, http.MethodPut, "/v1/user/password",
			`{"password": "longenough1"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testSubject, gotUser)
		assert.Equal(t, "longenough1", gotPassword)
	})
}
