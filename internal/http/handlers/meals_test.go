package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/diettrack/internal/cache"
	"github.com/geocoder89/diettrack/internal/domain/meal"
	"github.com/geocoder89/diettrack/internal/domain/user"
	"github.com/geocoder89/diettrack/internal/http/handlers"
	"github.com/geocoder89/diettrack/internal/http/middlewares"
	"github.com/geocoder89/diettrack/internal/repo/memory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Fake implementation of the handlers.MealStore interface

type fakeMealStore struct {
	createFn      func(ctx context.Context, m meal.Meal) error
	listFn        func(ctx context.Context, userID string) ([]meal.Meal, error)
	listOrderedFn func(ctx context.Context, userID string) ([]meal.Meal, error)
	getFn         func(ctx context.Context, id string) (meal.Meal, error)
	updateFn      func(ctx context.Context, id string, req meal.UpdateMealRequest) error
	deleteFn      func(ctx context.Context, id string) error
}

func (f *fakeMealStore) Create(ctx context.Context, m meal.Meal) error {
	if f.createFn != nil {
		return f.createFn(ctx, m)
	}
	return nil
}

func (f *fakeMealStore) ListByUser(ctx context.Context, userID string) ([]meal.Meal, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return []meal.Meal{}, nil
}

func (f *fakeMealStore) ListByUserOrderedByDate(ctx context.Context, userID string) ([]meal.Meal, error) {
	if f.listOrderedFn != nil {
		return f.listOrderedFn(ctx, userID)
	}
	return []meal.Meal{}, nil
}

func (f *fakeMealStore) GetByID(ctx context.Context, id string) (meal.Meal, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return meal.Meal{}, meal.ErrNotFound
}

func (f *fakeMealStore) Update(ctx context.Context, id string, req meal.UpdateMealRequest) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return nil
}

func (f *fakeMealStore) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

// Fake session resolver so the gate can run without a database

type fakeSessionResolver struct {
	users map[string]user.User // session token -> user
}

func (f *fakeSessionResolver) GetBySessionID(ctx context.Context, sessionID string) (user.User, error) {
	u, ok := f.users[sessionID]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func setupMealsRouter(store handlers.MealStore, metrics cache.MetricsCache, sessions *fakeSessionResolver) *gin.Engine {
	r := gin.New()

	h := handlers.NewMealsHandler(store, metrics)
	gate := middlewares.NewSessionMiddleware(sessions)

	meals := r.Group("/meals", gate.RequireSession())
	meals.POST("", h.CreateMeal)
	meals.GET("", h.ListMeals)
	meals.GET("/metrics", h.GetMetrics)
	meals.GET("/:mealId", h.GetMealByID)
	meals.PUT("/:mealId", h.UpdateMeal)
	meals.DELETE("/:mealId", h.DeleteMeal)

	return r
}

func authedSession(userID string) (*fakeSessionResolver, *http.Cookie) {
	token := uuid.NewString()

	resolver := &fakeSessionResolver{
		users: map[string]user.User{
			token: {ID: userID, SessionID: token},
		},
	}

	return resolver, &http.Cookie{Name: "sessionId", Value: token}
}

func doMealRequest(r *gin.Engine, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request

	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestMealsEndpointsRequireSession(t *testing.T) {
	store := &fakeMealStore{
		createFn: func(ctx context.Context, m meal.Meal) error {
			t.Errorf("store touched by unauthenticated request")
			return nil
		},
		listFn: func(ctx context.Context, userID string) ([]meal.Meal, error) {
			t.Errorf("store touched by unauthenticated request")
			return nil, nil
		},
		getFn: func(ctx context.Context, id string) (meal.Meal, error) {
			t.Errorf("store touched by unauthenticated request")
			return meal.Meal{}, meal.ErrNotFound
		},
	}

	r := setupMealsRouter(store, nil, &fakeSessionResolver{users: map[string]user.User{}})

	id := uuid.NewString()

	routes := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/meals", `{"name":"Lunch","description":"","isOnDiet":true,"date":"2024-12-04T12:00:00Z"}`},
		{http.MethodGet, "/meals", ""},
		{http.MethodGet, "/meals/" + id, ""},
		{http.MethodPut, "/meals/" + id, `{"name":"Lunch","description":"","isOnDiet":true,"date":"2024-12-04T12:00:00Z"}`},
		{http.MethodDelete, "/meals/" + id, ""},
		{http.MethodGet, "/meals/metrics", ""},
	}

	for _, rt := range routes {
		rt := rt

		t.Run(rt.method+"_"+rt.path, func(t *testing.T) {
			// no cookie at all
			w := doMealRequest(r, rt.method, rt.path, rt.body, nil)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
			}

			// cookie that resolves to no user
			w = doMealRequest(r, rt.method, rt.path, rt.body, &http.Cookie{Name: "sessionId", Value: uuid.NewString()})

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("got status %d with bogus session, want 401", w.Code)
			}
		})
	}
}

func TestCreateMeal(t *testing.T) {
	userID := uuid.NewString()
	date := time.Date(2024, 12, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           string
		storeSetUp     func(*fakeMealStore)
		wantStatusCode int
	}{
		{
			name: "success",
			body: fmt.Sprintf(`{"name":"Lunch","description":"rice and beans","isOnDiet":true,"date":%q}`, date.Format(time.RFC3339)),
			storeSetUp: func(f *fakeMealStore) {
				f.createFn = func(ctx context.Context, m meal.Meal) error {
					if m.UserID != userID {
						t.Errorf("owner = %q, want gate-resolved %q", m.UserID, userID)
					}
					if m.Date != date.UnixMilli() {
						t.Errorf("date = %d, want %d", m.Date, date.UnixMilli())
					}
					if !m.IsOnDiet {
						t.Errorf("isOnDiet not carried over")
					}
					return nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			// false must survive the required check on the flag
			name:           "off_diet_false_is_valid",
			body:           fmt.Sprintf(`{"name":"Burger","description":"","isOnDiet":false,"date":%q}`, date.Format(time.RFC3339)),
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_diet_flag",
			body:           fmt.Sprintf(`{"name":"Lunch","description":"","date":%q}`, date.Format(time.RFC3339)),
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_date",
			body:           `{"name":"Lunch","description":"","isOnDiet":true}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_name",
			body:           fmt.Sprintf(`{"description":"","isOnDiet":true,"date":%q}`, date.Format(time.RFC3339)),
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeMealStore{}

			if tt.storeSetUp != nil {
				tt.storeSetUp(store)
			}

			sessions, cookie := authedSession(userID)
			r := setupMealsRouter(store, nil, sessions)

			w := doMealRequest(r, http.MethodPost, "/meals", tt.body, cookie)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestGetMealByID(t *testing.T) {
	userID := uuid.NewString()
	known := meal.Meal{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     "Lunch",
		IsOnDiet: true,
		Date:     time.Now().UnixMilli(),
	}

	store := &fakeMealStore{
		getFn: func(ctx context.Context, id string) (meal.Meal, error) {
			if id == known.ID {
				return known, nil
			}
			return meal.Meal{}, meal.ErrNotFound
		},
	}

	sessions, cookie := authedSession(userID)
	r := setupMealsRouter(store, nil, sessions)

	t.Run("malformed_id", func(t *testing.T) {
		w := doMealRequest(r, http.MethodGet, "/meals/not-a-uuid", "", cookie)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want 400", w.Code)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		w := doMealRequest(r, http.MethodGet, "/meals/"+uuid.NewString(), "", cookie)

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404", w.Code)
		}

		var body struct {
			Error string `json:"error"`
		}

		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to unmarshal body: %v", err)
		}

		if body.Error != "Meal not found" {
			t.Errorf("error = %q, want %q", body.Error, "Meal not found")
		}
	})

	t.Run("found", func(t *testing.T) {
		w := doMealRequest(r, http.MethodGet, "/meals/"+known.ID, "", cookie)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}

		var body struct {
			Meal meal.Meal `json:"meal"`
		}

		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to unmarshal body: %v", err)
		}

		if body.Meal.ID != known.ID || body.Meal.Date != known.Date {
			t.Errorf("got meal %+v, want %+v", body.Meal, known)
		}
	})
}

func TestUpdateAndDeleteMealNotFound(t *testing.T) {
	userID := uuid.NewString()
	sessions, cookie := authedSession(userID)
	r := setupMealsRouter(&fakeMealStore{}, nil, sessions)

	body := `{"name":"Lunch","description":"","isOnDiet":true,"date":"2024-12-04T12:00:00Z"}`

	for _, tt := range []struct {
		method string
		body   string
	}{
		{http.MethodPut, body},
		{http.MethodDelete, ""},
	} {
		w := doMealRequest(r, tt.method, "/meals/"+uuid.NewString(), tt.body, cookie)

		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: got status %d, want 404, body=%s", tt.method, w.Code, w.Body.String())
		}

		var respBody struct {
			Error string `json:"error"`
		}

		if err := json.Unmarshal(w.Body.Bytes(), &respBody); err != nil {
			t.Fatalf("failed to unmarshal body: %v", err)
		}

		if respBody.Error != "Meal not found" {
			t.Errorf("%s: error = %q, want %q", tt.method, respBody.Error, "Meal not found")
		}
	}
}

func TestGetMetricsFromOrderedMeals(t *testing.T) {
	userID := uuid.NewString()

	at := func(date string, onDiet bool) meal.Meal {
		d, _ := time.Parse("2006-01-02", date)
		return meal.Meal{ID: uuid.NewString(), UserID: userID, IsOnDiet: onDiet, Date: d.UnixMilli()}
	}

	store := &fakeMealStore{
		listOrderedFn: func(ctx context.Context, id string) ([]meal.Meal, error) {
			// ascending date order, the off-diet meal first
			return []meal.Meal{
				at("2023-08-06", false),
				at("2024-12-04", true),
				at("2024-12-05", true),
			}, nil
		},
	}

	sessions, cookie := authedSession(userID)
	r := setupMealsRouter(store, nil, sessions)

	w := doMealRequest(r, http.MethodGet, "/meals/metrics", "", cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var got meal.Metrics

	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}

	want := meal.Metrics{TotalMeals: 3, TotalMealsOnDiet: 2, TotalMealsOffDiet: 1, BestSequenceOnDiet: 2}

	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

// Full lifecycle against the in-memory repo and metrics cache, covering
// cache invalidation on every mutation.
func TestMealsLifecycleWithMemoryRepo(t *testing.T) {
	userID := uuid.NewString()
	repo := memory.NewMealsRepo()
	metricsCache := cache.NewMemory(time.Minute)

	sessions, cookie := authedSession(userID)
	r := setupMealsRouter(repo, metricsCache, sessions)

	mealBody := func(name string, onDiet bool, date string) string {
		return fmt.Sprintf(`{"name":%q,"description":"test meal","isOnDiet":%t,"date":%q}`, name, onDiet, date)
	}

	// create three meals
	for _, b := range []string{
		mealBody("Salad", true, "2024-12-04T12:00:00Z"),
		mealBody("Soup", true, "2024-12-05T12:00:00Z"),
		mealBody("Burger", false, "2023-08-06T12:00:00Z"),
	} {
		w := doMealRequest(r, http.MethodPost, "/meals", b, cookie)

		if w.Code != http.StatusCreated {
			t.Fatalf("create: got status %d, body=%s", w.Code, w.Body.String())
		}
	}

	// list them back
	w := doMealRequest(r, http.MethodGet, "/meals", "", cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("list: got status %d", w.Code)
	}

	var listBody struct {
		Meals []meal.Meal `json:"meals"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &listBody); err != nil {
		t.Fatalf("failed to unmarshal list: %v", err)
	}

	if len(listBody.Meals) != 3 {
		t.Fatalf("listed %d meals, want 3", len(listBody.Meals))
	}

	// metrics respect ascending date order, not insertion order
	w = doMealRequest(r, http.MethodGet, "/meals/metrics", "", cookie)

	var metrics meal.Metrics

	if err := json.Unmarshal(w.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("failed to unmarshal metrics: %v", err)
	}

	want := meal.Metrics{TotalMeals: 3, TotalMealsOnDiet: 2, TotalMealsOffDiet: 1, BestSequenceOnDiet: 2}

	if metrics != want {
		t.Fatalf("metrics = %+v, want %+v", metrics, want)
	}

	// flip the off-diet meal; the cached metrics must not survive
	var target meal.Meal

	for _, m := range listBody.Meals {
		if !m.IsOnDiet {
			target = m
		}
	}

	w = doMealRequest(r, http.MethodPut, "/meals/"+target.ID, mealBody("Burger", true, "2023-08-06T12:00:00Z"), cookie)

	if w.Code != http.StatusNoContent {
		t.Fatalf("update: got status %d, body=%s", w.Code, w.Body.String())
	}

	// updated fields are returned exactly, identifier and owner unchanged
	w = doMealRequest(r, http.MethodGet, "/meals/"+target.ID, "", cookie)

	var getBody struct {
		Meal meal.Meal `json:"meal"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &getBody); err != nil {
		t.Fatalf("failed to unmarshal meal: %v", err)
	}

	if getBody.Meal.ID != target.ID || getBody.Meal.UserID != userID {
		t.Fatalf("identifier/owner changed on update: %+v", getBody.Meal)
	}

	if !getBody.Meal.IsOnDiet {
		t.Fatalf("update not applied: %+v", getBody.Meal)
	}

	w = doMealRequest(r, http.MethodGet, "/meals/metrics", "", cookie)

	if err := json.Unmarshal(w.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("failed to unmarshal metrics: %v", err)
	}

	want = meal.Metrics{TotalMeals: 3, TotalMealsOnDiet: 3, TotalMealsOffDiet: 0, BestSequenceOnDiet: 3}

	if metrics != want {
		t.Fatalf("metrics after update = %+v, want %+v", metrics, want)
	}

	// delete removes the meal from subsequent listings
	w = doMealRequest(r, http.MethodDelete, "/meals/"+target.ID, "", cookie)

	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: got status %d", w.Code)
	}

	w = doMealRequest(r, http.MethodGet, "/meals", "", cookie)

	if err := json.Unmarshal(w.Body.Bytes(), &listBody); err != nil {
		t.Fatalf("failed to unmarshal list: %v", err)
	}

	if len(listBody.Meals) != 2 {
		t.Fatalf("listed %d meals after delete, want 2", len(listBody.Meals))
	}
}
