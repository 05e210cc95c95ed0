package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/diettrack/internal/cache"
	"github.com/geocoder89/diettrack/internal/config"
	"github.com/geocoder89/diettrack/internal/domain/meal"
	"github.com/geocoder89/diettrack/internal/http/middlewares"
	"github.com/geocoder89/diettrack/internal/utils"
	"github.com/gin-gonic/gin"
)

type MealStore interface {
	Create(ctx context.Context, m meal.Meal) error
	ListByUser(ctx context.Context, userID string) ([]meal.Meal, error)
	ListByUserOrderedByDate(ctx context.Context, userID string) ([]meal.Meal, error)
	GetByID(ctx context.Context, id string) (meal.Meal, error)
	Update(ctx context.Context, id string, req meal.UpdateMealRequest) error
	Delete(ctx context.Context, id string) error
}

type MealsHandler struct {
	meals   MealStore
	metrics cache.MetricsCache
}

// metrics may be nil, the metrics endpoint then recomputes on every call.
func NewMealsHandler(meals MealStore, metrics cache.MetricsCache) *MealsHandler {
	return &MealsHandler{meals: meals, metrics: metrics}
}

func (h *MealsHandler) CreateMeal(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	var req meal.CreateMealRequest

	if !BindJSON(ctx, &req) {
		return
	}

	m := meal.NewFromCreateRequest(req, userID)

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	err := h.meals.Create(cctx, m)

	if err != nil {
		RespondInternal(ctx, "Could not create meal")
		return
	}

	h.invalidateMetrics(cctx, userID)

	ctx.Status(http.StatusCreated)
}

func (h *MealsHandler) ListMeals(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	meals, err := h.meals.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list meals")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (h *MealsHandler) GetMealByID(ctx *gin.Context) {
	mealID := ctx.Param("mealId")

	if !utils.IsUUID(mealID) {
		RespondBadRequest(ctx, "meal id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	// lookup is by identifier alone, not filtered by owner
	m, err := h.meals.GetByID(cctx, mealID)

	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			RespondNotFound(ctx, "Meal not found")
			return
		}

		RespondInternal(ctx, "Could not fetch meal")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"meal": m})
}

func (h *MealsHandler) UpdateMeal(ctx *gin.Context) {
	mealID := ctx.Param("mealId")

	if !utils.IsUUID(mealID) {
		RespondBadRequest(ctx, "meal id must be a valid UUID", nil)
		return
	}

	var req meal.UpdateMealRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	existing, err := h.meals.GetByID(cctx, mealID)

	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			RespondNotFound(ctx, "Meal not found")
			return
		}

		RespondInternal(ctx, "Could not update meal")
		return
	}

	err = h.meals.Update(cctx, mealID, req)

	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			RespondNotFound(ctx, "Meal not found")
			return
		}

		RespondInternal(ctx, "Could not update meal")
		return
	}

	h.invalidateMetrics(cctx, existing.UserID)

	ctx.Status(http.StatusNoContent)
}

func (h *MealsHandler) DeleteMeal(ctx *gin.Context) {
	mealID := ctx.Param("mealId")

	if !utils.IsUUID(mealID) {
		RespondBadRequest(ctx, "meal id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	existing, err := h.meals.GetByID(cctx, mealID)

	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			RespondNotFound(ctx, "Meal not found")
			return
		}

		RespondInternal(ctx, "Could not delete meal")
		return
	}

	err = h.meals.Delete(cctx, mealID)

	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			RespondNotFound(ctx, "Meal not found")
			return
		}

		RespondInternal(ctx, "Could not delete meal")
		return
	}

	h.invalidateMetrics(cctx, existing.UserID)

	ctx.Status(http.StatusNoContent)
}

func (h *MealsHandler) GetMetrics(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	if h.metrics != nil {
		if cached, hit := h.metrics.Get(cctx, userID); hit {
			ctx.JSON(http.StatusOK, cached)
			return
		}
	}

	meals, err := h.meals.ListByUserOrderedByDate(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not compute metrics")
		return
	}

	m := meal.ComputeMetrics(meals)

	if h.metrics != nil {
		h.metrics.Set(cctx, userID, m)
	}

	ctx.JSON(http.StatusOK, m)
}

func (h *MealsHandler) invalidateMetrics(ctx context.Context, userID string) {
	if h.metrics != nil {
		h.metrics.Invalidate(ctx, userID)
	}
}
