package meal

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Date is stored as a Unix-millisecond integer so ordering and streak
// arithmetic stay plain integer comparisons.
type Meal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsOnDiet    bool      `json:"isOnDiet"`
	Date        int64     `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("meal not found")

type CreateMealRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	IsOnDiet    *bool     `json:"isOnDiet" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
}

// a full replacement payload, partial updates are not supported.
type UpdateMealRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	IsOnDiet    *bool     `json:"isOnDiet" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
}

func NewFromCreateRequest(req CreateMealRequest, userID string) Meal {
	return Meal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		IsOnDiet:    *req.IsOnDiet,
		Date:        req.Date.UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
}
