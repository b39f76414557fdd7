package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/dietlog/internal/adherence"
	"github.com/hitoshi/dietlog/internal/model"
)

// MealServiceInterface は食事ハンドラーが必要とするサービスインターフェース。
type MealServiceInterface interface {
	ListMeals(ctx context.Context, userID string) ([]*model.Meal, error)
	GetMeal(ctx context.Context, userID, mealID string) (*model.Meal, error)
	CreateMeal(ctx context.Context, userID string, input model.MealInput) (string, error)
	UpdateMeal(ctx context.Context, userID, mealID string, input model.MealInput) error
	DeleteMeal(ctx context.Context, userID, mealID string) error
	Metrics(ctx context.Context, userID string) (adherence.Summary, error)
}

// MealHandler は食事管理のHTTPハンドラー。
type MealHandler struct {
	service MealServiceInterface
}

// NewMealHandler はMealHandlerを生成する。
func NewMealHandler(service MealServiceInterface) *MealHandler {
	return &MealHandler{
		service: service,
	}
}

// mealResponse は食事のAPIレスポンス。
type mealResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	OnDiet      bool      `json:"on_diet"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type mealListResponse struct {
	Meals []mealResponse `json:"meals"`
}

type mealDetailResponse struct {
	Meal mealResponse `json:"meal"`
}

// metricsResponse はGET /meals/metricsのレスポンス。
type metricsResponse struct {
	TotalMeals         int `json:"totalMeals"`
	TotalMealsOnDiet   int `json:"totalMealsOnDiet"`
	TotalMealsOffDiet  int `json:"totalMealsOffDiet"`
	BestOnDietSequence int `json:"bestOnDietSequence"`
}

// ListMeals はユーザーの食事一覧をdate降順で返す。
// GET /meals
func (h *MealHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	meals, err := h.service.ListMeals(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := mealListResponse{Meals: make([]mealResponse, len(meals))}
	for i, m := range meals {
		resp.Meals[i] = toMealResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetMeal は食事を1件返す。
// GET /meals/{id}
func (h *MealHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	mealID, ok := parseMealID(chi.URLParam(r, "id"))
	if !ok {
		writeValidationError(w, "id must be a UUID")
		return
	}

	meal, err := h.service.GetMeal(r.Context(), userID, mealID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mealDetailResponse{Meal: toMealResponse(meal)})
}

// CreateMeal は食事を記録する。
// POST /meals
func (h *MealHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	input, ok := decodeMealInput(w, r)
	if !ok {
		return
	}

	if _, err := h.service.CreateMeal(r.Context(), userID, input); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// UpdateMeal は食事の全項目を上書きする。
// PUT /meals/{id}
func (h *MealHandler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	mealID, ok := parseMealID(chi.URLParam(r, "id"))
	if !ok {
		writeValidationError(w, "id must be a UUID")
		return
	}
	input, ok := decodeMealInput(w, r)
	if !ok {
		return
	}

	if err := h.service.UpdateMeal(r.Context(), userID, mealID, input); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteMeal は食事を削除する。
// DELETE /meals/{id}
func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	mealID, ok := parseMealID(chi.URLParam(r, "id"))
	if !ok {
		writeValidationError(w, "id must be a UUID")
		return
	}

	if err := h.service.DeleteMeal(r.Context(), userID, mealID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Metrics はユーザーの食事記録の集計を返す。
// GET /meals/metrics
func (h *MealHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Metrics(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, metricsResponse{
		TotalMeals:         summary.Total,
		TotalMealsOnDiet:   summary.OnDiet,
		TotalMealsOffDiet:  summary.OffDiet,
		BestOnDietSequence: summary.BestStreak,
	})
}

// --- ヘルパー関数 ---

// decodeMealInput はリクエストボディを検証してMealInputに変換する。
// 失敗した場合は400を書き込み、falseを返す。
func decodeMealInput(w http.ResponseWriter, r *http.Request) (model.MealInput, bool) {
	var req mealRequest
	if reason, ok := decodeAndValidate(w, r, &req); !ok {
		writeValidationError(w, reason)
		return model.MealInput{}, false
	}

	// mealdateタグで検証済み
	date, _ := parseMealDate(req.Date)

	return model.MealInput{
		Name:        req.Name,
		Description: req.Description,
		Date:        date,
		OnDiet:      *req.OnDiet,
	}, true
}

// toMealResponse はmodel.MealからAPIレスポンスに変換する。
func toMealResponse(m *model.Meal) mealResponse {
	return mealResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Date:        m.Date,
		OnDiet:      m.OnDiet,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
