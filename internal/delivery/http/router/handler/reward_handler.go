package handler

import (
	"log/slog"
	"net/http"

	"campus/internal/delivery/http/response"
	"campus/internal/domain/entity"
	"campus/internal/usecase"

	"github.com/labstack/echo/v4"
)

type rewardsResponse struct {
	Points  int             `json:"points"`
	Rewards []entity.Reward `json:"rewards"`
}

// RewardHandler serves the reward catalog next to the current point balance.
type RewardHandler struct {
	store  usecase.StoreUsecase
	logger *slog.Logger
}

// NewRewardHandler is the constructor for RewardHandler, injected by Fx.
func NewRewardHandler(store usecase.StoreUsecase, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{
		store:  store,
		logger: logger,
	}
}

// ListRewards returns the catalog. Points are zero when logged out.
func (h *RewardHandler) ListRewards(c echo.Context) error {
	resp := rewardsResponse{Rewards: h.store.Rewards()}
	if user := h.store.CurrentUser(); user != nil {
		resp.Points = user.RewardPoints
	}

	return response.Success(c, http.StatusOK, resp, "")
}
