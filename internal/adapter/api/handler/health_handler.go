package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ragestate/internal/infrastructure/firebase"
	"ragestate/internal/usecase"
)

type HealthHandler struct {
	firebaseAuth *firebase.AuthClient
	projector    *usecase.SummaryProjector
}

func NewHealthHandler(firebaseAuth *firebase.AuthClient, projector *usecase.SummaryProjector) *HealthHandler {
	return &HealthHandler{
		firebaseAuth: firebaseAuth,
		projector:    projector,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "Server is running",
		"time":        time.Now().Format(time.RFC3339),
		"fanoutQueue": h.projector.QueueDepth(),
	})
}

func (h *HealthHandler) CheckFirebaseHealth(c echo.Context) error {
	if err := h.firebaseAuth.TestConnection(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "Firebase Auth connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Firebase Auth connected successfully",
	})
}
