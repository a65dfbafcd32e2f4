package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/medtrack-api/internal/application/dto"
	"github.com/jhoicas/medtrack-api/internal/application/logs"
)

// LogHandler maneja la lectura del historial de inventario (protegido).
type LogHandler struct {
	uc *logs.UseCase
}

// NewLogHandler construye el handler.
func NewLogHandler(uc *logs.UseCase) *LogHandler {
	return &LogHandler{uc: uc}
}

// List godoc
// @Summary      Historial de inventario del usuario
// @Description  Entradas append-only de cada mutación, más reciente primero.
// @Tags         inventory-logs
// @Security     Bearer
// @Produce      json
// @Success      200   {array}   dto.InventoryLogResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/inventory-logs [get]
func (h *LogHandler) List(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	entries, err := h.uc.ListByUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(entries)
}
