package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/harshit961695/unipost/internal/repository"
	"github.com/harshit961695/unipost/internal/transfer"
)

type AccountHandler struct {
	cr repository.ConnectionRepository
}

func NewAccountHandler(cr repository.ConnectionRepository) *AccountHandler {
	return &AccountHandler{cr: cr}
}

func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	conns, err := h.cr.ListByUserID(c.Context(), userID)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list accounts",
		})
	}

	accounts := make([]transfer.AccountInfo, 0, len(conns))
	for _, conn := range conns {
		accounts = append(accounts, transfer.AccountInfo{
			ID:          conn.ID,
			Platform:    conn.Platform,
			AccountName: conn.AccountName,
		})
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}
