package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userIDThrough(t *testing.T, local interface{}) int64 {
	t.Helper()

	app := fiber.New()
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if local != nil {
			c.Locals("user_id", local)
		}
		return c.JSON(fiber.Map{"user_id": GetUserID(c)})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		UserID int64 `json:"user_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.UserID
}

func TestGetUserID(t *testing.T) {
	assert.Equal(t, int64(42), userIDThrough(t, "42"))
}

func TestGetUserIDMissingLocal(t *testing.T) {
	assert.Equal(t, int64(0), userIDThrough(t, nil))
}

func TestGetUserIDMalformedLocal(t *testing.T) {
	assert.Equal(t, int64(0), userIDThrough(t, "not-a-number"))
	assert.Equal(t, int64(0), userIDThrough(t, 42))
}
