package serverutils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandlerMiddlewareMapsAppErrors(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/notfound", func(c *fiber.Ctx) error { return NewNotFound("session not found") })
	app.Get("/conflict", func(c *fiber.Ctx) error { return NewConflictRetry("busy") })
	app.Get("/boom", func(c *fiber.Ctx) error { return assert.AnError })

	status, body := doRequest(t, app, "/notfound")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, body["code"])
	assert.Equal(t, false, body["success"])

	status, body = doRequest(t, app, "/conflict")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, CodeConflictRetry, body["code"])

	// Unknown errors must not leak their message.
	status, body = doRequest(t, app, "/boom")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body["message"])
}

func TestValidateRequestCollectsViolations(t *testing.T) {
	type req struct {
		Email   string `validate:"required,email"`
		Message string `validate:"required,min=1,max=8000"`
	}

	err := ValidateRequest(req{Email: "not-an-email"})
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, "Email")
	assert.Contains(t, appErr.Message, "Message")

	assert.NoError(t, ValidateRequest(req{Email: "a@b.com", Message: "hi"}))
}
