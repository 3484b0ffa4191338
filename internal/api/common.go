package api

import (
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"

	"assetdesk.com/internal/domain"
)

// Response is the uniform envelope: a success/error discriminator, a message,
// and an optional payload. Field-level validation errors ride in Errors.
type Response struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

// Pagination metadata for list endpoints.
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"total_page"`
}

// ListPayload is the data section of a paginated response.
type ListPayload struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// SendSuccess writes a success envelope with the given payload.
func SendSuccess(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// SendPaginated writes a success envelope wrapping a page of items.
func SendPaginated(c *fiber.Ctx, items interface{}, page, pageSize int, total int64) error {
	totalPage := 0
	if pageSize > 0 {
		totalPage = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return SendSuccess(c, fiber.StatusOK, "", ListPayload{
		Items: items,
		Pagination: Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: totalPage,
		},
	})
}

// SendError maps an error to the envelope. AppErrors carry their own status
// code and message; anything else is a 500 with a generic message.
func SendError(c *fiber.Ctx, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Code).JSON(Response{
			Status:  "error",
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(Response{
		Status:  "error",
		Message: "Internal server error",
	})
}
