package orders

import (
	"github.com/gofiber/fiber/v2"
)

type CreateFromCartRequest struct {
	Items []CartItem `json:"items"`
}

type ReceiveRequest struct {
	Items []ReceiveLine `json:"items"`
}

// GET /api/orders?status=...
func ListOrdersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orders, err := svc.List(c.Query("status"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list orders")
		}
		return c.JSON(orders)
	}
}

// GET /api/orders/:id
func GetOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := svc.Get(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(order)
	}
}

// POST /api/orders
// Creates one draft order per supplier represented in the cart.
func CreateFromCartHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateFromCartRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		created, err := svc.CreateFromCart(body.Items)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// POST /api/cart/group
// Preview of the cart grouped per supplier, with resolved prices and
// minimum-order shortfall flags. No side effect.
func GroupCartHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateFromCartRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		groups, err := svc.GroupBySupplier(body.Items)
		if err != nil {
			return err
		}
		return c.JSON(groups)
	}
}

// POST /api/orders/:id/send
func SendOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := svc.Send(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(order)
	}
}

// POST /api/orders/:id/confirm
func ConfirmOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := svc.Confirm(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(order)
	}
}

// POST /api/orders/:id/cancel
func CancelOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := svc.Cancel(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(order)
	}
}

// POST /api/orders/:id/receive
func ReceiveOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReceiveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "At least one received line is required")
		}
		order, err := svc.ReceiveItems(c.Params("id"), body.Items)
		if err != nil {
			return err
		}
		return c.JSON(order)
	}
}

// DELETE /api/orders/:id
func DeleteOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Order deleted"})
	}
}

// GET /api/orders/stats/monthly-spending
func MonthlySpendingHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.MonthlySpending()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot compute monthly spending")
		}
		return c.JSON(rows)
	}
}
