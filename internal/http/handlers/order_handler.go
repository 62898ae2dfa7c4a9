package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nnamdiindu/cara-store/internal/domain"
	applog "github.com/nnamdiindu/cara-store/internal/log"
	"github.com/nnamdiindu/cara-store/internal/repos"
)

type OrderHandler struct {
	Orders *repos.OrderRepo
}

// History lists orders for the current logged-in user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Redirect("/login")
	}
	orders, err := h.Orders.ListByUser(u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "order_history", fiber.Map{"Orders": orders})
}
