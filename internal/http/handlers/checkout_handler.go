package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nnamdiindu/cara-store/internal/domain"
	applog "github.com/nnamdiindu/cara-store/internal/log"
	"github.com/nnamdiindu/cara-store/internal/repos"
	"github.com/nnamdiindu/cara-store/internal/services"
	"github.com/nnamdiindu/cara-store/internal/validate"
)

type CheckoutHandler struct {
	Catalog  *services.CatalogService
	Checkout *services.CheckoutService
}

// GET /checkout/:id
func (h *CheckoutHandler) Page(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection not found"})
	}
	col, err := h.Catalog.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection not found"})
	}
	return render(c, "checkout", fiber.Map{"C": col, "Err": ""})
}

// POST /process-payment (form fields: email, collection_id, quantity)
func (h *CheckoutHandler) Process(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		// RequireUser guards the route; this is a belt check.
		return c.Redirect("/login")
	}

	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		applog.Security(c, "checkout.validation.fail", map[string]any{"field": "email"})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Please enter a valid email"})
	}
	collectionID, ok := validate.ID(c.FormValue("collection_id"))
	if !ok {
		applog.Security(c, "checkout.validation.fail", map[string]any{"field": "collection_id"})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Collection not found"})
	}
	qty := validate.Qty(c.FormValue("quantity"))

	res, err := h.Checkout.Start(c.Context(), u.ID, email, collectionID, qty)
	if err != nil {
		if repos.IsNotFound(err) {
			applog.Security(c, "checkout.validation.fail", map[string]any{"field": "collection_id"})
			return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection not found"})
		}
		if errors.Is(err, services.ErrGatewayDeclined) {
			applog.Info(c, "checkout.init.declined", map[string]any{"collection_id": collectionID})
			col, gerr := h.Catalog.Get(collectionID)
			if gerr != nil {
				return c.Redirect("/shop")
			}
			return render(c, "checkout", fiber.Map{"C": col, "Err": "Payment initialization failed. Please try again."})
		}
		applog.Error(c, "checkout.init.fail", err, map[string]any{"collection_id": collectionID})
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{"Message": "Could not reach the payment provider. Please try again."})
	}

	applog.Audit(c, "checkout.init", map[string]any{
		"order_id":  res.OrderID,
		"reference": res.Reference,
		"amount":    res.Amount,
	})
	// Hand the buyer to the gateway's hosted payment page.
	return c.Redirect(res.AuthorizationURL)
}

// GET /payment/callback?reference=...
func (h *CheckoutHandler) Callback(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		applog.Security(c, "callback.missing_reference", nil)
		return c.Status(fiber.StatusBadRequest).Render("payment_failed", fiber.Map{"Message": "Invalid payment reference"})
	}

	res, err := h.Checkout.Reconcile(c.Context(), reference)
	if err != nil {
		if errors.Is(err, services.ErrUnknownReference) {
			applog.Security(c, "callback.unknown_reference", map[string]any{"reference": reference})
			return c.Status(fiber.StatusNotFound).Render("payment_failed", fiber.Map{"Message": "We could not match this payment to an order."})
		}
		applog.Error(c, "callback.verify.fail", err, map[string]any{"reference": reference})
		return c.Status(fiber.StatusBadGateway).Render("payment_failed", fiber.Map{"Message": "Could not verify your payment. Please contact support."})
	}

	if !res.Confirmed {
		applog.Info(c, "callback.declined", map[string]any{"reference": reference, "gateway_status": res.Transaction.Status})
		return render(c, "payment_failed", fiber.Map{"Message": "Payment failed. Please try again."})
	}

	applog.Audit(c, "callback.confirmed", map[string]any{
		"reference":    reference,
		"transitioned": res.Transitioned,
	})
	return render(c, "success", fiber.Map{"Transaction": res.Transaction})
}
