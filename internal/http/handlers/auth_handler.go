package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "github.com/nnamdiindu/cara-store/internal/log"
	"github.com/nnamdiindu/cara-store/internal/services"
	"github.com/nnamdiindu/cara-store/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sid := ensureSID(c)

	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Please enter your name"})
	}
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		applog.Security(c, "auth.register.fail", map[string]any{"reason": "bad_email"})
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Please enter a valid email"})
	}
	pass := c.FormValue("password")
	if !validate.Password(pass) {
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Password must be at least 8 characters"})
	}

	u, err := h.Auth.Register(sid, name, email, pass)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			applog.Info(c, "auth.register.duplicate", map[string]any{"email": email})
			return c.Redirect("/login")
		}
		applog.Error(c, "auth.register.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("register", fiber.Map{"Err": "Could not create your account. Please try again."})
	}

	applog.Audit(c, "auth.register.success", map[string]any{"user_id": u.ID})
	return c.Redirect("/")
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password"})
	}
	pass := c.FormValue("password")

	_, err := h.Auth.Login(sid, email, pass)
	if err != nil {
		if errors.Is(err, services.ErrUnknownEmail) {
			applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "unknown_email"})
			// Unknown address: point the visitor at registration.
			return c.Redirect("/register")
		}
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Incorrect password, please try again."})
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return c.Redirect("/")
}
