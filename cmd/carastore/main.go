package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"github.com/nnamdiindu/cara-store/internal/config"
	"github.com/nnamdiindu/cara-store/internal/http/handlers"
	applog "github.com/nnamdiindu/cara-store/internal/log"
	"github.com/nnamdiindu/cara-store/internal/paystack"
	"github.com/nnamdiindu/cara-store/internal/repos"
	"github.com/nnamdiindu/cara-store/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	// Payment gateway
	gateway := paystack.NewClient(paystack.Config{
		BaseURL:   cfg.PaystackBaseURL,
		SecretKey: cfg.PaystackSecret,
	})

	// Templates & app
	engine := html.New("./web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Image uploads go through the form body
	app.Server().MaxRequestBodySize = 8 << 20 // 8 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Session ids are opaque server-side tokens; encrypting the cookie
	// keeps them from being read or minted client-side.
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: cfg.CookieKey(),
	}))
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next: func(c *fiber.Ctx) bool {
			// The gateway redirects the buyer back with a GET; never
			// require a form token there.
			return c.Path() == "/payment/callback"
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, gateway, authSvc)
	authH := deps.AuthHandler

	// Public pages
	app.Get("/", func(c *fiber.Ctx) error { return c.Render("index", fiber.Map{}) })
	app.Get("/shop", deps.CollectionHandler.Shop)
	app.Get("/collection_image/:id", deps.CollectionHandler.Image)
	app.Get("/about", func(c *fiber.Ctx) error { return c.Render("about", fiber.Map{}) })
	app.Get("/contact", func(c *fiber.Ctx) error { return c.Render("contact", fiber.Map{}) })
	app.Get("/blog", func(c *fiber.Ctx) error { return c.Render("blog", fiber.Map{}) })

	// Auth routes (login throttled)
	app.Get("/register", authH.RegisterForm)
	app.Post("/register", authH.Register)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Get("/logout", handlers.RequireUser(authSvc), authH.Logout)

	// Catalog management (login required)
	app.Get("/add-collection", handlers.RequireUser(authSvc), deps.CollectionHandler.AddForm)
	app.Post("/add-collection", handlers.RequireUser(authSvc), deps.CollectionHandler.Add)
	app.Get("/edit/:id", handlers.RequireUser(authSvc), deps.CollectionHandler.EditForm)
	app.Post("/edit/:id", handlers.RequireUser(authSvc), deps.CollectionHandler.Edit)
	app.Get("/delete_collection/:id", handlers.RequireUser(authSvc), deps.CollectionHandler.Delete)
	app.Post("/delete_collection/:id", handlers.RequireUser(authSvc), deps.CollectionHandler.Delete)

	// Checkout & orders
	app.Get("/checkout/:id", deps.CheckoutHandler.Page)
	app.Post("/process-payment", handlers.RequireUser(authSvc), deps.CheckoutHandler.Process)
	app.Get("/payment/callback", deps.CheckoutHandler.Callback)
	app.Get("/orders", handlers.RequireUser(authSvc), deps.OrderHandler.History)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
