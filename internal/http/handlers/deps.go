package handlers

import (
	"github.com/jmoiron/sqlx"

	"github.com/nnamdiindu/cara-store/internal/repos"
	"github.com/nnamdiindu/cara-store/internal/services"
)

type Deps struct {
	AuthHandler       *AuthHandler
	CollectionHandler *CollectionHandler
	CheckoutHandler   *CheckoutHandler
	OrderHandler      *OrderHandler
}

func NewDeps(db *sqlx.DB, gw services.Gateway, auth *services.AuthService) *Deps {
	colRepo := repos.NewCollectionRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(colRepo)
	checkoutSvc := services.NewCheckoutService(colRepo, orderRepo, gw)

	return &Deps{
		AuthHandler:       &AuthHandler{Auth: auth},
		CollectionHandler: &CollectionHandler{Catalog: catalogSvc},
		CheckoutHandler:   &CheckoutHandler{Catalog: catalogSvc, Checkout: checkoutSvc},
		OrderHandler:      &OrderHandler{Orders: orderRepo},
	}
}
