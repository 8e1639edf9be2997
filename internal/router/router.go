// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes,
// mapping specific paths to their corresponding handlers.
package router

import (
	"net/http"

	"github.com/deppfellow/shopping-list/internal/handler"
	"github.com/deppfellow/shopping-list/internal/middleware"
	"github.com/deppfellow/shopping-list/internal/model"
	"github.com/deppfellow/shopping-list/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance serving the shopping list API.
//
// Middleware order matters: the request id exists before the New Relic
// transaction and the request logger, the rate limiter runs once the
// request logger is in place so denied requests are logged, and Recover
// sits closest to the handlers.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.BodyLimit(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.RateLimit.Limit(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)
	registerShoppingListRoutes(router, h.ShoppingLists)

	return router
}

func registerShoppingListRoutes(r *echo.Echo, h *handler.ShoppingListHandler) {
	r.POST("/create/list", handler.Handle(h.Handler, h.CreateList, http.StatusCreated, &model.CreateListRequest{}))

	r.GET("/get/lists", handler.Handle(h.Handler, h.GetLists, http.StatusOK, &model.EmptyRequest{}))
	r.GET("/get/list/:listID", handler.Handle(h.Handler, h.GetList, http.StatusOK, &model.ListPathRequest{}))

	update := r.Group("/update/list/:listID")
	update.PUT("/addItem", handler.Handle(h.Handler, h.AddItems, http.StatusOK, &model.AddItemsRequest{}))
	update.PATCH("/updateItem/:itemID", handler.Handle(h.Handler, h.UpdateItem, http.StatusOK, &model.UpdateItemRequest{}))
	update.PATCH("/toggleBought/:itemID", handler.Handle(h.Handler, h.ToggleBought, http.StatusOK, &model.ItemPathRequest{}))
	update.DELETE("/deleteItem/:itemID", handler.Handle(h.Handler, h.DeleteItem, http.StatusOK, &model.ItemPathRequest{}))

	r.DELETE("/delete/list/:listID", handler.Handle(h.Handler, h.HideList, http.StatusOK, &model.ListPathRequest{}))
}
