package handlers

import "github.com/gin-gonic/gin"

type Router struct {
	handler *Handler
	outbox  *OutboxHandler
}

func NewRouter(handler *Handler, outbox *OutboxHandler) *Router {
	return &Router{handler: handler, outbox: outbox}
}

func (r *Router) RegisterRoutes(engine *gin.Engine, idempotency gin.HandlerFunc) {
	engine.GET("/healthz", r.handler.health)

	api := engine.Group("/api")
	contracts := api.Group("/contracts")
	contracts.POST("", idempotency, r.handler.createContract)
	contracts.GET("", r.handler.listContracts)
	contracts.GET("/:id", r.handler.getContract)
	contracts.PATCH("/:id", r.handler.updateContract)
	contracts.DELETE("/:id", r.handler.deleteContract)

	if r.outbox != nil {
		r.outbox.RegisterRoutes(engine)
	}
}

// RegisterRoutes mounts the operator endpoints; the processor command serves
// them on its own listener without the producer API.
func (h *OutboxHandler) RegisterRoutes(engine *gin.Engine) {
	api := engine.Group("/api")
	ob := api.Group("/outbox")
	ob.GET("/stats", h.stats)
	ob.GET("/dead", h.deadEvents)
	ob.POST("/dead/requeue", h.requeueDead)
	ob.POST("/process", h.processNow)
}
