package api

import (
	"github.com/celerix-dev/celerix-build/internal/service"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/gin-gonic/gin"
)

func (h *Handler) registerOrders(g *gin.RouterGroup) {
	read := Require(ActRead)

	suppliers := g.Group("/suppliers")
	{
		write := Require(ActSuppliersWrite)
		suppliers.GET("", read, h.ListSuppliers)
		suppliers.GET("/:id", read, h.GetSupplier)
		suppliers.POST("", write, h.CreateSupplier)
		suppliers.PATCH("/:id", write, h.UpdateSupplier)
		suppliers.DELETE("/:id", write, h.DeleteSupplier)
	}

	orders := g.Group("/purchase-orders")
	{
		write := Require(ActOrdersWrite)
		approve := Require(ActOrdersApprove)
		orders.GET("", read, h.ListOrders)
		orders.GET("/:id", read, h.GetOrder)
		orders.GET("/:id/tracking", read, h.TrackOrder)
		orders.POST("", write, h.CreateOrder)
		orders.PATCH("/:id", write, h.UpdateOrder)
		orders.DELETE("/:id", write, h.DeleteOrder)
		orders.POST("/:id/submit", write, h.SubmitOrder)
		orders.POST("/:id/approve", approve, h.ApproveOrder)
		orders.POST("/:id/reject", approve, h.RejectOrder)
		orders.POST("/:id/send", write, h.SendOrder)
		orders.POST("/:id/supplier-response", write, h.RecordSupplierResponse)
		orders.POST("/:id/receive", Require(ActOrdersReceive), h.ReceiveOrder)
		orders.POST("/:id/cancel", write, h.CancelOrder)
	}
}

// registerPortal mounts the token-gated routes used by suppliers. They carry
// no identity headers.
func (h *Handler) registerPortal(g *gin.RouterGroup) {
	g.GET("/orders/:token", h.PortalOrder)
	g.POST("/orders/:token/respond", h.PortalRespond)
}

func (h *Handler) ListSuppliers(c *gin.Context) {
	p, err := pageFrom(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.Suppliers.List(c.Request.Context(), c.Query("search"), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, items, total, p)
}

func (h *Handler) GetSupplier(c *gin.Context) {
	v, err := h.svc.Suppliers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) CreateSupplier(c *gin.Context) {
	var in service.SupplierInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Suppliers.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, v)
}

func (h *Handler) UpdateSupplier(c *gin.Context) {
	var in service.SupplierInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Suppliers.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) DeleteSupplier(c *gin.Context) {
	if err := h.svc.Suppliers.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	done(c, "supplier deleted")
}

func (h *Handler) ListOrders(c *gin.Context) {
	p, err := pageFrom(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.Orders.List(c.Request.Context(), service.OrderFilter{
		ProjectID:  c.Query("projectId"),
		SupplierID: c.Query("supplierId"),
		Status:     schema.OrderStatus(c.Query("status")),
		Search:     c.Query("search"),
	}, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, items, total, p)
}

func (h *Handler) GetOrder(c *gin.Context) {
	v, err := h.svc.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) TrackOrder(c *gin.Context) {
	v, err := h.svc.Orders.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var in service.OrderInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Orders.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, v)
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	var in service.OrderInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Orders.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.svc.Orders.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	done(c, "purchase order deleted")
}

func (h *Handler) SubmitOrder(c *gin.Context) {
	body, valid := bindAction(c)
	if !valid {
		return
	}
	v, err := h.svc.Orders.Submit(c.Request.Context(), actorFrom(c), c.Param("id"), body.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) ApproveOrder(c *gin.Context) {
	body, valid := bindAction(c)
	if !valid {
		return
	}
	v, err := h.svc.Orders.Approve(c.Request.Context(), actorFrom(c), c.Param("id"), body.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) RejectOrder(c *gin.Context) {
	body, valid := bindAction(c)
	if !valid {
		return
	}
	v, err := h.svc.Orders.Reject(c.Request.Context(), actorFrom(c), c.Param("id"), body.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) SendOrder(c *gin.Context) {
	res, err := h.svc.Orders.Send(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, res)
}

func (h *Handler) RecordSupplierResponse(c *gin.Context) {
	var in service.ResponseInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Orders.RecordResponse(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) ReceiveOrder(c *gin.Context) {
	var in service.ReceiveInput
	if !bindOptional(c, &in) {
		return
	}
	v, err := h.svc.Orders.Receive(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	body, valid := bindAction(c)
	if !valid {
		return
	}
	v, err := h.svc.Orders.Cancel(c.Request.Context(), actorFrom(c), c.Param("id"), body.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) PortalOrder(c *gin.Context) {
	v, err := h.svc.Orders.ViewByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) PortalRespond(c *gin.Context) {
	var in service.ResponseInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Orders.RespondByToken(c.Request.Context(), c.Param("token"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}
