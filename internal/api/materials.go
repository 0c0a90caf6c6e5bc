package api

import (
	"github.com/celerix-dev/celerix-build/internal/service"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/gin-gonic/gin"
)

func (h *Handler) registerMaterials(g *gin.RouterGroup) {
	read := Require(ActRead)
	write := Require(ActMaterialsWrite)
	approve := Require(ActMaterialsApprove)

	m := g.Group("/materials")
	m.GET("", read, h.ListMaterials)
	m.GET("/discrepancies", read, h.MaterialDiscrepancies)
	m.GET("/:id", read, h.GetMaterial)
	m.POST("", write, h.CreateMaterial)
	m.PATCH("/:id", write, h.UpdateMaterial)
	m.DELETE("/:id", write, h.DeleteMaterial)
	m.POST("/:id/submit", write, h.SubmitMaterial)
	m.POST("/:id/approve", approve, h.ApproveMaterial)
	m.POST("/:id/reject", approve, h.RejectMaterial)
	m.PATCH("/:id/quantities", write, h.UpdateMaterialQuantities)
}

func (h *Handler) ListMaterials(c *gin.Context) {
	p, err := pageFrom(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.Materials.List(c.Request.Context(), service.MaterialFilter{
		ProjectID: c.Query("projectId"),
		PhaseID:   c.Query("phaseId"),
		Status:    schema.MaterialStatus(c.Query("status")),
		Category:  c.Query("category"),
		Search:    c.Query("search"),
	}, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, items, total, p)
}

func (h *Handler) MaterialDiscrepancies(c *gin.Context) {
	items, err := h.svc.Materials.Discrepancies(c.Request.Context(), c.Query("projectId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, items)
}

func (h *Handler) GetMaterial(c *gin.Context) {
	v, err := h.svc.Materials.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) CreateMaterial(c *gin.Context) {
	var in service.MaterialInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Materials.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, v)
}

func (h *Handler) UpdateMaterial(c *gin.Context) {
	var in service.MaterialInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Materials.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) DeleteMaterial(c *gin.Context) {
	if err := h.svc.Materials.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	done(c, "material deleted")
}

func (h *Handler) SubmitMaterial(c *gin.Context) {
	body, valid := bindAction(c)
	if !valid {
		return
	}
	v, err := h.svc.Materials.Submit(c.Request.Context(), actorFrom(c), c.Param("id"), body.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) ApproveMaterial(c *gin.Context) {
	body, valid := bindAction(c)
	if !valid {
		return
	}
	v, err := h.svc.Materials.Approve(c.Request.Context(), actorFrom(c), c.Param("id"), body.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) RejectMaterial(c *gin.Context) {
	body, valid := bindAction(c)
	if !valid {
		return
	}
	v, err := h.svc.Materials.Reject(c.Request.Context(), actorFrom(c), c.Param("id"), body.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) UpdateMaterialQuantities(c *gin.Context) {
	var in service.QuantityInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Materials.UpdateQuantities(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}
