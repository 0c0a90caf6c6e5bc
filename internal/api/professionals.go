package api

import (
	"github.com/celerix-dev/celerix-build/internal/service"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/gin-gonic/gin"
)

func (h *Handler) registerProfessionals(g *gin.RouterGroup) {
	read := Require(ActRead)

	services := g.Group("/professional-services")
	{
		write := Require(ActServicesWrite)
		services.GET("", read, h.ListServices)
		services.GET("/:id", read, h.GetService)
		services.POST("", write, h.CreateService)
		services.PATCH("/:id", write, h.UpdateService)
		services.DELETE("/:id", write, h.DeleteService)
	}

	activities := g.Group("/professional-activities")
	{
		write := Require(ActActivitiesWrite)
		approve := Require(ActActivitiesApprove)
		activities.GET("", read, h.ListActivities)
		activities.GET("/:id", read, h.GetActivity)
		activities.POST("", write, h.CreateActivity)
		activities.PATCH("/:id", write, h.UpdateActivity)
		activities.DELETE("/:id", write, h.DeleteActivity)
		activities.POST("/:id/submit", write, h.SubmitActivity)
		activities.POST("/:id/approve", approve, h.ApproveActivity)
		activities.POST("/:id/reject", approve, h.RejectActivity)
	}
}

func (h *Handler) ListServices(c *gin.Context) {
	p, err := pageFrom(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.Professionals.List(c.Request.Context(), service.ProfessionalServiceFilter{
		ProjectID:  c.Query("projectId"),
		Status:     schema.ServiceStatus(c.Query("status")),
		Discipline: schema.Discipline(c.Query("discipline")),
		Search:     c.Query("search"),
	}, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, items, total, p)
}

func (h *Handler) GetService(c *gin.Context) {
	v, err := h.svc.Professionals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) CreateService(c *gin.Context) {
	var in service.ProfessionalServiceInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Professionals.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, v)
}

func (h *Handler) UpdateService(c *gin.Context) {
	var in service.ProfessionalServiceInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Professionals.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) DeleteService(c *gin.Context) {
	if err := h.svc.Professionals.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	done(c, "professional service deleted")
}

func (h *Handler) ListActivities(c *gin.Context) {
	p, err := pageFrom(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.Activities.List(c.Request.Context(), service.ActivityFilter{
		ProjectID: c.Query("projectId"),
		ServiceID: c.Query("serviceId"),
		Status:    schema.ActivityStatus(c.Query("status")),
		Type:      schema.ActivityType(c.Query("type")),
		Search:    c.Query("search"),
	}, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, items, total, p)
}

func (h *Handler) GetActivity(c *gin.Context) {
	v, err := h.svc.Activities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) CreateActivity(c *gin.Context) {
	var in service.ActivityInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Activities.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, v)
}

func (h *Handler) UpdateActivity(c *gin.Context) {
	var in service.ActivityInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Activities.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) DeleteActivity(c *gin.Context) {
	if err := h.svc.Activities.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	done(c, "activity deleted")
}

func (h *Handler) SubmitActivity(c *gin.Context) {
	body, valid := bindAction(c)
	if !valid {
		return
	}
	v, err := h.svc.Activities.Submit(c.Request.Context(), actorFrom(c), c.Param("id"), body.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) ApproveActivity(c *gin.Context) {
	body, valid := bindAction(c)
	if !valid {
		return
	}
	v, err := h.svc.Activities.Approve(c.Request.Context(), actorFrom(c), c.Param("id"), body.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) RejectActivity(c *gin.Context) {
	body, valid := bindAction(c)
	if !valid {
		return
	}
	v, err := h.svc.Activities.Reject(c.Request.Context(), actorFrom(c), c.Param("id"), body.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}
