package api

import (
	"github.com/celerix-dev/celerix-build/internal/service"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/gin-gonic/gin"
)

func (h *Handler) registerProjects(g *gin.RouterGroup) {
	read := Require(ActRead)

	projects := g.Group("/projects")
	{
		write := Require(ActProjectsWrite)
		projects.GET("", read, h.ListProjects)
		projects.GET("/:id", read, h.GetProject)
		projects.POST("", write, h.CreateProject)
		projects.PATCH("/:id", write, h.UpdateProject)
		projects.DELETE("/:id", write, h.DeleteProject)
	}

	phases := g.Group("/phases")
	{
		write := Require(ActPhasesWrite)
		phases.GET("", read, h.ListPhases)
		phases.GET("/:id", read, h.GetPhase)
		phases.POST("", write, h.CreatePhase)
		phases.PATCH("/:id", write, h.UpdatePhase)
		phases.DELETE("/:id", write, h.DeletePhase)
	}

	templates := g.Group("/phase-templates")
	{
		write := Require(ActTemplatesWrite)
		templates.GET("", read, h.ListTemplates)
		templates.GET("/:id", read, h.GetTemplate)
		templates.POST("", write, h.CreateTemplate)
		templates.PATCH("/:id", write, h.UpdateTemplate)
		templates.DELETE("/:id", write, h.DeleteTemplate)
		templates.POST("/:id/apply", Require(ActTemplatesApply), h.ApplyTemplate)
	}
}

func (h *Handler) ListProjects(c *gin.Context) {
	p, err := pageFrom(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.Projects.List(c.Request.Context(), service.ProjectFilter{
		Status: schema.ProjectStatus(c.Query("status")),
		Search: c.Query("search"),
	}, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, items, total, p)
}

func (h *Handler) GetProject(c *gin.Context) {
	v, err := h.svc.Projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var in service.ProjectInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Projects.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, v)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	var in service.ProjectInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Projects.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.svc.Projects.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	done(c, "project deleted")
}

func (h *Handler) ListPhases(c *gin.Context) {
	p, err := pageFrom(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.Phases.List(c.Request.Context(), service.PhaseFilter{
		ProjectID: c.Query("projectId"),
		Status:    schema.PhaseStatus(c.Query("status")),
		Search:    c.Query("search"),
	}, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, items, total, p)
}

func (h *Handler) GetPhase(c *gin.Context) {
	v, err := h.svc.Phases.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) CreatePhase(c *gin.Context) {
	var in service.PhaseInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Phases.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, v)
}

func (h *Handler) UpdatePhase(c *gin.Context) {
	var in service.PhaseInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Phases.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) DeletePhase(c *gin.Context) {
	if err := h.svc.Phases.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	done(c, "phase deleted")
}

func (h *Handler) ListTemplates(c *gin.Context) {
	p, err := pageFrom(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.PhaseTemplates.List(c.Request.Context(), c.Query("search"), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, items, total, p)
}

func (h *Handler) GetTemplate(c *gin.Context) {
	v, err := h.svc.PhaseTemplates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var in service.PhaseTemplateInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.PhaseTemplates.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, v)
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	var in service.PhaseTemplateInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.PhaseTemplates.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	if err := h.svc.PhaseTemplates.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	done(c, "phase template deleted")
}

func (h *Handler) ApplyTemplate(c *gin.Context) {
	var in service.ApplyInput
	if !bind(c, &in) {
		return
	}
	phases, err := h.svc.PhaseTemplates.Apply(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, phases)
}
