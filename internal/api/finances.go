package api

import (
	"github.com/celerix-dev/celerix-build/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) registerFinances(g *gin.RouterGroup) {
	finances := g.Group("/project-finances")
	finances.GET("/:projectId", Require(ActFinancesRead), h.FinanceSummary)
	finances.PATCH("/:projectId", Require(ActFinancesWrite), h.UpdateFinance)
	finances.POST("/:projectId/expenses", Require(ActFinancesWrite), h.AddExpense)

	g.GET("/dashboard/portfolio", Require(ActDashboardRead), h.Portfolio)
}

func (h *Handler) FinanceSummary(c *gin.Context) {
	v, err := h.svc.Finances.Summary(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) UpdateFinance(c *gin.Context) {
	var in service.FinanceInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Finances.Update(c.Request.Context(), actorFrom(c), c.Param("projectId"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}

func (h *Handler) AddExpense(c *gin.Context) {
	var in service.ExpenseInput
	if !bind(c, &in) {
		return
	}
	v, err := h.svc.Finances.AddExpense(c.Request.Context(), actorFrom(c), c.Param("projectId"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, v)
}

func (h *Handler) Portfolio(c *gin.Context) {
	v, err := h.svc.Dashboard.Portfolio(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, v)
}
