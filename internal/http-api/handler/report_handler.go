package handler

import (
	"net/http"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports service.ReportService
}

func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Stats(c *gin.Context) {
	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromStats(stats))
}

func (h *ReportHandler) ActiveLoans(c *gin.Context) {
	rows, err := h.reports.ActiveLoans(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromLoanRows(rows))
}

// Overdue lists active loans past due with the fine accrued so far.
func (h *ReportHandler) Overdue(c *gin.Context) {
	loans, err := h.reports.Overdue(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	items := make([]dto.LoanReportResponse, 0, len(loans))
	for _, l := range loans {
		items = append(items, dto.FromOverdueLoan(l))
	}
	c.JSON(http.StatusOK, items)
}

func (h *ReportHandler) BorrowingHistory(c *gin.Context) {
	var q dto.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.reports.BorrowingHistory(c.Request.Context(), filter)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromLoanRows(rows))
}
