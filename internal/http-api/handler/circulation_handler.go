package handler

import (
	"net/http"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type CirculationHandler struct {
	svc service.CirculationService
}

func NewCirculationHandler(svc service.CirculationService) *CirculationHandler {
	return &CirculationHandler{svc: svc}
}

func (h *CirculationHandler) Borrow(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req dto.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.svc.Borrow(c.Request.Context(), id.UserID, req.BookID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BorrowResponse{
		Message:  "Book borrowed successfully",
		RecordID: rec.ID,
		DueDate:  rec.DueDate,
	})
}

func (h *CirculationHandler) Return(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req dto.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.Return(c.Request.Context(), id.UserID, req.RecordID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReturnResponse{
		Message:    "Book returned successfully",
		FineAmount: res.FineAmount.InexactFloat64(),
	})
}

func (h *CirculationHandler) Reserve(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.Reserve(c.Request.Context(), id.UserID, req.BookID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReserveResponse{
		Message:       "Book reserved successfully",
		ReservationID: res.ID,
	})
}

func (h *CirculationHandler) CancelReservation(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	reservationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.CancelReservation(c.Request.Context(), id.UserID, reservationID); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Reservation cancelled"})
}

// ListBorrowed returns the caller's active loans, soonest due first.
func (h *CirculationHandler) ListBorrowed(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	records, err := h.svc.ListBorrowed(c.Request.Context(), id.UserID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	items := make([]dto.BorrowedBookResponse, 0, len(records))
	for _, r := range records {
		items = append(items, dto.FromBorrowingRecord(r))
	}
	c.JSON(http.StatusOK, items)
}

func (h *CirculationHandler) ListReservations(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	reservations, err := h.svc.ListReservations(c.Request.Context(), id.UserID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	items := make([]dto.ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		items = append(items, dto.FromReservation(r))
	}
	c.JSON(http.StatusOK, items)
}
