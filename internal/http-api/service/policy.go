package service

import (
	"slices"
	"time"

	"libraryhub/internal/http-api/models"
)

// Operation names a guarded action.
type Operation string

const (
	OpSearchBooks       Operation = "search_books"
	OpManageBooks       Operation = "manage_books"
	OpBorrow            Operation = "borrow"
	OpReturn            Operation = "return"
	OpReserve           Operation = "reserve"
	OpCancelReservation Operation = "cancel_reservation"
	OpListOwnLoans      Operation = "list_own_loans"
	OpLogout            Operation = "logout"
	OpViewReports       Operation = "view_reports"
	OpViewStats         Operation = "view_stats"
)

// Identity is the caller resolved from a session token.
type Identity struct {
	UserID    int64
	Email     string
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

// Policy maps each operation to the roles allowed to perform it.
// An operation mapped to nil is open to anonymous callers.
type Policy map[Operation][]models.Role

var anyRole = []models.Role{models.RoleAdmin, models.RoleLibrarian, models.RoleStudent}

// DefaultPolicy is the library's role table.
func DefaultPolicy() Policy {
	return Policy{
		OpSearchBooks:       nil,
		OpManageBooks:       {models.RoleAdmin, models.RoleLibrarian},
		OpViewReports:       {models.RoleAdmin, models.RoleLibrarian},
		OpViewStats:         {models.RoleAdmin},
		OpBorrow:            anyRole,
		OpReturn:            anyRole,
		OpReserve:           anyRole,
		OpCancelReservation: anyRole,
		OpListOwnLoans:      anyRole,
		OpLogout:            anyRole,
	}
}

// Authorize reports whether id may perform op. Unknown operations are denied.
func (p Policy) Authorize(id *Identity, op Operation) error {
	roles, known := p[op]
	if !known {
		return ErrForbidden
	}
	if roles == nil {
		return nil
	}
	if id == nil {
		return ErrUnauthenticated
	}
	if !slices.Contains(roles, id.Role) {
		return ErrForbidden
	}
	return nil
}
