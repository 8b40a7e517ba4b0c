package store

import (
	"database/sql"
	"fmt"

	"github.com/CloseLoop/SalesPipe/internal/models"
)

// scanCallEvent scans a CallEvent from sql.Rows.
func scanCallEvent(rows *sql.Rows) (models.CallEvent, error) {
	var e models.CallEvent
	var kind string
	var detail sql.NullString
	if err := rows.Scan(&e.SessionID, &kind, &detail, &e.Time); err != nil {
		return e, fmt.Errorf("scan call event failed: %w", err)
	}
	e.Kind = models.CallEventKind(kind)
	e.Detail = detail.String
	return e, nil
}

// scanBooking scans a Booking from sql.Rows.
func scanBooking(rows *sql.Rows) (models.Booking, error) {
	var b models.Booking
	if err := rows.Scan(&b.SessionID, &b.OwnerID, &b.StartTime, &b.EndTime, &b.ConfirmedAt); err != nil {
		return b, fmt.Errorf("scan booking failed: %w", err)
	}
	return b, nil
}
