package entity

import (
	"fmt"
	"time"
)

// Estados de un cierre contable.
const (
	ClosingStateOpen   = "open"
	ClosingStateClosed = "closed"
)

// Closing cierre fiscal mensual de una empresa.
type Closing struct {
	ID        string
	CompanyID string
	Year      int
	Month     int
	State     string
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Period devuelve el período en formato MM/AAAA.
func (c *Closing) Period() string {
	return fmt.Sprintf("%02d/%04d", c.Month, c.Year)
}

// IsClosed indica si el cierre ya fue finalizado.
func (c *Closing) IsClosed() bool {
	return c.State == ClosingStateClosed
}
