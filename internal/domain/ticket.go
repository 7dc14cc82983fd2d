package domain

// Ticket is a single fungible unit within a ticket type's fixed pool.
// OrderID is the nullable owning key: nil means the unit is free, set
// means exactly one order holds it. Rows are created in bulk when the
// ticket type is created and are only ever reassigned, never deleted.
type Ticket struct {
	ID           string  `json:"id"`
	TicketTypeID string  `json:"ticket_type_id"`
	OrderID      *string `json:"order_id"`
}

// IsAvailable reports whether the ticket is free to claim.
func (t *Ticket) IsAvailable() bool {
	return t.OrderID == nil
}
