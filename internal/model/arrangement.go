package model

// Arrangement is the table/chair setup of an event (TCA###### ids).
type Arrangement struct {
	ID              string `json:"arrangement_id"`
	LinenColor      string `json:"linen_color"`
	ChairCoverColor string `json:"chair_cover_color"`
	HeadTablePax    int    `json:"head_table_pax"`
}

// TableReservation pairs a physical table with the party it is held for
// (TAB###### ids, unique across all arrangements).
type TableReservation struct {
	ID          string `json:"table_reserve_id"`
	TableNumber int    `json:"table_number"`
	ReserveName string `json:"reserve_name"`
}

type TableReservationInput struct {
	TableNumber int    `json:"table_number"`
	ReserveName string `json:"reserve_name"`
}

// ArrangementInput is used for both create and update.  EventID is
// ignored on update; Reservations always replaces the full set.
type ArrangementInput struct {
	EventID         int64                   `json:"event_id"`
	LinenColor      string                  `json:"linen_color"`
	ChairCoverColor string                  `json:"chair_cover_color"`
	HeadTablePax    int                     `json:"head_table_pax"`
	Reservations    []TableReservationInput `json:"reservations"`
}

// ArrangementDetail is a single arrangement with its reservations.
type ArrangementDetail struct {
	Arrangement
	EventID        *int64             `json:"event_id"`
	ReservedTables []TableReservation `json:"reservedTables"`
}

// ArrangementView is a list row: the arrangement, who it belongs to, and
// its reservations as parallel lists.
type ArrangementView struct {
	Arrangement
	EventID      *int64   `json:"event_id"`
	BookingID    *int64   `json:"booking_id"`
	CustomerID   *int64   `json:"customer_id"`
	CustomerName string   `json:"customer_name"`
	EventName    string   `json:"event_name"`
	TableNumbers []int    `json:"table_numbers"`
	ReserveNames []string `json:"reserve_names"`
}
