package model

import "time"

// EventKind discriminates the two event specializations.  The kind is
// derived from row presence: an event with a wedding row is a wedding,
// every other event is a custom event.
type EventKind string

const (
	KindWedding EventKind = "wedding"
	KindCustom  EventKind = "custom"
)

// EventDetail is the variant part of an event.  Exactly one of *Wedding or
// *CustomEvent is attached to every Event.
type EventDetail interface {
	Kind() EventKind
	// DisplayName is the human label used by read-side views.
	DisplayName() string
}

// Wedding holds the couple and ceremony details stored in the wedding table.
type Wedding struct {
	GroomName            string  `json:"groom_name"`
	BrideName            string  `json:"bride_name"`
	GroomContact         string  `json:"groom_contact"`
	BrideContact         string  `json:"bride_contact"`
	CeremonyTimeFrom     *string `json:"ceremony_time_from"`
	CeremonyTimeTo       *string `json:"ceremony_time_to"`
	RegistrationTimeFrom *string `json:"registration_time_from"`
	RegistrationTimeTo   *string `json:"registration_time_to"`
}

func (*Wedding) Kind() EventKind { return KindWedding }

func (w *Wedding) DisplayName() string { return WeddingName(w.GroomName, w.BrideName) }

// WeddingName builds the label of a wedding from the couple's names.
func WeddingName(groom, bride string) string { return groom + " & " + bride + " Wedding" }

// CustomEvent holds the free-text name and contact person of a themed event.
type CustomEvent struct {
	EventName     string `json:"event_name"`
	ContactPerson string `json:"contact_person"`
	ContactNumber string `json:"contact_number"`
}

func (*CustomEvent) Kind() EventKind { return KindCustom }

func (c *CustomEvent) DisplayName() string { return c.EventName }

// TimeWindow is a from/to pair of TIME values ("HH:MM:SS"); either end may be unset.
type TimeWindow struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// Event is the root aggregate.  Booking fields are read-side denormalizations
// of the owning booking and customer.
type Event struct {
	ID               int64       `json:"event_id"`
	BookingID        *int64      `json:"booking_id"`
	BarRequirementID *int64      `json:"bar_requirement_id"`
	BuffetTime       TimeWindow  `json:"buffet_time"`
	FunctionTime     TimeWindow  `json:"function_time"`
	DressTime        TimeWindow  `json:"dress_time"`
	BookingStatus    string      `json:"booking_status,omitempty"`
	BookingDate      *time.Time  `json:"booking_date,omitempty"`
	CustomerName     string      `json:"customer_name,omitempty"`
	Type             EventKind   `json:"type"`
	Details          EventDetail `json:"details"`
}

// EventInput is the create/update payload.  Every field is optional on
// update: omitted strings fall back to "" and omitted times to NULL.  Only
// the fields of the event's own variant are applied.
type EventInput struct {
	Type      EventKind `json:"type"` // create only
	BookingID *int64    `json:"booking_id"`

	BuffetTimeFrom   *string `json:"buffet_time_from"`
	BuffetTimeTo     *string `json:"buffet_time_to"`
	FunctionTimeFrom *string `json:"function_time_from"`
	FunctionTimeTo   *string `json:"function_time_to"`
	DressTimeFrom    *string `json:"dress_time_from"`
	DressTimeTo      *string `json:"dress_time_to"`

	// wedding fields
	GroomName            *string `json:"groom_name"`
	BrideName            *string `json:"bride_name"`
	GroomContact         *string `json:"groom_contact"`
	BrideContact         *string `json:"bride_contact"`
	CeremonyTimeFrom     *string `json:"ceremony_time_from"`
	CeremonyTimeTo       *string `json:"ceremony_time_to"`
	RegistrationTimeFrom *string `json:"registration_time_from"`
	RegistrationTimeTo   *string `json:"registration_time_to"`

	// custom event fields
	EventName     *string `json:"event_name"`
	ContactPerson *string `json:"contact_person"`
	ContactNumber *string `json:"contact_number"`
}

// Booking statuses an event can be listed under.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingDone      = "done"
)

// ListedStatuses are the booking statuses the event list includes.
var ListedStatuses = []string{BookingPending, BookingConfirmed, BookingDone}
