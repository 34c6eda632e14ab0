package model

// Bar is the optional bar requirement of an event.  The three totals are
// cached sums of the corresponding line items.
type Bar struct {
	ID                  int64   `json:"bar_requirement_id"`
	LiquorTimeFrom      string  `json:"liquor_time_from"`
	LiquorTimeTo        string  `json:"liquor_time_to"`
	BarPax              int     `json:"bar_pax"`
	TotalBitePrice      float64 `json:"total_bite_price"`
	TotalLiquorPrice    float64 `json:"total_liquor_price"`
	TotalSoftDrinkPrice float64 `json:"total_soft_drink_price"`
}

// BarUpdate carries the only mutable bar fields.  Totals and items are
// never touched by a bar update.
type BarUpdate struct {
	LiquorTimeFrom string `json:"liquor_time_from"`
	LiquorTimeTo   string `json:"liquor_time_to"`
	BarPax         int    `json:"bar_pax"`
}

// ItemKind selects one of the three bar line item collections.
type ItemKind string

const (
	ItemBite      ItemKind = "bite"
	ItemLiquor    ItemKind = "liquor"
	ItemSoftDrink ItemKind = "soft_drink"
)

// ItemKinds lists every kind in deletion order.
var ItemKinds = []ItemKind{ItemBite, ItemLiquor, ItemSoftDrink}

// LineItem is one bite, liquor or soft drink line of a bar.
type LineItem struct {
	ID       int64   `json:"id"`
	BarID    int64   `json:"bar_requirement_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// BarView is a bar joined out to its owning event, booking and customer,
// with its three item collections nested.  Collections are never nil.
type BarView struct {
	Bar
	EventID        *int64     `json:"event_id"`
	BookingID      *int64     `json:"booking_id"`
	CustomerID     *int64     `json:"customer_id"`
	CustomerName   string     `json:"customer_name"`
	EventName      string     `json:"event_name"`
	Bites          []LineItem `json:"bites"`
	LiquorItems    []LineItem `json:"liquor_items"`
	SoftDrinkItems []LineItem `json:"soft_drink_items"`
}
