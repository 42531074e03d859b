// ABOUTME: Deal represents a structured trade record with commercial terms
// ABOUTME: Produced by LLM extraction and stored in the deal_recap_deals collection
package models

import "time"

// Enumerations for deal fields. The extraction tool schema advertises these
// to the model, so the sets here are the single source of truth.
var (
	Offices          = []string{"ATC", "ATS", "ATL", "ATA", "ATF"}
	Desks            = []string{"crude", "gasoline", "diesel", "jet_fuel", "fuel_oil"}
	Products         = []string{"crude", "gasoline", "diesel", "jet_fuel", "fuel_oil"}
	VolumeUnits      = []string{"BBL", "MT", "GAL", "L"}
	DeliveryMethods  = []string{"vessel", "pipeline", "truck", "rail"}
	IncoTerms        = []string{"FOB", "CIF", "CFR", "EXW", "DAP", "DDP"}
	InspectionAgents = []string{"SGS", "Bureau_Veritas", "Intertek"}
	PriceBases       = []string{"dated_brent", "wti", "dubai", "gasoil"}
	Currencies       = []string{"USD", "EUR", "GBP"}
	DealTypes        = []string{"crude_physical", "product_physical", "paper"}
	DealSubtypes     = []string{"spot", "term", "swaps", "options"}
)

// Deal is a deal recap record. Optional fields are pointers or omitempty
// strings so that unset values survive a store round trip absent rather than
// coerced to zero. Pricing is either a fixed Price or a PriceBasis+PriceDiff
// pair; the store never requires both. At most one of ChatID/EmailID is set
// (source provenance).
type Deal struct {
	ID                  int        `json:"id"`
	CounterPartyCompany string     `json:"counter_party_company"`
	Office              string     `json:"office"`
	Desk                string     `json:"desk"`
	Product             string     `json:"product"`
	LaycanStart         *time.Time `json:"laycan_start,omitempty"`
	LaycanEnd           *time.Time `json:"laycan_end,omitempty"`
	Volume              float64    `json:"volume"`
	VolumeUOM           string     `json:"volume_uom,omitempty"`
	DeliverMethod       string     `json:"deliver_method,omitempty"`
	DeliveryPort        string     `json:"delivery_port,omitempty"`
	VesselName          string     `json:"vessel_name,omitempty"`
	IncoTerm            string     `json:"inco_term,omitempty"`
	InspectionAgent     string     `json:"inspection_agent,omitempty"`
	Price               *float64   `json:"price,omitempty"`
	PriceBasis          string     `json:"price_basis,omitempty"`
	PriceDiff           *float64   `json:"price_diff,omitempty"`
	PriceWindowStart    *time.Time `json:"price_window_start,omitempty"`
	PriceWindowEnd      *time.Time `json:"price_window_end,omitempty"`
	Currency            string     `json:"currency,omitempty"`
	DealType            string     `json:"deal_type,omitempty"`
	DealSubtype         string     `json:"deal_subtype,omitempty"`
	ChatID              *int       `json:"chat_id,omitempty"`
	EmailID             *int       `json:"email_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
