package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tier string

const (
	TierEmail       Tier = "email"
	TierName        Tier = "name"
	TierPartialName Tier = "partial_name"
)

// Payment is one paid order coming from the payments feed or a payments sheet.
type Payment struct {
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	PaidAt          string           `json:"paid_at,omitempty"`
	Product         string           `json:"product,omitempty"`
	OrderID         int64            `json:"pedido_id,omitempty"`
	ProductID       int64            `json:"produto_id,omitempty"`
	OrderTotal      *decimal.Decimal `json:"valor_total,omitempty"`
	Installments    int              `json:"parcelas,omitempty"`
	OrderStatus     string           `json:"status_pedido,omitempty"`
	FinancialStatus string           `json:"status_financeiro,omitempty"`
	Phone           string           `json:"telefone,omitempty"`
	Document        string           `json:"documento,omitempty"`
}

// Assignment credits a customer to a seller for one upload month.
type Assignment struct {
	ID            string `json:"id,omitempty"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email,omitempty"`
	SellerID      string `json:"seller_id,omitempty"`
	SellerName    string `json:"seller_name" validate:"required"`
	Product       string `json:"product,omitempty"`
	UploadMonth   string `json:"upload_month,omitempty"`
}

// SellerKey is the aggregation key: the stable seller id when the sheet has one,
// the display name otherwise.
func (a Assignment) SellerKey() string {
	if a.SellerID != "" {
		return "id:" + a.SellerID
	}
	return "name:" + a.SellerName
}

type Match struct {
	Payment    Payment    `json:"payment"`
	Assignment Assignment `json:"assignment"`
	Tier       Tier       `json:"tier"`
	// Conflicts lists the other sellers that matched the same payment on the same tier.
	Conflicts []string `json:"conflicts,omitempty"`
}

type ClientLine struct {
	Name            string           `json:"name"`
	Email           string           `json:"email,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	PaidAt          string           `json:"paid_at,omitempty"`
	Product         string           `json:"product,omitempty"`
	FinancialStatus string           `json:"status_financeiro,omitempty"`
	OrderID         int64            `json:"pedido_id,omitempty"`
	Installments    int              `json:"parcelas,omitempty"`
	OrderTotal      *decimal.Decimal `json:"valor_total,omitempty"`
	Tier            Tier             `json:"tier"`
}

// Result is the per-seller commission line. It is derived on every calculation.
type Result struct {
	SellerKey    string          `json:"seller_key"`
	SellerName   string          `json:"seller_name"`
	Clients      []ClientLine    `json:"clients"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaymentCount int             `json:"payment_count"`
}

type Ambiguity struct {
	CustomerName string   `json:"customer_name"`
	Tier         Tier     `json:"tier"`
	ChosenSeller string   `json:"chosen_seller"`
	OtherSellers []string `json:"other_sellers"`
}

type Report struct {
	Month          string          `json:"month,omitempty"`
	Results        []Result        `json:"results"`
	TotalPayments  int             `json:"total_payments"`
	MatchedCount   int             `json:"matched_count"`
	UnmatchedCount int             `json:"unmatched_count"`
	Unmatched      []Payment       `json:"unmatched,omitempty"`
	Ambiguities    []Ambiguity     `json:"ambiguities,omitempty"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	MappedClients  int             `json:"mapped_clients"`
	Warning        string          `json:"warning,omitempty"`
	CalculatedAt   time.Time       `json:"calculated_at"`
}
