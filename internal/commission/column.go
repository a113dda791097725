package commission

import "strings"

// Columns holds the header substrings tried for each concept, in priority order.
type Columns struct {
	CustomerName []string `yaml:"customer_name"`
	PayerName    []string `yaml:"payer_name"`
	Email        []string `yaml:"email"`
	SellerName   []string `yaml:"seller_name"`
	SellerID     []string `yaml:"seller_id"`
	Product      []string `yaml:"product"`
	Amount       []string `yaml:"amount"`
	PaidAt       []string `yaml:"paid_at"`
}

func DefaultColumns() Columns {
	return Columns{
		CustomerName: []string{"nome", "name", "cliente"},
		PayerName:    []string{"nome", "name", "cliente", "comprador"},
		Email:        []string{"email", "e-mail", "mail"},
		SellerName:   []string{"vendedora", "vendedor", "seller", "responsavel", "responsável"},
		SellerID:     []string{"seller_id", "seller id", "id vendedora", "id_vendedora", "codigo vendedora"},
		Product:      []string{"produto", "product", "oferta"},
		Amount:       []string{"valor", "value", "amount", "parcela", "preco", "preço"},
		PaidAt:       []string{"data", "date", "pagamento", "paid_at"},
	}
}

// Merge fills every concept left empty in c from d.
func (c Columns) Merge(d Columns) Columns {
	pick := func(a, b []string) []string {
		if len(a) > 0 {
			return a
		}
		return b
	}
	return Columns{
		CustomerName: pick(c.CustomerName, d.CustomerName),
		PayerName:    pick(c.PayerName, d.PayerName),
		Email:        pick(c.Email, d.Email),
		SellerName:   pick(c.SellerName, d.SellerName),
		SellerID:     pick(c.SellerID, d.SellerID),
		Product:      pick(c.Product, d.Product),
		Amount:       pick(c.Amount, d.Amount),
		PaidAt:       pick(c.PaidAt, d.PaidAt),
	}
}

// FindColumn returns the value under the first header whose normalized text
// contains a candidate. Candidates are tried in order; for each one only the
// first containing header is looked at, and an empty value there moves on to
// the next candidate.
func FindColumn(row Row, candidates ...string) string {
	_, v := findHeader(row, candidates, "")
	return v
}

func findHeader(row Row, candidates []string, skip string) (string, string) {
	for _, candidate := range candidates {
		c := Normalize(candidate)
		if c == "" {
			continue
		}
		for _, f := range row {
			if skip != "" && f.Header == skip {
				continue
			}
			if strings.Contains(Normalize(f.Header), c) {
				if f.Value != "" {
					return f.Header, f.Value
				}
				break
			}
		}
	}
	return "", ""
}
