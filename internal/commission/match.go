package commission

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// minPartialNameLen is the normalized payer name length a name must exceed
// before substring matching is attempted.
const minPartialNameLen = 4

const NoMatchWarning = "no correspondence found, check names and emails"

type normalizedAssignment struct {
	email string
	name  string
}

// MatchPayments attributes each payment to at most one assignment. Tiers are
// tried in order (email, exact name, partial name) and the first assignment in
// input order that satisfies a tier wins. Payments nobody claims are returned
// separately.
func MatchPayments(payments []Payment, assignments []Assignment) ([]Match, []Payment) {
	norms := make([]normalizedAssignment, len(assignments))
	for i, a := range assignments {
		norms[i] = normalizedAssignment{email: Normalize(a.CustomerEmail), name: Normalize(a.CustomerName)}
	}

	var (
		matches   []Match
		unmatched []Payment
	)
	for _, p := range payments {
		email := Normalize(p.CustomerEmail)
		name := Normalize(p.CustomerName)

		var (
			pred func(n normalizedAssignment) bool
			tier Tier
			idx  = -1
		)
		if email != "" {
			pred = func(n normalizedAssignment) bool { return n.email == email }
			tier = TierEmail
			idx = indexOf(norms, pred, 0)
		}
		if idx < 0 && name != "" {
			pred = func(n normalizedAssignment) bool { return n.name == name }
			tier = TierName
			idx = indexOf(norms, pred, 0)
		}
		if idx < 0 && utf8.RuneCountInString(name) > minPartialNameLen {
			pred = func(n normalizedAssignment) bool {
				return n.name != "" && (strings.Contains(n.name, name) || strings.Contains(name, n.name))
			}
			tier = TierPartialName
			idx = indexOf(norms, pred, 0)
		}
		if idx < 0 {
			unmatched = append(unmatched, p)
			continue
		}

		chosen := assignments[idx]
		matches = append(matches, Match{
			Payment:    p,
			Assignment: chosen,
			Tier:       tier,
			Conflicts:  conflicts(assignments, norms, pred, idx),
		})
	}
	return matches, unmatched
}

func indexOf(norms []normalizedAssignment, pred func(normalizedAssignment) bool, from int) int {
	for i := from; i < len(norms); i++ {
		if pred(norms[i]) {
			return i
		}
	}
	return -1
}

// conflicts collects the sellers, other than the chosen one, whose assignments
// also satisfy the winning tier.
func conflicts(assignments []Assignment, norms []normalizedAssignment, pred func(normalizedAssignment) bool, chosen int) []string {
	key := assignments[chosen].SellerKey()
	seen := map[string]bool{key: true}
	var out []string
	for i := indexOf(norms, pred, chosen+1); i >= 0; i = indexOf(norms, pred, i+1) {
		k := assignments[i].SellerKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, assignments[i].SellerName)
	}
	return out
}

// Aggregate groups matches per seller, sums amounts (missing counts as zero)
// and orders sellers by total, highest first. Sellers with equal totals keep
// the order in which they were first matched.
func Aggregate(matches []Match) []Result {
	index := make(map[string]int)
	results := make([]Result, 0)
	for _, m := range matches {
		key := m.Assignment.SellerKey()
		i, ok := index[key]
		if !ok {
			results = append(results, Result{
				SellerKey:   key,
				SellerName:  m.Assignment.SellerName,
				TotalAmount: decimal.Zero,
			})
			i = len(results) - 1
			index[key] = i
		}

		r := &results[i]
		p := m.Payment
		r.Clients = append(r.Clients, ClientLine{
			Name:            p.CustomerName,
			Email:           p.CustomerEmail,
			Amount:          p.Amount,
			PaidAt:          p.PaidAt,
			Product:         p.Product,
			FinancialStatus: p.FinancialStatus,
			OrderID:         p.OrderID,
			Installments:    p.Installments,
			OrderTotal:      p.OrderTotal,
			Tier:            m.Tier,
		})
		if p.Amount != nil {
			r.TotalAmount = r.TotalAmount.Add(*p.Amount)
		}
		r.PaymentCount++
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].TotalAmount.GreaterThan(results[b].TotalAmount)
	})
	return results
}

// Calculate runs one matching pass over frozen inputs. It is a pure function
// of its arguments.
func Calculate(payments []Payment, assignments []Assignment) Report {
	matches, unmatched := MatchPayments(payments, assignments)
	results := Aggregate(matches)

	report := Report{
		Results:       results,
		TotalPayments: len(payments),
		Unmatched:     unmatched,
		TotalAmount:   decimal.Zero,
		MappedClients: len(assignments),
	}
	for _, r := range results {
		report.MatchedCount += r.PaymentCount
		report.TotalAmount = report.TotalAmount.Add(r.TotalAmount)
	}
	report.UnmatchedCount = report.TotalPayments - report.MatchedCount

	for _, m := range matches {
		if len(m.Conflicts) == 0 {
			continue
		}
		report.Ambiguities = append(report.Ambiguities, Ambiguity{
			CustomerName: m.Payment.CustomerName,
			Tier:         m.Tier,
			ChosenSeller: m.Assignment.SellerName,
			OtherSellers: m.Conflicts,
		})
	}
	if len(results) == 0 {
		report.Warning = NoMatchWarning
	}
	return report
}
