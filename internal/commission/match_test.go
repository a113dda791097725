package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestMatchPayments_EmailWinsOverName(t *testing.T) {
	payments := []Payment{{CustomerName: "Completely Different", CustomerEmail: "JOSE@Example.com", Amount: amount("100")}}
	assignments := []Assignment{
		{CustomerName: "Completely Different", SellerName: "Bruna"},
		{CustomerName: "José Souza", CustomerEmail: "jose@example.com", SellerName: "Carol"},
	}

	matches, unmatched := MatchPayments(payments, assignments)

	require.Len(t, matches, 1)
	assert.Empty(t, unmatched)
	assert.Equal(t, "Carol", matches[0].Assignment.SellerName)
	assert.Equal(t, TierEmail, matches[0].Tier)
}

func TestMatchPayments_NormalizedNameEquality(t *testing.T) {
	payments := []Payment{{CustomerName: "João Silva", Amount: amount("500")}}
	assignments := []Assignment{{CustomerName: "Joao Silva", SellerName: "Carol"}}

	report := Calculate(payments, assignments)

	require.Len(t, report.Results, 1)
	assert.Equal(t, "Carol", report.Results[0].SellerName)
	assert.True(t, report.Results[0].TotalAmount.Equal(decimal.RequireFromString("500")))
	assert.Equal(t, TierName, report.Results[0].Clients[0].Tier)
	assert.Equal(t, 0, report.UnmatchedCount)
}

func TestMatchPayments_ShortNameSkipsPartialTier(t *testing.T) {
	payments := []Payment{{CustomerName: "Ana", CustomerEmail: "ana@x.com"}}
	assignments := []Assignment{{CustomerName: "Ana Paula", CustomerEmail: "paula@x.com", SellerName: "Carol"}}

	report := Calculate(payments, assignments)

	assert.Empty(t, report.Results)
	assert.Equal(t, 1, report.UnmatchedCount)
	assert.Equal(t, NoMatchWarning, report.Warning)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "Ana", report.Unmatched[0].CustomerName)
}

func TestMatchPayments_PartialNameBothDirections(t *testing.T) {
	assignments := []Assignment{{CustomerName: "Mariana Santos", SellerName: "Carol"}}

	t.Run("payer name inside assignment name", func(t *testing.T) {
		matches, _ := MatchPayments([]Payment{{CustomerName: "mariana"}}, assignments)
		require.Len(t, matches, 1)
		assert.Equal(t, TierPartialName, matches[0].Tier)
	})

	t.Run("assignment name inside payer name", func(t *testing.T) {
		matches, _ := MatchPayments([]Payment{{CustomerName: "Mariana Santos Lima"}}, assignments)
		require.Len(t, matches, 1)
		assert.Equal(t, TierPartialName, matches[0].Tier)
	})

	t.Run("exactly four characters is not enough", func(t *testing.T) {
		matches, unmatched := MatchPayments([]Payment{{CustomerName: "Mari"}}, assignments)
		assert.Empty(t, matches)
		assert.Len(t, unmatched, 1)
	})
}

func TestMatchPayments_FirstAssignmentWinsAndTieIsSurfaced(t *testing.T) {
	payments := []Payment{{CustomerName: "Maria", Amount: amount("10")}}
	assignments := []Assignment{
		{CustomerName: "Maria", SellerName: "Bruna"},
		{CustomerName: "Maria", SellerName: "Carol"},
		{CustomerName: "maria", SellerName: "Bruna"},
	}

	report := Calculate(payments, assignments)

	require.Len(t, report.Results, 1)
	assert.Equal(t, "Bruna", report.Results[0].SellerName)
	require.Len(t, report.Ambiguities, 1)
	assert.Equal(t, "Bruna", report.Ambiguities[0].ChosenSeller)
	assert.Equal(t, []string{"Carol"}, report.Ambiguities[0].OtherSellers)
	assert.Equal(t, TierName, report.Ambiguities[0].Tier)
}

func TestMatchPayments_EmptyAssignmentNameNeverMatchesPartially(t *testing.T) {
	matches, unmatched := MatchPayments(
		[]Payment{{CustomerName: "Roberta Dias"}},
		[]Assignment{{CustomerName: "", SellerName: "Ghost"}},
	)
	assert.Empty(t, matches)
	assert.Len(t, unmatched, 1)
}

func TestAggregate_SumsCountsAndSorts(t *testing.T) {
	payments := []Payment{
		{CustomerName: "Alice Ramos", Amount: amount("100.50")},
		{CustomerName: "Bianca Reis", Amount: amount("900")},
		{CustomerName: "Alice Ramos", Amount: nil},
		{CustomerName: "Camila Luz", Amount: amount("49.50")},
		{CustomerName: "Nobody Known"},
	}
	assignments := []Assignment{
		{CustomerName: "Alice Ramos", SellerName: "Carol"},
		{CustomerName: "Bianca Reis", SellerName: "Dani"},
		{CustomerName: "Camila Luz", SellerName: "Carol"},
	}

	report := Calculate(payments, assignments)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "Dani", report.Results[0].SellerName)
	assert.Equal(t, "Carol", report.Results[1].SellerName)
	assert.True(t, report.Results[1].TotalAmount.Equal(decimal.RequireFromString("150")))
	assert.Equal(t, 3, report.Results[1].PaymentCount)
	assert.Equal(t, 4, report.MatchedCount)
	assert.Equal(t, 1, report.UnmatchedCount)
	assert.Equal(t, 5, report.TotalPayments)
	assert.True(t, report.TotalAmount.Equal(decimal.RequireFromString("1050")))

	for _, r := range report.Results {
		sum := decimal.Zero
		for _, c := range r.Clients {
			if c.Amount != nil {
				sum = sum.Add(*c.Amount)
			}
		}
		assert.True(t, sum.Equal(r.TotalAmount), "seller %s", r.SellerName)
		assert.Len(t, r.Clients, r.PaymentCount)
	}
}

func TestAggregate_StableSellerID(t *testing.T) {
	payments := []Payment{
		{CustomerName: "Alice Ramos", Amount: amount("10")},
		{CustomerName: "Bianca Reis", Amount: amount("20")},
	}
	assignments := []Assignment{
		{CustomerName: "Alice Ramos", SellerID: "7", SellerName: "Carol"},
		{CustomerName: "Bianca Reis", SellerID: "7", SellerName: "Carolina"},
	}

	report := Calculate(payments, assignments)

	require.Len(t, report.Results, 1)
	assert.Equal(t, "id:7", report.Results[0].SellerKey)
	assert.Equal(t, "Carol", report.Results[0].SellerName)
	assert.Equal(t, 2, report.Results[0].PaymentCount)
}

func TestAggregate_DisplayNameVariantsStaySeparate(t *testing.T) {
	payments := []Payment{
		{CustomerName: "Alice Ramos", Amount: amount("10")},
		{CustomerName: "Bianca Reis", Amount: amount("10")},
	}
	assignments := []Assignment{
		{CustomerName: "Alice Ramos", SellerName: "Carol"},
		{CustomerName: "Bianca Reis", SellerName: "carol"},
	}

	report := Calculate(payments, assignments)

	assert.Len(t, report.Results, 2)
}

func TestCalculate_Idempotent(t *testing.T) {
	payments := []Payment{
		{CustomerName: "Maria", Amount: amount("10")},
		{CustomerName: "Fernanda Alves", CustomerEmail: "fe@x.com", Amount: amount("30")},
		{CustomerName: "Zé"},
	}
	assignments := []Assignment{
		{CustomerName: "Maria", SellerName: "Bruna"},
		{CustomerName: "Fernanda", CustomerEmail: "FE@x.com", SellerName: "Carol"},
	}

	first := Calculate(payments, assignments)
	second := Calculate(payments, assignments)

	assert.Equal(t, first, second)
}
