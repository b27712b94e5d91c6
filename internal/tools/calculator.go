package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/barcelona-partners/voicegw/pkg/llm"
)

const calculatorApology = "I could not run that simulation. Please check the numbers."

// Quote is the result of an installment simulation.
type Quote struct {
	CreditValue        float64
	TotalTax           float64
	TotalPayable       float64
	MonthlyInstallment float64
	Months             int
}

// Calculate runs the installment simulation. The administration tax is a
// percentage of the credit value, charged once and diluted across the term.
func Calculate(creditValue float64, months int, adminTaxPercent float64) (Quote, error) {
	if creditValue <= 0 {
		return Quote{}, fmt.Errorf("credit value must be positive, got %v", creditValue)
	}
	if months <= 0 {
		return Quote{}, fmt.Errorf("months must be positive, got %d", months)
	}
	if adminTaxPercent < 0 {
		return Quote{}, fmt.Errorf("admin tax percent must not be negative, got %v", adminTaxPercent)
	}
	totalTax := creditValue * adminTaxPercent / 100
	totalPayable := creditValue + totalTax
	return Quote{
		CreditValue:        creditValue,
		TotalTax:           totalTax,
		TotalPayable:       totalPayable,
		MonthlyInstallment: totalPayable / float64(months),
		Months:             months,
	}, nil
}

// Calculator exposes the installment simulation as a model-callable tool.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

func (c *Calculator) Definition() llm.Tool {
	return llm.Tool{
		Name:        "calculate_installment",
		Description: "Simulate a consortium plan: given the credit value, the term in months and the administration tax percentage, compute the total tax, the total payable and the monthly installment.",
		Parameters: toolParams(
			map[string]any{
				"credit_value": map[string]any{
					"type":        "number",
					"description": "Credit value of the plan in currency units.",
				},
				"months": map[string]any{
					"type":        "integer",
					"description": "Term of the plan in months.",
				},
				"admin_tax_percent": map[string]any{
					"type":        "number",
					"description": "Administration tax as a percentage of the credit value.",
				},
			},
			[]string{"credit_value", "months", "admin_tax_percent"},
		),
	}
}

type calculatorArgs struct {
	CreditValue     float64 `json:"credit_value"`
	Months          int     `json:"months"`
	AdminTaxPercent float64 `json:"admin_tax_percent"`
}

// Call never returns an error: malformed or out-of-range arguments produce
// an apology the model can read back to the caller.
func (c *Calculator) Call(ctx context.Context, arguments string) (string, error) {
	var args calculatorArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return calculatorApology, nil
	}
	quote, err := Calculate(args.CreditValue, args.Months, args.AdminTaxPercent)
	if err != nil {
		return calculatorApology, nil
	}
	return fmt.Sprintf(
		"Simulation for a credit of %s over %d months: total administration tax %s, total payable %s, monthly installment %s.",
		formatCurrency(quote.CreditValue),
		quote.Months,
		formatCurrency(quote.TotalTax),
		formatCurrency(quote.TotalPayable),
		formatCurrency(quote.MonthlyInstallment),
	), nil
}

// formatCurrency renders "R$ 236,000.00" with comma thousands separators.
func formatCurrency(value float64) string {
	rounded := math.Round(value*100) / 100
	whole := int64(rounded)
	cents := int64(math.Round((rounded - float64(whole)) * 100))
	if cents < 0 {
		cents = -cents
	}
	return fmt.Sprintf("R$ %s.%02d", groupThousands(whole), cents)
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return sign + digits
	}
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return sign + strings.Join(groups, ",")
}

func toolParams(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
