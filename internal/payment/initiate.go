package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/lomedigitalschool/kotiz-web/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxMessageLength bounds the optional contribution message.
const MaxMessageLength = 200

// InitiateParams are the caller-supplied inputs for a contribution payment.
type InitiateParams struct {
	CagnotteId    string
	CagnotteTitle string
	Currency      string
	Amount        decimal.Decimal
	UserId        *string
	User          string
	Anonymous     bool
	Message       string
	PhoneNumber   string
	MethodId      string
}

// Result pairs the contribution record with the processor transaction.
type Result struct {
	Contribution models.Contribution
	Transaction  models.Transaction
}

// InitiateContribution runs the mocked payment flow: it validates the form
// inputs, then produces a contribution carrying a payment reference together
// with an already-completed transaction. The real provider integration will
// replace the always-success settlement.
func InitiateContribution(params InitiateParams) (*Result, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("veuillez entrer un montant valide supérieur à 0")
	}
	if len(params.Message) > MaxMessageLength {
		return nil, fmt.Errorf("le message ne doit pas dépasser %d caractères", MaxMessageLength)
	}
	if params.MethodId == "" {
		params.MethodId = "orange_money"
	}

	now := time.Now().UTC()
	contribution := models.Contribution{
		Id:               uuid.New().String(),
		CagnotteId:       params.CagnotteId,
		UserId:           params.UserId,
		Amount:           params.Amount,
		Anonymous:        params.Anonymous,
		Message:          params.Message,
		User:             params.User,
		CagnotteTitle:    params.CagnotteTitle,
		Currency:         params.Currency,
		PaymentReference: fmt.Sprintf("PAY-%d", now.UnixMilli()),
		CreatedAt:        now,
	}

	transaction := models.Transaction{
		Id:                uuid.New().String(),
		ContributionId:    contribution.Id,
		Amount:            params.Amount,
		Currency:          params.Currency,
		Status:            "completed",
		ProviderReference: fmt.Sprintf("PROV-%d", now.UnixMilli()),
		ProviderResponse:  "Mock response",
		CreatedAt:         now,
	}

	zap.L().Info("Contribution payment initiated (mock)",
		zap.String("cagnotte_id", params.CagnotteId),
		zap.String("amount", params.Amount.String()),
		zap.String("method", params.MethodId),
		zap.String("payment_reference", contribution.PaymentReference))

	return &Result{Contribution: contribution, Transaction: transaction}, nil
}

// FormatAmount renders an amount for display with thousands grouping and the
// currency code, e.g. "12 000 XOF". Mobile-money amounts carry no fraction
// digits.
func FormatAmount(amount decimal.Decimal, currency string) string {
	whole := amount.Round(0).String()
	negative := strings.HasPrefix(whole, "-")
	digits := strings.TrimPrefix(whole, "-")

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := strings.Join(groups, " ")
	if negative {
		out = "-" + out
	}
	if currency != "" {
		out += " " + currency
	}
	return out
}
