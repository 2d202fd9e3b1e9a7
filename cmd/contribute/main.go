package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/lomedigitalschool/kotiz-web/internal/common"
	"github.com/lomedigitalschool/kotiz-web/internal/config"
	"github.com/lomedigitalschool/kotiz-web/internal/models"
	"github.com/lomedigitalschool/kotiz-web/internal/payment"

	"go.uber.org/zap"
)

func main() {
	cagnotteId := flag.String("id", "", "Cagnotte id to contribute to (required)")
	amount := flag.String("amount", "", "Contribution amount (required)")
	user := flag.String("user", "", "Contributor display name")
	userId := flag.String("user-id", "", "Contributor user id (empty for guest)")
	anonymous := flag.Bool("anonymous", false, "Contribute anonymously")
	message := flag.String("message", "", "Optional message (max 200 characters)")
	phone := flag.String("phone", "", "Phone number for the mobile-money payment")
	methodId := flag.String("method", "orange_money", "Payment method id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if *cagnotteId == "" || *amount == "" {
		zap.L().Fatal("Both -id and -amount are required")
	}

	ctx := context.Background()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	cagnotte := services.Store.FetchCagnotte(ctx, *cagnotteId)
	if cagnotte == nil {
		zap.L().Fatal("Cagnotte not found", zap.String("id", *cagnotteId))
	}

	if _, ok := payment.FindMethod(services.Methods, *methodId); !ok {
		zap.L().Fatal("Unknown payment method", zap.String("method", *methodId))
	}

	if *phone != "" {
		formatted, err := payment.ValidatePhoneNumber(*phone, cfg.Payment.DefaultDialCode)
		if err != nil {
			zap.L().Fatal("Invalid phone number", zap.Error(err))
		}
		*phone = formatted
	}

	var contributorId *string
	if *userId != "" {
		contributorId = userId
	}

	result, err := payment.InitiateContribution(payment.InitiateParams{
		CagnotteId:    cagnotte.Id,
		CagnotteTitle: cagnotte.Title,
		Currency:      cagnotte.Currency,
		Amount:        models.ParseAmount(*amount),
		UserId:        contributorId,
		User:          *user,
		Anonymous:     *anonymous,
		Message:       *message,
		PhoneNumber:   *phone,
		MethodId:      *methodId,
	})
	if err != nil {
		zap.L().Fatal("Payment initiation failed", zap.Error(err))
	}

	contribution, err := services.Store.AddContribution(ctx, result.Contribution)
	if err != nil {
		zap.L().Fatal("Failed to add contribution", zap.Error(err))
	}

	updated := services.Store.FetchCagnotte(ctx, *cagnotteId)

	fmt.Printf("Contribution enregistrée: %s pour %q (ref %s)\n",
		payment.FormatAmount(contribution.Amount, contribution.Currency),
		contribution.CagnotteTitle,
		contribution.PaymentReference)
	if updated != nil {
		fmt.Printf("Montant collecté: %s / %s (%d%%)\n",
			payment.FormatAmount(updated.CurrentAmount, ""),
			payment.FormatAmount(updated.GoalAmount, updated.Currency),
			updated.Progress())
	}
}
