package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/lomedigitalschool/kotiz-web/internal/common"
	"github.com/lomedigitalschool/kotiz-web/internal/config"
	"github.com/lomedigitalschool/kotiz-web/internal/models"
	"github.com/lomedigitalschool/kotiz-web/internal/payment"

	"go.uber.org/zap"
)

func filterCagnottes(cagnottes []models.Cagnotte, search, cagnotteType string) []models.Cagnotte {
	out := make([]models.Cagnotte, 0, len(cagnottes))
	for _, c := range cagnottes {
		if search != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(search)) {
			continue
		}
		if cagnotteType != "" && c.Type != cagnotteType {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sortCagnottes(cagnottes []models.Cagnotte, option string) {
	switch option {
	case "popular":
		sort.SliceStable(cagnottes, func(i, j int) bool {
			return cagnottes[i].Progress() > cagnottes[j].Progress()
		})
	case "amount":
		sort.SliceStable(cagnottes, func(i, j int) bool {
			return cagnottes[i].CurrentAmount.GreaterThan(cagnottes[j].CurrentAmount)
		})
	case "date":
		sort.SliceStable(cagnottes, func(i, j int) bool {
			return cagnottes[i].CreatedAt.After(cagnottes[j].CreatedAt)
		})
	}
}

func printCagnotte(c models.Cagnotte, isLast bool) {
	fmt.Printf("%s %-24s  %s / %s (%d%%)  [%s, %s]  %d contributeurs\n",
		common.BoxPrefix(isLast),
		c.Title,
		payment.FormatAmount(c.CurrentAmount, ""),
		payment.FormatAmount(c.GoalAmount, c.Currency),
		c.Progress(),
		c.Status,
		c.Type,
		len(c.Contributors))
}

func main() {
	search := flag.String("q", "", "Filter cagnottes whose title contains this text")
	cagnotteType := flag.String("type", "", "Filter by type (public|private)")
	sortOption := flag.String("sort", "popular", "Sort order: popular, amount or date")
	refresh := flag.Bool("refresh", false, "Refresh the collection from the remote API first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx := context.Background()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *refresh {
		services.Store.FetchAllCagnottes(ctx)
	}

	state := services.Store.Snapshot()
	if state.LastError != "" {
		fmt.Printf("⚠ remote refresh failed (%s), showing cached data\n", state.LastError)
	}

	cagnottes := filterCagnottes(state.Cagnottes, *search, *cagnotteType)
	sortCagnottes(cagnottes, *sortOption)

	common.PrintHeader(fmt.Sprintf("Cagnottes (%d)", len(cagnottes)), common.DefaultWidth)
	if len(cagnottes) == 0 {
		fmt.Println("Aucune cagnotte trouvée.")
	}
	for i, c := range cagnottes {
		printCagnotte(c, i == len(cagnottes)-1)
	}
	common.PrintFooter("Done", common.DefaultWidth)
}
