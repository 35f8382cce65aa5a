package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Victor-armando18/storefront-pricing/pkg/engine"
)

type cartFile struct {
	Items   []engine.LineItem `json:"items"`
	Coupons []string          `json:"coupons"`
}

func main() {
	settingsPath := flag.String("settings", "data/settings.yaml", "settings file (yaml or json)")
	cartPath := flag.String("cart", "data/cart.json", "cart file")
	locale := flag.String("locale", "ar", "display locale")
	flag.Parse()

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("   STOREFRONT PRICING CLI - DIAGNOSTIC TOOL")
	fmt.Println(strings.Repeat("=", 60))

	svc, err := engine.New(*settingsPath, engine.WithCurrency(*locale, ""))
	if err != nil {
		fmt.Printf("\n❌ failed to load settings: %v\n", err)
		os.Exit(1)
	}

	cart, err := loadCart(*cartPath)
	if err != nil {
		fmt.Printf("\n❌ %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), svc, cart); err != nil {
		fmt.Printf("\n❌ ERROR: %v\n", err)
		os.Exit(1)
	}
}

func loadCart(path string) (cartFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cartFile{}, fmt.Errorf("cart file not found [%s]: %w", path, err)
	}
	var c cartFile
	if err := json.Unmarshal(data, &c); err != nil {
		return cartFile{}, fmt.Errorf("failed to parse cart JSON: %w", err)
	}
	return c, nil
}

func run(ctx context.Context, svc *engine.Storefront, cart cartFile) error {
	fmt.Println("\n[1. WEIGHT OPTIONS]")
	seen := map[string]bool{}
	for _, it := range cart.Items {
		if !it.SoldByWeight || seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		opts, err := svc.GetWeightOptions(ctx, engine.Product{ID: it.ProductID, SoldByWeight: true})
		if err != nil {
			return err
		}
		labels := make([]string, 0, len(opts))
		for _, o := range opts {
			labels = append(labels, o.Label)
		}
		fmt.Printf("   %-16s %s\n", it.ProductID, strings.Join(labels, " | "))
	}

	fmt.Println("\n[2. COUPONS]")
	for _, code := range cart.Coupons {
		res, err := svc.ValidateCouponCode(ctx, code)
		if err != nil {
			return err
		}
		mark := "✅"
		if !res.Valid {
			mark = "⚠️ "
		}
		fmt.Printf("   %s %-12s %s\n", mark, code, res.Message)
	}

	summary, err := svc.CalculateTotalWithDiscounts(ctx, cart.Items, cart.Coupons...)
	if err != nil {
		return err
	}

	fmt.Println("\n[3. EXECUTION LOG]")
	for _, step := range summary.ExecutionLog {
		fmt.Printf("   [%-10s] Offer: %-12s -> %s\n", strings.ToUpper(step.Phase), step.OfferID, step.Message)
	}

	shipping, err := svc.CalculateShippingCost(ctx, summary.Subtotal)
	if err != nil {
		return err
	}

	fmt.Println("\n[4. SUMMARY]")
	fmt.Printf("   Subtotal:    %s\n", summary.Subtotal.StringFixed(2))
	for _, d := range summary.Discounts {
		fmt.Printf("   - %-10s %s\n", d.OfferID, d.Amount.StringFixed(2))
	}
	fmt.Printf("   Discount:    %s\n", summary.TotalDiscount.StringFixed(2))
	fmt.Printf("   Total:       %s\n", summary.TotalAfterDiscount.StringFixed(2))
	if shipping.Free {
		fmt.Printf("   Shipping:    free (%d days)\n", shipping.EstimatedDays)
	} else {
		fmt.Printf("   Shipping:    %s (%d days)\n", shipping.Cost.StringFixed(2), shipping.EstimatedDays)
	}
	fmt.Printf("   Grand total: %s\n", summary.TotalAfterDiscount.Add(shipping.Cost).StringFixed(2))

	fmt.Println(strings.Repeat("=", 60))
	return nil
}
