package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/sevasangam/seva-gobackend.git/internal/db"
	"github.com/sevasangam/seva-gobackend.git/internal/services"
)

// reconcile finishes donations whose aggregate increment failed after the
// ledger commit, and optionally checks raised_amount against the ledger sum.
// Re-applying is safe: the ledger's apply token guarantees each donation's
// delta lands at most once.
var cli struct {
	MongoURI string        `env:"MONGOURI" required:"" help:"MongoDB connection string."`
	Database string        `env:"MONGO_DATABASE" default:"sevasangamdb" help:"Database name."`
	Grace    time.Duration `default:"5m" help:"Skip donations newer than this; they may still be settling."`
	DryRun   bool          `help:"Report what would be applied without writing."`
	Verify   bool          `help:"Compare each campaign's raised_amount against the ledger sum."`
}

func main() {
	// .env must load before kong resolves env tags.
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env: %s", err)
	}
	kctx := kong.Parse(&cli,
		kong.Name("reconcile"),
		kong.Description("Re-apply recorded donations whose aggregate update did not land."),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := db.Connect(ctx, cli.MongoURI)
	if err != nil {
		kctx.FatalIfErrorf(fmt.Errorf("failed to connect to MongoDB: %v", err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	database := client.Database(cli.Database)
	ledger := services.NewLedgerService(database)
	intents := services.NewIntentService(database)
	campaigns := services.NewCampaignService(database)
	sevas := services.NewSevaService(database)

	// No order creation happens here, so no provider client is wired in. The
	// notifier has no subscribers in a one-shot run; published events are
	// dropped, and viewers pick up the corrected totals on their next fetch.
	donations := services.NewDonationService(
		nil,
		intents,
		ledger,
		campaigns,
		sevas,
		services.SignatureVerifier{},
		services.NewNotifier(),
	)

	if err := applyUnsettled(ctx, ledger, donations); err != nil {
		kctx.FatalIfErrorf(err)
	}

	if cli.Verify {
		if err := verifyCampaignTotals(ctx, ledger, campaigns); err != nil {
			kctx.FatalIfErrorf(err)
		}
	}
}

func applyUnsettled(ctx context.Context, ledger *services.LedgerService, donations *services.DonationService) error {
	cutoff := time.Now().Add(-cli.Grace)
	unapplied, err := ledger.FindUnapplied(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list unapplied donations: %v", err)
	}

	if len(unapplied) == 0 {
		log.Println("No unapplied donations found")
		return nil
	}

	applied := 0
	for _, rec := range unapplied {
		if cli.DryRun {
			log.Printf("[dry-run] would apply donation %s (order=%s amount=%d campaign=%q seva=%q quantity=%d)",
				rec.ID, rec.OrderID, rec.Amount, rec.CampaignID, rec.SevaOpportunityID, rec.Quantity)
			continue
		}
		if err := donations.ApplyRecorded(ctx, &rec); err != nil {
			log.Printf("Failed to apply donation %s: %v", rec.ID, err)
			continue
		}
		applied++
	}

	if !cli.DryRun {
		log.Printf("Applied %d of %d unapplied donations", applied, len(unapplied))
	}
	return nil
}

func verifyCampaignTotals(ctx context.Context, ledger *services.LedgerService, campaigns *services.CampaignService) error {
	sums, err := ledger.SumByCampaign(ctx)
	if err != nil {
		return fmt.Errorf("failed to sum ledger by campaign: %v", err)
	}

	all, err := campaigns.CampaignList(ctx)
	if err != nil {
		return fmt.Errorf("failed to list campaigns: %v", err)
	}

	drift := 0
	for _, c := range all {
		expected := sums[c.ID.Hex()]
		if c.RaisedAmount != expected {
			drift++
			log.Printf("Drift on campaign %s (%s): raised_amount=%d ledger sum=%d", c.ID.Hex(), c.Title, c.RaisedAmount, expected)
		}
	}
	if drift == 0 {
		log.Printf("All %d campaigns match the ledger", len(all))
	}

	// Sums for campaign ids with no campaign document: recorded donations
	// whose target was deleted. Report them so attribution is not lost.
	known := make(map[string]bool, len(all))
	for _, c := range all {
		known[c.ID.Hex()] = true
	}
	for id, total := range sums {
		if !known[id] {
			log.Printf("Ledger holds %d for unknown campaign %s", total, id)
		}
	}

	return nil
}
