package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/auction"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/db"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/dvf"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/log"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/price"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/reconcile"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/util"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/valuation"
	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

func Run(ctx context.Context, connection bun.IDB, config *util.Config) error {
	var dryRun bool
	var threshold float64
	flag.BoolVar(&dryRun, "dry", false, "dry run")
	flag.Float64Var(&threshold, "threshold", reconcile.DefaultMatchThreshold, "minimum match score")
	flag.Parse()

	logger := log.GetLogger()

	if dryRun {
		logger = log.AddGlobalField("DryRun", dryRun)
	}

	logger.Debug("retrieving raw listings from db")
	rowsA, err := db.GetListingsBySource(ctx, connection, config.SourcePrimary.Value)
	if err != nil {
		return err
	}
	rowsB, err := db.GetListingsBySource(ctx, connection, config.SourceSecondary.Value)
	if err != nil {
		return err
	}
	logger.
		WithField("SourcePrimary", config.SourcePrimary.Value).
		WithField("CountPrimary", len(rowsA)).
		WithField("SourceSecondary", config.SourceSecondary.Value).
		WithField("CountSecondary", len(rowsB)).
		Info("retrieved raw listings from db")

	listA := make([]*auction.Listing, len(rowsA))
	for i, row := range rowsA {
		listA[i] = row.ToListing()
	}
	listB := make([]*auction.Listing, len(rowsB))
	for i, row := range rowsB {
		listB[i] = row.ToListing()
	}

	records, stats := reconcile.Reconcile(listA, listB, threshold)

	if dryRun {
		logger.Debug("saving merged records to db")
	} else {
		models := make([]*db.MergedRecordModel, len(records))
		for i, record := range records {
			models[i] = db.NewMergedRecordModel(record)
		}
		saved, err := db.SaveMergedRecords(ctx, connection, models)
		if err != nil {
			return err
		}
		logger.WithField("SavedCount", saved).Info("saved merged records to db")
	}

	analyzer := price.NewAnalyzer(
		price.NewDVFSource(dvf.NewClient(config.DvfDataDir.Value)),
		price.NewCommuneSource(config.CommuneIndicatorsFile.Value),
		price.NewListingsSource(nil),
	)

	var analyses []*db.PriceAnalysisModel
	for _, record := range records {
		query := price.Query{
			CodePostal: record.CodePostal,
			Ville:      record.Ville,
			TypeBien:   string(record.TypeBien),
			Surface:    record.Surface,
		}
		analysis := analyzer.EstimatePrice(query, record.MiseAPrix)
		result := valuation.Valuate(record, analysis)

		printResult(result)

		analyses = append(analyses, analysisModel(record, result))
	}

	if dryRun {
		logger.Debug("saving price analyses to db")
	} else {
		saved, err := db.SaveAnalyses(ctx, connection, analyses)
		if err != nil {
			return err
		}
		logger.WithField("SavedCount", saved).Info("saved price analyses to db")
	}

	logger.
		WithField("Processed", stats.Processed).
		WithField("Merged", stats.MergedRecords).
		Info("run complete")

	return nil
}

func analysisModel(record *auction.MergedRecord, result valuation.Result) *db.PriceAnalysisModel {
	analysis := result.Analysis
	return &db.PriceAnalysisModel{
		CodePostal:       record.CodePostal,
		TypeBien:         string(record.TypeBien),
		PrixM2Recommande: analysis.PrixM2Recommande,
		PrixTotalEstime:  analysis.PrixTotalEstime,
		PrixM2Min:        analysis.Combined.PrixM2Min,
		PrixM2Max:        analysis.Combined.PrixM2Max,
		DvfPrixM2:        analysis.Combined.DvfPrixM2,
		CommunePrixM2:    analysis.Combined.CommunePrixM2,
		ListingsPrixM2:   analysis.Combined.ListingsPrixM2,
		SourcesAgreement: analysis.Combined.SourcesAgreement,
		Reliability:      string(analysis.Combined.Reliability),
		ReliabilityScore: analysis.Combined.ReliabilityScore,
		DecoteVsMarche:   analysis.DecoteVsMarche,
		OpportunityScore: result.OpportunityScore,
		Badge:            string(result.Badge),
		Notes:            analysis.Notes,
		Warnings:         analysis.Warnings,
		AnalyzedAt:       analysis.AnalyzedAt,
	}
}

var badgeColors = map[valuation.Badge]*color.Color{
	valuation.BadgeExceptional: color.New(color.FgGreen, color.Bold),
	valuation.BadgeOpportunity: color.New(color.FgGreen),
	valuation.BadgeGoodDeal:    color.New(color.FgCyan),
	valuation.BadgeFair:        color.New(color.FgYellow),
	valuation.BadgeOverpriced:  color.New(color.FgRed),
	valuation.BadgeUnknown:     color.New(color.FgWhite),
}

func printResult(result valuation.Result) {
	record := result.Record
	analysis := result.Analysis

	badgeColor, ok := badgeColors[result.Badge]
	if !ok {
		badgeColor = color.New(color.FgWhite)
	}

	header := record.Ville
	if record.CodePostal != "" {
		header = fmt.Sprintf("%s (%s)", record.Ville, record.CodePostal)
	}
	fmt.Printf("%s %s  score %.0f/100\n", badgeColor.Sprintf("[%s]", result.Badge.Label()), header, result.OpportunityScore)

	if record.MiseAPrix != nil {
		fmt.Printf("  mise à prix %.0f €", *record.MiseAPrix)
		if analysis.PrixTotalEstime != nil {
			fmt.Printf(", marché estimé %.0f €", *analysis.PrixTotalEstime)
		}
		if analysis.DecoteVsMarche != nil {
			fmt.Printf(" (décote %.0f%%)", *analysis.DecoteVsMarche)
		}
		fmt.Println()
	}
	if analysis.PrixM2Recommande != nil {
		fmt.Printf("  %.0f €/m² recommandé, fiabilité %s (%.0f/100)\n",
			*analysis.PrixM2Recommande, analysis.Combined.Reliability, analysis.Combined.ReliabilityScore)
	}
	for _, s := range result.Strengths {
		fmt.Printf("  + %s\n", s)
	}
	for _, r := range result.Risks {
		fmt.Printf("  - %s\n", r)
	}
	for _, w := range analysis.Warnings {
		color.Yellow("  ! %s", w)
	}
}
