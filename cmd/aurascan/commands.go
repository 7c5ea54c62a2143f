package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aurascan/aurascan/internal/analytics"
	"github.com/aurascan/aurascan/internal/models"
	"github.com/aurascan/aurascan/internal/nav"
)

// cmdContext is cancelled on SIGINT/SIGTERM so an in-flight analysis resolves
// as cancelled instead of an error.
func cmdContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

// imageDataURL reads an image file into the base64 data URL the gateway
// expects from a camera or file input.
func imageDataURL(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	mime := "image/jpeg"
	if strings.EqualFold(filepath.Ext(path), ".png") {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image-file>",
		Short: "Analyze a product label photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			img, err := imageDataURL(args[0])
			if err != nil {
				return err
			}
			analysis, err := a.ScanImage(cmdContext(), img)
			if err != nil {
				return err
			}
			if analysis == nil {
				fmt.Println("Scan cancelled.")
				return nil
			}
			state := a.Store.State()
			printAnalysis(analysis, state.IsFavorite(analysis.ID))
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <product name>",
		Short: "Analyze a product by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			analysis, err := a.SearchByName(cmdContext(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if analysis == nil {
				fmt.Println("Search cancelled.")
				return nil
			}
			printAnalysis(analysis, false)
			return nil
		},
	}
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <image-file>...",
		Short: "Analyze several label photos in sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx := cmdContext()

			images := make([]string, 0, len(args))
			for _, path := range args {
				img, err := imageDataURL(path)
				if err != nil {
					return err
				}
				images = append(images, img)
			}

			profile := a.Store.State().User
			results := a.Gateway.BatchAnalyze(ctx, images, &profile, func(completed, total int) {
				fmt.Printf("\rAnalyzing %d/%d...", completed, total)
			})
			fmt.Println()

			for _, analysis := range results {
				if err := a.Store.RecordAnalysis(ctx, analysis); err != nil {
					return err
				}
			}

			report := analytics.BuildBatchReport(results, time.Now())
			fmt.Printf("Analyzed %d of %d products.\n", len(results), len(images))
			if len(report.CommonIngredients) > 0 {
				fmt.Println("Common ingredients:", strings.Join(report.CommonIngredients, ", "))
			}
			if report.AverageScores.Scans > 0 {
				fmt.Printf("Average scores: overall %.0f, health %.0f, sustainability %.0f\n",
					report.AverageScores.Overall, report.AverageScores.Health,
					report.AverageScores.Sustainability)
			}
			return nil
		},
	}
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id-a> <id-b>",
		Short: "Compare two analyses from history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := a.CompareByID(cmdContext(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Winner: %s\n%s\n", result.Winner, result.Summary)
			for _, d := range result.Dimensions {
				fmt.Printf("  %-14s %s\n", d.Dimension+":", d.Verdict)
			}
			fmt.Println("Recommendation:", result.Recommendation)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List scanned products, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			state := a.Store.State()
			if len(state.History) == 0 {
				fmt.Println("No scans yet.")
				return nil
			}
			for _, h := range state.History {
				marker := " "
				if state.IsFavorite(h.ID) {
					marker = "*"
				}
				fmt.Printf("%s %s  %-28s %-16s score %.0f\n",
					marker, h.ID[:8], h.Name, h.Brand, h.ProductScore.Overall)
			}
			return nil
		},
	}
}

func newFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle an analysis as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmdContext()
			state := a.Store.State()
			analysis := state.FindAnalysis(matchID(state, args[0]))
			if analysis == nil {
				return fmt.Errorf("no history entry matches %q", args[0])
			}
			if err := a.Store.ToggleFavorite(ctx, analysis.ID); err != nil {
				return err
			}
			updated := a.Store.State()
			if updated.IsFavorite(analysis.ID) {
				fmt.Printf("Added %s to favorites.\n", analysis.Name)
			} else {
				fmt.Printf("Removed %s from favorites.\n", analysis.Name)
			}
			return nil
		},
	}
}

// matchID resolves a possibly-abbreviated id against history.
func matchID(state models.AppState, prefix string) string {
	for _, h := range state.History {
		if strings.HasPrefix(h.ID, prefix) {
			return h.ID
		}
	}
	return prefix
}

func newOnboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "onboard",
		Short: "Mark first-run onboarding as complete",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.CompleteOnboarding(cmdContext()); err != nil {
				return err
			}
			fmt.Println("Onboarding complete. Current screen:", a.Router.Current())
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	var allergens, dietary []string
	var expert bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			state := a.Store.State()
			if !cmd.Flags().Changed("allergens") && !cmd.Flags().Changed("dietary") && !cmd.Flags().Changed("expert") {
				fmt.Println("Allergens:   ", strings.Join(state.User.Allergens, ", "))
				fmt.Println("Dietary:     ", strings.Join(state.User.DietaryRestrictions, ", "))
				fmt.Println("Expert mode: ", state.User.ExpertMode)
				return nil
			}

			profile := state.User
			if cmd.Flags().Changed("allergens") {
				profile.Allergens = allergens
			}
			if cmd.Flags().Changed("dietary") {
				profile.DietaryRestrictions = dietary
			}
			if cmd.Flags().Changed("expert") {
				profile.ExpertMode = expert
			}
			if err := a.Store.UpdateProfile(cmdContext(), profile); err != nil {
				return err
			}
			fmt.Println("Profile updated.")
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&allergens, "allergens", nil, "comma-separated allergen list")
	cmd.Flags().StringSliceVar(&dietary, "dietary", nil, "comma-separated dietary restrictions")
	cmd.Flags().BoolVar(&expert, "expert", false, "enable expert mode")
	return cmd
}

func newAnalyticsCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show scan trends and health insights",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			state := a.Store.State()
			a.Router.Navigate(nav.ScreenAnalytics)

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := analytics.ExportCSV(f, state.History); err != nil {
					return err
				}
				fmt.Println("History exported to", csvPath)
				return nil
			}

			trend := analytics.Trends(state.History)
			fmt.Println("Top categories:")
			for _, c := range trend.Categories {
				fmt.Printf("  %-20s %d\n", c.Name, c.Count)
			}
			fmt.Println("Top brands:")
			for _, b := range trend.Brands {
				fmt.Printf("  %-20s %d\n", b.Name, b.Count)
			}
			for _, ins := range analytics.Insights(state.History, state.User) {
				fmt.Printf("[%s] %s: %s\n", ins.Type, ins.Title, ins.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "export history as CSV to this file instead")
	return cmd
}

func printAnalysis(a *models.ProductAnalysis, favorite bool) {
	fmt.Printf("%s by %s (%s)\n", a.Name, a.Brand, a.Category)
	fmt.Printf("Overall %.0f | Health %.0f | Quality %.0f | Sustainability %.0f | Value %.0f\n",
		a.ProductScore.Overall, a.ProductScore.Health, a.ProductScore.Quality,
		a.ProductScore.Sustainability, a.ProductScore.Value)
	fmt.Println(a.Snapshot.NutritionalSummary)
	if hits := a.AllergenHits(); len(hits) > 0 {
		names := make([]string, 0, len(hits))
		for _, h := range hits {
			names = append(names, h.Name)
		}
		fmt.Println("Allergens:", strings.Join(names, ", "))
	}
	for _, c := range a.CautionIndicators {
		fmt.Printf("! [%s] %s\n", c.Severity, c.Message)
	}
	fmt.Printf("Verdict: %s (confidence %.0f)\n", a.SmartVerdict.Recommendation, a.SmartVerdict.ConfidenceScore)
	if favorite {
		fmt.Println("(favorited)")
	}
}
