package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/nguyentranbao-ct/smart-cart/internal/app"
	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	"github.com/nguyentranbao-ct/smart-cart/internal/kafka"
	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	"github.com/nguyentranbao-ct/smart-cart/internal/server"
	"github.com/nguyentranbao-ct/smart-cart/internal/usecase"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
)

var rootCmd = &cobra.Command{
	Use:           "smart-cart",
	Short:         "Multi-source product search and cart service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the Kafka turn consumer",
	RunE:  runServe,
}

var searchFlags struct {
	sources   []string
	limit     int
	maxPrice  float64
	minRating float64
	timeout   time.Duration
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one aggregated search and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVarP(&searchFlags.sources, "sources", "s", nil, "restrict the search to these sources")
	searchCmd.Flags().IntVarP(&searchFlags.limit, "limit", "n", 0, "products per source")
	searchCmd.Flags().Float64Var(&searchFlags.maxPrice, "max-price", 0, "drop products above this price")
	searchCmd.Flags().Float64Var(&searchFlags.minRating, "min-rating", 0, "drop products rated below this")
	searchCmd.Flags().DurationVar(&searchFlags.timeout, "timeout", 30*time.Second, "overall deadline")

	rootCmd.AddCommand(serveCmd, searchCmd)
}

func runServe(*cobra.Command, []string) error {
	conf, err := config.Load()
	if err != nil {
		return err
	}
	app.Invoke(conf, fx.Invoke(
		server.StartServer,
		kafka.StartConsumeTurns,
	)).Run()
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	conf, err := config.Load()
	if err != nil {
		return err
	}

	var (
		interpreter usecase.Interpreter
		aggregator  usecase.Aggregator
	)
	a := app.Invoke(conf, fx.Populate(&interpreter, &aggregator))
	if err := a.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), searchFlags.timeout)
	defer cancel()
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := a.Stop(context.Background()); err != nil {
			log.Warnw(ctx, "Shutdown failed", "error", err)
		}
	}()

	intent := interpreter.Resolve(strings.Join(args, " "), searchFlags.sources, searchConstraints())
	result := aggregator.Aggregate(ctx, intent, searchFlags.limit)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Query   string              `json:"query"`
		Sources []string            `json:"sources"`
		Result  models.SearchResult `json:"result"`
	}{intent.ProductTerms, intent.TargetSources, result})
}

func searchConstraints() models.Constraints {
	var c models.Constraints
	if searchFlags.maxPrice > 0 {
		c.MaxPrice = &searchFlags.maxPrice
	}
	if searchFlags.minRating > 0 {
		c.MinRating = &searchFlags.minRating
	}
	return c
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
