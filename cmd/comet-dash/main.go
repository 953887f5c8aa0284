package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kelsos/comet-dash/internal/config"
	"github.com/kelsos/comet-dash/internal/logger"
	"github.com/kelsos/comet-dash/internal/models"
	"github.com/kelsos/comet-dash/internal/services"
	"github.com/kelsos/comet-dash/internal/storage"
	"github.com/kelsos/comet-dash/internal/tui"
	"github.com/kelsos/comet-dash/internal/tx"
	"github.com/kelsos/comet-dash/internal/utils"
)

// flags holds command line overrides; only flags the user set are applied
type flags struct {
	rpcURL       string
	chainID      int64
	pool         string
	poolsFile    string
	account      string
	dataDir      string
	logDir       string
	pollInterval time.Duration
}

func loadConfig(cmd *cobra.Command, f *flags) *config.Config {
	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()

	set := cmd.Flags().Changed
	if set("rpc-url") {
		cfg.RPCURL = f.rpcURL
	}
	if set("chain-id") {
		cfg.ChainID = f.chainID
	}
	if set("pool") {
		cfg.PoolName = f.pool
	}
	if set("pools-file") {
		cfg.PoolsFile = f.poolsFile
	}
	if set("account") {
		cfg.Account = f.account
	}
	if set("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if set("log-dir") {
		cfg.LogDir = f.logDir
	}
	if set("poll-interval") {
		cfg.PollInterval = f.pollInterval
	}
	return cfg
}

func newService(ctx context.Context, cfg *config.Config) *services.PoolService {
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration: %v", err)
	}
	service, err := services.NewPoolService(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to start: %v", err)
	}
	return service
}

func runDashboard(ctx context.Context, cfg *config.Config) {
	if _, err := logger.InitFileOnly(cfg.LogDir); err != nil {
		logger.Fatal("Failed to initialize file logger: %v", err)
	}
	defer logger.Close()

	monitor := tui.NewMonitor(newService(ctx, cfg))
	if err := monitor.Run(ctx); err != nil {
		logger.Fatal("Dashboard failed: %v", err)
	}
}

func printPosition(ctx context.Context, cfg *config.Config) {
	service := newService(ctx, cfg)
	defer service.Cleanup()

	service.Refresh(ctx)
	dash := service.Dashboard()
	base := dash.Pool.BaseToken.Symbol

	fmt.Printf("%s on chain %d for %s\n\n", dash.Pool.Name, cfg.ChainID, service.Account().Hex())

	if dash.BaseLoaded {
		fmt.Printf("%-10s supply %s %s at %s%%, borrow %s %s at %s%%\n", base,
			amount(dash.Base.YourSupply), base, amount(dash.Base.SupplyAPR),
			amount(dash.Base.YourBorrow), base, amount(dash.Base.BorrowAPR))
	}
	if dash.CollateralsLoaded {
		for _, asset := range dash.Pool.AssetConfigs {
			data := dash.Collaterals[asset.Symbol]
			fmt.Printf("%-10s supplied %s, wallet %s\n", asset.Symbol, amount(data.YourSupply), amount(data.WalletBalance))
		}
	}

	if dash.SummaryReady {
		summary := dash.Summary
		fmt.Printf("\nCollateral value     $%s\n", summary.CollateralUSD.StringFixed(2))
		fmt.Printf("Borrowed             $%s\n", summary.YourBorrowUSD.StringFixed(2))
		fmt.Printf("Available to borrow  %s %s\n", summary.AvailableToBorrow.StringFixed(4), base)
		fmt.Printf("Liquidation point    $%s\n", summary.LiquidationPointUSD.StringFixed(2))
		fmt.Printf("Liquidation limit    %.2f%% (%s)\n", summary.LiquidationPercentage, dash.Tier())
	}

	for source, err := range dash.Errors {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", source, err)
	}
	if !dash.SummaryReady {
		logger.Fatal("Position could not be loaded")
	}
}

func amount(d decimal.NullDecimal) string {
	if !d.Valid {
		return "?"
	}
	return d.Decimal.StringFixed(4)
}

func submit(ctx context.Context, cfg *config.Config, verb, symbol, value string) {
	service := newService(ctx, cfg)
	defer service.Cleanup()

	if service.ReadOnly() {
		logger.Fatal("%s is read-only: set COMET_PRIVATE_KEY to submit transactions", service.Account().Hex())
	}

	req, err := service.Request(verb, symbol, value)
	if err != nil {
		logger.Fatal("Invalid request: %v", err)
	}

	flow := service.NewFlow(services.Hooks{
		Observer: func(state tx.State, message string) {
			if message != "" {
				logger.Info("%s: %s", state, message)
				return
			}
			logger.Info("%s", state)
		},
	})

	result, err := service.Submit(ctx, flow, req)
	if err != nil {
		logger.Fatal("Submission failed: %s", tx.FormatError(err))
	}
	if result.Approved {
		logger.Info("Approval %s", result.ApproveHash.Hex())
	}
	logger.Info("%s %s %s mined in %s", req.Kind, req.Amount, req.Token.Symbol, result.Hash.Hex())
}

func listPools(cfg *config.Config) {
	registry, err := services.LoadRegistry(cfg)
	if err != nil {
		logger.Fatal("Failed to load pools: %v", err)
	}
	names := registry.Names(cfg.ChainID)
	if len(names) == 0 {
		fmt.Printf("No pools configured for chain %d\n", cfg.ChainID)
		return
	}
	for _, name := range names {
		pool, err := registry.Lookup(cfg.ChainID, name)
		if err != nil {
			continue
		}
		fmt.Printf("%-12s %s  base %s, collateral %s\n", pool.Name, pool.Proxy.Hex(), pool.BaseToken.Symbol, collateralSymbols(pool))
	}
}

func collateralSymbols(pool models.PoolConfig) string {
	symbols := make([]string, 0, len(pool.AssetConfigs))
	for _, asset := range pool.AssetConfigs {
		symbols = append(symbols, asset.Symbol)
	}
	return strings.Join(symbols, ", ")
}

func printHistory(cfg *config.Config, limit int) {
	dataDir, err := utils.ExpandPath(cfg.DataDir)
	if err != nil {
		logger.Fatal("Failed to resolve data directory: %v", err)
	}
	history, err := storage.NewHistory(dataDir)
	if err != nil {
		logger.Fatal("Failed to open history: %v", err)
	}
	records, err := history.List(limit)
	if err != nil {
		logger.Fatal("Failed to read history: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("No submissions recorded")
		return
	}
	for _, rec := range records {
		line := fmt.Sprintf("%s  %-8s %-11s %s %s", rec.Time.Local().Format("2006-01-02 15:04:05"), rec.Outcome, rec.Kind, rec.Amount, rec.Asset)
		if rec.TxHash != "" {
			line += "  " + rec.TxHash
		}
		if rec.Error != "" {
			line += "  " + rec.Error
		}
		fmt.Println(line)
	}
}

func main() {
	utils.LoadEnvironment()
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var f flags

	rootCmd := &cobra.Command{
		Use:   "comet-dash",
		Short: "A terminal dashboard for Compound III pools",
		Long:  `comet-dash shows your position in a Compound III (Comet) pool and submits supply, withdraw, borrow and repay transactions.`,
		Run: func(cmd *cobra.Command, args []string) {
			runDashboard(ctx, loadConfig(cmd, &f))
		},
	}

	positionCmd := &cobra.Command{
		Use:   "position",
		Short: "Print the current position once",
		Run: func(cmd *cobra.Command, args []string) {
			printPosition(ctx, loadConfig(cmd, &f))
		},
	}

	for _, verb := range []string{"supply", "withdraw", "borrow", "repay"} {
		rootCmd.AddCommand(&cobra.Command{
			Use:   verb + " <symbol> <amount>",
			Short: fmt.Sprintf("Submit a %s transaction", verb),
			Args:  cobra.ExactArgs(2),
			Run: func(cmd *cobra.Command, args []string) {
				submit(ctx, loadConfig(cmd, &f), verb, args[0], args[1])
			},
		})
	}

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List the pools configured for the chain",
		Run: func(cmd *cobra.Command, args []string) {
			listPools(loadConfig(cmd, &f))
		},
	}

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print recorded submissions, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			printHistory(loadConfig(cmd, &f), limit)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to print (0 for all)")

	// Add flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.rpcURL, "rpc-url", "u", "", "JSON-RPC endpoint (default: $COMET_RPC_URL or http://localhost:8545)")
	pf.Int64VarP(&f.chainID, "chain-id", "c", 1, "Chain ID the pool lives on")
	pf.StringVarP(&f.pool, "pool", "p", "", "Pool name, e.g. cUSDCv3")
	pf.StringVarP(&f.poolsFile, "pools-file", "", "", "YAML file replacing the built-in pools")
	pf.StringVarP(&f.account, "account", "a", "", "Account to watch when no private key is set")
	pf.StringVarP(&f.dataDir, "data-dir", "", "", "Directory for the submission history")
	pf.StringVarP(&f.logDir, "log-dir", "", "", "Directory for dashboard log files")
	pf.DurationVarP(&f.pollInterval, "poll-interval", "i", 0, "How often to re-read the chain")

	// Add subcommands
	rootCmd.AddCommand(positionCmd)
	rootCmd.AddCommand(poolsCmd)
	rootCmd.AddCommand(historyCmd)

	// Execute the root command
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}
