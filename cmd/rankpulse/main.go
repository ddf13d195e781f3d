package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rankpulse/internal/config"
	"rankpulse/internal/dataprocessing"
	apierrors "rankpulse/internal/errors"
	"rankpulse/internal/infrastructure"
	"rankpulse/internal/services"
	"rankpulse/pkg/contracts/domain"
)

const usage = `usage: rankpulse <command> [flags]

Commands:
  files          list spreadsheets in the data directory
  snapshot       keyword table of one spreadsheet
  opportunities  quick wins and CTR outliers of one spreadsheet
  history        trend points across all dated spreadsheets
  compare        compare two snapshot dates

Run "rankpulse <command> -h" for the flags of a command.
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "rankpulse: %v\n", err)
		}
		os.Exit(1)
	}
}

// run executes one command and writes its result to stdout. Logs go to
// stderr at the configured level.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	cmd, args := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML config file (defaults to config.yaml lookup)")
	dataDir := fs.String("data", "", "directory of Search Console exports (overrides config)")
	reportsDir := fs.String("reports", "", "directory for -save output (overrides config)")
	format := fs.String("format", "json", "output format: json or csv")
	save := fs.Bool("save", false, "write the CSV into the reports directory instead of stdout")

	var handler func(context.Context, *services.DashboardService) error

	switch cmd {
	case "files":
		handler = func(ctx context.Context, svc *services.DashboardService) error {
			entries, err := svc.ListFiles(ctx)
			if err != nil {
				return err
			}
			return writeJSON(stdout, entries)
		}

	case "snapshot":
		sf := addSnapshotFlags(fs)
		handler = func(ctx context.Context, svc *services.DashboardService) error {
			q, err := sf.query()
			if err != nil {
				return err
			}
			switch {
			case *save:
				return saveReport(stdout, func() (string, error) { return svc.SaveSnapshotReport(ctx, q) })
			case *format == "csv":
				_, err := svc.ExportSnapshot(ctx, q, stdout)
				return err
			}
			view, err := svc.Snapshot(ctx, q)
			if err != nil {
				return err
			}
			return writeJSON(stdout, view)
		}

	case "opportunities":
		file := fs.String("file", "", "spreadsheet name in the data directory (default: latest)")
		handler = func(ctx context.Context, svc *services.DashboardService) error {
			view, err := svc.Opportunities(ctx, *file)
			if err != nil {
				return err
			}
			return writeJSON(stdout, view)
		}

	case "history":
		handler = func(ctx context.Context, svc *services.DashboardService) error {
			if *format == "csv" {
				_, err := svc.ExportTrends(ctx, stdout)
				return err
			}
			view, err := svc.History(ctx)
			if err != nil {
				return err
			}
			return writeJSON(stdout, view)
		}

	case "compare":
		current := fs.String("current", "", "current date YYYY-MM-DD (default: latest)")
		baseline := fs.String("baseline", "", "baseline date YYYY-MM-DD (default: second latest)")
		limit := fs.Int("limit", 0, "biggest movers per direction (default from config)")
		handler = func(ctx context.Context, svc *services.DashboardService) error {
			q := services.ComparisonQuery{Limit: *limit}
			var err error
			if q.Current, err = parseDateFlag("current", *current); err != nil {
				return err
			}
			if q.Baseline, err = parseDateFlag("baseline", *baseline); err != nil {
				return err
			}
			switch {
			case *save:
				return saveReport(stdout, func() (string, error) { return svc.SaveComparisonReport(ctx, q) })
			case *format == "csv":
				_, err := svc.ExportComparison(ctx, q, stdout)
				return err
			}
			view, err := svc.Compare(ctx, q)
			if err != nil {
				return err
			}
			return writeJSON(stdout, view)
		}

	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil

	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "json" && *format != "csv" {
		return fmt.Errorf("unknown format %q (want json or csv)", *format)
	}

	cfg, err := loadConfig(*configPath, *dataDir, *reportsDir)
	if err != nil {
		return err
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	start := time.Now()
	svc := services.NewDashboardService(cfg, logger)
	if err := handler(ctx, svc); err != nil {
		return err
	}

	logger.DebugContext(ctx, "command completed",
		slog.String("command", cmd),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func loadConfig(path, dataDir, reportsDir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}

	if dataDir != "" {
		cfg.Paths.DataDir = dataDir
	}
	if reportsDir != "" {
		cfg.Paths.ReportsDir = reportsDir
	}
	return cfg, nil
}

// snapshotFlags are the view parameters of the snapshot command
type snapshotFlags struct {
	file      *string
	positions *string
	search    *string
	minCTR    *float64
	sort      *string
	order     *string
	limit     *int
}

func addSnapshotFlags(fs *flag.FlagSet) *snapshotFlags {
	return &snapshotFlags{
		file:      fs.String("file", "", "spreadsheet name in the data directory (default: latest)"),
		positions: fs.String("positions", "", "comma separated position ranges: 1-3,4-6,7-10"),
		search:    fs.String("q", "", "case-insensitive keyword search"),
		minCTR:    fs.Float64("min-ctr", 0, "minimum CTR in percent"),
		sort:      fs.String("sort", "impressions", "sort field: impressions, clicks, position, ctr or keyword"),
		order:     fs.String("order", "", "asc or desc (default depends on the sort field)"),
		limit:     fs.Int("limit", 0, "maximum keyword rows (default from config)"),
	}
}

func (f *snapshotFlags) query() (services.SnapshotQuery, error) {
	filter := domain.ViewFilter{
		Search: *f.search,
		MinCTR: *f.minCTR,
		Limit:  *f.limit,
	}

	if *f.minCTR < 0 || *f.minCTR > 100 {
		return services.SnapshotQuery{}, fmt.Errorf("-min-ctr must be between 0 and 100")
	}

	if *f.positions != "" {
		for _, part := range strings.Split(*f.positions, ",") {
			b, err := dataprocessing.ParsePositionBucket(part)
			if err != nil {
				return services.SnapshotQuery{}, err
			}
			filter.Buckets = append(filter.Buckets, b)
		}
	}

	sortBy, err := dataprocessing.ParseSortField(*f.sort)
	if err != nil {
		return services.SnapshotQuery{}, err
	}
	filter.SortBy = sortBy

	switch strings.ToLower(*f.order) {
	case "asc":
		filter.Ascending = true
	case "desc":
	case "":
		filter.Ascending = sortBy == domain.SortByPosition || sortBy == domain.SortByKeyword
	default:
		return services.SnapshotQuery{}, fmt.Errorf("unknown order %q (want asc or desc)", *f.order)
	}

	return services.SnapshotQuery{File: *f.file, Filter: filter}, nil
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("-%s must be a date in YYYY-MM-DD format: %w", name, err)
	}
	return &d, nil
}

func saveReport(stdout io.Writer, save func() (string, error)) error {
	path, err := save()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, path)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
