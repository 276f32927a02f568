// Command echoscan scans sky-map files for echo correlations.
//
// Usage:
//
//	echoscan scan [flags] <map.fits>
//	echoscan fetch [flags] <name>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/skyloom/echoscan"
	"github.com/skyloom/echoscan/blobstore"
	s3store "github.com/skyloom/echoscan/blobstore/s3"
	"github.com/skyloom/echoscan/cache"
	"github.com/skyloom/echoscan/engine"
	"github.com/skyloom/echoscan/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "scan":
		err = runScan(ctx, os.Args[2:])
	case "fetch":
		err = runFetch(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "echoscan:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  echoscan scan [flags] <map.fits>    analyze a map file
  echoscan fetch [flags] <name>       fetch a dataset from S3

run "echoscan <command> -h" for flags`)
}

func runScan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	var (
		patchSize = fs.Int("patch", echoscan.DefaultPatchSize, "patch length in samples")
		samples   = fs.Int("samples", echoscan.DefaultSamples, "number of patch starts to draw")
		minCorr   = fs.Float64("min-corr", echoscan.DefaultMinCorrelation, "retention threshold on |r|")
		strong    = fs.Float64("strong", echoscan.DefaultStrongThreshold, "strong-match threshold on |r|")
		topK      = fs.Int("top", echoscan.DefaultTopK, "reporting subset size (0 keeps all)")
		seed      = fs.Int64("seed", echoscan.DefaultSeed, "sampling seed")
		angles    = fs.String("angles", "", "comma-separated shift angles in degrees (default 90,180,270)")
		wrap      = fs.Bool("wrap", false, "wrap patch pairings across the end of the sample sequence")
		workers   = fs.Int("workers", 0, "parallel scoring goroutines (0 = sequential)")
		monopole  = fs.Bool("monopole", false, "subtract the field mean before scoring")
		cacheDir  = fs.String("cache", "", "parse cache directory (empty disables)")
		out       = fs.String("o", "", "write the JSON report to this path")
		verbose   = fs.Bool("v", false, "debug logging")
	)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("scan: expected exactly one map file, got %d", fs.NArg())
	}
	path := fs.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	opts := []echoscan.Option{
		echoscan.WithPatchSize(*patchSize),
		echoscan.WithSamples(*samples),
		echoscan.WithMinCorrelation(*minCorr),
		echoscan.WithStrongThreshold(*strong),
		echoscan.WithTopK(*topK),
		echoscan.WithSeed(*seed),
		echoscan.WithLogLevel(level),
	}
	if *angles != "" {
		parsed, err := parseAngles(*angles)
		if err != nil {
			return err
		}
		opts = append(opts, echoscan.WithShiftAngles(parsed...))
	}
	if *wrap {
		opts = append(opts, echoscan.WithBoundaryPolicy(engine.BoundaryWrap))
	}
	if *workers > 0 {
		opts = append(opts, echoscan.WithWorkers(*workers))
	}
	if *monopole {
		opts = append(opts, echoscan.WithMonopoleRemoval())
	}
	if *cacheDir != "" {
		c, err := cache.New(*cacheDir)
		if err != nil {
			return err
		}
		opts = append(opts, echoscan.WithCache(c))
	}

	sc := echoscan.New(opts...)
	rep, err := sc.Analyze(ctx, path)
	if err != nil {
		return err
	}

	printReport(rep)

	if *out != "" {
		if err := sc.SaveReport(ctx, rep, *out); err != nil {
			return err
		}
		fmt.Printf("\nreport saved to %s\n", *out)
	}
	return nil
}

func parseAngles(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	angles := make([]float64, 0, len(parts))
	for _, p := range parts {
		a, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad angle %q: %w", p, err)
		}
		angles = append(angles, a)
	}
	return angles, nil
}

func printReport(rep *report.Report) {
	fmt.Printf("dataset:        %s\n", rep.DataFile)
	fmt.Printf("data points:    %d\n", rep.DataPoints)
	fmt.Printf("matches found:  %d (%d strong)\n", rep.MatchesFound, rep.StrongMatches)
	fmt.Printf("max |r|:        %.4f\n", rep.MaxCorrelation)
	fmt.Printf("mean r:         %.4f\n", rep.MeanCorrelation)
	if rep.Reason != "" {
		fmt.Printf("note:           %s\n", rep.Reason)
	}

	if len(rep.TopMatches) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tstart1\tstart2\tr\tseparation")
		for i, m := range rep.TopMatches {
			fmt.Fprintf(w, "%d\t%d\t%d\t%+.4f\t%.1f°\n",
				i+1, m.Start1, m.Start2, m.Correlation, m.AngularSeparation)
		}
		w.Flush()
	}

	if s := rep.Significance; s != nil {
		fmt.Println()
		if s.TStatistic != nil && s.PValue != nil {
			fmt.Printf("t = %.3f, p = %.6f (n = %d)\n", *s.TStatistic, *s.PValue, s.SampleSize)
		}
		fmt.Printf("near 90°: %d, near 180°: %d, near 270°: %d\n", s.Near90, s.Near180, s.Near270)
		fmt.Printf("verdict: %s\n", s.Verdict)
	}
}

func runFetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var (
		bucket  = fs.String("bucket", os.Getenv("ECHOSCAN_BUCKET"), "S3 bucket holding map datasets")
		prefix  = fs.String("prefix", "maps/", "key prefix inside the bucket")
		region  = fs.String("region", "", "AWS region (default from environment)")
		dest    = fs.String("o", ".", "directory to fetch into")
		verbose = fs.Bool("v", false, "debug logging")
	)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("fetch: expected exactly one dataset name, got %d", fs.NArg())
	}
	name := fs.Arg(0)
	if *bucket == "" {
		return fmt.Errorf("fetch: -bucket or ECHOSCAN_BUCKET required")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := echoscan.NewTextLogger(level)

	var cfgOpts []func(*config.LoadOptions) error
	if *region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(*region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return fmt.Errorf("fetch: load AWS config: %w", err)
	}

	store := s3store.NewStore(s3.NewFromConfig(cfg), *bucket, *prefix)
	local := blobstore.NewLocalStore(*dest)

	n, err := blobstore.Fetch(ctx, store, name, local, name, logger.Logger)
	if err != nil {
		return err
	}
	fmt.Printf("fetched %s (%d bytes)\n", name, n)
	return nil
}
