package cmd

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relaymaps/relaygeo/cache"
	"github.com/relaymaps/relaygeo/geodb"
	"github.com/relaymaps/relaygeo/resolver"
)

var locateCmd = &cobra.Command{
	Use:   "locate OUTPUT",
	Short: "Resolve relay URLs to coordinates and write them as CSV",
	Args:  cobra.ExactArgs(1),
	Run:   execLocate,
}

func init() {
	locateCmd.PersistentFlags().String("input", "", "file with one relay URL per line (default: stdin)")
	locateCmd.PersistentFlags().Int("concurrency", 128, "maximum concurrent resolutions")

	viper.BindPFlag("locate.input", locateCmd.PersistentFlags().Lookup("input"))
	viper.BindPFlag("resolver.concurrency", locateCmd.PersistentFlags().Lookup("concurrency"))

	rootCmd.AddCommand(locateCmd)
}

func execLocate(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	index := mustLoadIndex(ctx)
	pipeline := newPipeline(ctx, index)

	urls, err := readEndpoints(viper.GetString("locate.input"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read the relay list")
	}

	if len(urls) == 0 {
		log.Warn().Msg("no relay URLs provided via input file or stdin")
		return
	}

	log.Info().Int("count", len(urls)).Msg("processing relays")

	outcomes, err := pipeline.Run(ctx, urls)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run the resolution pipeline")
	}

	located, err := writeResults(args[0], outcomes)
	if err != nil {
		log.Fatal().Err(err).Str("output", args[0]).Msg("failed to write the output file")
	}

	log.Info().
		Int("located", located).
		Int("total", len(urls)).
		Str("output", args[0]).
		Msg("run finished")
}

// mustLoadIndex acquires the dataset if needed and loads it. Acquisition or
// load failure is the only fatal condition of a run.
func mustLoadIndex(ctx context.Context) *geodb.Index {
	path := viper.GetString("db.path")

	if err := geodb.EnsurePresent(ctx, path, viper.GetString("db.url")); err != nil {
		sentry.CaptureException(err)
		log.Fatal().Err(err).Str("path", path).Msg("failed to acquire the range dataset")
	}

	index, err := geodb.Load(path)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal().Err(err).Str("path", path).Msg("failed to load the range dataset")
	}

	return index
}

func newPipeline(ctx context.Context, index *geodb.Index) *resolver.Pipeline {
	var locator geodb.Locator = geodb.NewIndexLocator(index)

	locators := []geodb.Locator{locator}

	if path := viper.GetString("locators.mmdb.path"); path != "" {
		mmdb, err := geodb.NewMMDBLocator(path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open the mmdb fallback")
		}
		locators = append(locators, mmdb)
	}

	if viper.GetBool("locators.ipstack.enabled") {
		remote, err := geodb.NewIPStackLocator(viper.GetString("locators.ipstack.apikey"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start the ipstack fallback")
		}
		locators = append(locators, remote)
	}

	if len(locators) > 1 {
		locator = geodb.NewCascadeLocator(locators...)
	}

	var cp cache.Provider
	if viper.GetBool("cache.enabled") {
		lc, err := cache.NewLocalCache(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start the cache")
		}
		cp = lc
	}

	return resolver.NewPipeline(
		resolver.NewNetResolver(),
		locator,
		cp,
		viper.GetDuration("resolver.timeout"),
		viper.GetInt("resolver.concurrency"),
	)
}

// readEndpoints reads one relay URL per line from path, or from stdin when no
// path is given and stdin is not a terminal. Blank lines are ignored.
func readEndpoints(path string) ([]string, error) {
	var r io.Reader

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			return nil, nil
		}
		r = os.Stdin
	}

	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}

	return urls, scanner.Err()
}

// writeResults writes the output CSV: a fixed header, then one row per
// located endpoint in input order. Absent outcomes are omitted, not reported
// as error rows.
func writeResults(path string, outcomes []*resolver.Outcome) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"Relay URL", "Latitude", "Longitude"}); err != nil {
		return 0, err
	}

	located := 0
	for _, outcome := range outcomes {
		if outcome == nil {
			continue
		}

		if err := w.Write([]string{outcome.URL, outcome.Latitude, outcome.Longitude}); err != nil {
			return located, err
		}
		located++
	}

	w.Flush()

	return located, w.Error()
}
