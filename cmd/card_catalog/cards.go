package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/card-catalog/internal/ingest"
	"github.com/gcbaptista/card-catalog/model"
	"github.com/gcbaptista/card-catalog/services"
)

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()
	dimText  = color.New(color.Faint).SprintFunc()
)

// cardColors maps catalog color names to terminal colors.
var cardColors = map[string]*color.Color{
	"red":       color.New(color.FgRed),
	"green":     color.New(color.FgGreen),
	"blue":      color.New(color.FgBlue),
	"orange":    color.New(color.FgHiRed),
	"purple":    color.New(color.FgMagenta),
	"yellow":    color.New(color.FgYellow),
	"colorless": color.New(color.FgWhite),
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newImportCmd(a *app) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import cards from a JSON file, stdin or a URL",
		Long: `Import upserts cards from a JSON array (or an object holding the array
under "data"). Reads the file argument, stdin when the argument is "-" or
missing, or the card feed at --url.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if url != "" && len(args) > 0 {
				return fmt.Errorf("give either a file or --url, not both")
			}

			ctx, cancel := signalContext()
			defer cancel()

			payload, err := a.readCardPayload(ctx, cmd.InOrStdin(), args, url)
			if err != nil {
				return err
			}

			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer a.closeEngine(eng)

			report, err := eng.ImportFeed(ctx, payload, nil)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			printImportReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "fetch the card feed from this URL")
	return cmd
}

func (a *app) readCardPayload(ctx context.Context, stdin io.Reader, args []string, url string) ([]byte, error) {
	if url != "" {
		settings := a.settings.Sync
		settings.CardsURL = url
		return ingest.NewHTTPFeed(settings, a.logger.Named("feed")).Cards(ctx)
	}
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

func printImportReport(w io.Writer, report services.ImportReport) {
	fmt.Fprintf(w, "%s %d of %d cards\n", okText("Imported"), report.Upserted, report.Total)
	for _, f := range report.Failed {
		fmt.Fprintf(w, "  %s record %d %s: %s\n", warnText("failed"), f.Position, f.CardNo, f.Error)
	}
}

func newSyncCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the catalog from the remote card feed",
		Long:  "Sync compares the local catalog version with the remote one and imports the feed when they differ.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer a.closeEngine(eng)

			report, err := eng.Sync(ctx, force, nil)
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}

			out := cmd.OutOrStdout()
			if report.Import == nil {
				fmt.Fprintf(out, "Catalog is up to date (version %s)\n", report.LocalVersion)
				return nil
			}
			printImportReport(out, *report.Import)
			if report.Updated {
				fmt.Fprintf(out, "Catalog version %s -> %s\n", dimText(report.LocalVersion), okText(report.RemoteVersion))
			} else {
				fmt.Fprintf(out, "%s version %s not recorded, the next sync retries\n", warnText("Partial import:"), report.RemoteVersion)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "import even when the remote version is unchanged")
	return cmd
}

// searchFlags holds the search command's flags.
type searchFlags struct {
	page      int
	pageSize  int
	sortKey   string
	desc      bool
	mode      string
	asJSON    bool
	series    []string
	category  []string
	rarity    []string
	region    []string
	tag       []string
	color     []string
	keyword   []string
	power     string
	energy    string
	retEnergy string
}

func newSearchCmd(a *app) *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog",
		Long: `Search runs one faceted search. Facet flags take comma separated values
combined with --mode (anyOf, allOf, noneOf, exactSetOf). Range flags take
LOW:HIGH where either side may be left empty.

Examples:
  card_catalog search jinx
  card_catalog search --color red,green --mode allOf --sort energy
  card_catalog search --power 3: --rarity 史诗 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(args)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer a.closeEngine(eng)

			result, err := eng.Search(ctx, req)
			if err != nil {
				return err
			}

			if f.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return renderCards(cmd.OutOrStdout(), result)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.page, "page", 1, "page number")
	flags.IntVar(&f.pageSize, "page-size", 0, "cards per page (0 uses the configured default)")
	flags.StringVar(&f.sortKey, "sort", "", "sort key (cardNo, name, series, rarity, energy, power, returnEnergy)")
	flags.BoolVar(&f.desc, "desc", false, "sort descending")
	flags.StringVar(&f.mode, "mode", "anyOf", "selection mode for every facet flag")
	flags.BoolVar(&f.asJSON, "json", false, "print the raw search result as JSON")
	flags.StringSliceVar(&f.series, "series", nil, "series names")
	flags.StringSliceVar(&f.category, "category", nil, "card categories")
	flags.StringSliceVar(&f.rarity, "rarity", nil, "rarities")
	flags.StringSliceVar(&f.region, "region", nil, "regions")
	flags.StringSliceVar(&f.tag, "tag", nil, "tags")
	flags.StringSliceVar(&f.color, "color", nil, "colors")
	flags.StringSliceVar(&f.keyword, "keyword", nil, "keywords")
	flags.StringVar(&f.power, "power", "", "might range LOW:HIGH")
	flags.StringVar(&f.energy, "energy", "", "energy range LOW:HIGH")
	flags.StringVar(&f.retEnergy, "return-energy", "", "power range LOW:HIGH")
	return cmd
}

func (f *searchFlags) request(args []string) (services.SearchRequest, error) {
	req := services.SearchRequest{
		Page:     f.page,
		PageSize: f.pageSize,
		SortKey:  f.sortKey,
	}
	if len(args) == 1 {
		req.Query = args[0]
	}
	if f.desc {
		ascending := false
		req.Ascending = &ascending
	}

	req.Series = f.selection(f.series)
	req.Category = f.selection(f.category)
	req.Rarity = f.selection(f.rarity)
	req.Region = f.selection(f.region)
	req.Tag = f.selection(f.tag)
	req.Color = f.selection(f.color)
	req.Keyword = f.selection(f.keyword)

	var err error
	if req.Power, err = parseRange("power", f.power); err != nil {
		return req, err
	}
	if req.Energy, err = parseRange("energy", f.energy); err != nil {
		return req, err
	}
	if req.ReturnEnergy, err = parseRange("return-energy", f.retEnergy); err != nil {
		return req, err
	}
	return req, nil
}

func (f *searchFlags) selection(values []string) *services.FacetSelection {
	if len(values) == 0 {
		return nil
	}
	return &services.FacetSelection{Values: values, Mode: f.mode}
}

// parseRange reads "LOW:HIGH", "LOW:", ":HIGH" or a single value meaning both.
func parseRange(flag, raw string) (*services.RangeBound, error) {
	if raw == "" {
		return nil, nil
	}

	lowRaw, highRaw, found := strings.Cut(raw, ":")
	if !found {
		highRaw = lowRaw
	}

	bound := &services.RangeBound{}
	for _, side := range []struct {
		raw string
		dst **int
	}{{lowRaw, &bound.Low}, {highRaw, &bound.High}} {
		if strings.TrimSpace(side.raw) == "" {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(side.raw))
		if err != nil {
			return nil, fmt.Errorf("--%s: '%s' is not a number", flag, side.raw)
		}
		*side.dst = &v
	}
	return bound, nil
}

func renderCards(w io.Writer, result services.SearchResult) error {
	table := tablewriter.NewTable(w)
	table.Header("Card No", "Name", "Category", "Rarity", "Colors", "Energy", "Might", "Power")
	for _, c := range result.Rows {
		if err := table.Append([]string{
			c.CardNo,
			displayName(c),
			c.CategoryName,
			c.RarityName,
			colorList(c.Colors),
			strconv.Itoa(c.Energy),
			strconv.Itoa(c.Power),
			strconv.Itoa(c.ReturnEnergy),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	pages := 1
	if result.PageSize > 0 {
		pages = max(1, (result.Total+result.PageSize-1)/result.PageSize)
	}
	fmt.Fprintf(w, "%d cards, page %d of %d %s\n", result.Total, result.Page, pages, dimText(fmt.Sprintf("(%d ms)", result.Took)))
	return nil
}

func displayName(c model.Card) string {
	if c.NameEn != "" && c.NameEn != c.Name {
		return c.Name + " " + dimText(c.NameEn)
	}
	return c.Name
}

func colorList(colors []string) string {
	out := make([]string, len(colors))
	for i, name := range colors {
		if c, ok := cardColors[name]; ok {
			out[i] = c.Sprint(name)
		} else {
			out[i] = name
		}
	}
	return strings.Join(out, " ")
}

func newFacetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the values every facet can be filtered on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer a.closeEngine(eng)

			facets, err := eng.ListFacets(ctx)
			if err != nil {
				return err
			}
			ranges, err := eng.ListRanges(ctx)
			if err != nil {
				return err
			}

			table := tablewriter.NewTable(cmd.OutOrStdout())
			table.Header("Facet", "Values")
			rows := [][]string{
				{"series", strings.Join(facets.Series, ", ")},
				{"type", strings.Join(facets.Type, ", ")},
				{"rarity", strings.Join(facets.Rarity, ", ")},
				{"color", colorList(facets.Color)},
				{"region", strings.Join(facets.Region, ", ")},
				{"tag", strings.Join(facets.Tag, ", ")},
				{"keyword", strings.Join(facets.Keyword, ", ")},
				{"might", formatBounds(ranges.MightLimit)},
				{"energy", formatBounds(ranges.EnergyLimit)},
				{"power", formatBounds(ranges.PowerLimit)},
			}
			for _, row := range rows {
				if err := table.Append(row); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

func formatBounds(b [2]int) string {
	return fmt.Sprintf("%d to %d", b[0], b[1])
}
