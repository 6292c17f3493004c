package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"menora/internal"
	"menora/internal/app"
	"menora/internal/config"
	"menora/internal/logging"
	"menora/internal/search"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	a, err := app.New(cfg, logging.New(cfg))
	must(err)
	defer a.Close()

	ctx := context.Background()
	cmd := os.Args[1]
	switch cmd {
	case "catalog:load":
		cat, err := a.LoadCatalog(ctx)
		must(err)
		a.Catalog.Wait()
		r := cat.Report()
		fmt.Printf("catalog loaded run=%s base=%d variants=%d skipped=%d images=%d duration=%s\n",
			r.RunID, r.BaseProducts, r.Variants, r.SkippedRows, cat.Stats().WithImages, r.LoadDuration)
		if len(r.SheetsFailed) > 0 {
			fmt.Printf("failed sheets: %s\n", strings.Join(r.SheetsFailed, ", "))
		}
		for _, w := range r.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
	case "catalog:status":
		_, err := a.Catalog.Restore(ctx)
		must(err)
		st, err := a.Search.Statistics()
		must(err)
		printJSON(map[string]any{"status": a.Catalog.Status(), "statistics": st})
	case "search":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		q := fs.String("q", "", "search text")
		lang := fs.String("lang", "", "hebrew|english")
		limit := fs.Int("limit", cfg.ResultsPerPage, "page size")
		offset := fs.Int("offset", 0, "page offset")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*q) == "" {
			must(fmt.Errorf("--q is required"))
		}
		_, err := a.LoadCatalog(ctx)
		must(err)
		res, err := a.Search.Text(ctx, search.Query{Text: *q, Language: internal.ParseLanguage(*lang), Limit: *limit, Offset: *offset})
		must(err)
		printResult(res)
	case "filter":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		q := fs.String("q", "", "optional search text")
		typ := fs.String("type", "", "tray type name")
		height := fs.String("height", "", "height in mm")
		width := fs.String("width", "", "width in mm")
		thickness := fs.String("thickness", "", "thickness in mm")
		galv := fs.String("galvanization", "", "galvanization name")
		lang := fs.String("lang", "", "hebrew|english")
		limit := fs.Int("limit", cfg.ResultsPerPage, "page size")
		_ = fs.Parse(os.Args[2:])
		_, err := a.LoadCatalog(ctx)
		must(err)
		query := search.Query{
			Text: *q,
			Filters: search.Criteria{
				"type": *typ, "height": *height, "width": *width,
				"thickness": *thickness, "galvanization": *galv,
			},
			Language: internal.ParseLanguage(*lang),
			Limit:    *limit,
		}
		var res search.Result
		if strings.TrimSpace(*q) == "" {
			res, err = a.Search.Filter(ctx, query)
		} else {
			res, err = a.Search.Combined(ctx, query)
		}
		must(err)
		printResult(res)
	case "suggest":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		q := fs.String("q", "", "partial query")
		lang := fs.String("lang", "", "hebrew|english")
		limit := fs.Int("limit", 5, "max suggestions")
		_ = fs.Parse(os.Args[2:])
		_, err := a.LoadCatalog(ctx)
		must(err)
		got, err := a.Search.Suggest(ctx, *q, internal.ParseLanguage(*lang), *limit)
		must(err)
		for _, s := range got {
			fmt.Println(s)
		}
	case "filters":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		lang := fs.String("lang", "", "hebrew|english")
		_ = fs.Parse(os.Args[2:])
		_, err := a.LoadCatalog(ctx)
		must(err)
		f, err := a.Search.AvailableFilters(internal.ParseLanguage(*lang))
		must(err)
		printJSON(f)
	case "list:create":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		user := fs.String("user", "", "user code")
		name := fs.String("name", "", "list name")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("--user", *user))
		l, err := a.Quotes.Create(ctx, *user, *name)
		must(err)
		fmt.Printf("list created id=%s\n", l.ID)
	case "list:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		listID := fs.String("list", "", "list id")
		menoraID := fs.String("id", "", "menora id")
		qty := fs.Int("qty", 1, "quantity")
		notes := fs.String("notes", "", "item notes")
		_ = fs.Parse(os.Args[2:])
		if *listID == "" || *menoraID == "" {
			must(fmt.Errorf("--list and --id are required"))
		}
		_, err := a.LoadCatalog(ctx)
		must(err)
		l, it, err := a.Quotes.AddItem(ctx, *listID, *menoraID, *qty, *notes)
		must(err)
		tot := a.Quotes.Calculator().Totals(l, true)
		fmt.Printf("added %s x%d at %s; list total %s\n", it.MenoraID, it.Quantity,
			a.Quotes.Calculator().Format(it.UnitPrice, it.Currency), a.Quotes.Calculator().Format(tot.Total, tot.Currency))
	case "list:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		listID := fs.String("list", "", "list id")
		format := fs.String("format", "xlsx", "xlsx|html")
		out := fs.String("out", "", "html output path")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("--list", *listID))
		switch *format {
		case "xlsx":
			path, err := a.Quotes.ExportXLSX(ctx, *listID)
			must(err)
			fmt.Printf("exported list to %s\n", path)
		case "html":
			path := *out
			if path == "" {
				path = filepath.Join(cfg.OutputDir, fmt.Sprintf("list_%s.html", *listID))
			}
			must(os.MkdirAll(filepath.Dir(path), 0o755))
			f, err := os.Create(path)
			must(err)
			err = a.Quotes.RenderHTML(ctx, *listID, f)
			_ = f.Close()
			must(err)
			fmt.Printf("exported list to %s\n", path)
		default:
			must(fmt.Errorf("unknown --format %q", *format))
		}
	case "serve":
		sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()
		must(a.Serve(sigCtx))
	default:
		usage()
		os.Exit(1)
	}
}

func printResult(res search.Result) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range res.Results {
		price := "-"
		if p.Pricing != nil {
			price = p.Pricing.Price.StringFixed(2) + " " + p.Pricing.Currency
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.MenoraID, p.Descriptions.Hebrew, p.Descriptions.English, price)
	}
	_ = tw.Flush()
	fmt.Printf("total=%d offset=%d limit=%d more=%t (%.3fs)\n",
		res.Pagination.Total, res.Pagination.Offset, res.Pagination.Limit, res.Pagination.HasMore, res.Info.ExecutionTime)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	must(enc.Encode(v))
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  menora catalog:load")
	fmt.Println("  menora catalog:status")
	fmt.Println("  menora search --q <text> [--lang hebrew|english] [--limit 20] [--offset 0]")
	fmt.Println("  menora filter [--q <text>] [--type ...] [--height ...] [--width ...] [--thickness ...] [--galvanization ...]")
	fmt.Println("  menora suggest --q <partial> [--lang hebrew|english] [--limit 5]")
	fmt.Println("  menora filters [--lang hebrew|english]")
	fmt.Println("  menora list:create --user <code> [--name <name>]")
	fmt.Println("  menora list:add --list <id> --id <menora id> [--qty 1] [--notes ...]")
	fmt.Println("  menora list:export --list <id> [--format xlsx|html] [--out path]")
	fmt.Println("  menora serve")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
