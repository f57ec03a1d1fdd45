// Package cli provides the cobra-based partsctl command.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"partsstore/internal/catalog"
	"partsstore/internal/domain"
	applog "partsstore/internal/log"
	"partsstore/internal/pricing"
	"partsstore/internal/repos"
	"partsstore/internal/validate"
)

type app struct {
	v  *viper.Viper
	db *sqlx.DB
}

// NewRootCmd builds the partsctl command tree. Settings come from flags,
// PARTSCTL_* environment variables or the --config file, in that order.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:           "partsctl",
		Short:         "Manage and inspect the parts catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg := a.v.GetString("config"); cfg != "" {
				a.v.SetConfigFile(cfg)
				if err := a.v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config %s: %w", cfg, err)
				}
			}
			return applog.Init(a.v.GetString("log-level"), "development", "")
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().String("db", "partsstore.db", "sqlite database path")
	root.PersistentFlags().String("config", "", "config file")
	root.PersistentFlags().String("log-level", "warn", "log level")
	for _, name := range []string{"db", "config", "log-level"} {
		_ = a.v.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}
	a.v.SetEnvPrefix("PARTSCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.importCmd(), a.listCmd(), a.facetsCmd(), priceCmd())
	return root
}

// Execute runs partsctl against os.Args.
func Execute() int {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (a *app) open() (*sqlx.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	dsn := a.v.GetString("db")
	db, err := repos.OpenDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	a.db = db
	return db, nil
}

func (a *app) importCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Normalise a JSON product file and upsert it into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file required")
			}
			b, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var raw []catalog.RawProduct
			if err := json.Unmarshal(b, &raw); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			products, rejected := catalog.NormalizeAll(raw)
			for _, r := range rejected {
				applog.L().Warn("import: record rejected", zap.Int("index", r.Index), zap.String("id", r.ID), zap.String("reason", r.Reason))
			}

			db, err := a.open()
			if err != nil {
				return err
			}
			if err := repos.NewProductRepo(db).Upsert(cmd.Context(), products); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "accepted %d, rejected %d\n", len(products), len(rejected))
			for _, r := range rejected {
				fmt.Fprintf(out, "  rejected %s\n", r)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON array of products")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var (
		search, sort, minPrice, maxPrice string
		brands, categories, conditions   []string
		devices, partTypes               []string
		inStock                          bool
		page, perPage                    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products with the storefront filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			set := func(k, v string) {
				if v != "" {
					q.Set(k, v)
				}
			}
			set("search", search)
			q["brands"] = brands
			q["categories"] = categories
			q["conditions"] = conditions
			q["devices"] = devices
			q["partTypes"] = partTypes
			set("minPrice", minPrice)
			set("maxPrice", maxPrice)
			set("sort", sort)
			if inStock {
				q.Set("inStock", "true")
			}
			filters, err := catalog.ParseQuery(q)
			if err != nil {
				return err
			}

			db, err := a.open()
			if err != nil {
				return err
			}
			all, err := repos.NewProductRepo(db).ListActive(cmd.Context())
			if err != nil {
				return err
			}
			matched, err := catalog.FilterAndSort(all, filters)
			if err != nil {
				return err
			}
			items, info := catalog.Paginate(matched, page, perPage)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE")
			for _, p := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.EffectivePrice().StringFixed(2))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d items)\n", info.CurrentPage, info.TotalPages, info.TotalItems)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&search, "search", "", "search name, description and tags")
	f.StringArrayVar(&brands, "brand", nil, "brand (repeatable)")
	f.StringArrayVar(&categories, "category", nil, "category (repeatable)")
	f.StringArrayVar(&conditions, "condition", nil, "condition (repeatable)")
	f.StringArrayVar(&devices, "device", nil, "device name fragment (repeatable)")
	f.StringArrayVar(&partTypes, "part-type", nil, "part type (repeatable)")
	f.StringVar(&minPrice, "min", "", "minimum effective price")
	f.StringVar(&maxPrice, "max", "", "maximum effective price")
	f.BoolVar(&inStock, "in-stock", false, "only products in stock")
	f.StringVar(&sort, "sort", string(catalog.SortNewest), "newest|price-asc|price-desc|name|most-popular")
	f.IntVar(&page, "page", 1, "page number")
	f.IntVar(&perPage, "per-page", catalog.DefaultPerPage, "products per page")
	return cmd
}

func (a *app) facetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "Print facet counts for the whole catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			all, err := repos.NewProductRepo(db).ListActive(cmd.Context())
			if err != nil {
				return err
			}
			fc := catalog.CalculateFacetCounts(all)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total: %d (in stock %d, out of stock %d)\n",
				fc.Total, fc.Availability.InStock, fc.Availability.OutOfStock)
			printFacet(out, "brands", fc.Brands)
			printFacet(out, "categories", fc.Categories)
			printFacet(out, "conditions", fc.Conditions)
			printFacet(out, "devices", fc.Devices)
			printFacet(out, "part types", fc.PartTypes)
			printFacet(out, "price", fc.PriceBuckets)
			return nil
		},
	}
}

func printFacet(out io.Writer, title string, values []catalog.FacetValue) {
	fmt.Fprintf(out, "%s:\n", title)
	for _, v := range values {
		fmt.Fprintf(out, "  %-16s %d\n", v.Name, v.Count)
	}
}

func priceCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "price <amount>",
		Short: "Show the display price of an amount for a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return domain.NewInvalidArgument("amount", "not a number", args[0])
			}
			r, ok := validate.Role(role)
			if !ok {
				return domain.NewInvalidArgument("role", "must be retail, wholesale, dealer or admin", role)
			}
			display, err := pricing.DisplayPrice(amount, r)
			if err != nil {
				return err
			}
			badge, err := pricing.BadgeFor(r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", display.StringFixed(2), badge.Label, badge.Color)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(domain.RoleRetail), "retail|wholesale|dealer|admin")
	return cmd
}
