package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alchemorsel/discovery/internal/application/discovery"
	"github.com/alchemorsel/discovery/internal/domain/filter"
	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
	"github.com/alchemorsel/discovery/internal/infrastructure/catalogue"
	"github.com/alchemorsel/discovery/internal/infrastructure/container"
	"github.com/alchemorsel/discovery/internal/ports/inbound"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type listOptions struct {
	profilePath   string
	timeBucket    string
	category      string
	dietaryTag    string
	difficulty    string
	calorieBucket string
	search        string
	favorites     []string
	favoritesOnly bool
	pages         int
	images        bool
	jsonOutput    bool
	noColor       bool
}

func newListCmd(root *rootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recipes matching a profile and criteria",
		Long: `List the visible page of recipes for a profile and applied criteria.

Examples:
  discovery list --profile me.yaml --time quick
  discovery list --category dessert --difficulty facile
  discovery list --favorite r03 --favorite r22 --favorites-only
  discovery list --images --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), root, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.profilePath, "profile", "", "profile file (overrides discovery.profile_path)")
	f.StringVar(&opts.timeBucket, "time", string(recipe.TimeBucketAll), "time bucket: all, ultra-quick, quick, medium, long")
	f.StringVar(&opts.category, "category", "", "category key")
	f.StringVar(&opts.dietaryTag, "diet", "", "dietary tag")
	f.StringVar(&opts.difficulty, "difficulty", "", "difficulty level")
	f.StringVar(&opts.calorieBucket, "calories", "", "calorie bucket: light, medium, high")
	f.StringVar(&opts.search, "search", "", "search term")
	f.StringSliceVar(&opts.favorites, "favorite", nil, "recipe IDs to mark as favorites")
	f.BoolVar(&opts.favoritesOnly, "favorites-only", false, "only show favorites")
	f.IntVar(&opts.pages, "pages", 1, "number of pages to reveal")
	f.BoolVar(&opts.images, "images", false, "verify and resolve recipe images")
	f.BoolVar(&opts.jsonOutput, "json", false, "output as JSON")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colors")
	return cmd
}

// criteria validates the filter flags
func (o *listOptions) criteria() (filter.Criteria, error) {
	c := filter.Criteria{
		TimeBucket:    recipe.TimeBucket(o.timeBucket),
		Category:      o.category,
		DietaryTag:    o.dietaryTag,
		Difficulty:    o.difficulty,
		CalorieBucket: recipe.CalorieBucket(o.calorieBucket),
		FavoritesOnly: o.favoritesOnly,
	}

	switch c.TimeBucket {
	case "", recipe.TimeBucketAll, recipe.TimeBucketUltraQuick, recipe.TimeBucketQuick,
		recipe.TimeBucketMedium, recipe.TimeBucketLong:
	default:
		return c, fmt.Errorf("unknown time bucket %q", o.timeBucket)
	}

	switch c.CalorieBucket {
	case recipe.CalorieBucketNone, recipe.CalorieBucketLight, recipe.CalorieBucketMedium, recipe.CalorieBucketHigh:
	default:
		return c, fmt.Errorf("unknown calorie bucket %q", o.calorieBucket)
	}

	if o.pages < 1 {
		return c, fmt.Errorf("--pages must be at least 1")
	}
	return c, nil
}

func runList(ctx context.Context, root *rootOptions, opts *listOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	criteria, err := opts.criteria()
	if err != nil {
		return err
	}

	var (
		svc       *discovery.Service
		favorites *discovery.Favorites
		profile   user.Profile
		loader    *catalogue.Loader
	)
	app := fx.New(
		container.Core(root.configPath),
		fx.NopLogger,
		fx.Populate(&svc, &favorites, &profile, &loader),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	if opts.profilePath != "" {
		if profile, err = loader.LoadProfile(opts.profilePath); err != nil {
			return err
		}
	}

	for _, id := range opts.favorites {
		if _, err := svc.Lookup(id); err != nil {
			return err
		}
		if !favorites.Contains(id) {
			favorites.Toggle(id)
		}
	}
	if opts.favoritesOnly {
		if ok, message := discovery.ValidateFavoriteSelection(favorites); !ok {
			return stderrors.New(message)
		}
	}

	svc.StartSession(ctx, profile, criteria)
	if opts.search != "" {
		svc.SetSearchInput(opts.search)
		svc.FlushSearch()
	}
	for i := 1; i < opts.pages; i++ {
		if !svc.LoadMore(ctx) {
			break
		}
	}
	if opts.images {
		if err := svc.ResolveImages(ctx); err != nil {
			return err
		}
	}

	snap := svc.Snapshot(ctx)
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	renderSnapshot(out, snap, !opts.noColor)
	return nil
}

// renderSnapshot prints the visible page as a table followed by a summary
func renderSnapshot(out io.Writer, snap inbound.Snapshot, useColors bool) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	ok := color.New(color.FgGreen)
	pending := color.New(color.FgYellow)
	if !useColors {
		for _, c := range []*color.Color{bold, dim, ok, pending} {
			c.DisableColor()
		}
	}

	table := tablewriter.NewTable(out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	rows := make([][]string, 0, len(snap.Visible))
	for _, r := range snap.Visible {
		image := pending.Sprint("pending")
		if snap.ImagesLoaded[r.ID] {
			image = ok.Sprint(r.ImageURL)
		}
		rows = append(rows, []string{
			r.ID,
			bold.Sprint(r.Name),
			strconv.Itoa(r.CookingTime) + " min",
			strings.Join(r.Categories, ", "),
			strings.Join(r.DietaryTags, ", "),
			optionalInt(r.Calories),
			orDash(r.Difficulty),
			image,
		})
	}

	table.Header([]string{"ID", "Name", "Time", "Categories", "Diet", "Kcal", "Difficulty", "Image"})
	_ = table.Bulk(rows)
	_ = table.Render()

	fmt.Fprintln(out)
	fmt.Fprintln(out, dim.Sprintf("Showing %d of %d recipes", len(snap.Visible), snap.Filtered))
	if snap.HasMore {
		fmt.Fprintln(out, dim.Sprint("More available: use --pages to reveal further pages"))
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
