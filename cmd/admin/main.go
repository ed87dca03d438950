package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/tendant/portfolio-content/pkg/portfolio"
	"github.com/tendant/portfolio-content/pkg/portfolio/auth"
	"github.com/tendant/portfolio-content/pkg/portfolio/config"
	"github.com/tendant/portfolio-content/pkg/portfolio/migrate"
	"github.com/tendant/portfolio-content/pkg/portfolio/seed"
)

const usage = `Portfolio Admin CLI

Maintenance commands that talk to the configured database directly.

USAGE:
  admin <command> [options]

COMMANDS:
  seed-user       Create an admin user
  seed            Apply a YAML seed file (images, skills, projects)
  upload-images   Upload every image in a directory
  migrate         Copy all content between two storage configurations
  verify          Check that project image references resolve
  stats           Print project statistics

ENVIRONMENT VARIABLES:
  DATABASE_TYPE     memory, postgres, sqlite or mongo (default: memory)
  DATABASE_URL      Connection string for postgres, sqlite or mongo
  STORAGE_TYPE      inline, memory, fs or s3 (default: inline)
  JWT_SECRET        Required by seed-user

  Configuration can be loaded from a .env file in the current directory.

EXAMPLES:
  admin seed-user --email=admin@portfolio.com --password=password123
  admin seed --file=seed/portfolio.yaml
  admin upload-images --dir=assets/projects --category=project
  admin migrate --from=mongo.yaml --to=postgres.yaml --dry-run
  admin verify --json
  admin stats
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Print(usage)
		os.Exit(0)
	}

	commands := map[string]func(context.Context, []string) error{
		"seed-user":     runSeedUser,
		"seed":          runSeed,
		"upload-images": runUploadImages,
		"migrate":       runMigrate,
		"verify":        runVerify,
		"stats":         runStats,
	}
	run, ok := commands[command]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

// loadConfig reads .env and the environment, or only the given YAML file.
func loadConfig(path string) (*config.ServerConfig, error) {
	if path != "" {
		return config.Load(config.WithYAMLFile(path))
	}
	return config.Load(config.WithDotEnv(), config.WithEnv())
}

// openService opens the configured backend and wraps it in a service.
func openService(ctx context.Context, cfg *config.ServerConfig) (portfolio.Service, *config.Backend, error) {
	backend, err := cfg.OpenBackend(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc, err := portfolio.New(
		portfolio.WithRepository(backend.Repo),
		portfolio.WithImageStore(backend.Images),
		portfolio.WithLogger(cfg.NewLogger()),
	)
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return svc, backend, nil
}

func runSeedUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed-user", flag.ExitOnError)
	email := fs.String("email", "admin@portfolio.com", "user email")
	password := fs.String("password", "", "user password (min 8 characters)")
	name := fs.String("name", "Admin", "display name")
	_ = fs.Parse(args)

	if *password == "" {
		return errors.New("--password is required")
	}
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	backend, err := cfg.OpenBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	authn, err := auth.New(backend.Repo, cfg.JWTSecret, auth.WithLogger(cfg.NewLogger()))
	if err != nil {
		return err
	}
	user, err := authn.Register(ctx, auth.SignupRequest{Email: *email, Password: *password, Name: *name})
	if errors.Is(err, portfolio.ErrEmailTaken) {
		fmt.Printf("User %s already exists\n", strings.ToLower(*email))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
	return nil
}

func runSeed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "seed/portfolio.yaml", "seed file")
	_ = fs.Parse(args)

	doc, err := seed.LoadFile(*file)
	if err != nil {
		return err
	}
	return applySeed(ctx, doc)
}

func runUploadImages(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload-images", flag.ExitOnError)
	dir := fs.String("dir", "", "directory of image files")
	category := fs.String("category", string(portfolio.ImageCategoryGeneral), "image category")
	prefix := fs.String("prefix", "", "slug prefix, for example project-")
	_ = fs.Parse(args)

	if *dir == "" {
		return errors.New("--dir is required")
	}
	entries, err := os.ReadDir(*dir)
	if err != nil {
		return err
	}

	doc := &seed.Document{}
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		doc.Images = append(doc.Images, seed.Image{
			Slug:     *prefix + portfolio.Slugify(base),
			Name:     base,
			Category: portfolio.ImageCategory(*category),
			File:     filepath.Join(*dir, entry.Name()),
		})
	}
	if len(doc.Images) == 0 {
		fmt.Println("No images found")
		return nil
	}
	return applySeed(ctx, doc)
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg":
		return true
	}
	return false
}

func applySeed(ctx context.Context, doc *seed.Document) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	svc, backend, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	result, err := seed.Apply(ctx, svc, doc, cfg.NewLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KIND\tCREATED\tUPDATED\n")
	fmt.Fprintf(w, "images\t%d\t%d\n", result.Images.Created, result.Images.Updated)
	fmt.Fprintf(w, "skills\t%d\t%d\n", result.Skills.Created, result.Skills.Updated)
	fmt.Fprintf(w, "projects\t%d\t%d\n", result.Projects.Created, result.Projects.Updated)
	return w.Flush()
}

func runMigrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	from := fs.String("from", "", "YAML config of the source storage")
	to := fs.String("to", "", "YAML config of the target storage")
	dryRun := fs.Bool("dry-run", false, "report without writing")
	useJSON := fs.Bool("json", false, "output as JSON")
	_ = fs.Parse(args)

	if *from == "" || *to == "" {
		return errors.New("--from and --to are required")
	}
	source, err := openBackendFile(ctx, *from)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	defer source.Close()
	target, err := openBackendFile(ctx, *to)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	defer target.Close()

	m := &migrate.Migrator{
		Source: migrate.Backend{Repo: source.Repo, Images: source.Images},
		Target: migrate.Backend{Repo: target.Repo, Images: target.Images},
		DryRun: *dryRun,
	}
	report, err := m.Run(ctx)
	if err != nil {
		return err
	}
	if *useJSON {
		return printJSON(report)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KIND\tCREATED\tUPDATED\tSKIPPED\n")
	for _, row := range []struct {
		name string
		c    migrate.Counts
	}{
		{"images", report.Images},
		{"skills", report.Skills},
		{"projects", report.Projects},
		{"messages", report.Messages},
		{"users", report.Users},
	} {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", row.name, row.c.Created, row.c.Updated, row.c.Skipped)
	}
	w.Flush()

	for _, warning := range report.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	if report.DryRun {
		fmt.Println("\nDry run, nothing was written")
	}
	return nil
}

func openBackendFile(ctx context.Context, path string) (*config.Backend, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg.OpenBackend(ctx)
}

func runVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	useJSON := fs.Bool("json", false, "output as JSON")
	_ = fs.Parse(args)

	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	svc, backend, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	report, err := svc.CheckIntegrity(ctx)
	if err != nil {
		return err
	}
	if *useJSON {
		return printJSON(report)
	}
	if report.OK() {
		fmt.Println("All image references resolve")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PROJECT\tREFERENCE\tIMAGE\n")
	for _, ref := range report.DanglingThumbnails {
		fmt.Fprintf(w, "%s\tthumbnail\t%s\n", ref.ProjectSlug, ref.ImageSlug)
	}
	for _, ref := range report.DanglingScreens {
		fmt.Fprintf(w, "%s\tscreen %d\t%s\n", ref.ProjectSlug, ref.ScreenIndex, ref.ImageSlug)
	}
	for _, slug := range report.MissingContent {
		fmt.Fprintf(w, "-\tcontent missing\t%s\n", slug)
	}
	w.Flush()
	return errors.New("integrity check failed")
}

func runStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	useJSON := fs.Bool("json", false, "output as JSON")
	_ = fs.Parse(args)

	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	svc, backend, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	stats, err := svc.ProjectStats(ctx)
	if err != nil {
		return err
	}
	if *useJSON {
		return printJSON(stats)
	}

	fmt.Println("=== Project Statistics ===")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\nCATEGORY\tCOUNT\tFEATURED\tAVG TECH\tSCREENS\n")
	for _, c := range stats.ByCategory {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\t%d\n", c.Category, c.Count, c.FeaturedCount, c.AvgTechnologies, c.TotalScreens)
	}
	w.Flush()

	t := stats.Totals
	fmt.Printf("\nProjects: %d  Featured: %d  Screens: %d  Technologies: %d\n",
		t.TotalProjects, t.TotalFeatured, t.TotalScreens, t.UniqueTechnologies)
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
