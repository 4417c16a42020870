package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/swiss-jobs/internal/config"
	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/maxaizer/swiss-jobs/internal/entities"
	"github.com/maxaizer/swiss-jobs/internal/logger"
	"github.com/maxaizer/swiss-jobs/internal/metrics"
	"github.com/maxaizer/swiss-jobs/internal/repositories"
	"github.com/maxaizer/swiss-jobs/internal/services"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

const usage = `usage: swiss-jobs <command> [flags]

commands:
  search      search listings and print them as JSON
  detail      fetch one listing by id
  health      check the provider
  providers   list registered providers and their capabilities
  searches    manage saved searches (add, list, remove)
  scrape      store listings of saved searches, once or on a schedule
  enrich      run AI enrichment for stored listings that need it
`

type command func(ctx context.Context, cfg *config.Config, args []string) error

var commands = map[string]command{
	"search":    runSearch,
	"detail":    runDetail,
	"health":    runHealth,
	"providers": runProviders,
	"searches":  runSearches,
	"scrape":    runScrape,
	"enrich":    runEnrich,
}

func main() {

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	if err := cmd(ctx, cfg, os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Error(err)
		logger.Cleanup()
		os.Exit(exitCode(err))
	}
	logger.Cleanup()
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}

func runSearch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	query := fs.StringP("query", "q", "", "free text query")
	location := fs.StringP("location", "l", "", "city or postal code")
	keywords := fs.StringSlice("keywords", nil, "additional keywords")
	cantons := fs.StringSlice("canton", nil, "canton codes, e.g. ZH,BE")
	communal := fs.StringSlice("communal-code", nil, "BFS communal codes")
	professions := fs.StringSlice("profession-code", nil, "AVAM profession codes")
	company := fs.String("company", "", "company name")
	contract := fs.String("contract", string(models.ContractAny), "permanent, temporary or any")
	workloadMin := fs.Int("workload-min", 10, "minimum workload percentage")
	workloadMax := fs.Int("workload-max", 100, "maximum workload percentage")
	days := fs.Int("days", 60, "posted within days")
	page := fs.Int("page", 0, "page number, starting at 0")
	pageSize := fs.Int("page-size", 20, "results per page")
	sort := fs.String("sort", string(models.SortDateDesc), "date_desc, date_asc or relevance")
	language := fs.String("lang", "en", "response language")
	lat := fs.Float64("lat", 0, "radius search latitude")
	lon := fs.Float64("lon", 0, "radius search longitude")
	radius := fs.Int("radius", 0, "radius search distance in km")
	mode := fs.String("mode", "", "execution mode override: fast, stealth or aggressive")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger.SetupConsole(cfg.Logger)

	opts := []models.CriteriaOption{
		models.WithQuery(*query),
		models.WithLocation(*location),
		models.WithKeywords(*keywords...),
		models.WithCantonCodes(*cantons...),
		models.WithCommunalCodes(*communal...),
		models.WithProfessionCodes(*professions...),
		models.WithContractType(models.ContractType(*contract)),
		models.WithWorkload(*workloadMin, *workloadMax),
		models.WithPostedWithinDays(*days),
		models.WithPage(*page, *pageSize),
		models.WithSort(models.SortOrder(*sort)),
		models.WithLanguage(*language),
	}
	if *company != "" {
		opts = append(opts, models.WithCompanyName(*company))
	}
	if *radius > 0 {
		opts = append(opts, models.WithRadiusSearch(*lat, *lon, *radius))
	}

	criteria, err := models.NewSearchCriteria(opts...)
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg, *mode)
	if err != nil {
		return err
	}
	defer provider.Close()

	result, err := provider.Search(ctx, criteria)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runDetail(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("detail", flag.ContinueOnError)
	language := fs.String("lang", "en", "response language")
	mode := fs.String("mode", "", "execution mode override")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("detail expects exactly one listing id")
	}
	logger.SetupConsole(cfg.Logger)

	provider, err := newProvider(cfg, *mode)
	if err != nil {
		return err
	}
	defer provider.Close()

	listing, err := provider.GetDetails(ctx, fs.Arg(0), *language)
	if err != nil {
		return err
	}
	return printJSON(listing)
}

func runHealth(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger.SetupConsole(cfg.Logger)

	registry, err := newRegistry(cfg.Provider, "")
	if err != nil {
		return err
	}

	var report []models.ProviderHealth
	for _, name := range registry.Names() {
		provider, err := registry.Get(name)
		if err != nil {
			return err
		}
		report = append(report, provider.HealthCheck(ctx))
		_ = provider.Close()
	}
	return printJSON(report)
}

func runProviders(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("providers", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger.SetupConsole(cfg.Logger)

	registry, err := newRegistry(cfg.Provider, "")
	if err != nil {
		return err
	}

	type providerInfo struct {
		Name         string                      `json:"name"`
		DisplayName  string                      `json:"display_name"`
		Capabilities models.ProviderCapabilities `json:"capabilities"`
	}

	var infos []providerInfo
	for _, name := range registry.Names() {
		provider, err := registry.Get(name)
		if err != nil {
			return err
		}
		infos = append(infos, providerInfo{
			Name:         provider.Name(),
			DisplayName:  provider.DisplayName(),
			Capabilities: provider.Capabilities(),
		})
		_ = provider.Close()
	}
	return printJSON(infos)
}

func runSearches(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("searches expects a subcommand: add, list or remove")
	}

	fs := flag.NewFlagSet("searches "+args[0], flag.ContinueOnError)
	name := fs.String("name", "", "unique search name")
	query := fs.StringP("query", "q", "", "free text query")
	location := fs.StringP("location", "l", "", "city or postal code")
	cantons := fs.StringSlice("canton", nil, "canton codes")
	contract := fs.String("contract", string(models.ContractAny), "permanent, temporary or any")
	days := fs.Int("days", cfg.Scrape.PostedWithinDays, "posted within days")
	maxPages := fs.Int("max-pages", cfg.Scrape.MaxPages, "pages fetched per run")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	logger.SetupConsole(cfg.Logger)

	dbContext, err := openDb(cfg.DB)
	if err != nil {
		return err
	}
	defer dbContext.Close()
	searches := repositories.NewSearchRepository(dbContext.DB)

	switch args[0] {
	case "add":
		if *name == "" {
			return errors.New("--name is required")
		}
		search := entities.NewSavedSearch(*name, *query, *location, *cantons,
			models.ContractType(*contract), *days, *maxPages)
		if _, err = search.Criteria(0, cfg.Scrape.PageSize); err != nil {
			return err
		}
		if err = searches.Add(ctx, *search); err != nil {
			return errors.Wrapf(err, "can't add search %q", *name)
		}
		log.Infof("search %q added", *name)
		return nil
	case "list":
		var all []entities.SavedSearch
		for offset := 0; ; offset += 100 {
			page, err := searches.Get(ctx, 100, offset)
			if err != nil {
				return err
			}
			all = append(all, page...)
			if len(page) < 100 {
				break
			}
		}
		return printJSON(all)
	case "remove":
		removed, err := searches.RemoveByName(ctx, *name)
		if err != nil {
			return err
		}
		if !removed {
			return errors.Errorf("search %q not found", *name)
		}
		log.Infof("search %q removed", *name)
		return nil
	default:
		return errors.Errorf("unknown searches subcommand %q", args[0])
	}
}

func runScrape(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	once := fs.Bool("once", false, "run a single pass and exit")
	query := fs.StringP("query", "q", cfg.Scrape.Query, "ad-hoc query run with the saved searches")
	location := fs.StringP("location", "l", cfg.Scrape.Location, "location of the ad-hoc query")
	mode := fs.String("mode", "", "execution mode override")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *once {
		logger.SetupConsole(cfg.Logger)
	} else {
		logger.Setup(ctx, cfg.Logger)
		metrics.StartMetricsServer(cfg.Logger.MetricsAddr)
	}

	dbContext, err := openDb(cfg.DB)
	if err != nil {
		return err
	}
	defer dbContext.Close()

	provider, err := newProvider(cfg, *mode)
	if err != nil {
		return err
	}
	defer provider.Close()

	jobs := repositories.NewJobsRepository(dbContext.DB)
	searches := repositories.NewSearchRepository(dbContext.DB)
	bus := EventBus.New()

	enrichment, closeAI, err := newEnrichmentService(ctx, cfg.AI)
	if err != nil {
		return err
	}
	defer closeAI()

	var enricher *services.Enricher
	if enrichment != nil {
		enricher = services.NewEnricher(enrichment, jobs, cfg.AI.BatchSize)
		if !*once {
			if err = enricher.Subscribe(bus); err != nil {
				return err
			}
		}
	}

	var adHoc []entities.SavedSearch
	if *query != "" || *location != "" {
		adHoc = append(adHoc, *entities.NewSavedSearch("config", *query, *location, nil,
			models.ContractAny, cfg.Scrape.PostedWithinDays, cfg.Scrape.MaxPages))
	}

	scraper := services.NewScraper(bus, provider, searches, jobs, services.ScraperConfig{
		PageSize:     cfg.Scrape.PageSize,
		MaxPages:     cfg.Scrape.MaxPages,
		FetchDetails: cfg.Scrape.FetchDetails,
		Searches:     adHoc,
	})

	if *once {
		report, err := scraper.RunOnce(ctx)
		if err != nil {
			return err
		}
		if enricher != nil {
			if _, err = enricher.ProcessPending(ctx); err != nil {
				return err
			}
		}
		return printJSON(report)
	}

	cleaner, err := services.NewJobsCleaner(jobs, cfg.DB.RetentionDays)
	if err != nil {
		return errors.Wrap(err, "can't create cleaner")
	}
	cleaner.Start()
	defer cleaner.Stop()

	if err = scraper.Schedule(cfg.Scrape.Schedule); err != nil {
		return err
	}
	go func() {
		if _, err := scraper.RunOnce(ctx); err != nil {
			log.Warnf("initial scrape: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down services...")
	scraper.Stop()
	bus.WaitAsync()
	log.Info("Services stopped.")
	return nil
}

func runEnrich(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("enrich", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger.SetupConsole(cfg.Logger)

	if !cfg.AI.Enabled {
		return errors.New("AI enrichment is disabled, set ai.enabled or AI_ENABLED")
	}

	dbContext, err := openDb(cfg.DB)
	if err != nil {
		return err
	}
	defer dbContext.Close()

	enrichment, closeAI, err := newEnrichmentService(ctx, cfg.AI)
	if err != nil {
		return err
	}
	defer closeAI()

	saved, err := services.NewEnricher(enrichment, repositories.NewJobsRepository(dbContext.DB), cfg.AI.BatchSize).
		ProcessPending(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]int{"enriched": saved})
}
