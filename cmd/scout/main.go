package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/slotscout/slotscout/internal/adapters/cache"
	"github.com/slotscout/slotscout/internal/adapters/providers/geolocation"
	"github.com/slotscout/slotscout/internal/adapters/providers/scheduling"
	"github.com/slotscout/slotscout/internal/adapters/snapshot"
	"github.com/slotscout/slotscout/internal/application/services"
	"github.com/slotscout/slotscout/internal/domain/entities"
	"github.com/slotscout/slotscout/internal/domain/providers"
	redisclient "github.com/slotscout/slotscout/internal/infrastructure/clients/redis"
	"github.com/slotscout/slotscout/internal/infrastructure/notifications"
	"github.com/slotscout/slotscout/internal/infrastructure/observability"
	"github.com/slotscout/slotscout/pkg/config"
)

const (
	dateLayout = "2006-01-02"
	dobLayout  = "01/02/2006"
)

type command struct {
	summary string
	run     func(ctx context.Context, app *application, args []string) error
}

// commands is the static dispatch table. Adding a command means adding an
// entry here; there is no dynamic registration.
var commands = map[string]command{
	"pull":     {summary: "run one aggregation pass and print the ranked locations", run: runPull},
	"notify":   {summary: "run one pass and send an alert for open slots", run: runNotify},
	"watch":    {summary: "poll on an interval and alert whenever slots open", run: runWatch},
	"autobook": {summary: "poll on an interval and book the closest open slot", run: runAutoBook},
	"cancel":   {summary: "cancel an existing booking by ID", run: runCancel},
}

// application bundles the wired services handed to every command.
type application struct {
	cfg         *config.Config
	scheduler   providers.SchedulerProvider
	snapshots   providers.SnapshotStore
	aggregation *services.AggregationService
	booking     *services.BookingService
	notifier    *services.NotificationService
	poll        *services.PollService
	cleanup     func()
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("slotscout", cfg.Env)

	app, err := wire(cfg)
	if err != nil {
		observability.GetLogger().Fatal().Err(err).Msg("failed to wire application")
	}
	defer app.cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, app, os.Args[2:]); err != nil && ctx.Err() == nil {
		observability.GetLogger().Fatal().Err(err).Str("command", name).Msg("command failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: scout <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, name := range []string{"pull", "notify", "watch", "autobook", "cancel"} {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, commands[name].summary)
	}
}

func wire(cfg *config.Config) (*application, error) {
	logger := observability.GetLogger()
	cleanup := func() {}

	var cacheProvider providers.CacheProvider
	if cfg.Redis.Host != "" {
		client, err := redisclient.NewClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		cacheProvider = cache.NewRedisAdapter(client)
		cleanup = func() { _ = client.Close() }
	} else {
		cacheProvider = cache.NewMemoryAdapter()
	}

	var geo providers.GeolocationProvider
	switch cfg.Geo.Provider {
	case "static":
		geo = geolocation.NewStaticProvider()
	default:
		geo = geolocation.NewZippopotamProviderWithOptions(cacheProvider, cfg.Geo.BaseURL, nil)
	}

	scheduler := scheduling.NewBreakerProvider(
		scheduling.NewDPSAdapterWithOptions(cfg.Scheduler.BaseURL, cfg.Scheduler.Origin, &http.Client{
			Timeout: cfg.Scheduler.Timeout,
		}))

	var sms providers.SMSSender
	if cfg.Notify.TwilioAccountSID != "" {
		sender, err := notifications.NewTwilioSender(
			cfg.Notify.TwilioAccountSID, cfg.Notify.TwilioAuthToken, cfg.Notify.TwilioFromNumber)
		if err != nil {
			return nil, err
		}
		sms = sender
	} else {
		logger.Info().Msg("twilio credentials absent, SMS channel disabled")
	}

	var email providers.EmailSender
	if cfg.Notify.SendGridAPIKey != "" {
		sender, err := notifications.NewSendGridSender(cfg.Notify.SendGridAPIKey, cfg.Notify.SendGridFromEmail)
		if err != nil {
			return nil, err
		}
		email = sender
	} else {
		logger.Info().Msg("sendgrid credentials absent, email channel disabled")
	}

	snapshots := snapshot.NewCSVStore(cfg.Snapshot.Path)
	notifier := services.NewNotificationService(sms, email)
	aggregation := services.NewAggregationService(scheduler, geo, snapshots, cacheProvider, cfg.Poll.MaxConcurrentFetches)
	booking := services.NewBookingService(scheduler, notifier)

	return &application{
		cfg:         cfg,
		scheduler:   scheduler,
		snapshots:   snapshots,
		aggregation: aggregation,
		booking:     booking,
		notifier:    notifier,
		poll:        services.NewPollService(aggregation, booking, notifier),
		cleanup:     cleanup,
	}, nil
}

// searchFlags declares the criteria flags shared by every search command.
type searchFlags struct {
	cities      string
	zip         string
	maxDistance float64
	minDate     string
	maxDate     string
	serviceType int
	strict      bool
}

func (f *searchFlags) register(fs *flag.FlagSet, defaultServiceType int) {
	fs.StringVar(&f.cities, "cities", "", "comma-separated city names; empty searches every city")
	fs.StringVar(&f.zip, "zip", "", "origin zip code for distance ranking")
	fs.Float64Var(&f.maxDistance, "max-distance", 0, "maximum distance in miles; 0 disables the filter")
	fs.StringVar(&f.minDate, "min-date", "", "earliest acceptable date (YYYY-MM-DD)")
	fs.StringVar(&f.maxDate, "max-date", "", "latest acceptable date (YYYY-MM-DD)")
	fs.IntVar(&f.serviceType, "service-type", defaultServiceType, "scheduler service type ID")
	fs.BoolVar(&f.strict, "strict-cities", false, "abort the pass when any city fails instead of skipping it")
}

func (f *searchFlags) criteria() (entities.SearchCriteria, error) {
	criteria := entities.SearchCriteria{
		OriginZip:        f.zip,
		MaxDistanceMiles: f.maxDistance,
		ServiceTypeID:    f.serviceType,
		StrictCities:     f.strict,
	}
	if f.cities != "" {
		for _, city := range strings.Split(f.cities, ",") {
			if city = strings.TrimSpace(city); city != "" {
				criteria.Cities = append(criteria.Cities, city)
			}
		}
	}
	var err error
	if f.minDate != "" {
		if criteria.MinDate, err = time.Parse(dateLayout, f.minDate); err != nil {
			return criteria, fmt.Errorf("invalid -min-date %q: %w", f.minDate, err)
		}
	}
	if f.maxDate != "" {
		if criteria.MaxDate, err = time.Parse(dateLayout, f.maxDate); err != nil {
			return criteria, fmt.Errorf("invalid -max-date %q: %w", f.maxDate, err)
		}
	}
	return criteria, nil
}

// contactFlags declares the notification target flags.
type contactFlags struct {
	phone string
	email string
}

func (f *contactFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.phone, "phone", "", "ten-digit US phone number for SMS alerts")
	fs.StringVar(&f.email, "email", "", "email address for alerts")
}

func (f *contactFlags) contact() entities.Contact {
	return entities.Contact{Phone: f.phone, Email: f.email}
}

// applicantFlags declares the identity flags booking commands require.
type applicantFlags struct {
	firstName string
	lastName  string
	dob       string
	last4SSN  string
	card      string
}

func (f *applicantFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.firstName, "first-name", "", "applicant first name")
	fs.StringVar(&f.lastName, "last-name", "", "applicant last name")
	fs.StringVar(&f.dob, "dob", "", "applicant date of birth (MM/DD/YYYY)")
	fs.StringVar(&f.last4SSN, "ssn", "", "last four digits of the applicant's SSN")
	fs.StringVar(&f.card, "card", "", "driver license or ID card number")
}

func (f *applicantFlags) applicant() (entities.Applicant, error) {
	if f.firstName == "" || f.lastName == "" || f.dob == "" || f.last4SSN == "" {
		return entities.Applicant{}, fmt.Errorf("-first-name, -last-name, -dob and -ssn are required")
	}
	dob, err := time.Parse(dobLayout, f.dob)
	if err != nil {
		return entities.Applicant{}, fmt.Errorf("invalid -dob %q: %w", f.dob, err)
	}
	return entities.Applicant{
		FirstName:   f.firstName,
		LastName:    f.lastName,
		DateOfBirth: dob,
		Last4SSN:    f.last4SSN,
	}, nil
}

func runPull(ctx context.Context, app *application, args []string) error {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)
	var search searchFlags
	cached := fs.Bool("cached", false, "print the last written snapshot instead of querying the API")
	search.register(fs, app.cfg.Scheduler.ServiceTypeID)
	_ = fs.Parse(args)

	var locations []entities.Location
	var err error
	if *cached {
		locations, err = app.snapshots.Read(ctx)
	} else {
		var criteria entities.SearchCriteria
		if criteria, err = search.criteria(); err == nil {
			locations, err = app.aggregation.Aggregate(ctx, criteria)
		}
	}
	if err != nil {
		return err
	}

	for _, loc := range locations {
		distance := "     -"
		if loc.DistanceMiles != nil {
			distance = fmt.Sprintf("%6.2f", *loc.DistanceMiles)
		}
		fmt.Printf("%s mi  %s  %-40s (ID: %d)\n",
			distance, loc.NextAvailable.Format("2006-01-02 03:04 PM"), loc.Name, loc.ID)
	}
	if *cached {
		fmt.Printf("%d locations from snapshot %s\n", len(locations), app.cfg.Snapshot.Path)
	} else {
		fmt.Printf("%d locations, snapshot written to %s\n", len(locations), app.cfg.Snapshot.Path)
	}
	return nil
}

func runNotify(ctx context.Context, app *application, args []string) error {
	fs := flag.NewFlagSet("notify", flag.ExitOnError)
	var search searchFlags
	var contact contactFlags
	search.register(fs, app.cfg.Scheduler.ServiceTypeID)
	contact.register(fs)
	_ = fs.Parse(args)

	criteria, err := search.criteria()
	if err != nil {
		return err
	}
	locations, err := app.aggregation.Aggregate(ctx, criteria)
	if err != nil {
		return err
	}

	matches := app.aggregation.MatchSlots(ctx, locations, criteria.ServiceTypeID)
	if len(matches) == 0 {
		observability.GetLogger().Info().Msg("no open slots matched the criteria")
		return nil
	}
	app.notifier.NotifySlots(ctx, contact.contact(), matches)
	return nil
}

func runWatch(ctx context.Context, app *application, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var search searchFlags
	var contact contactFlags
	interval := fs.Duration("interval", app.cfg.Poll.Interval, "time between polls")
	search.register(fs, app.cfg.Scheduler.ServiceTypeID)
	contact.register(fs)
	_ = fs.Parse(args)

	criteria, err := search.criteria()
	if err != nil {
		return err
	}
	return app.poll.Run(ctx, services.PollOptions{
		Criteria: criteria,
		Contact:  contact.contact(),
		Interval: *interval,
	})
}

func runAutoBook(ctx context.Context, app *application, args []string) error {
	fs := flag.NewFlagSet("autobook", flag.ExitOnError)
	var search searchFlags
	var contact contactFlags
	var identity applicantFlags
	interval := fs.Duration("interval", app.cfg.Poll.Interval, "time between polls")
	search.register(fs, app.cfg.Scheduler.ServiceTypeID)
	contact.register(fs)
	identity.register(fs)
	_ = fs.Parse(args)

	criteria, err := search.criteria()
	if err != nil {
		return err
	}
	applicant, err := identity.applicant()
	if err != nil {
		return err
	}
	if identity.card == "" {
		return fmt.Errorf("-card is required for booking")
	}

	// Without an explicit cutoff, only dates beating the applicant's current
	// booking are worth taking.
	if criteria.MaxDate.IsZero() {
		criteria.MaxDate, err = app.booking.InferMaxDate(ctx, applicant)
		if err != nil {
			return err
		}
		observability.GetLogger().Info().
			Time("max_date", criteria.MaxDate).Msg("inferred booking date cutoff")
	}

	return app.poll.Run(ctx, services.PollOptions{
		Criteria: criteria,
		Contact:  contact.contact(),
		AutoBook: &entities.BookingRequest{
			Applicant:     applicant,
			Contact:       contact.contact(),
			CardNumber:    identity.card,
			ServiceTypeID: criteria.ServiceTypeID,
		},
		Interval: *interval,
	})
}

func runCancel(ctx context.Context, app *application, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	bookingID := fs.Int("booking-id", 0, "booking ID to cancel")
	_ = fs.Parse(args)

	if *bookingID <= 0 {
		return fmt.Errorf("-booking-id is required")
	}
	if err := app.booking.Cancel(ctx, *bookingID); err != nil {
		return err
	}
	observability.GetLogger().Info().Int("booking_id", *bookingID).Msg("booking cancelled")
	return nil
}
