package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"multiball-waitlist/pkg/api"
	"multiball-waitlist/pkg/clients/mailchimp"
	"multiball-waitlist/pkg/clients/resend"
	"multiball-waitlist/pkg/config"
	"multiball-waitlist/pkg/logging"
	"multiball-waitlist/pkg/services"
)

var (
	// Global flags
	verbose  bool
	envFile  string
	siteFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "waitlist",
	Short: "Multiball Academy waitlist and crew interest API",
	Long: `Serves the lead-capture endpoints behind the Multiball Academy site.

Signups are added to the Mailchimp audience and welcomed by email through
Resend. Crew interest submissions are tagged, forwarded to the operator
inbox and confirmed to the submitter.

Run without a subcommand to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envErr := godotenv.Load(envFile)

		cfg = config.LoadConfig()
		if siteFile != "" {
			if err := cfg.LoadSiteFile(siteFile); err != nil {
				return err
			}
		}

		var err error
		logger, err = logging.New(cfg.LogLevel, verbose)
		if err != nil {
			return err
		}
		if envErr != nil {
			logger.Debug("No env file loaded", zap.String("path", envFile), zap.Error(envErr))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&siteFile, "config", "", "optional YAML file overriding site identity (from address, inbox, tags)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newSubscribeCmd())
	rootCmd.AddCommand(newJoinCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newHandlers wires the provider clients and services from configuration.
func newHandlers(cfg *config.Config, logger *zap.Logger) *api.Handlers {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	mailchimpOpts := []mailchimp.Option{
		mailchimp.WithHTTPClient(httpClient),
		mailchimp.WithLogger(logger.Named("mailchimp")),
	}
	if cfg.MailchimpBaseURL != "" {
		mailchimpOpts = append(mailchimpOpts, mailchimp.WithBaseURL(cfg.MailchimpBaseURL))
	}
	mailchimpClient := mailchimp.NewClient(cfg.MailchimpAPIKey, cfg.MailchimpAudienceID, mailchimpOpts...)

	resendClient := resend.NewClient(cfg.ResendAPIKey,
		resend.WithBaseURL(cfg.ResendBaseURL),
		resend.WithHTTPClient(httpClient),
		resend.WithLogger(logger.Named("resend")),
	)

	signupService := services.NewSignupService(mailchimpClient, resendClient, cfg.Site, logger.Named("signup"))
	interestService := services.NewInterestService(mailchimpClient, resendClient, cfg.Site, logger.Named("interest"))

	return api.NewHandlers(signupService, interestService, logger)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(newHandlers(cfg, logger), cfg.FrontendURL, logger.Named("http"))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 4*cfg.HTTPTimeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Server shutting down")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
