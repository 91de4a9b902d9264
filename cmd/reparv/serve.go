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

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/reparvservices/reparv-server-sub002/internal/db"
	"github.com/reparvservices/reparv-server-sub002/internal/metrics"
	"github.com/reparvservices/reparv-server-sub002/internal/notify"
	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/referral"
	"github.com/reparvservices/reparv-server-sub002/internal/server"
	"github.com/reparvservices/reparv-server-sub002/internal/service"
	"github.com/reparvservices/reparv-server-sub002/internal/storage"
	"github.com/reparvservices/reparv-server-sub002/internal/store"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply the schema before serving",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	if err := requireDatabase(config); err != nil {
		return err
	}

	logger := newLogger(config)

	loc, err := displayLocation(config)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cCtx.Bool("migrate") {
		if err := db.Migrate(ctx, pool, config.DatabaseSchema, logger); err != nil {
			return err
		}
	}

	m := metrics.New()

	blobs, err := storage.Open(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to open blob storage: %w", err)
	}

	runner := pipeline.NewRunner(
		storage.NewInstrumented(blobs, m.BlobOps),
		logger,
		pipeline.WithUploadTimeout(time.Duration(config.UploadTimeoutSec)*time.Second),
		pipeline.WithCompensation(config.CompensateOrphanedUploads),
		pipeline.WithRunCounter(m.PipelineRuns),
	)

	partners := make(map[types.Role]service.PartnerStore, len(types.PartnerKinds))
	for _, kind := range types.PartnerKinds {
		partners[kind.Role] = store.NewPartnerRepository(pool, kind)
	}

	svc := service.New(service.Deps{
		Logger:            logger,
		Runner:            runner,
		Referrals:         referral.NewGenerator(config.ReferralMaxAttempts),
		Mailer:            notify.New(config, logger),
		Location:          loc,
		Partners:          partners,
		FollowUps:         store.NewFollowUpRepository(pool),
		Properties:        store.NewPropertyRepository(pool),
		Enquiries:         store.NewEnquiryRepository(pool),
		PropertyFollowUps: store.NewPropertyFollowUpRepository(pool),
		Payments:          store.NewPaymentRepository(pool),
		Blogs:             store.NewBlogTable(pool),
		Testimonials:      store.NewTestimonialTable(pool),
		Marketing:         store.NewMarketingTable(pool),
		Plans:             store.NewPlanRepository(pool),
		RedeemCodes:       store.NewRedeemCodeTable(pool),
		Sliders:           store.NewSliderTable(pool),
		Wishlists:         store.NewWishlistRepository(pool),
	})

	auth, err := newAuthenticator(ctx, config, logger)
	if err != nil {
		return err
	}

	srv := server.New(config, logger, svc, auth, m)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func newAuthenticator(ctx context.Context, config *types.Config, logger *logrus.Logger) (*server.Authenticator, error) {
	auth, err := server.NewAuthenticator(config.JWTSecret, config.CookieHashKey, config.CookieBlockKey)
	if err != nil {
		return nil, err
	}

	if config.JWKSURL == "" {
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("set JWT_SECRET or JWKS_URL")
		}
		return auth, nil
	}

	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	if err := jwkCache.Register(ctx, config.JWKSURL); err != nil {
		return nil, fmt.Errorf("failed to register jwks with cache: %w", err)
	}

	logger.WithField("jwks", config.JWKSURL).Info("verifying tokens against jwks")

	return auth.WithJWKS(jwkCache, config.JWKSURL), nil
}
