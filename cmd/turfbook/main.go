package main

import (
	"github.com/joho/godotenv"

	accountshandler "turfbook/internal/accounts/handler"
	accountsrepository "turfbook/internal/accounts/repository"
	accountsservice "turfbook/internal/accounts/service"
	accountsvalidator "turfbook/internal/accounts/validator"
	bookingshandler "turfbook/internal/bookings/handler"
	bookingsrepository "turfbook/internal/bookings/repository"
	bookingsservice "turfbook/internal/bookings/service"
	bookingsvalidator "turfbook/internal/bookings/validator"
	"turfbook/internal/notify"
	"turfbook/internal/payment"
	paymenthandler "turfbook/internal/payment/handler"
	turfshandler "turfbook/internal/turfs/handler"
	turfsrepository "turfbook/internal/turfs/repository"
	turfsservice "turfbook/internal/turfs/service"
	turfsvalidator "turfbook/internal/turfs/validator"
	"turfbook/pkg/app"
	"turfbook/pkg/config"
)

const ServiceName = "turfbook-api"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	accountRepo := accountsrepository.NewMongoAccountRepository(cfg)
	accountService := accountsservice.NewAccountService(accountRepo, accountsvalidator.NewAccountValidator(), cfg)
	accountHandler := accountshandler.NewAccountHandler(accountService, cfg)

	bookingRepo := bookingsrepository.NewMongoBookingRepository(cfg, bookingsrepository.NewSlotLockRepository(cfg))

	turfRepo := turfsrepository.NewMongoTurfRepository(cfg)
	turfService := turfsservice.NewTurfService(turfRepo, bookingRepo, turfsvalidator.NewTurfValidator(cfg.Log), cfg)
	turfHandler := turfshandler.NewTurfHandler(turfService, cfg)

	gateway, err := payment.NewOmiseGateway(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize payment gateway", "error", err)
	}

	notifier, err := notify.NewKafkaOwnerNotifier(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize owner notifier", "error", err)
	}
	defer notifier.Close()

	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		turfRepo,
		accountRepo,
		gateway,
		notifier,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	bookingHandler := bookingshandler.NewBookingHandler(bookingService, cfg)

	webhookHandler := paymenthandler.NewWebhookHandler(gateway, bookingService, cfg)

	application := app.NewApplication()
	application.SetApp(cfg,
		accountHandler,
		turfHandler,
		bookingHandler,
		webhookHandler,
	)
	application.Run()
}
