package main

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	httpadp "microcredit-backend/internal/adapter/http"
	"microcredit-backend/internal/adapter/middleware"
	"microcredit-backend/internal/adapter/repository/mysql"
	"microcredit-backend/internal/config"
	domainCollateral "microcredit-backend/internal/domain/collateral"
	domainGroup "microcredit-backend/internal/domain/group"
	domainLoan "microcredit-backend/internal/domain/loan"
	domainSchedule "microcredit-backend/internal/domain/schedule"
	"microcredit-backend/internal/infrastructure/cache"
	"microcredit-backend/internal/infrastructure/db"
	"microcredit-backend/internal/metrics"
	collateralUC "microcredit-backend/internal/usecase/collateral"
	"microcredit-backend/internal/usecase/lifecycle"
	"microcredit-backend/internal/usecase/origination"
	"microcredit-backend/internal/usecase/rates"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := gdb.AutoMigrate(
		&domainLoan.Loan{},
		&domainSchedule.Obligation{},
		&domainCollateral.Record{},
		&domainCollateral.BlockedTransaction{},
		&domainGroup.Enrollment{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	metrics.Init()

	uow := mysql.NewGormUoW(gdb)
	rateCache := rates.NewCache(rates.NewConfigSource(cfg), rdb,
		time.Duration(cfg.RateTTLSecs)*time.Second, log)

	ledger := collateralUC.NewLedger(uow, log)
	origUC := origination.NewUsecase(uow, rateCache, log)
	stateMachine := lifecycle.NewStateMachine(uow, ledger, log)

	base := httpadp.NewHandler()
	loanH := httpadp.NewLoanHandler(origUC)
	collateralH := httpadp.NewCollateralHandler(ledger)
	lifecycleH := httpadp.NewLifecycleHandler(stateMachine)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log))

	e.GET("/health", base.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/loans", loanH.CreateLoan)
	e.POST("/loans/group", loanH.CreateGroupLoan)
	e.GET("/loans/:loan_id", loanH.GetLoan)
	e.GET("/loans/:loan_id/schedule", loanH.GetSchedule)
	e.GET("/loans/:loan_id/collateral", collateralH.CollateralStatus)
	e.GET("/group-loans/:loan_id/collateral", collateralH.GroupCollateralStatus)

	e.POST("/loans/:loan_id/submit", lifecycleH.Submit)
	e.POST("/loans/:loan_id/approve", lifecycleH.Approve)
	e.POST("/group-loans/:loan_id/approve", lifecycleH.ApproveGroup)
	e.POST("/loans/:loan_id/reject", lifecycleH.Reject)

	e.POST("/collaterals/:collateral_id/deposits", collateralH.Deposit)
	e.POST("/collaterals/:collateral_id/withdrawals", collateralH.Withdraw)

	addr := ":" + cfg.AppPort
	log.Infof("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
