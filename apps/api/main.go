package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/disciplan/apps/api/echo"
	"github.com/trezcool/disciplan/core"
	"github.com/trezcool/disciplan/core/assignment"
	"github.com/trezcool/disciplan/core/plan"
	"github.com/trezcool/disciplan/core/settings"
	"github.com/trezcool/disciplan/core/user"
	emailsvc "github.com/trezcool/disciplan/services/email"
	geminisvc "github.com/trezcool/disciplan/services/gemini"
	logsvc "github.com/trezcool/disciplan/services/logger"
	"github.com/trezcool/disciplan/storage/database"
	sqlxrepos "github.com/trezcool/disciplan/storage/database/sqlx"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug || core.Conf.RollbarToken == "" {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up DB
	db, err := setUpDB(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close DB", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	plannerOpts := []plan.Option{}
	if core.Conf.Gemini.ApiKey != "" {
		plannerOpts = append(plannerOpts, plan.WithTextGenerator(geminisvc.NewService(core.Conf.Gemini)))
	}
	planner := plan.NewGenerator(logger, plannerOpts...)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, logger)
	assignSvc := assignment.NewService(sqlxrepos.NewAssignmentRepository(db), planner, logger)
	settingsSvc := settings.NewService(sqlxrepos.NewSettingsRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.ServerDeps{
			Logger:        logger,
			UserSvc:       usrSvc,
			AssignmentSvc: assignSvc,
			SettingsSvc:   settingsSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return sqlx.NewDb(db, conf.Database.Engine), nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
