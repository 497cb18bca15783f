package dig_container

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/apps/api/echo"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
	emailsvc "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/services/email"
	logsvc "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/services/logger"
	mediasvc "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/services/media"
	rendersvc "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/services/render"
	speechsvc "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/services/speech"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/storage/database"
	sqlxrepos "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sql.DB {
	setUp := func() (*sql.DB, error) {
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
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	jobs present.JobRepository,
	worker *present.Worker,
	validate *validator.Validate,
	translator ut.Translator,
) echoapi.Server {
	return echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Jobs:       jobs,
			Worker:     worker,
			Validate:   validate,
			Translator: translator,
		},
	)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(sqlxrepos.NewJobRepository, dig.As(new(present.JobRepository))))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(rendersvc.NewService, dig.As(new(present.DeckRenderer))))
	must(c.Provide(speechsvc.NewService, dig.As(new(present.NarrationSynthesizer))))
	must(c.Provide(mediasvc.NewProber))
	must(c.Provide(mediasvc.NewAssembler, dig.As(new(present.TimelineAssembler))))
	must(c.Provide(mediasvc.NewEncoder, dig.As(new(present.VideoEncoder))))
	must(c.Provide(present.NewService, dig.As(new(present.ServiceInterface))))
	must(c.Provide(present.NewWorker))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
