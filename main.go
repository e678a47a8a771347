//
// chainlist
// =========
// A marketplace ledger service: sellers list articles, buyers purchase
// them at the exact listed price, every article sells at most once and
// never to its own seller, and every successful mutation lands in a
// replayable event journal.
//
// Boot the server:
// ----------------
// $ go run main.go
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/
// root.
//
// $ curl -X POST -H 'X-Account: seller1' -d '{"name":"article 1","description":"desc","price":10}' http://localhost:3333/articles
// {"id":1,"seller":"seller1","name":"article 1","description":"desc","price":10,"forSale":true}
//
// $ curl http://localhost:3333/articles
// [{"id":1,"seller":"seller1","name":"article 1","description":"desc","price":10,"forSale":true}]
//
// $ curl -X POST -H 'X-Account: buyer1' -d '{"value":10}' http://localhost:3333/articles/1/buy
// {"id":1,"seller":"seller1","buyer":"buyer1","name":"article 1","description":"desc","price":10,"forSale":false}
//
// $ curl http://localhost:3333/events
// [{"seq":1,"type":"listed","articleId":1,"seller":"seller1","name":"article 1"},{"seq":2,"type":"purchased","articleId":1,"buyer":"buyer1","name":"article 1"}]
//
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	dbm "github.com/tendermint/tm-db"
	"go.uber.org/zap"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"

	"github.com/SergeyParamoshkin/chainlist/internal/bank"
	"github.com/SergeyParamoshkin/chainlist/internal/ledger"
	"github.com/SergeyParamoshkin/chainlist/internal/market"
)

const ServiceName = "chainlist"

type CtxKey int8

const (
	CtxKeyLogger CtxKey = iota
)

type Config struct {
	Addr           string
	DiagAddr       string
	JournalBackend string
	JournalDir     string
	AdminToken     string
}

type App struct {
	sugarLogger *zap.SugaredLogger
	config      Config
}

// nolint
func main() {

	// nolint
	var (
		routes         = flag.Bool("routes", getEnvBool(ServiceName+"_routes", false), "Generate router documentation")
		addr           = flag.String("addr", getEnv(ServiceName+"_ADDR", ":3333"), "application port")
		diagAddr       = flag.String("diag_addr", getEnv(ServiceName+"_DIAG_ADDR", ":9999"), "diag port")
		journalBackend = flag.String("journal_backend", getEnv(ServiceName+"_JOURNAL_BACKEND", "memdb"), "event journal backend (memdb, goleveldb)")
		journalDir     = flag.String("journal_dir", getEnv(ServiceName+"_JOURNAL_DIR", "data"), "event journal directory")
		adminToken     = flag.String("admin_token", getEnv(ServiceName+"_ADMIN_TOKEN", ""), "admin routes token, empty disables the admin surface")
	)

	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync() // flushes buffer, if any
	sugar := logger.Sugar()

	a := App{
		sugarLogger: sugar,
		config: Config{
			Addr:           *addr,
			DiagAddr:       *diagAddr,
			JournalBackend: *journalBackend,
			JournalDir:     *journalDir,
			AdminToken:     *adminToken,
		},
	}

	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.New(config, c)
	if err != nil {
		a.sugarLogger.Panicf("failed to initialize prometheus exporter %v", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())

	meter := global.Meter(ServiceName)
	labels := []attribute.KeyValue{
		attribute.String("service", ServiceName)}
	marketMetrics := &market.Metrics{
		Listings: metric.Must(meter).NewInt64Counter(
			"market/listings_count",
			metric.WithDescription("Count of successful article listings"),
		).Bind(labels...),
		Purchases: metric.Must(meter).NewInt64Counter(
			"market/purchases_count",
			metric.WithDescription("Count of successful article purchases"),
		).Bind(labels...),
		Rejections: metric.Must(meter).NewInt64Counter(
			"market/rejections_count",
			metric.WithDescription("Count of rejected mutating calls"),
		).Bind(labels...),
	}
	defer marketMetrics.Listings.Unbind()
	defer marketMetrics.Purchases.Unbind()
	defer marketMetrics.Rejections.Unbind()

	db, err := dbm.NewDB("journal", dbm.BackendType(a.config.JournalBackend), a.config.JournalDir)
	if err != nil {
		a.sugarLogger.Panicf("failed to open journal backend %v", err)
	}

	journal, err := ledger.NewJournal(db)
	if err != nil {
		a.sugarLogger.Panicf("failed to open event journal %v", err)
	}

	accounts := bank.New()
	chain := ledger.New(journal, accounts)

	// every committed event also lands in the service log
	chain.Events().Subscribe(func(ev ledger.Event) {
		sugar.Infow("event",
			"seq", ev.Seq,
			"type", ev.Type,
			"articleId", ev.ArticleID,
			"name", ev.Name,
		)
	})

	api := &market.API{
		Ledger:  chain,
		Bank:    accounts,
		Log:     sugar,
		Metrics: marketMetrics,
	}

	r := chi.NewRouter()

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", exporter.ServeHTTP)

	r.Use(middleware.RequestID)
	r.Use(a.Logger)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("root."))
		if err != nil {
			sugar.Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger := r.Context().Value(CtxKeyLogger).(*zap.SugaredLogger)
		logger.Infow("ping with middle")
		_, err := w.Write([]byte("pong"))
		if err != nil {
			sugar.Errorw(err.Error())
		}
	})

	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		sugar.Panicw("panic")
	})

	r.Mount("/articles", market.ArticlesRouter(api))
	r.Get("/events", api.ListEvents)

	// Mount the admin sub-router, which btw is the same as:
	// r.Route("/admin", func(r chi.Router) { admin routes here })
	r.Mount("/admin", api.AdminRouter(a.config.AdminToken))

	// Passing -routes to the program will generate docs for the above
	// router definition. See the `routes.json` file in this folder for
	// the output.
	if *routes {
		// nolint
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/chainlist",
			Intro:       "Welcome to the chainlist generated docs.",
		}))

		return
	}

	go func() {
		err = http.ListenAndServe(a.config.Addr, r)
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	}()

	err = http.ListenAndServe(a.config.DiagAddr, diagRouter)
	if err != nil {
		a.sugarLogger.Errorw(err.Error())
	}

}

func (a *App) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxKeyLogger, a.sugarLogger)))
	})
}
