package application

import (
	"fmt"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type Controller interface {
	Register(r *mux.Router)
	Key() string
}

type Module interface {
	Name() string
	Register(app Application) error
}

// Application is the registry modules plug their services and controllers into.
type Application interface {
	DB() *pgxpool.Pool
	Logger() *logrus.Logger
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
}

type ApplicationOptions struct {
	Pool   *pgxpool.Pool
	Logger *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &application{
		pool:        opts.Pool,
		logger:      logger,
		controllers: make(map[string]Controller),
		services:    make(map[reflect.Type]interface{}),
	}
}

// application with a dynamically extendable service registry
type application struct {
	pool        *pgxpool.Pool
	logger      *logrus.Logger
	services    map[reflect.Type]interface{}
	controllers map[string]Controller
	order       []string
	middleware  []mux.MiddlewareFunc
}

func (app *application) DB() *pgxpool.Pool {
	return app.pool
}

func (app *application) Logger() *logrus.Logger {
	return app.logger
}

func (app *application) Middleware() []mux.MiddlewareFunc {
	return app.middleware
}

// Controllers returns controllers in registration order.
func (app *application) Controllers() []Controller {
	controllers := make([]Controller, 0, len(app.order))
	for _, key := range app.order {
		controllers = append(controllers, app.controllers[key])
	}
	return controllers
}

func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		if _, ok := app.controllers[c.Key()]; !ok {
			app.order = append(app.order, c.Key())
		}
		app.controllers[c.Key()] = c
	}
}

func (app *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	app.middleware = append(app.middleware, middleware...)
}

func (app *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

// Service looks a service up by the type of its zero value, e.g. app.Service(services.MemberService{}).
func (app *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, ok := app.services[serviceType]
	if !ok {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}
