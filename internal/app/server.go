package app

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/verzoeken/internal/handlers"
	relationrepo "github.com/Ramsey-B/verzoeken/internal/repositories/relation"
	verzoekrepo "github.com/Ramsey-B/verzoeken/internal/repositories/verzoek"
	"github.com/Ramsey-B/verzoeken/internal/services/objectverzoek"
	"github.com/Ramsey-B/verzoeken/internal/services/relation"
	"github.com/Ramsey-B/verzoeken/internal/services/verzoek"
	"github.com/Ramsey-B/verzoeken/internal/services/verzoekinformatieobject"
	"github.com/Ramsey-B/verzoeken/internal/services/verzoekproduct"
	"github.com/Ramsey-B/verzoeken/pkg/middleware"
	"github.com/Ramsey-B/verzoeken/pkg/mirror"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/notifications"
	"github.com/Ramsey-B/verzoeken/pkg/relations"
	"github.com/Ramsey-B/verzoeken/pkg/resource"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

// routes is everything served under the api base path.
type routes interface {
	RegisterRoutes(g *echo.Group)
}

func (a *App) notifier() *notifications.Notifier {
	var publisher notifications.Publisher = notifications.Noop{}
	if a.producer != nil {
		publisher = notifications.NewKafkaPublisher(a.producer)
	}
	return notifications.NewNotifier(a.cfg.NotificationsKanaal, publisher, a.logger)
}

// buildRoutes wires repositories, services and handlers on top of the started dependencies.
func (a *App) buildRoutes() ([]routes, error) {
	zaak, err := resource.NewValidator(resource.SchemaZaak, a.zrcSchemas, a.registry, a.logger)
	if err != nil {
		return nil, err
	}
	document, err := resource.NewValidator(resource.SchemaEnkelvoudigInformatieObject, a.drcSchemas, a.registry, a.logger)
	if err != nil {
		return nil, err
	}

	notifier := a.notifier()
	verzoeken := verzoekrepo.NewRepository(a.db, a.logger)

	documents := verzoekinformatieobject.NewService(
		relationrepo.NewVerzoekInformatieObjecten(a.db, a.logger),
		verzoeken,
		mirror.NewEngine(a.registry, a.urls, a.logger),
		a.mask,
		document,
		a.urls,
		notifier,
		a.logger,
	)

	objects := objectverzoek.NewService(
		relationrepo.NewObjectVerzoeken(a.db, a.logger),
		verzoeken,
		map[models.ObjectType]objectverzoek.ResourceValidator{models.ObjectTypeZaak: zaak},
		relations.NewValidator(a.registry, a.logger),
		a.urls,
		notifier,
		a.logger,
	)

	contactmomenten := relation.NewService(relation.VerzoekContactMomentConfig,
		relationrepo.NewVerzoekContactMomenten(a.db, a.logger), verzoeken, a.urls, notifier, a.logger)
	producten := verzoekproduct.NewService(
		relationrepo.NewVerzoekProducten(a.db, a.logger), verzoeken, a.urls, notifier, a.logger)
	klanten := relation.NewService(relation.KlantVerzoekConfig,
		relationrepo.NewKlantVerzoeken(a.db, a.logger), verzoeken, a.urls, notifier, a.logger)

	pageSize := a.cfg.PageSize
	return []routes{
		handlers.NewVerzoekHandler(verzoek.NewService(verzoeken, documents, a.urls, notifier, a.logger), a.urls, pageSize),
		handlers.NewRelationHandler(handlers.ObjectVerzoekResource, objects, a.urls, pageSize),
		handlers.NewRelationHandler(handlers.VerzoekInformatieObjectResource, documents, a.urls, pageSize),
		handlers.NewRelationHandler(handlers.VerzoekContactMomentResource, contactmomenten, a.urls, pageSize),
		handlers.NewRelationHandler(handlers.VerzoekProductResource, producten, a.urls, pageSize),
		handlers.NewRelationHandler(handlers.KlantVerzoekResource, klanten, a.urls, pageSize),
	}, nil
}

func (a *App) buildServer() (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(a.logger)

	e.Server.ReadTimeout = time.Duration(a.cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(a.cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(a.cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(a.cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = a.cfg.MaxHeaderBytes

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: a.cfg.AllowOrigins,
		AllowMethods: a.cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(a.cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(a.logger))

	a.health.RegisterRoutes(e.Group(""))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group(a.urls.BasePath())
	if a.verifier != nil {
		api.Use(middleware.Authentication(a.logger, a.verifier))
	}

	registrars, err := a.buildRoutes()
	if err != nil {
		return nil, err
	}
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}

	api.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, a.rootLinks(c))
	})

	return e, nil
}

// rootLinks lists the collections served under the api base path.
func (a *App) rootLinks(c echo.Context) map[string]string {
	ctx := c.Request().Context()
	links := make(map[string]string, len(urls.Collections))
	for _, collection := range urls.Collections {
		links[collection] = a.urls.Collection(ctx, collection)
	}
	return links
}
