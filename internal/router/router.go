package router

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"parcelbook/docs"
	"parcelbook/internal/config"
	"parcelbook/internal/errors"
	"parcelbook/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	healthHandler *handler.HealthHandler,
	userHandler *handler.UserHandler,
	parcelHandler *handler.ParcelHandler,
	adminHandler *handler.AdminHandler,
) {
	e.HTTPErrorHandler = errorHandler(e)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig()))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch,
			http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeout(cfg.RequestTimeout))
	}

	e.Validator = &CustomValidator{validator: validator.New()}

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(cfg.SwaggerHost, "https://")
		docs.SwaggerInfo.Host = strings.TrimPrefix(host, "http://")
	}

	e.GET("/", healthHandler.Root)
	e.GET("/healthz", healthHandler.Healthz)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Account registry
	e.POST("/users", userHandler.Register)
	e.GET("/user/:email", userHandler.GetByEmail)
	e.PUT("/user/:email", userHandler.UpdateProfile)
	e.DELETE("/user/:email", userHandler.Delete)
	e.PATCH("/user-role/:id", userHandler.UpdateRole)
	e.GET("/all-users", userHandler.ListAll)
	e.GET("/allDeliveryMan", userHandler.ListDeliveryMen)

	// Parcel ledger, paths the web client already calls
	e.POST("/parcel-book", parcelHandler.Book)
	e.GET("/my-parcel-book/:email", parcelHandler.ListByOwner)
	e.PUT("/my-parcel-book/:id", parcelHandler.Replace)
	e.PATCH("/my-parcel-book/:id", parcelHandler.Patch)
	e.DELETE("/parcel/:id", parcelHandler.Delete)
	e.PUT("/manage-parcel/:id", parcelHandler.Manage)
	e.GET("/all-parcels", parcelHandler.ListAll)

	parcels := e.Group("/parcels")
	parcels.GET("/by-owner/:email", parcelHandler.ListByOwner)
	parcels.GET("/:id", parcelHandler.GetByID)
	parcels.GET("/:id/history", parcelHandler.History)
	parcels.PATCH("/:id/assign", parcelHandler.Assign)

	// Admin dashboard
	e.GET("/admin-statistics", adminHandler.Statistics)
	e.GET("/booked-by-date", adminHandler.BookedByDate)
}

func requestLoggerConfig() middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				}
			}
			slog.LogAttrs(c.Request().Context(), level, "http_request", attrs...)
			return nil
		},
	}
}

// errorHandler turns plain errors into ErrorResponse bodies and logs server faults.
func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// the request logger already handled this error
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if !stderrors.As(err, &he) {
			httpErr := errors.MapErrorToHTTP(err)
			he = echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
		}
		if he.Code >= http.StatusInternalServerError {
			cause := err
			if he.Internal != nil {
				cause = he.Internal
			}
			slog.ErrorContext(c.Request().Context(), "request failed",
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"status", he.Code,
				"error", cause,
			)
		}
		e.DefaultHTTPErrorHandler(he, c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
