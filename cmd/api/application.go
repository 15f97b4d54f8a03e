package main

import (
	"log/slog"
	"moviecatalog/proj/internal/api/tasks"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/services"
	"reflect"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

type Application struct {
	cfg         *config.Config
	log         *slog.Logger
	Http        *Http
	services    *services.Services
	validator   *govalidator.Validate
	formDecoder *schema.Decoder
	tasks       *tasks.BackgroundTasks
}

func NewApplication(
	cfg *config.Config,
	log *slog.Logger,
	services *services.Services,
	backgroundTasks *tasks.BackgroundTasks,
) *Application {
	return &Application{
		cfg:         cfg,
		log:         log,
		services:    services,
		validator:   validator.New(),
		formDecoder: newFormDecoder(),
		tasks:       backgroundTasks,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}

// newFormDecoder decodes query strings and multipart fields into structs tagged with `schema`.
func newFormDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(fields.Date{}, func(value string) reflect.Value {
		date, err := fields.ParseDate(value)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(date)
	})
	return decoder
}
