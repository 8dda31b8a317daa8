package api

import (
	"github.com/yourname/bloomhealth/internal"
	"github.com/yourname/bloomhealth/internal/service"
)

// App is what the handlers need from the running server. SampleSink is nil
// when the configured provider does not accept pushed samples.
type App interface {
	Logger() internal.Logger
	Hub() *service.Hub
	SampleSink() service.SampleSink
}
