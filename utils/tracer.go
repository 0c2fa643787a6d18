package utils

import (
	"github.com/bacon13/picfeed/utils/dotenv"
	. "github.com/bacon13/picfeed/utils/flag"
	Logger "github.com/bacon13/picfeed/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// StartTracer starts the Datadog tracer for the current service.
func StartTracer() {
	tracer.Start(
		tracer.WithService(ServiceName),
		tracer.WithEnv(dotenv.GetDeploymentEnv()),
	)

	Logger.Log.Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
