package utils

import (
	"github.com/bacon13/picfeed/utils/dotenv"
	. "github.com/bacon13/picfeed/utils/flag"
	Logger "github.com/bacon13/picfeed/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

// StartProfiler starts the Datadog continuous profiler. Dev runs skip it to
// avoid shipping local profiles.
func StartProfiler() {
	if dotenv.GetDeploymentEnv() != dotenv.ProdEnv {
		return
	}

	if err := profiler.Start(
		profiler.WithService(ServiceName),
		profiler.WithEnv(dotenv.GetDeploymentEnv()),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
			// The profiles below are disabled by
			// default to keep overhead low, but
			// can be enabled as needed.
			// profiler.BlockProfile,
			// profiler.MutexProfile,
			// profiler.GoroutineProfile,
		),
	); err != nil {
		Logger.Log.Fatal(err)
	}
}

// Stop profiler, OK to be closed multiple times
func CloseProfiler() {
	profiler.Stop()
}
