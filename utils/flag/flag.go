/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
)

var (
	ByPassAuth  bool
	ServiceName string
)

func init() {
	flag.BoolVar(&ByPassAuth, "no_auth", false, "set to true to skip token verification, the caller identity is then read from the 'sub' header as-is")
	flag.StringVar(&ServiceName, "service", APIServer, "name of the service for logging and tracing")
}

// Parse must be called from each service main before flags are read. Parsing
// here instead of init keeps `go test` runs working with their own flags.
func Parse() {
	flag.Parse()
}
