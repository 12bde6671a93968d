package log

import (
	"fmt"
	"io"
	"runtime"

	"github.com/crewjam/rfc5424"
	"github.com/shirou/gopsutil/host"
)

// KV builds a structured-data field for a log call.
func KV(name string, value interface{}) rfc5424.SDParam {
	if s, ok := value.(string); ok {
		return rfc5424.SDParam{Name: name, Value: s}
	}
	return rfc5424.SDParam{Name: name, Value: fmt.Sprintf("%v", value)}
}

// KVErr is shorthand for KV("error", err).
func KVErr(err error) rfc5424.SDParam {
	return KV("error", err)
}

// PrintOSInfo writes a one-line host identification banner, used by
// cmd/matterd at startup.
func PrintOSInfo(wtr io.Writer) {
	platform, _, version, err := host.PlatformInformation()
	if err != nil {
		fmt.Fprintf(wtr, "OS:\tERROR %v\n", err)
		return
	}
	fmt.Fprintf(wtr, "OS:\t%s/%s (%s %s)\n", runtime.GOOS, runtime.GOARCH, platform, version)
}
