package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"gopkg.in/alexcesaro/statsd.v2"
)

type ProfilerConfig struct {
	Skipper Skipper
	Log     Logger
	Address string
	Service string
}

var DefaultProfilerConfig = ProfilerConfig{
	Skipper: DefaultSkipper,
	Address: ":8125",
	Service: "smart-cart",
}

// NewStatsdClient dials the statsd daemon. statsd speaks UDP, so an absent
// daemon does not fail here.
func NewStatsdClient(config ProfilerConfig) (*statsd.Client, error) {
	if config.Address == "" {
		config.Address = DefaultProfilerConfig.Address
	}
	if config.Service == "" {
		config.Service = DefaultProfilerConfig.Service
	}
	return statsd.New(statsd.Address(config.Address), statsd.Prefix(config.Service))
}

// Profiler sends one timing per request, keyed by method, route and status,
// for example "response.post./api/v1/search.200".
func Profiler(client *statsd.Client, config ProfilerConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultProfilerConfig.Skipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			if config.Skipper(c) {
				return next(c)
			}

			t := client.NewTiming()
			if err = next(c); err != nil {
				c.Error(err)
			}

			bucket := timingBucket(c.Request().Method, c.Path(), c.Response().Status)
			if config.Log != nil {
				config.Log.Debugf("statsd timing %s", bucket)
			}
			t.Send(bucket)
			return err
		}
	}
}

func timingBucket(method, path string, status int) string {
	if path == "" {
		path = notFoundPath
	}
	path = strings.ReplaceAll(path, ":", "")
	return strings.ToLower(fmt.Sprintf("response.%s.%s.%d", method, path, status))
}
