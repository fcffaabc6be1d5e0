package kernel

import "errors"

// ErrUnsupportedMetric is returned by Provider for an unrecognized Metric.
var ErrUnsupportedMetric = errors.New("kernel: unsupported metric")
