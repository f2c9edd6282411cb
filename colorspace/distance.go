// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package colorspace

import (
	"fmt"
	"math"
	"strings"

	"github.com/jkl1337/go-chromath/deltae"
)

// Scale weights the squared L, a and b differences of a distance.
type Scale [3]float64

var (
	// UnitScale is the full perceptual distance, lightness included.
	UnitScale = Scale{1, 1, 1}

	// HueScale suppresses lightness so chromaticity dominates.
	HueScale = Scale{0.01, 1, 1}
)

// Distance returns the weighted Euclidean distance between two Lab colors:
// sqrt(sL*dL^2 + sa*da^2 + sb*db^2).
func Distance(a, b Lab, scale Scale) float64 {
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(scale[0]*dl*dl + scale[1]*da*da + scale[2]*db*db)
}

// Metric selects how two colors are compared.
type Metric string

const (
	// MetricHue ranks mostly by chromaticity (HueScale).
	MetricHue Metric = "hue"
	// MetricAbsolute ranks by full Lab distance including lightness (UnitScale).
	MetricAbsolute Metric = "absolute"
	// MetricCIEDE2000 ranks by the CIEDE2000 color difference.
	MetricCIEDE2000 Metric = "ciede2000"
)

// DefaultMetric is used when no metric is requested.
const DefaultMetric = MetricHue

// Metrics lists every supported metric name.
func Metrics() []Metric {
	return []Metric{MetricHue, MetricAbsolute, MetricCIEDE2000}
}

// ParseMetric resolves a metric name, case-insensitively. The empty string
// yields DefaultMetric.
func ParseMetric(name string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(name))); m {
	case "":
		return DefaultMetric, nil
	case MetricHue, MetricAbsolute, MetricCIEDE2000:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}

var klch = &deltae.KLChDefault

// Func returns the distance function for the metric.
func (m Metric) Func() (func(a, b Lab) float64, error) {
	switch m {
	case MetricHue:
		return func(a, b Lab) float64 { return Distance(a, b, HueScale) }, nil
	case MetricAbsolute:
		return func(a, b Lab) float64 { return Distance(a, b, UnitScale) }, nil
	case MetricCIEDE2000:
		return func(a, b Lab) float64 { return deltae.CIE2000(a.chromath(), b.chromath(), klch) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, string(m))
	}
}

func (m Metric) String() string {
	return string(m)
}
