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

// Package colorspace converts RGB hex colors to CIE Lab and measures the
// distance between Lab colors.
//
// Conversion follows the standard sRGB pipeline: each 8-bit channel is
// linearized with the sRGB gamma curve, projected to CIE XYZ with the sRGB
// primaries, and mapped to Lab against the D65 reference white. A Converter
// memoizes results per exact input string, so repeated lookups of the same
// catalog color are cheap:
//
//	conv := colorspace.NewConverter()
//	lab, err := conv.ToLab("ff8000")
//
// Distances are weighted Euclidean distances in Lab space. The weight vector
// (Scale) lets callers bias the metric; the "hue" metric nearly ignores
// lightness so that chromaticity dominates the ranking:
//
//	d := colorspace.Distance(a, b, colorspace.HueScale)
package colorspace
