// Package grid maps wall-clock times onto the vertical axis of the week grid.
//
// The grid covers a fixed 08:00–18:00 window. Offsets are expressed in pixels
// at a given zoom level (pixels per hour) and are never clipped: events that
// start before or end after the window yield negative or out-of-bounds values.
package grid

import (
	"math"
	"time"
)

// Grid window and zoom bounds.
const (
	GridStartHour = 8
	GridEndHour   = 18
	GridHours     = GridEndHour - GridStartHour

	MinZoom     = 15
	MaxZoom     = 100
	DefaultZoom = 32

	zoomStep = 1.25
)

// VerticalOffset returns the distance in pixels from the top of the grid to t.
// Only the clock time of t is used; seconds are ignored.
func VerticalOffset(t time.Time, zoom int) float64 {
	hours := float64(t.Hour()) + float64(t.Minute())/60
	return (hours - GridStartHour) * float64(zoom)
}

// BlockHeight returns the pixel height of a block spanning start to end.
func BlockHeight(start, end time.Time, zoom int) float64 {
	return end.Sub(start).Hours() * float64(zoom)
}

// ColumnHeight is the pixel height of a full day column.
func ColumnHeight(zoom int) float64 {
	return float64(GridHours * zoom)
}

// InWindow reports whether an offset lies inside the visible column.
func InWindow(offset float64, zoom int) bool {
	return offset >= 0 && offset <= ColumnHeight(zoom)
}

// ClampZoom bounds z to [MinZoom, MaxZoom].
func ClampZoom(z int) int {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// ZoomIn returns the next larger zoom level.
func ZoomIn(z int) int {
	return ClampZoom(int(math.Round(float64(z) * zoomStep)))
}

// ZoomOut returns the next smaller zoom level.
func ZoomOut(z int) int {
	return ClampZoom(int(math.Round(float64(z) / zoomStep)))
}

// HourLabels returns the ruler ticks "08:00" through "18:00".
func HourLabels() []string {
	labels := make([]string, 0, GridHours+1)
	for h := GridStartHour; h <= GridEndHour; h++ {
		labels = append(labels, time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("15:04"))
	}
	return labels
}
