// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEllipse_Intersects(t *testing.T) {
	ref := NewPosition(56, 12)

	tests := []struct {
		name string
		a, b Ellipse
		want bool
	}{
		{
			name: "separated on x axis",
			a:    NewEllipse(ref, 0, 0, 5, 2.5, 0),
			b:    NewEllipse(ref, 10, 0, 4, 2.5, 0),
			want: false,
		},
		{
			name: "overlapping on x axis",
			a:    NewEllipse(ref, 2, 0, 5, 2.5, 0),
			b:    NewEllipse(ref, 10, 0, 4, 2.5, 0),
			want: true,
		},
		{
			name: "rotated overlapping",
			a:    NewEllipse(ref, 0, 0, 100, 40, 45),
			b:    NewEllipse(ref, 90, 30, 50, 25, 150),
			want: true,
		},
		{
			name: "rotated overlapping closer",
			a:    NewEllipse(ref, 0, 0, 100, 40, 45),
			b:    NewEllipse(ref, 80, 30, 50, 25, 150),
			want: true,
		},
		{
			name: "rotated tip contact",
			a:    NewEllipse(ref, 0, 0, 100, 40, 62),
			b:    NewEllipse(ref, 118, 0, 100, 50, 30),
			want: true,
		},
		{
			name: "rotated apart",
			a:    NewEllipse(ref, 0, 0, 100, 40, 45),
			b:    NewEllipse(ref, 130, 30, 50, 25, 150),
			want: false,
		},
		{
			name: "coincident centres",
			a:    NewEllipse(ref, 5, 5, 1, 1, 0),
			b:    NewEllipse(ref, 5.05, 5, 1, 1, 90),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a), "intersection must be symmetric")
			assert.True(t, tt.a.Intersects(tt.a), "an ellipse always intersects itself")
		})
	}
}

func TestEllipse_Contains(t *testing.T) {
	e := NewEllipse(NewPosition(0, 0), 10, 10, 20, 5, 90)

	assert.True(t, e.Contains(Point{10, 10}))
	assert.True(t, e.Contains(Point{10, 29}), "major axis points north after rotation")
	assert.False(t, e.Contains(Point{29, 10}))
	assert.True(t, e.Contains(Point{14, 10}))
	assert.False(t, NewEllipse(NewPosition(0, 0), 0, 0, 0, 5, 0).Contains(Point{}))
}
