package structure

// axis is the horizontal axis a linear structure runs along.
type axis uint8

const (
	axisX axis = iota
	axisZ
)

// axisOf maps a direction parameter onto an axis. Anything but "x" is Z.
func axisOf(direction string) axis {
	if direction == "x" {
		return axisX
	}
	return axisZ
}

// at converts an (along, across) offset from (x, z) into world X/Z.
func (a axis) at(x, z, along, across int) (int, int) {
	if a == axisX {
		return x + along, z + across
	}
	return x + across, z + along
}

// circle visits the cells of a disc of radius r, dx-major. When filled is
// false only the outer ring (the annulus between r-1 and r) is visited.
func circle(r int, filled bool, fn func(dx, dz int)) {
	r2 := r * r
	inner2 := (r - 1) * (r - 1)
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			d2 := dx*dx + dz*dz
			if d2 <= r2 && (filled || d2 > inner2) {
				fn(dx, dz)
			}
		}
	}
}

// square visits a (2r+1)² square, or only its perimeter when filled is false.
func square(r int, filled bool, fn func(dx, dz int)) {
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			if filled || abs(dx) == r || abs(dz) == r {
				fn(dx, dz)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
