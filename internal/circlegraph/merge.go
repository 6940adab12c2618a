package circlegraph

import "tangent-planner/internal/geometry"

// removeContainedCircles drops duplicates and circles fully contained within
// other circles. They cannot contribute reachable tangent points.
func removeContainedCircles(circles []geometry.Circle) []geometry.Circle {
	if len(circles) <= 1 {
		return circles
	}

	dropped := make([]bool, len(circles))

	for i := 0; i < len(circles); i++ {
		if dropped[i] {
			continue
		}

		for j := 0; j < len(circles); j++ {
			if i == j || dropped[j] {
				continue
			}

			// Keep the first of two equal circles
			if circles[i].Equal(circles[j]) {
				if j > i {
					dropped[j] = true
				}
				continue
			}

			if circles[j].Contains(circles[i]) {
				dropped[i] = true
				break
			}

			if circles[i].Contains(circles[j]) {
				dropped[j] = true
			}
		}
	}

	result := make([]geometry.Circle, 0, len(circles))
	for i := 0; i < len(circles); i++ {
		if !dropped[i] {
			result = append(result, circles[i])
		}
	}

	return result
}
