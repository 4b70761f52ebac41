package opt

// Point is a stop position fed to the tour heuristic.
type Point struct {
	Lat float64
	Lng float64
}

// NearestNeighborOrder builds a greedy nearest-neighbor tour over points and
// returns the visiting order as indices into the input slice.
//
// The tour is anchored at index 0: the first stop is kept as the start on
// purpose, so the user's chosen opening stop is never reordered away. Each
// step appends the unvisited point closest to the last-placed one; ties go to
// the earliest original position (first-found minimum in scan order), which
// keeps the result deterministic. O(n^2), fine for the small n of a day plan.
func NearestNeighborOrder(points []Point) []int {
	n := len(points)
	if n == 0 {
		return nil
	}
	order := make([]int, 0, n)
	visited := make([]bool, n)
	cur := 0
	order = append(order, cur)
	visited[cur] = true
	for len(order) < n {
		next := -1
		var best float64
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			d := DistanceKm(points[cur].Lat, points[cur].Lng, points[j].Lat, points[j].Lng)
			if next == -1 || d < best {
				next = j
				best = d
			}
		}
		visited[next] = true
		order = append(order, next)
		cur = next
	}
	return order
}
