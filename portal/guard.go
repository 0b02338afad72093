package portal

// Guard records endpoints used during one traversal call
// The zero value is ready; a nil *Guard marks nothing and blocks nothing
type Guard struct {
	inline [8]int
	n      int
	spill  []int
}

func (g *Guard) Mark(i int) {
	if g == nil || g.Used(i) {
		return
	}
	if g.n < len(g.inline) {
		g.inline[g.n] = i
		g.n++
		return
	}
	g.spill = append(g.spill, i)
}

func (g *Guard) Used(i int) bool {
	if g == nil {
		return false
	}
	for k := 0; k < g.n; k++ {
		if g.inline[k] == i {
			return true
		}
	}
	for _, v := range g.spill {
		if v == i {
			return true
		}
	}
	return false
}

// Count returns the number of marked endpoints
func (g *Guard) Count() int {
	if g == nil {
		return 0
	}
	return g.n + len(g.spill)
}

// Reset clears the guard between independent traversal calls
func (g *Guard) Reset() {
	if g == nil {
		return
	}
	g.n = 0
	g.spill = g.spill[:0]
}
