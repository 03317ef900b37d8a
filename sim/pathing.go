package sim

import "github.com/jakecoffman/cp"

// PathBlockReason explains a failed or interrupted path request.
type PathBlockReason uint8

const (
	PathOK PathBlockReason = iota
	PathNoPath
	PathObstructed
	PathOutOfBounds
)

var pathBlockNames = [...]string{"ok", "no_path", "obstructed", "out_of_bounds"}

func (r PathBlockReason) String() string {
	if int(r) < len(pathBlockNames) {
		return pathBlockNames[r]
	}
	return "invalid"
}

// PathRequest asks for a route for a body of the given radius.
type PathRequest struct {
	From   cp.Vector
	To     cp.Vector
	Radius float64
}

// PathResult carries the ordered stops, or a block reason.
type PathResult struct {
	Stops   []cp.Vector
	Blocked PathBlockReason
}

// Pather plans routes. Implementations own all terrain knowledge; the
// core only walks the stops.
type Pather interface {
	FindPath(req PathRequest) PathResult
}

// StraightLinePather is the default: every destination is reachable in
// one hop.
type StraightLinePather struct{}

func (StraightLinePather) FindPath(req PathRequest) PathResult {
	return PathResult{Stops: []cp.Vector{req.To}}
}

// pathFollow walks a mob through its remaining stops.
type pathFollow struct {
	stops []cp.Vector
	next  int
}

func (p *pathFollow) current() cp.Vector { return p.stops[p.next] }

// advance moves to the next stop, false when the route is done.
func (p *pathFollow) advance() bool {
	if p.next+1 >= len(p.stops) {
		return false
	}
	p.next++
	return true
}
