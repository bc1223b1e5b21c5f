package client

// MovementThreshold is the squared distance, over all five pose
// components, a pose must move from the last sent one before another
// position update goes out.
const MovementThreshold = 1e-4

// Pose is a player position (X, Y, Z) and view rotation (RX, RY).
type Pose struct {
	X, Y, Z float32
	RX, RY  float32
}

// positionTracker remembers the last pose actually sent.  It starts at
// the origin and is only touched by the application goroutine.
type positionTracker struct {
	last Pose
}

// distance2 is the squared distance between p and the last sent pose.
func (t *positionTracker) distance2(p Pose) float32 {
	dx := t.last.X - p.X
	dy := t.last.Y - p.Y
	dz := t.last.Z - p.Z
	drx := t.last.RX - p.RX
	dry := t.last.RY - p.RY
	return dx*dx + dy*dy + dz*dz + drx*drx + dry*dry
}

// moved reports whether p is far enough from the last sent pose.
func (t *positionTracker) moved(p Pose) bool {
	return t.distance2(p) >= MovementThreshold
}

// sent records p as the last pose on the wire.
func (t *positionTracker) sent(p Pose) { t.last = p }
