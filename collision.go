package main

// CheckCollision checks if two spheres overlap
func CheckCollision(a Vec3, ra float64, b Vec3, rb float64) bool {
	d := b.Sub(a)
	dist2 := d.X*d.X + d.Y*d.Y + d.Z*d.Z
	radSum := ra + rb
	return dist2 <= radSum*radSum
}

// closestOnSegment returns the point on segment [a, b] closest to p
func closestOnSegment(a, b, p Vec3) Vec3 {
	ab := b.Sub(a)
	den := ab.X*ab.X + ab.Y*ab.Y + ab.Z*ab.Z
	if den == 0 {
		return a
	}
	ap := p.Sub(a)
	t := (ap.X*ab.X + ap.Y*ab.Y + ap.Z*ab.Z) / den
	t = Clamp(t, 0, 1)
	return a.Add(ab.Scale(t))
}

// CheckCapsuleSphere checks if an upright capsule centred at c overlaps a
// sphere. halfHeight includes the hemispherical caps.
func CheckCapsuleSphere(c Vec3, radius, halfHeight float64, s Vec3, sr float64) bool {
	inner := halfHeight - radius
	if inner < 0 {
		inner = 0
	}
	top := c.Add(UpVector.Scale(inner))
	bottom := c.Sub(UpVector.Scale(inner))
	return CheckCollision(closestOnSegment(bottom, top, s), radius, s, sr)
}
