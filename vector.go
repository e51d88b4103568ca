package main

import "math"

// Vec3 is a world-space position or direction. Z is up.
type Vec3 struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
	Z float64 `msgpack:"z" json:"z"`
}

// UpVector is the world up axis
var UpVector = Vec3{Z: 1}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Len returns the Euclidean length
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the distance between two points
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Len()
}

// Rotator is a facing in radians. Yaw turns around Z, pitch tilts toward Z.
type Rotator struct {
	Yaw   float64 `msgpack:"yaw" json:"yaw"`
	Pitch float64 `msgpack:"pitch" json:"pitch"`
}

// Forward returns the unit vector the rotator faces
func (r Rotator) Forward() Vec3 {
	cp := math.Cos(r.Pitch)
	return Vec3{
		X: cp * math.Cos(r.Yaw),
		Y: cp * math.Sin(r.Yaw),
		Z: math.Sin(r.Pitch),
	}
}

// Right returns the horizontal unit vector to the right of the yaw
func (r Rotator) Right() Vec3 {
	return Vec3{X: -math.Sin(r.Yaw), Y: math.Cos(r.Yaw)}
}

// Transform is a location plus facing
type Transform struct {
	Location Vec3    `msgpack:"l"`
	Rotation Rotator `msgpack:"r"`
}
