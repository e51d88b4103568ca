package main

// Projectile classes known to the spawner
const (
	ClassDefaultBall ClassToken = "DefaultBall"
	ClassPowerBall   ClassToken = "PowerBall"
)

// ProjectileClassDef holds the stats for a projectile class
type ProjectileClassDef struct {
	Speed    float64 // units/s along the spawn rotation
	Radius   float64
	Damage   float64
	Lifetime float64 // seconds
}

var ProjectileClasses = map[ClassToken]ProjectileClassDef{
	// Default: the regular fireball
	ClassDefaultBall: {Speed: 1500, Radius: 15, Damage: 10, Lifetime: 3},
	// Power: slower, larger, hits much harder. Fired once after pickup.
	ClassPowerBall: {Speed: 1100, Radius: 35, Damage: 40, Lifetime: 4},
}

// GetProjectileClass returns the definition for a class token. Unknown
// tokens get the default ball.
func GetProjectileClass(class ClassToken) ProjectileClassDef {
	def, ok := ProjectileClasses[class]
	if !ok {
		return ProjectileClasses[ClassDefaultBall]
	}
	return def
}

// KnownProjectileClass reports whether the class token is registered
func KnownProjectileClass(class ClassToken) bool {
	_, ok := ProjectileClasses[class]
	return ok
}
