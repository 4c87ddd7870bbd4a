// Package particles runs the decorative spark and camera-shake decay.
package particles

import (
	"math"

	"github.com/google/uuid"

	"github.com/nathoo/gitquest/tuning"
	"github.com/nathoo/gitquest/types"
)

// Rand is the random source bursts draw velocities from.
type Rand interface {
	Float() float64
}

// frame is the reference step the per-frame tuning values are expressed in.
const frame = 1.0 / 60

// Burst creates n particles at at with randomized outward velocities.
func Burst(r Rand, cfg tuning.Particles, at types.Point, color string, n int) []types.Particle {
	out := make([]types.Particle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.Particle{
			ID:       uuid.NewString(),
			Position: at,
			Velocity: types.Point{
				X: (r.Float() - 0.5) * cfg.Spread,
				Y: (r.Float() - 0.5) * cfg.Spread,
				Z: r.Float() * cfg.Lift,
			},
			Color: color,
			Life:  1,
		})
	}
	return out
}

// At converts a grid coordinate to a particle origin.
func At(v types.Vector3) types.Point {
	return types.Point{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Lerp interpolates between a and b; t=0 is a, t=1 is b.
func Lerp(a, b types.Point, t float64) types.Point {
	return types.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// Step advances particles and shake by dt seconds. Dead particles are
// dropped. The input slice is reused.
func Step(ps []types.Particle, shake float64, p tuning.Particles, s tuning.Shake, dt float64) ([]types.Particle, float64) {
	if len(ps) == 0 && shake <= s.Epsilon {
		return ps, 0
	}
	k := dt / frame

	live := ps[:0]
	for _, pt := range ps {
		pt.Position.X += pt.Velocity.X * k
		pt.Position.Y += pt.Velocity.Y * k
		pt.Position.Z += pt.Velocity.Z * k
		pt.Velocity.Z -= p.Gravity * k
		pt.Life -= p.Decay * k
		if pt.Life > 1e-9 {
			live = append(live, pt)
		}
	}

	shake *= math.Pow(s.Decay, k)
	if shake < s.Epsilon {
		shake = 0
	}
	return live, shake
}
