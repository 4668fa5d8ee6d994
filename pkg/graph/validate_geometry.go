package graph

import (
	"fmt"
	"math"
)

// MinFeature is the smallest dimension, in metres, that meshes cleanly.
// Anything thinner produces a warning.
const MinFeature = 1e-3

// ---------------------------------------------------------------------------
// Geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all geometric checks.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validatePositiveDimensions(g)...)
	errs = append(errs, validateTubePaths(g)...)
	warnings = append(warnings, validateTorusProportions(g)...)
	warnings = append(warnings, validateFeatureSize(g)...)

	return errs, warnings
}

// dims returns the named dimensions of a primitive payload.
func dims(d NodeData) map[string]float64 {
	switch d := d.(type) {
	case BoxData:
		return map[string]float64{"size.x": d.Size.X, "size.y": d.Size.Y, "size.z": d.Size.Z}
	case CylinderData:
		return map[string]float64{"radius": d.Radius, "length": d.Length}
	case ConeData:
		// One end of a cone may close to a point.
		return map[string]float64{"length": d.Length, "max radius": math.Max(d.RadiusBottom, d.RadiusTop)}
	case SphereData:
		return map[string]float64{"radius": d.Radius}
	case TorusData:
		return map[string]float64{"ring radius": d.RingRadius, "tube radius": d.TubeRadius, "arc": d.Arc}
	case TubeData:
		return map[string]float64{"radius": d.Radius}
	default:
		return nil
	}
}

// validatePositiveDimensions checks that every primitive dimension is
// strictly positive.
func validatePositiveDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		if node.Kind != NodePrimitive {
			continue
		}
		for name, v := range dims(node.Data) {
			if v <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("%s is %.4f, must be positive", name, v),
					Severity: SeverityError,
				})
			}
		}
		if c, ok := node.Data.(ConeData); ok && (c.RadiusBottom < 0 || c.RadiusTop < 0) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "cone radius is negative",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateTubePaths checks that every tube has at least one segment.
func validateTubePaths(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		td, ok := node.Data.(TubeData)
		if !ok {
			continue
		}
		if len(td.Path) < 2 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("tube path has %d points, need at least 2", len(td.Path)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateTorusProportions warns about self-intersecting tori and arcs
// beyond a full turn.
func validateTorusProportions(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Nodes {
		td, ok := node.Data.(TorusData)
		if !ok {
			continue
		}
		if td.TubeRadius >= td.RingRadius {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("tube radius %.3f reaches ring radius %.3f; torus self-intersects", td.TubeRadius, td.RingRadius),
			})
		}
		if td.Arc > 2*math.Pi+1e-9 {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("torus arc %.3f rad exceeds a full turn", td.Arc),
			})
		}
	}
	return warnings
}

// validateFeatureSize warns about positive dimensions below MinFeature.
func validateFeatureSize(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Nodes {
		if node.Kind != NodePrimitive {
			continue
		}
		if td, ok := node.Data.(TorusData); ok {
			// Arc is an angle, not a length.
			if td.TubeRadius > 0 && td.TubeRadius < MinFeature {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: fmt.Sprintf("tube radius %.5f is below the %.3f m feature size", td.TubeRadius, MinFeature),
				})
			}
			continue
		}
		for name, v := range dims(node.Data) {
			if v > 0 && v < MinFeature {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: fmt.Sprintf("%s %.5f is below the %.3f m feature size", name, v, MinFeature),
				})
			}
		}
	}
	return warnings
}
