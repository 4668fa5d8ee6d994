package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/plantkit/pkg/config"
	"github.com/chazu/plantkit/pkg/duct"
	"github.com/chazu/plantkit/pkg/equipment"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/port"
	"github.com/chazu/plantkit/pkg/profile"
)

// Values passed between builtins.

type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpBox struct {
	box geom.Box
}

func (b *sexpBox) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(box %v %v)", b.box.Min, b.box.Max)
}
func (b *sexpBox) Type() *zygo.RegisteredType { return nil }

type sexpSection struct {
	sec profile.Section
}

func (s *sexpSection) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(section %g..%g r %g..%g)", s.sec.HeightStart, s.sec.HeightEnd, s.sec.RadiusStart, s.sec.RadiusEnd)
}
func (s *sexpSection) Type() *zygo.RegisteredType { return nil }

type sexpStairway struct {
	st config.Stairway
}

func (s *sexpStairway) SexpString(ps *zygo.PrintState) string { return "(stairway)" }
func (s *sexpStairway) Type() *zygo.RegisteredType            { return nil }

// sexpEquipment is the handle returned by tower, tank and pump.
type sexpEquipment struct {
	name string
	kind equipment.Kind
}

func (e *sexpEquipment) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", e.kind, e.name)
}
func (e *sexpEquipment) Type() *zygo.RegisteredType { return nil }

// layout accumulates the records declared by a script.
type layout struct {
	file  *config.File
	names map[string]bool
}

func newLayout() *layout {
	return &layout{file: &config.File{}, names: make(map[string]bool)}
}

func (l *layout) claim(fn, name string) error {
	if l.names[name] {
		return fmt.Errorf("%s: name %q already declared", fn, name)
	}
	l.names[name] = true
	return nil
}

type builtin func(l *layout, a kwArgs) (zygo.Sexp, error)

var builtins = map[string]builtin{
	"plant":    plantBuiltin,
	"mesh":     meshBuiltin,
	"vec3":     vec3Builtin,
	"box":      boxBuiltin,
	"section":  sectionBuiltin,
	"stairway": stairwayBuiltin,
	"tower":    towerBuiltin,
	"tank":     tankBuiltin,
	"pump":     pumpBuiltin,
	"port":     portBuiltin,
	"duct":     ductBuiltin,
}

// registerBuiltins installs the layout vocabulary into env. Source must
// pass through preprocessSource first so keywords are recognizable.
func registerBuiltins(env *zygo.Zlisp, l *layout) {
	for name, fn := range builtins {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return fn(l, parseArgs(name, args))
		})
	}
}

// (plant "urea" :workers 4)
func plantBuiltin(l *layout, a kwArgs) (zygo.Sexp, error) {
	if err := a.allow("workers"); err != nil {
		return zygo.SexpNull, err
	}
	name, err := a.name()
	if err != nil {
		return zygo.SexpNull, err
	}
	workers, err := a.integer("workers")
	if err != nil {
		return zygo.SexpNull, err
	}
	l.file.Plant.Name = name
	if workers != nil {
		l.file.Plant.Workers = *workers
	}
	return zygo.SexpNull, nil
}

// (mesh :resolution 48 :workers 4 :roles (list "shell" "elbow"))
func meshBuiltin(l *layout, a kwArgs) (zygo.Sexp, error) {
	if err := a.allow("resolution", "workers", "roles"); err != nil {
		return zygo.SexpNull, err
	}
	res, err := a.integer("resolution")
	if err != nil {
		return zygo.SexpNull, err
	}
	workers, err := a.integer("workers")
	if err != nil {
		return zygo.SexpNull, err
	}
	roles, err := a.list("roles")
	if err != nil {
		return zygo.SexpNull, err
	}
	m := &l.file.Mesh
	if res != nil {
		m.Resolution = *res
	}
	if workers != nil {
		m.Workers = *workers
	}
	for i, r := range roles {
		s, err := toKeywordString(r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: roles[%d]: %w", i, err)
		}
		m.Roles = append(m.Roles, s)
	}
	return zygo.SexpNull, nil
}

// (vec3 1 2 3)
func vec3Builtin(_ *layout, a kwArgs) (zygo.Sexp, error) {
	if len(a.positional) != 3 || len(a.kw) != 0 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 numbers")
	}
	var c [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		f, err := toFloat64(a.positional[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
		}
		c[i] = f
	}
	return &sexpVec3{vec: geom.V3(c[0], c[1], c[2])}, nil
}

// (box (vec3 -2 0 -2) (vec3 2 5 2))
func boxBuiltin(_ *layout, a kwArgs) (zygo.Sexp, error) {
	if len(a.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("box requires min and max corners")
	}
	lo, err := toVec3(a.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box: min: %w", err)
	}
	hi, err := toVec3(a.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box: max: %w", err)
	}
	return &sexpBox{box: geom.Box{Min: lo, Max: hi}}, nil
}

// (section :from 0 :to 10 :radius 5)
// (section :from 10 :to 12 :radius-start 5 :radius-end 4)
func sectionBuiltin(_ *layout, a kwArgs) (zygo.Sexp, error) {
	if err := a.allow("from", "to", "radius", "radius-start", "radius-end"); err != nil {
		return zygo.SexpNull, err
	}
	var s profile.Section
	var err error
	if s.HeightStart, err = a.floatOr("from", 0); err != nil {
		return zygo.SexpNull, err
	}
	to, err := a.float("to")
	if err != nil {
		return zygo.SexpNull, err
	}
	if to == nil {
		return zygo.SexpNull, fmt.Errorf("section: :to is required")
	}
	s.HeightEnd = *to

	r, err := a.float("radius")
	if err != nil {
		return zygo.SexpNull, err
	}
	if r != nil {
		s.RadiusStart, s.RadiusEnd = *r, *r
	}
	if s.RadiusStart, err = a.floatOr("radius-start", s.RadiusStart); err != nil {
		return zygo.SexpNull, err
	}
	if s.RadiusEnd, err = a.floatOr("radius-end", s.RadiusEnd); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSection{sec: s}, nil
}

// (stairway :turns 3 :clearance 4 :offset 45 :steps 200 :treads 60 :handrails false)
func stairwayBuiltin(_ *layout, a kwArgs) (zygo.Sexp, error) {
	if err := a.allow("turns", "clearance", "offset", "steps", "treads", "handrails"); err != nil {
		return zygo.SexpNull, err
	}
	var st config.Stairway
	var err error
	if st.Turns, err = a.float("turns"); err != nil {
		return zygo.SexpNull, err
	}
	if st.Clearance, err = a.float("clearance"); err != nil {
		return zygo.SexpNull, err
	}
	if st.AngularOffset, err = a.float("offset"); err != nil {
		return zygo.SexpNull, err
	}
	if st.StepCount, err = a.integer("steps"); err != nil {
		return zygo.SexpNull, err
	}
	if st.Treads, err = a.integer("treads"); err != nil {
		return zygo.SexpNull, err
	}
	if st.Handrails, err = a.boolean("handrails"); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpStairway{st: st}, nil
}

// placement reads :at and :yaw (degrees).
func placement(a kwArgs) (geom.Vec3, float64, error) {
	at, err := a.vec("at")
	if err != nil {
		return geom.Vec3{}, 0, err
	}
	yaw, err := a.floatOr("yaw", 0)
	return at, yaw, err
}

// (tower "absorber" :at (vec3 0 0 -40) :yaw 90 :stairway (stairway ...))
//
// :sections replaces the body profile; otherwise :height and the tier
// radii adjust the default tiered body.
func towerBuiltin(l *layout, a kwArgs) (zygo.Sexp, error) {
	if err := a.allow("at", "yaw", "sections", "stairway", "no-stairway", "nozzle-radius",
		"height", "lower-radius", "middle-radius", "upper-radius", "transition-height"); err != nil {
		return zygo.SexpNull, err
	}
	name, err := a.name()
	if err != nil {
		return zygo.SexpNull, err
	}
	t := config.Tower{Name: name}
	if t.Position, t.Yaw, err = placement(a); err != nil {
		return zygo.SexpNull, err
	}
	if t.NozzleRadius, err = a.float("nozzle-radius"); err != nil {
		return zygo.SexpNull, err
	}
	if t.NoStairway, err = a.flag("no-stairway"); err != nil {
		return zygo.SexpNull, err
	}

	sections, err := a.list("sections")
	if err != nil {
		return zygo.SexpNull, err
	}
	for i, item := range sections {
		s, ok := item.(*sexpSection)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("tower: sections[%d]: expected section, got %s", i, item.SexpString(nil))
		}
		t.Sections = append(t.Sections, s.sec)
	}

	dims := profile.DefaultTowerDims()
	custom := false
	for key, dst := range map[string]*float64{
		"height":            &dims.Height,
		"lower-radius":      &dims.LowerRadius,
		"middle-radius":     &dims.MiddleRadius,
		"upper-radius":      &dims.UpperRadius,
		"transition-height": &dims.TransitionHeight,
	} {
		v, err := a.float(key)
		if err != nil {
			return zygo.SexpNull, err
		}
		if v != nil {
			*dst = *v
			custom = true
		}
	}
	if custom {
		t.Dims = &dims
	}

	if v, ok := a.kw["stairway"]; ok {
		s, ok := v.(*sexpStairway)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("tower: stairway: expected stairway, got %s", v.SexpString(nil))
		}
		st := s.st
		t.Stairway = &st
	}

	if err := l.claim("tower", name); err != nil {
		return zygo.SexpNull, err
	}
	l.file.Towers = append(l.file.Towers, t)
	return &sexpEquipment{name: name, kind: equipment.KindTower}, nil
}

// (tank "tank_a" :at (vec3 -12 0 0) :height 24 :diameter 10 :ribs 40 :no-frame true)
func tankBuiltin(l *layout, a kwArgs) (zygo.Sexp, error) {
	if err := a.allow("at", "yaw", "height", "diameter", "ribs", "no-frame"); err != nil {
		return zygo.SexpNull, err
	}
	name, err := a.name()
	if err != nil {
		return zygo.SexpNull, err
	}
	t := config.Tank{Name: name}
	if t.Position, t.Yaw, err = placement(a); err != nil {
		return zygo.SexpNull, err
	}
	if t.Height, err = a.float("height"); err != nil {
		return zygo.SexpNull, err
	}
	if t.Diameter, err = a.float("diameter"); err != nil {
		return zygo.SexpNull, err
	}
	if t.Ribs, err = a.integer("ribs"); err != nil {
		return zygo.SexpNull, err
	}
	if t.NoFrame, err = a.flag("no-frame"); err != nil {
		return zygo.SexpNull, err
	}
	if err := l.claim("tank", name); err != nil {
		return zygo.SexpNull, err
	}
	l.file.Tanks = append(l.file.Tanks, t)
	return &sexpEquipment{name: name, kind: equipment.KindTank}, nil
}

// (pump "transfer" :at (vec3 0 0 6) :scale 1.2)
func pumpBuiltin(l *layout, a kwArgs) (zygo.Sexp, error) {
	if err := a.allow("at", "yaw", "scale"); err != nil {
		return zygo.SexpNull, err
	}
	name, err := a.name()
	if err != nil {
		return zygo.SexpNull, err
	}
	p := config.Pump{Name: name}
	if p.Position, p.Yaw, err = placement(a); err != nil {
		return zygo.SexpNull, err
	}
	if p.Scale, err = a.float("scale"); err != nil {
		return zygo.SexpNull, err
	}
	if err := l.claim("pump", name); err != nil {
		return zygo.SexpNull, err
	}
	l.file.Pumps = append(l.file.Pumps, p)
	return &sexpEquipment{name: name, kind: equipment.KindPump}, nil
}

// (port tank-a "bottom") or (port "tank_a" :bottom) yields "tank_a.bottom".
func portBuiltin(_ *layout, a kwArgs) (zygo.Sexp, error) {
	if len(a.positional) == 1 && len(a.kw) == 1 && a.trailing != "" {
		// (port feed :inlet): the port keyword was read as a flag.
		a.positional = append(a.positional, &zygo.SexpStr{S: kwPrefix + a.trailing})
	}
	if len(a.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("port requires an equipment and a port name")
	}
	var ref port.Ref
	switch v := a.positional[0].(type) {
	case *sexpEquipment:
		ref.Component = v.name
	default:
		s, err := toString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("port: equipment: %w", err)
		}
		ref.Component = s
	}
	p, err := toKeywordString(a.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("port: name: %w", err)
	}
	ref.Port = p
	return &zygo.SexpStr{S: ref.String()}, nil
}

// (duct "feed" :from (port tank-a "bottom") :to "pump.inlet" :bore 0.2)
//
// Routing keywords are :waypoints, :obstacle, :margin, :diagonal and
// :axis-order. Any spec keyword switches from the default spec.
func ductBuiltin(l *layout, a kwArgs) (zygo.Sexp, error) {
	if err := a.allow("from", "to", "bore", "waypoints", "obstacle", "margin", "diagonal", "axis-order",
		"insulation", "valve-at", "flow-arrows", "support-spacing", "bolts", "flange-factor", "bend-factor"); err != nil {
		return zygo.SexpNull, err
	}
	name, err := a.name()
	if err != nil {
		return zygo.SexpNull, err
	}
	d := config.Duct{Name: name}
	if d.From, err = a.str("from"); err != nil {
		return zygo.SexpNull, err
	}
	if d.To, err = a.str("to"); err != nil {
		return zygo.SexpNull, err
	}
	if d.From == "" || d.To == "" {
		return zygo.SexpNull, fmt.Errorf("duct: :from and :to are required")
	}
	if d.Bore, err = a.floatOr("bore", 0); err != nil {
		return zygo.SexpNull, err
	}
	if d.Margin, err = a.float("margin"); err != nil {
		return zygo.SexpNull, err
	}
	if d.Diagonal, err = a.flag("diagonal"); err != nil {
		return zygo.SexpNull, err
	}
	if d.AxisOrder, err = a.str("axis-order"); err != nil {
		return zygo.SexpNull, err
	}

	points, err := a.list("waypoints")
	if err != nil {
		return zygo.SexpNull, err
	}
	for i, item := range points {
		p, err := toVec3(item)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("duct: waypoints[%d]: %w", i, err)
		}
		d.Waypoints = append(d.Waypoints, p)
	}
	if v, ok := a.kw["obstacle"]; ok {
		b, ok := v.(*sexpBox)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("duct: obstacle: expected box, got %s", v.SexpString(nil))
		}
		box := b.box
		d.Obstacle = &box
	}

	spec, err := ductSpec(a, d.Bore)
	if err != nil {
		return zygo.SexpNull, err
	}
	d.Spec = spec

	if err := l.claim("duct", name); err != nil {
		return zygo.SexpNull, err
	}
	l.file.Ducts = append(l.file.Ducts, d)
	return zygo.SexpNull, nil
}

// ductSpec returns nil when no spec keyword is present, leaving the
// default spec for the bore.
func ductSpec(a kwArgs, bore float64) (*duct.Spec, error) {
	s := duct.DefaultSpec(bore)
	set := false
	for key, dst := range map[string]*float64{
		"support-spacing": &s.SupportSpacing,
		"flange-factor":   &s.FlangeFactor,
		"bend-factor":     &s.BendRadiusFactor,
	} {
		v, err := a.float(key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			*dst = *v
			set = true
		}
	}
	for key, dst := range map[string]*int{
		"flow-arrows": &s.FlowArrows,
		"bolts":       &s.BoltCount,
	} {
		v, err := a.integer(key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			*dst = *v
			set = true
		}
	}
	var err error
	if s.InsulationThickness, err = a.float("insulation"); err != nil {
		return nil, err
	}
	if s.ValveAt, err = a.float("valve-at"); err != nil {
		return nil, err
	}
	if !set && s.InsulationThickness == nil && s.ValveAt == nil {
		return nil, nil
	}
	return &s, nil
}
