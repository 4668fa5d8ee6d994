package graph

import "github.com/chazu/plantkit/pkg/geom"

// NodeKind enumerates the types of nodes in the primitive tree.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // rigid solid (box, cylinder, torus...)
	NodeGroup                     // named grouping with its own transform
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Role tags what a node represents so the rendering layer can choose a
// material without inspecting names.
type Role string

const (
	RoleAssembly   Role = "assembly"
	RoleBody       Role = "body"
	RoleSpine      Role = "spine"
	RoleTread      Role = "tread"
	RoleStripe     Role = "stripe"
	RoleArm        Role = "arm"
	RoleHandrail   Role = "handrail"
	RoleLight      Role = "light"
	RolePost       Role = "post"
	RolePlatform   Role = "platform"
	RoleShell      Role = "shell"
	RoleInsulation Role = "insulation"
	RoleElbow      Role = "elbow"
	RoleFlange     Role = "flange"
	RoleBolt       Role = "bolt"
	RoleBracket    Role = "bracket"
	RoleValve      Role = "valve"
	RoleArrow      Role = "arrow"
	RoleNozzle     Role = "nozzle"
	RoleFoundation Role = "foundation"
	RoleRib        Role = "rib"
	RoleBeam       Role = "beam"
	RoleCap        Role = "cap"
)

// Node is the fundamental element of the primitive tree.
type Node struct {
	ID        NodeID         `json:"id"`
	Kind      NodeKind       `json:"kind"`
	Name      string         `json:"name"`
	Role      Role           `json:"role,omitempty"`
	Transform geom.Transform `json:"transform"` // relative to the parent node
	Children  []NodeID       `json:"children,omitempty"`
	Data      NodeData       `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
