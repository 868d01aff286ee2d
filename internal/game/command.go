package game

import "fmt"

// CommandType selects what a SpacecraftCommand asks of an AI pilot.
type CommandType string

const (
	CommandJump      CommandType = "jump"
	CommandTarget    CommandType = "target"
	CommandStandDown CommandType = "standDown"
)

type JumpWay string

const (
	JumpIn  JumpWay = "in"
	JumpOut JumpWay = "out"
)

type FormationType string

const (
	FormationWedge FormationType = "wedge"
	FormationLine  FormationType = "line"
)

// Formation lays out squad members behind an anchor craft. Spacing is in the
// anchor's local frame.
type Formation struct {
	Type    FormationType
	Spacing Vec3
}

// SlotOffset returns the local offset of the slot at index (0 is the leader).
func (f Formation) SlotOffset(index int) Vec3 {
	if index <= 0 {
		return Vec3{}
	}
	switch f.Type {
	case FormationLine:
		return f.Spacing.Scale(float64(index))
	default:
		row := float64((index + 1) / 2)
		side := 1.0
		if index%2 == 0 {
			side = -1
		}
		return Vec3{X: side * row * f.Spacing.X, Y: row * f.Spacing.Y, Z: row * f.Spacing.Z}
	}
}

type JumpCommand struct {
	Way       JumpWay
	Anchor    string     // spacecraft ID the pose is relative to
	Relative  *Vec3      // offset in the anchor's frame
	Formation *Formation // slot chosen by the jumper's squad index
	Position  *Vec3
	Rotations []Rotation
	Distance  float64 // random displacement when no pose is given
}

type TargetCommand struct {
	Single   string
	List     []string
	Squads   []string
	Priority bool
}

// SpacecraftCommand is a scripted order for an AI pilot.
type SpacecraftCommand struct {
	Command    CommandType
	Jump       *JumpCommand
	Target     *TargetCommand
	ClearCache bool
}

// ParseSpacecraftCommand validates a command object as found in mission documents.
func ParseSpacecraftCommand(params map[string]any) (SpacecraftCommand, error) {
	r := newParamReader(params)
	kind, _ := r.enum("command", true, string(CommandJump), string(CommandTarget), string(CommandStandDown))
	cmd := SpacecraftCommand{Command: CommandType(kind), ClearCache: r.boolean("clearCache")}
	switch cmd.Command {
	case CommandJump:
		cmd.Jump = parseJump(r.object("jump"), r)
	case CommandTarget:
		cmd.Target = parseTarget(r.object("target"), r)
	}
	if err := r.err(); err != nil {
		return SpacecraftCommand{}, fmt.Errorf("command: %w", err)
	}
	return cmd, nil
}

func parseJump(obj map[string]any, parent *paramReader) *JumpCommand {
	r := newParamReader(obj)
	jump := &JumpCommand{Way: JumpIn}
	if way, ok := r.enum("way", false, string(JumpIn), string(JumpOut)); ok {
		jump.Way = JumpWay(way)
	}
	jump.Anchor, _ = r.str("anchor", false)
	jump.Relative = r.vec3("relativePosition")
	jump.Position = r.vec3("position")
	jump.Rotations = r.rotations("rotations")
	if d, ok := r.number("distance", false); ok {
		if d < 0 {
			r.fail("\"distance\" cannot be negative")
		}
		jump.Distance = d
	}
	if f := r.object("formation"); f != nil {
		fr := newParamReader(f)
		kind, ok := fr.enum("type", true, string(FormationWedge), string(FormationLine))
		spacing := fr.vec3("spacing")
		if spacing == nil {
			fr.fail("missing required vector \"spacing\"")
		}
		if ok && spacing != nil {
			jump.Formation = &Formation{Type: FormationType(kind), Spacing: *spacing}
		}
		if err := fr.err(); err != nil {
			r.fail("formation: %v", err)
		}
	}
	if jump.Formation != nil && jump.Anchor == "" {
		r.fail("formation needs an anchor")
	}
	if err := r.err(); err != nil {
		parent.fail("jump: %v", err)
	}
	return jump
}

func parseTarget(obj map[string]any, parent *paramReader) *TargetCommand {
	r := newParamReader(obj)
	t := &TargetCommand{}
	t.Single, _ = r.str("single", false)
	t.List = r.strings("list")
	t.Squads = r.strings("squads")
	t.Priority = r.boolean("priority")
	if t.Single == "" && len(t.List) == 0 && len(t.Squads) == 0 {
		r.fail("one of \"single\", \"list\" or \"squads\" is required")
	}
	if err := r.err(); err != nil {
		parent.fail("target: %v", err)
	}
	return t
}
