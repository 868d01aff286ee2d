package ai

import (
	"math"
	"slices"

	"SpaceArmada/internal/game"
)

// ExecuteCommand is the command channel scripted actions talk to.
func (a *SpacecraftAI) ExecuteCommand(cmd game.SpacecraftCommand) {
	switch cmd.Command {
	case game.CommandJump:
		if cmd.Jump != nil {
			a.executeJump(cmd.Jump, cmd.ClearCache)
		}
	case game.CommandTarget:
		if cmd.Target != nil {
			a.executeTarget(cmd.Target, cmd.ClearCache)
		}
	case game.CommandStandDown:
		a.standingDown = true
		a.targets = nil
		a.priority = false
		a.craft.SetTarget(nil)
		a.noteTarget()
		a.stopAll()
		a.log.Debug("standing down")
	default:
		a.log.Warn("unknown command", "command", cmd.Command)
	}
}

func (a *SpacecraftAI) executeJump(jump *game.JumpCommand, clearCache bool) {
	craft := a.craft
	if jump.Way == game.JumpOut {
		craft.JumpOut()
		return
	}
	if !craft.IsAway() {
		a.log.Debug("jump in ignored, spacecraft is already present")
		return
	}
	anchor := a.resolveAnchor(jump, clearCache)
	pos, orientation := a.jumpPose(jump, anchor)
	craft.JumpIn(pos, orientation)
	a.log.Debug("jumped in", "position", pos)
}

func (a *SpacecraftAI) resolveAnchor(jump *game.JumpCommand, clearCache bool) *game.Spacecraft {
	if jump.Anchor == "" {
		return nil
	}
	if clearCache {
		delete(a.anchorCache, jump)
	}
	if anchor, ok := a.anchorCache[jump]; ok && anchor.IsAlive() {
		return anchor
	}
	var anchor *game.Spacecraft
	if a.mission != nil {
		anchor = a.mission.GetSpacecraftByID(jump.Anchor)
	}
	if anchor == nil {
		a.log.Warn("jump anchor not found", "anchor", jump.Anchor)
		return nil
	}
	a.anchorCache[jump] = anchor
	return anchor
}

// jumpPose works out where the craft appears: a formation slot or offset
// relative to the anchor, an explicit position, or a random point at the
// jump distance.
func (a *SpacecraftAI) jumpPose(jump *game.JumpCommand, anchor *game.Spacecraft) (game.Vec3, game.Basis) {
	basePos := a.craft.Position()
	baseOrientation := a.craft.Orientation()
	if anchor != nil {
		basePos = anchor.Position()
		baseOrientation = anchor.Orientation()
	}
	if len(jump.Rotations) > 0 {
		if o, err := game.OrientationFromRotations(jump.Rotations); err == nil {
			baseOrientation = o
		} else {
			a.log.Warn("invalid jump rotations", "error", err)
		}
	}

	switch {
	case jump.Formation != nil && anchor != nil:
		offset := jump.Formation.SlotOffset(a.craft.SquadIndex())
		return basePos.Add(anchor.Orientation().ToWorld(offset)), baseOrientation
	case jump.Relative != nil && anchor != nil:
		return basePos.Add(anchor.Orientation().ToWorld(*jump.Relative)), baseOrientation
	case jump.Position != nil:
		return *jump.Position, baseOrientation
	case jump.Distance > 0:
		dir := a.randomDirection()
		pos := basePos.Add(dir.Scale(jump.Distance))
		if anchor == nil && len(jump.Rotations) == 0 {
			// arrive facing where we came from
			baseOrientation = facing(dir.Scale(-1))
		}
		return pos, baseOrientation
	}
	return basePos, baseOrientation
}

func (a *SpacecraftAI) randomDirection() game.Vec3 {
	if a.mission != nil {
		return a.mission.Context().RandomDirection()
	}
	return game.Vec3{Y: 1}
}

// facing builds an orientation whose nose points along dir.
func facing(dir game.Vec3) game.Basis {
	f := dir.Unit()
	up := game.Vec3{Z: 1}
	if math.Abs(f.Z) > 0.99 {
		up = game.Vec3{X: 1}
	}
	right := f.Cross(up).Unit()
	return game.Basis{Right: right, Forward: f, Up: right.Cross(f).Unit()}
}

func (a *SpacecraftAI) executeTarget(cmd *game.TargetCommand, clearCache bool) {
	if clearCache {
		delete(a.targetCache, cmd)
	}
	targets, ok := a.targetCache[cmd]
	if !ok {
		targets = a.resolveTargets(cmd)
		a.targetCache[cmd] = targets
	}
	a.standingDown = false
	a.targets = slices.Clone(targets)
	a.priority = cmd.Priority
	if len(a.targets) == 0 {
		a.log.Warn("target command resolved to no spacecraft", "single", cmd.Single, "list", cmd.List, "squads", cmd.Squads)
	}
}

func (a *SpacecraftAI) resolveTargets(cmd *game.TargetCommand) []*game.Spacecraft {
	if a.mission == nil {
		return nil
	}
	var out []*game.Spacecraft
	add := func(c *game.Spacecraft) {
		if c != nil && c != a.craft && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	if cmd.Single != "" {
		add(a.mission.GetSpacecraftByID(cmd.Single))
	}
	for _, id := range cmd.List {
		c := a.mission.GetSpacecraftByID(id)
		if c == nil {
			a.log.Warn("unknown target", "target", id)
			continue
		}
		add(c)
	}
	if len(cmd.Squads) > 0 {
		for _, c := range a.mission.Spacecrafts() {
			if slices.Contains(cmd.Squads, c.SquadName()) {
				add(c)
			}
		}
	}
	return out
}
