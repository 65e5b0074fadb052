package cil

// offsets returns the byte offset of every block label in body.
func offsets(body []blockCode) map[string]int {
	res := make(map[string]int, len(body))
	pos := 0
	for _, e1 := range body {
		res[e1.label] = pos
		for _, e2 := range e1.insts {
			pos += e2.Size()
		}
	}
	return res
}

// relax rewrites branches of body to their short form where the target is within reach of a signed byte offset.
// Every pass decides on the layout of the previous pass. Shortening a branch never lengthens the distance of any
// other branch, so the passes stop once nothing changes.
func relax(body []blockCode) int {
	shortened := 0
	for {
		labels := offsets(body)
		changed := false
		pos := 0
		for i1 := range body {
			for i2 := range body[i1].insts {
				inst := &body[i1].insts[i2]
				size := inst.Size()
				if inst.IsBranch() && !inst.IsShortBranch() {
					if target, ok := labels[inst.Label]; ok {
						short := BranchOffset(inst.cond, inst.un, inst.Label, target-(pos+inst.Op.Len()+1))
						if short.IsShortBranch() {
							*inst = short
							changed = true
							shortened++
						}
					}
				}
				pos += size
			}
		}
		if !changed {
			return shortened
		}
	}
}
