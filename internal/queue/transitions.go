package queue

// transitions lists the legal forward moves. Any non-terminal status may also
// move to failed.
var transitions = map[Status][]Status{
	StatusPending:     {StatusDownloading, StatusProcessing},
	StatusDownloading: {StatusProcessing},
	StatusProcessing:  {StatusCompleted},
}

// CanTransition reports whether a job may move from one status to another.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() || from == to {
		return false
	}
	if _, ok := statusSet[to]; !ok {
		return false
	}
	if to == StatusFailed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionKind applies CanTransition and additionally rejects statuses
// a kind never uses: generate jobs skip downloading.
func CanTransitionKind(kind Kind, from, to Status) bool {
	if !kind.Uses(from) || !kind.Uses(to) {
		return false
	}
	return CanTransition(from, to)
}

// Uses reports whether jobs of this kind ever enter the status.
func (k Kind) Uses(status Status) bool {
	if k == KindGenerate && status == StatusDownloading {
		return false
	}
	_, ok := statusSet[status]
	return ok
}

// FirstActiveStatus is the status a worker moves a pending job into.
func (k Kind) FirstActiveStatus() Status {
	if k == KindClip {
		return StatusDownloading
	}
	return StatusProcessing
}

// predecessors returns every status that may legally move to the target.
func predecessors(to Status) []Status {
	var out []Status
	for _, from := range allStatuses {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}
