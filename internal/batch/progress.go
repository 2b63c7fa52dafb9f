package batch

// progressEvent is one progress or status update emitted by a fetch.
type progressEvent struct {
	index      int
	percent    int
	hasPercent bool
	status     string
}

// drain forwards events to the caller's callbacks from a single
// goroutine until the channel closes. Percent values never move
// backwards for a given index.
func drain(events <-chan progressEvent, onProgress ProgressFunc, onStatus StatusFunc) {
	highWater := make(map[int]int)

	for ev := range events {
		if ev.hasPercent && onProgress != nil {
			if ev.percent >= highWater[ev.index] {
				highWater[ev.index] = ev.percent
				onProgress(ev.index, ev.percent)
			}
		}
		if ev.status != "" && onStatus != nil {
			onStatus(ev.index, ev.status)
		}
	}
}
