package listings

// Window is the requested grab range: Offset days from today, Days long.
type Window struct {
	Offset int
	Days   int
}

// Clamp limits the window to the site's maximum lookahead. When the offset
// fits but the tail would run past the horizon, the length shrinks. When the
// offset alone is past the horizon the request can't be honored at all and
// the window collapses to the full default range starting today. Returns
// true when anything changed, so the caller can warn.
func (w *Window) Clamp(siteMax int) bool {
	if w.Offset < 0 {
		w.Offset = 0
	}
	if w.Days < 0 {
		w.Days = 0
	}
	if w.Offset >= siteMax {
		changed := w.Offset != 0 || w.Days != siteMax
		w.Offset = 0
		w.Days = siteMax
		return changed
	}
	if w.Offset+w.Days > siteMax {
		w.Days = siteMax - w.Offset
		return true
	}
	return false
}
