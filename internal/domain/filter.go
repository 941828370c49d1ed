package domain

import "fmt"

// FilterByWindow keeps the objects whose embedded scan time falls inside the
// window, preserving input order. Objects with unparseable basenames are
// excluded and counted in skipped; when strict is set the first such object
// fails the call instead, so an operator notices convention drift rather than
// silently losing scans.
func FilterByWindow(objects []RemoteObject, window TimeWindow, strict bool) (kept []RemoteObject, skipped int, err error) {
	for _, obj := range objects {
		t, err := ScanTime(obj.Key)
		if err != nil {
			if strict {
				return nil, 0, fmt.Errorf("filter %s: %w", obj.Key, err)
			}
			skipped++
			continue
		}
		if window.Contains(t) {
			kept = append(kept, obj)
		}
	}
	return kept, skipped, nil
}
