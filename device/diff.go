package device

// Diff computes the changes that turn before into after.
//
// Devices of before are visited in enumeration order first: a device whose
// record differs in after yields a Status event carrying the new record, a
// device missing from after yields a Removed event carrying the old record.
// Devices of after that before does not know are then reported as Added, in the
// enumeration order of after.
func Diff(before, after Snapshot) []ChangeEvent {
	changes := make([]ChangeEvent, 0)

	for _, id := range before.order {
		oldRecord := before.byId[id]

		newRecord, known := after.byId[id]
		if !known {
			changes = append(changes, ChangeEvent{Device: oldRecord, Kind: Removed})
			continue
		}

		if newRecord != oldRecord {
			changes = append(changes, ChangeEvent{Device: newRecord, Kind: Status})
		}
	}

	for _, id := range after.order {
		if _, known := before.byId[id]; !known {
			changes = append(changes, ChangeEvent{Device: after.byId[id], Kind: Added})
		}
	}

	return changes
}
