package activity

// Report is the aggregated activity summary for one user.
type Report struct {
	RecordsWeek  int
	RecordsMonth int
	RecordsTotal int
	FocusMinutes int64
}

// Empty reports whether there is nothing to show.
func (r Report) Empty() bool {
	return r.RecordsWeek == 0 && r.RecordsMonth == 0 && r.RecordsTotal == 0 && r.FocusMinutes == 0
}
