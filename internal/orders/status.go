package orders

// Status is the lifecycle state of a single order record.
type Status string

const (
	StatusPengajuan Status = "Pengajuan"
	StatusPenawaran Status = "Penawaran"
	StatusPreOrder  Status = "Pre-Order"
	StatusProses    Status = "Proses"
	StatusDikirim   Status = "Dikirim"
	StatusCancel    Status = "Cancel"
)

// AllStatuses returns the full vocabulary in pipeline order, with
// Cancel last.
func AllStatuses() []Status {
	return []Status{
		StatusPengajuan,
		StatusPenawaran,
		StatusPreOrder,
		StatusProses,
		StatusDikirim,
		StatusCancel,
	}
}

// ParseStatus maps a raw string onto the vocabulary.
func ParseStatus(value string) (Status, bool) {
	for _, status := range AllStatuses() {
		if string(status) == value {
			return status, true
		}
	}
	return "", false
}

// Terminal reports whether a status ends the pipeline. Dikirim and
// Cancel have no successor.
func (s Status) Terminal() bool {
	return s == StatusDikirim || s == StatusCancel
}

// transitions is the explicit transition policy. The admin interface
// historically offered every status from every status, so the table is
// currently allow-all, terminal states included. Tightening the
// pipeline (Pengajuan → Penawaran → Pre-Order → Proses → Dikirim, with
// Cancel as escape hatch) is an edit to this table only.
var transitions = func() map[Status]map[Status]bool {
	table := make(map[Status]map[Status]bool, len(AllStatuses()))
	for _, from := range AllStatuses() {
		table[from] = make(map[Status]bool, len(AllStatuses()))
		for _, to := range AllStatuses() {
			table[from][to] = true
		}
	}
	return table
}()

// CanTransition consults the policy table. Every SetStatus goes
// through here so the policy has a single seam.
func CanTransition(from, to Status) bool {
	allowed, ok := transitions[from]
	if !ok {
		// Unknown stored statuses (hand-edited documents) may move to
		// any known status so an admin can repair them.
		_, known := ParseStatus(string(to))
		return known
	}
	return allowed[to]
}
