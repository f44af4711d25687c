package draft

// Field error kinds reported by Validate.
const (
	KindTooShort = "too_short"
	KindMissing  = "missing"
)

const (
	minTitleLen       = 5
	minDescriptionLen = 20
)

// Result maps a failing field to its error kind. An empty result means the
// draft's textual fields are acceptable for submission.
type Result map[string]string

func (r Result) OK() bool { return len(r) == 0 }

// Validate checks the draft's textual fields and collects every failure,
// it does not short-circuit on the first one. Lengths are measured on the
// raw strings, no trimming is applied. The location precondition is
// deliberately not part of this result; the catalog gates on it at
// submission time. Validate has no side effects and is idempotent.
func Validate(d *Draft) Result {
	errs := Result{}
	if len(d.Title) < minTitleLen {
		errs["title"] = KindTooShort
	}
	if len(d.Description) < minDescriptionLen {
		errs["description"] = KindTooShort
	}
	if d.Category == "" {
		errs["category"] = KindMissing
	}
	return errs
}
