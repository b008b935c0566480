package domain

type DurationID string

const (
	Duration4Hours  DurationID = "4-hours"
	Duration8Hours  DurationID = "8-hours"
	DurationFullDay DurationID = "full-day"
)

// DurationOption is a rental duration with its flat price in whole
// currency units. The set is fixed at process start.
type DurationOption struct {
	ID    DurationID `json:"id"`
	Label string     `json:"name"`
	Price int64      `json:"price"`
}

var durationOptions = []DurationOption{
	{ID: Duration4Hours, Label: "4 Hours", Price: 600},
	{ID: Duration8Hours, Label: "8 Hours", Price: 1000},
	{ID: DurationFullDay, Label: "Full Day (12 Hours)", Price: 1500},
}

// Durations returns all duration options in display order.
func Durations() []DurationOption {
	out := make([]DurationOption, len(durationOptions))
	copy(out, durationOptions)
	return out
}

// ResolveDuration looks up a duration option by ID.
func ResolveDuration(id DurationID) (DurationOption, bool) {
	for _, d := range durationOptions {
		if d.ID == id {
			return d, true
		}
	}
	return DurationOption{}, false
}
