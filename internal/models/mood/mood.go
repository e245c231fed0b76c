package mood

type Mood string

const MoodGreat Mood = "great"
const MoodGood Mood = "good"
const MoodOkay Mood = "okay"
const MoodBad Mood = "bad"
const MoodTerrible Mood = "terrible"

// Entry - настроение за один календарный день, не больше одной записи в день
type Entry struct {
	Day  string `json:"day" db:"day"` // YYYY-MM-DD
	Mood Mood   `json:"mood" db:"mood"`
	Note string `json:"note,omitempty" db:"note"`
}

func (m Mood) Valid() bool {
	switch m {
	case MoodGreat, MoodGood, MoodOkay, MoodBad, MoodTerrible:
		return true
	}
	return false
}
