package agent

import "strings"

// Emotion is an agent's current mood. It colours voice lines and prompts.
type Emotion string

const (
	Calm       Emotion = "calm"
	Aggressive Emotion = "aggressive"
	Defensive  Emotion = "defensive"
	Confident  Emotion = "confident"
	Nervous    Emotion = "nervous"
	Excited    Emotion = "excited"
	Frustrated Emotion = "frustrated"
)

var emotions = []Emotion{Calm, Aggressive, Defensive, Confident, Nervous, Excited, Frustrated}

// ParseEmotion matches s case-insensitively against the known emotions.
func ParseEmotion(s string) (Emotion, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range emotions {
		if string(e) == s {
			return e, true
		}
	}
	return "", false
}

// tilting reports whether e pushes tilt up (+1), down (-1) or leaves it.
func (e Emotion) tilting() int {
	switch e {
	case Frustrated, Nervous:
		return 1
	case Confident, Excited:
		return -1
	}
	return 0
}
