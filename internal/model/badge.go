package model

// Badge colours
const (
	ColorRead  = "#22c55e"
	ColorSave  = "#eab308"
	ColorLeave = "#ef4444"
	ColorGrey  = "#9ca3af"
)

// Badge is what the toolbar shows for a status
type Badge struct {
	Icon  string `json:"icon"` // default, read, save, leave, grey
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

// BadgeFor maps a status to its toolbar rendering.
// Errors are shown generically; the popup carries the message.
func BadgeFor(s VerdictStatus) Badge {
	switch s.Type {
	case StatusLoading:
		return Badge{Icon: "grey", Text: "...", Color: ColorGrey}
	case StatusSuccess:
		if s.Verdict == nil {
			return Badge{Icon: "grey"}
		}
		switch s.Verdict.Verdict {
		case LabelRead:
			return Badge{Icon: "read", Color: ColorRead}
		case LabelSave:
			return Badge{Icon: "save", Color: ColorSave}
		default:
			return Badge{Icon: "leave", Color: ColorLeave}
		}
	case StatusError, StatusSkipped:
		return Badge{Icon: "grey", Color: ColorGrey}
	default:
		return Badge{Icon: "default"}
	}
}
