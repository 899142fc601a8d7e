package song

import (
	"fmt"
	"strings"
)

// Diagnostic is one entry of the run's error log. Document-level errors have
// no line number; line-level errors have no majesty number.
type Diagnostic struct {
	Path          string `json:"path"`
	LineNum       int    `json:"lineNum,omitempty"`
	MajestyNumber *int   `json:"majestyNumber,omitempty"`
	Message       string `json:"message"`
	Warning       bool   `json:"warning,omitempty"`
}

// IsWarning reports whether the record is advisory.
func (d Diagnostic) IsWarning() bool {
	return d.Warning
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Path)
	if d.LineNum > 0 {
		fmt.Fprintf(&b, ":%d", d.LineNum)
	}
	if d.MajestyNumber != nil {
		fmt.Fprintf(&b, " (#%d)", *d.MajestyNumber)
	}
	if d.Warning {
		b.WriteString(" warning")
	} else {
		b.WriteString(" error")
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// TrimStanzas removes trailing blank lines from every stanza of every song.
// A line is blank when it is empty after trimming whitespace.
func TrimStanzas(songs []*Song) {
	for _, s := range songs {
		for _, st := range s.Stanzas {
			n := len(st.Lines)
			for n > 0 && strings.TrimSpace(st.Lines[n-1]) == "" {
				n--
			}
			st.Lines = st.Lines[:n]
		}
	}
}
