package task

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/vk/hiertask/internal/ndex"
)

const (
	resultPrefix = "RESULT:"
	errorPrefix  = "ERROR:"
	unknownError = "unknown error"
)

// Outcome is the terminal result of a run.
type Outcome struct {
	State State
	// URL is the viewer link, set when State is StateDone.
	URL string
	// Err is set when State is StateFailed.
	Err *Error
	// Warnings holds non-fatal failures such as a persistence error.
	Warnings []error
	// ExitCode is the algorithm's exit code, when it ran.
	ExitCode int
	Metadata *ndex.Metadata
}

// Encode renders the outcome as exactly one newline-terminated line. An
// outcome that is neither a success nor a tagged failure yields the
// unknown-error line.
func Encode(o Outcome) string {
	switch {
	case o.State == StateDone && o.URL != "":
		url := strings.TrimSpace(o.URL)
		if strings.ContainsFunc(url, unicode.IsSpace) {
			return errorPrefix + "result URL contains whitespace: " + strconv.Quote(url) + "\n"
		}
		return resultPrefix + url + "\n"
	case o.State == StateFailed && o.Err != nil:
		msg := singleLine(o.Err.Error())
		if msg == "" {
			msg = unknownError
		}
		return errorPrefix + msg + "\n"
	default:
		return errorPrefix + unknownError + "\n"
	}
}

// Rejected is the outcome of a configuration that never became a task.
func Rejected(err error) Outcome {
	return Outcome{
		State: StateFailed,
		Err:   &Error{Kind: KindConfig, Stage: StateConfigured, Err: err},
	}
}

// WriteTo writes the encoded outcome to w.
func (o Outcome) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, Encode(o))
	return int64(n), err
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
