package trace

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// stepSeparator divides the per-node sections of the rendered log.
const stepSeparator = "\n\n====================\n\n"

// timestampLayout is the prefix stamped onto output and log filenames.
const timestampLayout = "2006-01-02_15-04-05"

// RenderLog renders the full prompt/response trace of the run, one section
// per recorded node, grouped by level and named within a level. The format
// is sufficient to reconstruct the exact execution grouping and every
// prompt and response.
func (r *Recorder) RenderLog() string {
	records := r.Records()
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Level != records[j].Level {
			return records[i].Level < records[j].Level
		}
		return records[i].Node < records[j].Node
	})

	sections := make([]string, 0, len(records))
	for _, rec := range records {
		sections = append(sections, renderStep(rec))
	}
	return strings.Join(sections, stepSeparator)
}

// renderStep renders a single node's section.
func renderStep(rec Record) string {
	var b strings.Builder

	switch {
	case rec.Err != nil:
		fmt.Fprintf(&b, "--- Step: [[%s]] (Failed, level %d) ---\n\n", rec.Node, rec.Level)
	case rec.Static:
		fmt.Fprintf(&b, "--- Step: [[%s]] (Static, level %d) ---\n\n", rec.Node, rec.Level)
	default:
		fmt.Fprintf(&b, "--- Step: [[%s]] (level %d) ---\n\n", rec.Node, rec.Level)
	}

	if rec.Static {
		fmt.Fprintf(&b, "CONTENT USED DIRECTLY:\n---\n%s\n---\n", rec.Value)
		return b.String()
	}

	fmt.Fprintf(&b, "PROMPT SENT TO LLM:\n---\n%s\n---\n", rec.Prompt)
	if rec.Err != nil {
		fmt.Fprintf(&b, "\nERROR:\n---\n%v\n---\n", rec.Err)
	} else {
		fmt.Fprintf(&b, "\nRESPONSE RECEIVED:\n---\n%s\n---\n", rec.Value)
	}
	return b.String()
}

// OutputFilename returns the timestamped name of the final output file for
// the given input file path.
func (r *Recorder) OutputFilename(inputPath string) string {
	return r.stampedName(inputPath, "output.txt")
}

// LogFilename returns the timestamped name of the prompt-chain log file for
// the given input file path.
func (r *Recorder) LogFilename(inputPath string) string {
	return r.stampedName(inputPath, "promptchain.log")
}

func (r *Recorder) stampedName(inputPath, suffix string) string {
	ts := r.started.Format(timestampLayout)
	return fmt.Sprintf("%s_%s_%s", ts, filepath.Base(inputPath), suffix)
}

// Elapsed returns the wall-clock time since the run started, rounded for
// log output.
func (r *Recorder) Elapsed() time.Duration {
	return time.Since(r.started).Round(time.Millisecond)
}
