package timeline

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// Marshal encodes tl in the interchange layout. Identical timelines always
// produce identical bytes: integers are printed in decimal, bpm with exactly
// six decimals, and nothing depends on locale or map order.
func Marshal(tl *Timeline) []byte {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	fmt.Fprintf(&buf, "  \"seed\": \"0x%016x\",\n", tl.Seed)
	fmt.Fprintf(&buf, "  \"sample_rate\": %d,\n", tl.SampleRate)
	buf.WriteString("  \"bpm\": ")
	buf.WriteString(strconv.FormatFloat(tl.BPM, 'f', 6, 64))
	buf.WriteString(",\n")
	fmt.Fprintf(&buf, "  \"step_samples\": %d,\n", tl.StepSamples)
	fmt.Fprintf(&buf, "  \"total_samples\": %d,\n", tl.TotalSamples)
	writeArray(&buf, "steps", tl.Steps)
	writeArray(&buf, "beats", tl.Beats)
	buf.WriteString("  \"events\": [\n")
	for i, ev := range tl.Events {
		buf.WriteString("    ")
		buf.WriteString(ev.String())
		if i+1 < len(tl.Events) {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("  ]\n}\n")
	return buf.Bytes()
}

func writeArray(buf *bytes.Buffer, key string, vals []uint32) {
	buf.WriteString("  \"")
	buf.WriteString(key)
	buf.WriteString("\": [")
	for i, v := range vals {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	buf.WriteString("],\n")
}

// Encode writes the document for tl to w.
func Encode(w io.Writer, tl *Timeline) error {
	if _, err := w.Write(Marshal(tl)); err != nil {
		return fmt.Errorf("write timeline: %w", err)
	}
	return nil
}
