package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint computes a short content hash identifying a training run's input:
// data shape, column names, role mapping, date range, row values, and the model
// configuration snapshot. Two runs with the same fingerprint trained on the
// same data with the same settings.
func Fingerprint(f *Frame, modelSnapshot string) string {
	h := sha256.New()

	fmt.Fprintf(h, "shape:%dx%d\n", f.Rows, len(f.Columns))
	cols := append([]string(nil), f.Columns...)
	sort.Strings(cols)
	fmt.Fprintf(h, "columns:%s\n", strings.Join(cols, ","))
	fmt.Fprintf(h, "channels:%s\n", strings.Join(sortedCopy(f.Channels), ","))
	fmt.Fprintf(h, "range:%s..%s\n",
		f.StartDate().Format("2006-01-02"), f.EndDate().Format("2006-01-02"))

	for i := 0; i < f.Rows; i++ {
		fmt.Fprintf(h, "%d|%s|%s", i, f.Times[i].Format("2006-01-02"), formatFloat(f.KPI[i]))
		for _, ch := range f.Channels {
			fmt.Fprintf(h, "|%s|%s", formatFloat(f.Media[ch][i]), formatFloat(f.Spend[ch][i]))
		}
		h.Write([]byte("\n"))
	}

	fmt.Fprintf(h, "model:%s\n", modelSnapshot)

	// 16 hex characters are enough to tell runs apart.
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
