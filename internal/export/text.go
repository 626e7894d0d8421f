package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/untoldecay/mentor/internal/extractor"
)

// emptyDescription stands in for a missing description so the group still
// has three non-blank lines.
const emptyDescription = "-"

var grouping = message.NewPrinter(language.English)

// FormatPrice renders a price with thousands separators, e.g. 150,000.
func FormatPrice(price int64) string {
	return grouping.Sprintf("%d", price)
}

// writeText writes the menu in the same three-line layout the parser reads,
// one blank line between groups. Q&A entries have no text form.
func writeText(w io.Writer, doc *Document, currency string) error {
	if currency == "" {
		currency = extractor.DefaultCurrencies[0]
	}
	bw := bufio.NewWriter(w)
	for i, item := range doc.Menu {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		desc := singleLine(item.Description)
		if desc == "" {
			desc = emptyDescription
		}
		if _, err := fmt.Fprintf(bw, "%s\n%s\n%s %s\n", singleLine(item.Name), desc, FormatPrice(item.Price), currency); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
